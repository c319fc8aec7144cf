package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func view(id string, total, max, min uint64) StrategyView {
	return StrategyView{ID: id, TotalDeposits: u(total), MaxDeposits: u(max), MinDeposits: u(min)}
}

func TestPlanDepositFillsStrategiesInPriorityOrder(t *testing.T) {
	state := NewVaultState()
	views := []StrategyView{view("a", 0, 600, 0), view("b", 0, 500, 0)}

	plan, err := PlanDeposit(state, views, "alice", u(1000))
	require.NoError(t, err)
	require.Equal(t, "1000", plan.Shares.Dec())
	require.Len(t, plan.Allocations, 2)
	require.Equal(t, 0, plan.Allocations[0].Index)
	require.Equal(t, "600", plan.Allocations[0].Amount.Dec())
	require.Equal(t, 1, plan.Allocations[1].Index)
	require.Equal(t, "400", plan.Allocations[1].Amount.Dec())

	require.NoError(t, plan.Apply(state))
	require.True(t, state.Buffered.IsZero())
	require.Equal(t, "1000", state.Ledger.TotalStaked().Dec())
}

func TestPlanDepositKeepsBufferAndSkipsFullStrategies(t *testing.T) {
	state := NewVaultState()
	require.NoError(t, state.SetBufferBasisPoints(1000))
	views := []StrategyView{view("full", 300, 300, 0), view("b", 0, 200, 0)}

	plan, err := PlanDeposit(state, views, "alice", u(1000))
	require.NoError(t, err)
	// 100 stays as buffer, 200 fits in b, the rest is idle.
	require.Len(t, plan.Allocations, 1)
	require.Equal(t, 1, plan.Allocations[0].Index)
	require.Equal(t, "200", plan.Allocations[0].Amount.Dec())

	require.NoError(t, plan.Apply(state))
	require.Equal(t, "800", state.Buffered.Dec())
}

func TestPlanDepositRejections(t *testing.T) {
	state := NewVaultState()

	_, err := PlanDeposit(state, nil, "alice", u(0))
	require.ErrorIs(t, err, ErrorInvalidAmount)

	_, err = PlanDeposit(state, nil, "", u(1))
	require.ErrorIs(t, err, ErrorInvalidAccount)

	state.DepositsDisabled = true
	_, err = PlanDeposit(state, nil, "alice", u(1))
	require.ErrorIs(t, err, ErrorDepositsDisabled)

	// Price of 10 per share: 5 buys nothing.
	state = NewVaultState()
	require.NoError(t, state.Ledger.Mint("bob", u(10)))
	require.NoError(t, state.Ledger.AddStaked(u(100)))
	_, err = PlanDeposit(state, nil, "alice", u(5))
	require.ErrorIs(t, err, ErrorInvalidAmount)
}

func TestPlanWithdrawalDrawsBufferThenReversePriority(t *testing.T) {
	state := NewVaultState()
	require.NoError(t, state.Ledger.Mint("alice", u(1000)))
	require.NoError(t, state.Ledger.AddStaked(u(1000)))
	state.Buffered = u(100)
	views := []StrategyView{view("a", 500, 600, 0), view("b", 400, 500, 100)}

	plan, err := PlanWithdrawal(state, views, "alice", "bob", u(600))
	require.NoError(t, err)
	require.Equal(t, "100", plan.FromBuffer.Dec())
	require.Len(t, plan.Allocations, 2)
	require.Equal(t, 1, plan.Allocations[0].Index)
	require.Equal(t, "300", plan.Allocations[0].Amount.Dec())
	require.Equal(t, 0, plan.Allocations[1].Index)
	require.Equal(t, "200", plan.Allocations[1].Amount.Dec())

	require.NoError(t, plan.Apply(state))
	require.True(t, state.Buffered.IsZero())
	require.Equal(t, "400", state.Ledger.TotalStaked().Dec())
	require.Equal(t, "400", state.Ledger.BalanceOf("alice").Dec())
}

func TestPlanWithdrawalShortfall(t *testing.T) {
	state := NewVaultState()
	require.NoError(t, state.Ledger.Mint("alice", u(1000)))
	require.NoError(t, state.Ledger.AddStaked(u(1000)))
	views := []StrategyView{view("a", 600, 600, 100), view("b", 400, 500, 100)}

	_, err := PlanWithdrawal(state, views, "alice", "alice", u(900))
	require.ErrorIs(t, err, ErrorInsufficientLiquidity)

	_, err = PlanWithdrawal(state, views, "bob", "bob", u(1))
	require.ErrorIs(t, err, ErrorInsufficientBalance)

	state.WithdrawalsDisabled = true
	_, err = PlanWithdrawal(state, views, "alice", "alice", u(1))
	require.ErrorIs(t, err, ErrorWithdrawalsDisabled)
}

func TestPlanWithdrawalBurnsRoundedUp(t *testing.T) {
	state := NewVaultState()
	require.NoError(t, state.Ledger.Mint("alice", u(3)))
	require.NoError(t, state.Ledger.AddStaked(u(10)))
	state.Buffered = u(10)

	plan, err := PlanWithdrawal(state, nil, "alice", "alice", u(5))
	require.NoError(t, err)
	require.Equal(t, "2", plan.Shares.Dec())
}

func TestValidateStrategySetAndOrder(t *testing.T) {
	require.NoError(t, ValidateStrategySet([]int{1, 0}, 2))
	require.ErrorIs(t, ValidateStrategySet(nil, 2), ErrorInvalidStrategySet)
	require.ErrorIs(t, ValidateStrategySet([]int{2}, 2), ErrorInvalidStrategySet)
	require.ErrorIs(t, ValidateStrategySet([]int{1, 1}, 2), ErrorInvalidStrategySet)

	require.NoError(t, ValidateOrder([]int{2, 0, 1}, 3))
	require.ErrorIs(t, ValidateOrder([]int{0, 1}, 3), ErrorInvalidOrder)
	require.ErrorIs(t, ValidateOrder([]int{0, 0, 1}, 3), ErrorInvalidOrder)
	require.ErrorIs(t, ValidateOrder([]int{0, 1, 3}, 3), ErrorInvalidOrder)
}
