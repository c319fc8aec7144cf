package pool

import (
	"math/big"
	"testing"

	"vault/domain"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestPoolBounds(t *testing.T) {
	p := New("a", uint256.NewInt(100), uint256.NewInt(10))

	accepted, err := p.Deposit(uint256.NewInt(60), nil)
	require.NoError(t, err)
	require.Equal(t, "60", accepted.Dec())

	_, err = p.Deposit(uint256.NewInt(41), nil)
	require.ErrorIs(t, err, ErrorOverCapacity)

	_, err = p.Withdraw(uint256.NewInt(51), nil)
	require.ErrorIs(t, err, ErrorBelowFloor)

	withdrawn, err := p.Withdraw(uint256.NewInt(50), nil)
	require.NoError(t, err)
	require.Equal(t, "50", withdrawn.Dec())
	require.Equal(t, "10", p.TotalDeposits().Dec())
}

func TestPoolDepositChangeIgnoresPrincipal(t *testing.T) {
	p := New("a", uint256.NewInt(1000), uint256.NewInt(0))
	_, err := p.Deposit(uint256.NewInt(500), nil)
	require.NoError(t, err)

	change, err := p.DepositChange()
	require.NoError(t, err)
	require.Zero(t, change.Sign())

	require.NoError(t, p.Accrue(big.NewInt(40)))
	// Pulling out unreconciled gain keeps it pending.
	_, err = p.Withdraw(uint256.NewInt(540), nil)
	require.NoError(t, err)

	change, err = p.DepositChange()
	require.NoError(t, err)
	require.Equal(t, int64(40), change.Int64())

	_, err = p.UpdateDeposits(nil)
	require.NoError(t, err)
	change, err = p.DepositChange()
	require.NoError(t, err)
	require.Zero(t, change.Sign())
}

func TestPoolLeviesFeeOnGain(t *testing.T) {
	p := New("a", uint256.NewInt(1000), uint256.NewInt(0)).WithFee(2000, "manager")
	_, err := p.Deposit(uint256.NewInt(500), nil)
	require.NoError(t, err)
	require.NoError(t, p.Accrue(big.NewInt(55)))

	fees, err := p.UpdateDeposits(nil)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	require.Equal(t, domain.Account("manager"), fees[0].Recipient)
	require.Equal(t, "11", fees[0].Amount.Dec())

	require.NoError(t, p.Accrue(big.NewInt(-5)))
	fees, err = p.UpdateDeposits(nil)
	require.NoError(t, err)
	require.Empty(t, fees)
}

func TestPoolRestoreDepositChange(t *testing.T) {
	p := New("a", uint256.NewInt(1000), uint256.NewInt(0))
	_, err := p.Deposit(uint256.NewInt(100), nil)
	require.NoError(t, err)
	require.NoError(t, p.Accrue(big.NewInt(-30)))

	change, err := p.DepositChange()
	require.NoError(t, err)
	_, err = p.UpdateDeposits(nil)
	require.NoError(t, err)

	require.NoError(t, p.RestoreDepositChange(change))
	restored, err := p.DepositChange()
	require.NoError(t, err)
	require.Equal(t, int64(-30), restored.Int64())
}

func TestPoolAccrueRejectsNegativeDeposits(t *testing.T) {
	p := New("a", uint256.NewInt(1000), uint256.NewInt(0))
	_, err := p.Deposit(uint256.NewInt(10), nil)
	require.NoError(t, err)

	require.ErrorIs(t, p.Accrue(big.NewInt(-11)), domain.ErrorInvalidAmount)
	require.Equal(t, "10", p.TotalDeposits().Dec())
}

func TestPoolStateRoundTrip(t *testing.T) {
	p := New("a", uint256.NewInt(1000), uint256.NewInt(5)).WithFee(100, "manager")
	_, err := p.Deposit(uint256.NewInt(300), nil)
	require.NoError(t, err)
	require.NoError(t, p.Accrue(big.NewInt(7)))

	restored, err := Restore(p.State())
	require.NoError(t, err)
	require.Equal(t, p.State(), restored.State())

	change, err := restored.DepositChange()
	require.NoError(t, err)
	require.Equal(t, int64(7), change.Int64())
}

func TestPoolFromConfig(t *testing.T) {
	p, err := FromConfig(domain.StrategyConfig{ID: "a", MaxDeposits: "1000000000000000000000", MinDeposits: "1", FeeBps: 50, FeeRecipient: "manager"})
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000000", p.MaxDeposits().Dec())
	require.Equal(t, "1", p.MinDeposits().Dec())
	require.Equal(t, uint32(50), p.State().FeeBps)

	_, err = FromConfig(domain.StrategyConfig{ID: "b", MaxDeposits: "-1"})
	require.ErrorIs(t, err, domain.ErrorInvalidAmount)
}

func TestPoolRevertSkipsBounds(t *testing.T) {
	p := New("a", uint256.NewInt(100), uint256.NewInt(50))
	_, err := p.Deposit(uint256.NewInt(80), nil)
	require.NoError(t, err)

	// Below the floor.
	require.NoError(t, p.RevertDeposit(uint256.NewInt(80), nil))
	require.True(t, p.TotalDeposits().IsZero())
	change, err := p.DepositChange()
	require.NoError(t, err)
	require.Zero(t, change.Sign())

	require.ErrorIs(t, p.RevertDeposit(uint256.NewInt(1), nil), domain.ErrorInvalidAmount)

	// Over the cap.
	require.NoError(t, p.RevertWithdraw(uint256.NewInt(120), nil))
	require.Equal(t, "120", p.TotalDeposits().Dec())
	change, err = p.DepositChange()
	require.NoError(t, err)
	require.Zero(t, change.Sign())
}

func TestPoolRestoreAll(t *testing.T) {
	a := New("a", uint256.NewInt(1000), uint256.NewInt(0))
	b := New("b", uint256.NewInt(500), uint256.NewInt(0))
	snapshot := &domain.VaultSnapshot{
		Strategies: []string{"b", "a"},
		Pools:      []domain.PoolState{a.State(), b.State()},
	}

	strategies, err := RestoreAll(snapshot)
	require.NoError(t, err)
	require.Len(t, strategies, 2)
	require.Equal(t, "b", strategies[0].ID())
	require.Equal(t, "a", strategies[1].ID())

	snapshot.Strategies = append(snapshot.Strategies, "c")
	_, err = RestoreAll(snapshot)
	require.Error(t, err)
}
