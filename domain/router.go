package domain

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Allocation is an amount moved to or from the strategy at Index.
type Allocation struct {
	Index  int
	Amount *uint256.Int
}

type DepositPlan struct {
	Depositor Account
	Amount    *uint256.Int
	Shares    *uint256.Int
	// Allocations are in priority order.
	Allocations []Allocation
}

// Deployed is the part of the deposit routed to strategies.
func (p *DepositPlan) Deployed() *uint256.Int {
	return sumAllocations(p.Allocations)
}

// PlanDeposit prices the deposit against the state before it lands and routes
// whatever sits above the buffer target into strategies in priority order.
func PlanDeposit(state *VaultState, views []StrategyView, depositor Account, amount *uint256.Int) (*DepositPlan, error) {
	if state.DepositsDisabled {
		return nil, ErrorDepositsDisabled
	}
	if depositor == "" {
		return nil, ErrorInvalidAccount
	}
	if amount == nil || amount.IsZero() {
		return nil, ErrorInvalidAmount
	}

	shares, err := state.Ledger.SharesForUnderlying(amount)
	if err != nil {
		return nil, err
	}
	if shares.IsZero() {
		return nil, errors.Wrapf(ErrorInvalidAmount, "%v is worth less than one share", amount.Dec())
	}

	stakedAfter, overflow := new(uint256.Int).AddOverflow(state.Ledger.totalStaked, amount)
	if overflow {
		return nil, errors.Wrap(ErrorInvalidAmount, "total staked overflow")
	}
	bufferedAfter := new(uint256.Int).Add(state.Buffered, amount)

	// The buffer is a floor, not a cap: everything above it is offered to
	// strategies, and what they cannot take stays idle.
	remaining := saturatingSub(bufferedAfter, bufferTargetAt(stakedAfter, state.BufferBasisPoints))

	plan := &DepositPlan{
		Depositor:   depositor,
		Amount:      amount.Clone(),
		Shares:      shares,
		Allocations: make([]Allocation, 0, len(views)),
	}
	for i, view := range views {
		if remaining.IsZero() {
			break
		}
		headroom := view.Headroom()
		if headroom.IsZero() {
			continue
		}
		take := minAmount(remaining, headroom)
		plan.Allocations = append(plan.Allocations, Allocation{Index: i, Amount: take})
		remaining.Sub(remaining, take)
	}

	return plan, nil
}

// Apply books the deposit into state.
func (p *DepositPlan) Apply(state *VaultState) error {
	if err := state.Ledger.AddStaked(p.Amount); err != nil {
		return err
	}
	if err := state.Ledger.Mint(p.Depositor, p.Shares); err != nil {
		return err
	}
	buffered := new(uint256.Int).Add(state.Buffered, p.Amount)
	state.Buffered = buffered.Sub(buffered, p.Deployed())
	return nil
}

type WithdrawPlan struct {
	Account    Account
	Recipient  Account
	Amount     *uint256.Int
	Shares     *uint256.Int
	FromBuffer *uint256.Int
	// Allocations are in reverse priority order, the order they are pulled.
	Allocations []Allocation
}

// PlanWithdrawal sizes the burn at the current price and raises the amount from
// the buffer first, then from strategies starting with the lowest priority.
// Nothing is planned unless the full amount can be raised.
func PlanWithdrawal(state *VaultState, views []StrategyView, account Account, recipient Account, amount *uint256.Int) (*WithdrawPlan, error) {
	if state.WithdrawalsDisabled {
		return nil, ErrorWithdrawalsDisabled
	}
	if account == "" || recipient == "" {
		return nil, ErrorInvalidAccount
	}
	if amount == nil || amount.IsZero() {
		return nil, ErrorInvalidAmount
	}
	if amount.Gt(state.Ledger.totalStaked) {
		return nil, errors.Wrapf(ErrorInsufficientBalance, "%v exceeds total staked %v", amount.Dec(), state.Ledger.totalStaked.Dec())
	}

	shares, err := state.Ledger.SharesForUnderlyingUp(amount)
	if err != nil {
		return nil, err
	}
	if balance := state.Ledger.BalanceOf(account); balance.Lt(shares) {
		return nil, errors.Wrapf(ErrorInsufficientBalance, "%v holds %v shares, %v required", account, balance.Dec(), shares.Dec())
	}

	plan := &WithdrawPlan{
		Account:     account,
		Recipient:   recipient,
		Amount:      amount.Clone(),
		Shares:      shares,
		FromBuffer:  minAmount(state.Buffered, amount),
		Allocations: make([]Allocation, 0, len(views)),
	}

	remaining := new(uint256.Int).Sub(amount, plan.FromBuffer)
	for i := len(views) - 1; i >= 0 && !remaining.IsZero(); i-- {
		drawable := views[i].Drawable()
		if drawable.IsZero() {
			continue
		}
		take := minAmount(remaining, drawable)
		plan.Allocations = append(plan.Allocations, Allocation{Index: i, Amount: take})
		remaining.Sub(remaining, take)
	}

	if !remaining.IsZero() {
		return nil, errors.Wrapf(ErrorInsufficientLiquidity, "%v short of %v", remaining.Dec(), amount.Dec())
	}
	return plan, nil
}

// Apply books the withdrawal into state.
func (p *WithdrawPlan) Apply(state *VaultState) error {
	if err := state.Ledger.Burn(p.Account, p.Shares); err != nil {
		return err
	}
	if err := state.Ledger.SubStaked(p.Amount); err != nil {
		return err
	}
	state.Buffered = new(uint256.Int).Sub(state.Buffered, p.FromBuffer)
	return nil
}

// ValidateStrategySet checks that indices name distinct managed strategies.
func ValidateStrategySet(indices []int, count int) error {
	if len(indices) == 0 {
		return errors.Wrap(ErrorInvalidStrategySet, "no strategy given")
	}
	seen := make(map[int]bool, len(indices))
	for _, index := range indices {
		if index < 0 || index >= count {
			return errors.Wrapf(ErrorInvalidStrategySet, "index %d is not managed", index)
		}
		if seen[index] {
			return errors.Wrapf(ErrorInvalidStrategySet, "index %d given twice", index)
		}
		seen[index] = true
	}
	return nil
}

// ValidateOrder checks that order is a permutation of 0..count-1.
func ValidateOrder(order []int, count int) error {
	if len(order) != count {
		return errors.Wrapf(ErrorInvalidOrder, "%d indices given for %d strategies", len(order), count)
	}
	seen := make([]bool, count)
	for _, index := range order {
		if index < 0 || index >= count || seen[index] {
			return errors.Wrapf(ErrorInvalidOrder, "index %d", index)
		}
		seen[index] = true
	}
	return nil
}

func sumAllocations(allocations []Allocation) *uint256.Int {
	total := new(uint256.Int)
	for _, allocation := range allocations {
		total.Add(total, allocation.Amount)
	}
	return total
}
