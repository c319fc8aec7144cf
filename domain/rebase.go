package domain

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// FeeMint is a fee paid in freshly minted shares.
type FeeMint struct {
	Recipient Account
	Kind      RecipientKind
	// Amount is the underlying value of the fee at the pre-rebase price.
	Amount *uint256.Int
	Shares *uint256.Int
}

type RebasePlan struct {
	Indices   []int
	Changes   []*big.Int
	NetChange *big.Int
	Fees      []FeeMint
}

// PlanRebase sums the reported changes and, on a net gain, prices every fee at
// the share price before the gain is booked. Vault fees come first, then the
// fees strategies levied themselves; together they never exceed the gain.
func PlanRebase(state *VaultState, indices []int, changes []*big.Int, strategyFees []StrategyFee) (*RebasePlan, error) {
	plan := &RebasePlan{
		Indices:   append([]int(nil), indices...),
		Changes:   changes,
		NetChange: new(big.Int),
	}
	for _, change := range changes {
		plan.NetChange.Add(plan.NetChange, change)
	}

	if plan.NetChange.Sign() <= 0 {
		return plan, nil
	}

	ledger := state.Ledger
	if ledger.totalStaked.IsZero() && !ledger.totalShares.IsZero() {
		// No pre-rebase price exists, the gain goes to the holders.
		return plan, nil
	}

	reward, overflow := uint256.FromBig(plan.NetChange)
	if overflow {
		return nil, errors.Wrap(ErrorInvalidAmount, "rebase gain overflow")
	}
	left := reward.Clone()

	addFee := func(recipient Account, kind RecipientKind, amount *uint256.Int) error {
		amount = minAmount(amount, left)
		if amount.IsZero() {
			return nil
		}
		shares, err := ledger.SharesForUnderlying(amount)
		if err != nil {
			return err
		}
		if shares.IsZero() {
			return nil
		}
		left.Sub(left, amount)
		plan.Fees = append(plan.Fees, FeeMint{Recipient: recipient, Kind: kind, Amount: amount, Shares: shares})
		return nil
	}

	for i, amount := range state.Fees.Amounts(reward) {
		entry := state.Fees[i]
		if err := addFee(entry.Recipient, entry.Kind, amount); err != nil {
			return nil, err
		}
	}
	for _, fee := range strategyFees {
		if fee.Recipient == "" || fee.Amount == nil {
			continue
		}
		if err := addFee(fee.Recipient, state.Fees.kindOf(fee.Recipient), fee.Amount); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

// Apply mints the fee shares and books the net change. It returns the change
// actually applied, which differs from NetChange only when a loss exceeds
// total staked.
func (p *RebasePlan) Apply(state *VaultState) (*big.Int, error) {
	for _, fee := range p.Fees {
		if err := state.Ledger.Mint(fee.Recipient, fee.Shares); err != nil {
			return nil, err
		}
	}
	if p.NetChange.Sign() == 0 {
		return new(big.Int), nil
	}
	return state.Ledger.ApplyChange(p.NetChange)
}

// FeeShares is the total number of shares minted as fees.
func (p *RebasePlan) FeeShares() *uint256.Int {
	total := new(uint256.Int)
	for _, fee := range p.Fees {
		total.Add(total, fee.Shares)
	}
	return total
}

func (t FeeTable) kindOf(recipient Account) RecipientKind {
	for _, entry := range t {
		if entry.Recipient == recipient && entry.Kind == RecipientNotify {
			return RecipientNotify
		}
	}
	return RecipientPlain
}
