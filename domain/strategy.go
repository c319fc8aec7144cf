package domain

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Strategy is a capacity-bounded capital sink the vault routes underlying to.
// Calls are synchronous; an error fails the whole vault operation.
type Strategy interface {
	ID() string

	TotalDeposits() *uint256.Int
	MaxDeposits() *uint256.Int
	// MinDeposits is the floor the vault may not withdraw below.
	MinDeposits() *uint256.Int

	// Deposit returns the amount accepted.
	Deposit(amount *uint256.Int, aux []byte) (*uint256.Int, error)
	// Withdraw returns the amount actually withdrawn.
	Withdraw(amount *uint256.Int, aux []byte) (*uint256.Int, error)

	// DepositChange is the signed gain or loss since the last UpdateDeposits.
	DepositChange() (*big.Int, error)
	// UpdateDeposits moves the strategy's baseline to its current deposits and
	// reports any fee the strategy levies on its own gain.
	UpdateDeposits(aux []byte) ([]StrategyFee, error)
}

// BaselineRestorer is implemented by strategies that can put back the pending
// change consumed by UpdateDeposits, so a failed rebase can be retried with
// the same delta.
type BaselineRestorer interface {
	RestoreDepositChange(change *big.Int) error
}

// Reverter is implemented by strategies that can take back a deposit or a
// withdrawal of the current operation without their cap and floor checks, so
// a failed operation leaves nothing stranded in an earlier strategy.
type Reverter interface {
	RevertDeposit(amount *uint256.Int, aux []byte) error
	RevertWithdraw(amount *uint256.Int, aux []byte) error
}

// StrategyFee is an underlying amount a strategy wants paid to a recipient out
// of the reward it reported.
type StrategyFee struct {
	Recipient Account
	Amount    *uint256.Int
}

// MintListener is the hook of a notify-on-mint fee recipient.
type MintListener interface {
	OnSharesMinted(recipient Account, shares *uint256.Int)
}

// StrategyView is a point-in-time read of a strategy, taken once per operation.
type StrategyView struct {
	ID            string
	TotalDeposits *uint256.Int
	MaxDeposits   *uint256.Int
	MinDeposits   *uint256.Int
}

func ViewOf(strategy Strategy) StrategyView {
	return StrategyView{
		ID:            strategy.ID(),
		TotalDeposits: strategy.TotalDeposits(),
		MaxDeposits:   strategy.MaxDeposits(),
		MinDeposits:   strategy.MinDeposits(),
	}
}

// Headroom is how much more the strategy can take.
func (v StrategyView) Headroom() *uint256.Int {
	return saturatingSub(v.MaxDeposits, v.TotalDeposits)
}

// Drawable is how much can be withdrawn without crossing the floor.
func (v StrategyView) Drawable() *uint256.Int {
	return saturatingSub(v.TotalDeposits, v.MinDeposits)
}
