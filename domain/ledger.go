package domain

import (
	"math/big"
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// SharePricePrecision is the number of decimal places kept by SharePrice.
const SharePricePrecision = 18

// ShareLedger keeps account share balances together with the total underlying
// value they claim. All share/underlying conversions live here so the rounding
// policy is defined once: every conversion rounds in favour of the pool.
type ShareLedger struct {
	balances    map[Account]*uint256.Int
	totalShares *uint256.Int
	totalStaked *uint256.Int
}

func NewShareLedger() *ShareLedger {
	return &ShareLedger{
		balances:    make(map[Account]*uint256.Int),
		totalShares: new(uint256.Int),
		totalStaked: new(uint256.Int),
	}
}

func (l *ShareLedger) Clone() *ShareLedger {
	clone := &ShareLedger{
		balances:    make(map[Account]*uint256.Int, len(l.balances)),
		totalShares: l.totalShares.Clone(),
		totalStaked: l.totalStaked.Clone(),
	}
	for account, balance := range l.balances {
		clone.balances[account] = balance.Clone()
	}
	return clone
}

func (l *ShareLedger) TotalShares() *uint256.Int {
	return l.totalShares.Clone()
}

func (l *ShareLedger) TotalStaked() *uint256.Int {
	return l.totalStaked.Clone()
}

func (l *ShareLedger) BalanceOf(account Account) *uint256.Int {
	if balance, ok := l.balances[account]; ok {
		return balance.Clone()
	}
	return new(uint256.Int)
}

// Accounts returns the holders with a non-zero balance, sorted.
func (l *ShareLedger) Accounts() []Account {
	accounts := make([]Account, 0, len(l.balances))
	for account := range l.balances {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	return accounts
}

// SharesForUnderlying converts an underlying amount to shares, rounding down.
func (l *ShareLedger) SharesForUnderlying(amount *uint256.Int) (*uint256.Int, error) {
	if l.totalShares.IsZero() {
		return amount.Clone(), nil
	}
	if l.totalStaked.IsZero() {
		// Outstanding shares with nothing behind them: any price would either
		// hand the deposit to existing holders or mint without bound.
		return nil, errors.Wrap(ErrorInvalidAmount, "vault has shares but no underlying")
	}

	shares, overflow := new(uint256.Int).MulDivOverflow(amount, l.totalShares, l.totalStaked)
	if overflow {
		return nil, errors.Wrapf(ErrorInvalidAmount, "share conversion of %v overflows", amount.Dec())
	}
	return shares, nil
}

// SharesForUnderlyingUp is SharesForUnderlying rounded up. It sizes burns so a
// withdrawing account never gives back fewer shares than its payout is worth.
func (l *ShareLedger) SharesForUnderlyingUp(amount *uint256.Int) (*uint256.Int, error) {
	shares, err := l.SharesForUnderlying(amount)
	if err != nil || l.totalShares.IsZero() {
		return shares, err
	}

	if !new(uint256.Int).MulMod(amount, l.totalShares, l.totalStaked).IsZero() {
		if _, overflow := shares.AddOverflow(shares, uint256.NewInt(1)); overflow {
			return nil, errors.Wrapf(ErrorInvalidAmount, "share conversion of %v overflows", amount.Dec())
		}
	}
	return shares, nil
}

// UnderlyingForShares converts shares to underlying, rounding down.
func (l *ShareLedger) UnderlyingForShares(shares *uint256.Int) (*uint256.Int, error) {
	if l.totalShares.IsZero() {
		return shares.Clone(), nil
	}

	amount, overflow := new(uint256.Int).MulDivOverflow(shares, l.totalStaked, l.totalShares)
	if overflow {
		return nil, errors.Wrapf(ErrorInvalidAmount, "underlying conversion of %v overflows", shares.Dec())
	}
	return amount, nil
}

// SharePrice is totalStaked / totalShares, or one for an empty ledger.
func (l *ShareLedger) SharePrice() decimal.Decimal {
	if l.totalShares.IsZero() {
		return decimal.NewFromInt(1)
	}
	staked := decimal.NewFromBigInt(l.totalStaked.ToBig(), 0)
	shares := decimal.NewFromBigInt(l.totalShares.ToBig(), 0)
	return staked.DivRound(shares, SharePricePrecision)
}

func (l *ShareLedger) Mint(account Account, shares *uint256.Int) error {
	if account == "" {
		return ErrorInvalidAccount
	}
	if shares.IsZero() {
		return nil
	}

	total, overflow := new(uint256.Int).AddOverflow(l.totalShares, shares)
	if overflow {
		return errors.Wrap(ErrorInvalidAmount, "total shares overflow")
	}
	balance := l.BalanceOf(account)
	balance.Add(balance, shares)

	l.balances[account] = balance
	l.totalShares = total
	return nil
}

func (l *ShareLedger) Burn(account Account, shares *uint256.Int) error {
	balance := l.BalanceOf(account)
	if balance.Lt(shares) {
		return errors.Wrapf(ErrorInsufficientBalance, "%v holds %v shares, %v required", account, balance.Dec(), shares.Dec())
	}
	if shares.IsZero() {
		return nil
	}

	l.setBalance(account, balance.Sub(balance, shares))
	l.totalShares = new(uint256.Int).Sub(l.totalShares, shares)
	return nil
}

func (l *ShareLedger) Move(from Account, to Account, shares *uint256.Int) error {
	if to == "" {
		return ErrorInvalidAccount
	}
	balance := l.BalanceOf(from)
	if balance.Lt(shares) {
		return errors.Wrapf(ErrorInsufficientBalance, "%v holds %v shares, %v required", from, balance.Dec(), shares.Dec())
	}
	if shares.IsZero() || from == to {
		return nil
	}

	l.setBalance(from, balance.Sub(balance, shares))
	target := l.BalanceOf(to)
	l.setBalance(to, target.Add(target, shares))
	return nil
}

func (l *ShareLedger) AddStaked(amount *uint256.Int) error {
	total, overflow := new(uint256.Int).AddOverflow(l.totalStaked, amount)
	if overflow {
		return errors.Wrap(ErrorInvalidAmount, "total staked overflow")
	}
	l.totalStaked = total
	return nil
}

func (l *ShareLedger) SubStaked(amount *uint256.Int) error {
	if l.totalStaked.Lt(amount) {
		return errors.Wrapf(ErrorInsufficientLiquidity, "total staked %v is below %v", l.totalStaked.Dec(), amount.Dec())
	}
	l.totalStaked = new(uint256.Int).Sub(l.totalStaked, amount)
	return nil
}

// ApplyChange adds a signed delta to totalStaked and returns the delta that was
// actually applied. A loss larger than totalStaked empties it.
func (l *ShareLedger) ApplyChange(delta *big.Int) (*big.Int, error) {
	if delta.Sign() >= 0 {
		amount, overflow := uint256.FromBig(delta)
		if overflow {
			return nil, errors.Wrap(ErrorInvalidAmount, "rebase gain overflow")
		}
		if err := l.AddStaked(amount); err != nil {
			return nil, err
		}
		return new(big.Int).Set(delta), nil
	}

	loss, overflow := uint256.FromBig(new(big.Int).Neg(delta))
	if overflow || loss.Gt(l.totalStaked) {
		loss = l.totalStaked.Clone()
	}
	l.totalStaked = new(uint256.Int).Sub(l.totalStaked, loss)
	return new(big.Int).Neg(loss.ToBig()), nil
}

func (l *ShareLedger) setBalance(account Account, balance *uint256.Int) {
	if balance.IsZero() {
		delete(l.balances, account)
		return
	}
	l.balances[account] = balance
}

// LedgerState is the serialisable form of a ShareLedger.
type LedgerState struct {
	TotalShares string            `json:"total_shares" yaml:"total_shares"`
	TotalStaked string            `json:"total_staked" yaml:"total_staked"`
	Balances    map[string]string `json:"balances" yaml:"balances"`
}

func (l *ShareLedger) State() LedgerState {
	state := LedgerState{
		TotalShares: l.totalShares.Dec(),
		TotalStaked: l.totalStaked.Dec(),
		Balances:    make(map[string]string, len(l.balances)),
	}
	for account, balance := range l.balances {
		state.Balances[string(account)] = balance.Dec()
	}
	return state
}

// LedgerFromState rebuilds a ledger and checks that balances add up to the
// recorded total.
func LedgerFromState(state LedgerState) (*ShareLedger, error) {
	ledger := NewShareLedger()

	var err error
	if ledger.totalStaked, err = ParseAmount(state.TotalStaked); err != nil {
		return nil, errors.Wrap(err, "total staked")
	}
	totalShares, err := ParseAmount(state.TotalShares)
	if err != nil {
		return nil, errors.Wrap(err, "total shares")
	}

	for account, value := range state.Balances {
		balance, err := ParseAmount(value)
		if err != nil {
			return nil, errors.Wrapf(err, "balance of %v", account)
		}
		if err := ledger.Mint(Account(account), balance); err != nil {
			return nil, err
		}
	}

	if !ledger.totalShares.Eq(totalShares) {
		return nil, errors.Wrapf(ErrorInvalidAmount, "balances sum to %v shares, state records %v", ledger.totalShares.Dec(), totalShares.Dec())
	}
	return ledger, nil
}
