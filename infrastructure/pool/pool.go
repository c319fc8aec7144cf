package pool

import (
	"fmt"
	"math/big"
	"sync"

	"vault/domain"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrorOverCapacity = fmt.Errorf("deposit exceeds pool capacity")
	ErrorBelowFloor   = fmt.Errorf("withdrawal crosses pool floor")
)

// Pool is the reference strategy: an in-memory capital sink bounded by a
// maximum and a floor. Yield and loss are fed in with Accrue.
type Pool struct {
	mu sync.Mutex

	id          string
	maxDeposits *uint256.Int
	minDeposits *uint256.Int
	deposits    *uint256.Int
	// baseline is signed: withdrawing unreconciled gain can take it below zero.
	baseline     *big.Int
	feeBps       uint32
	feeRecipient domain.Account
}

func New(id string, maxDeposits, minDeposits *uint256.Int) *Pool {
	return &Pool{
		id:          id,
		maxDeposits: maxDeposits.Clone(),
		minDeposits: minDeposits.Clone(),
		deposits:    new(uint256.Int),
		baseline:    new(big.Int),
	}
}

// WithFee makes the pool levy bps of every positive change for recipient.
func (p *Pool) WithFee(bps uint32, recipient domain.Account) *Pool {
	p.feeBps = bps
	p.feeRecipient = recipient
	return p
}

func FromConfig(sc domain.StrategyConfig) (*Pool, error) {
	maxDeposits, err := domain.ParseAmount(sc.MaxDeposits)
	if err != nil {
		return nil, errors.Wrapf(err, "strategy %v max_deposits", sc.ID)
	}
	minDeposits, err := domain.ParseAmount(sc.MinDeposits)
	if err != nil {
		return nil, errors.Wrapf(err, "strategy %v min_deposits", sc.ID)
	}

	p := New(sc.ID, maxDeposits, minDeposits)
	if sc.FeeBps > 0 {
		recipient, err := domain.ParseAccount(sc.FeeRecipient)
		if err != nil {
			return nil, errors.Wrapf(err, "strategy %v fee_recipient", sc.ID)
		}
		p.WithFee(sc.FeeBps, recipient)
	}
	return p, nil
}

func Restore(state domain.PoolState) (*Pool, error) {
	p := &Pool{id: state.ID, feeBps: state.FeeBps, feeRecipient: state.FeeRecipient}

	var err error
	if p.maxDeposits, err = domain.ParseAmount(state.MaxDeposits); err != nil {
		return nil, err
	}
	if p.minDeposits, err = domain.ParseAmount(state.MinDeposits); err != nil {
		return nil, err
	}
	if p.deposits, err = domain.ParseAmount(state.Deposits); err != nil {
		return nil, err
	}
	if p.baseline, err = domain.ParseSignedAmount(state.Baseline); err != nil {
		return nil, err
	}
	return p, nil
}

// RestoreAll brings back the pools of a snapshot in the saved strategy order.
func RestoreAll(snapshot *domain.VaultSnapshot) ([]domain.Strategy, error) {
	states := make(map[string]domain.PoolState, len(snapshot.Pools))
	for _, state := range snapshot.Pools {
		states[state.ID] = state
	}

	strategies := make([]domain.Strategy, 0, len(snapshot.Strategies))
	for _, id := range snapshot.Strategies {
		state, ok := states[id]
		if !ok {
			return nil, errors.Errorf("no saved state for strategy %v", id)
		}
		p, err := Restore(state)
		if err != nil {
			return nil, errors.Wrapf(err, "restoring strategy %v", id)
		}
		strategies = append(strategies, p)
	}
	return strategies, nil
}

func (p *Pool) State() domain.PoolState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return domain.PoolState{
		ID:           p.id,
		MaxDeposits:  p.maxDeposits.Dec(),
		MinDeposits:  p.minDeposits.Dec(),
		Deposits:     p.deposits.Dec(),
		Baseline:     p.baseline.String(),
		FeeBps:       p.feeBps,
		FeeRecipient: p.feeRecipient,
	}
}

func (p *Pool) ID() string {
	return p.id
}

func (p *Pool) TotalDeposits() *uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deposits.Clone()
}

func (p *Pool) MaxDeposits() *uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxDeposits.Clone()
}

func (p *Pool) MinDeposits() *uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minDeposits.Clone()
}

func (p *Pool) Deposit(amount *uint256.Int, aux []byte) (*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := new(uint256.Int).Add(p.deposits, amount)
	if next.Lt(p.deposits) || next.Gt(p.maxDeposits) {
		return nil, errors.Wrapf(ErrorOverCapacity, "pool %v holds %v of %v, offered %v", p.id, p.deposits.Dec(), p.maxDeposits.Dec(), amount.Dec())
	}

	p.add(next, amount)
	return amount.Clone(), nil
}

func (p *Pool) Withdraw(amount *uint256.Int, aux []byte) (*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deposits.Lt(amount) || new(uint256.Int).Sub(p.deposits, amount).Lt(p.minDeposits) {
		return nil, errors.Wrapf(ErrorBelowFloor, "pool %v holds %v with floor %v, asked %v", p.id, p.deposits.Dec(), p.minDeposits.Dec(), amount.Dec())
	}

	p.sub(amount)
	return amount.Clone(), nil
}

// RevertDeposit takes back a deposit of the current operation, ignoring the floor.
func (p *Pool) RevertDeposit(amount *uint256.Int, aux []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deposits.Lt(amount) {
		return errors.Wrapf(domain.ErrorInvalidAmount, "pool %v holds %v, cannot revert %v", p.id, p.deposits.Dec(), amount.Dec())
	}
	p.sub(amount)
	return nil
}

// RevertWithdraw puts back a withdrawal of the current operation, ignoring the cap.
func (p *Pool) RevertWithdraw(amount *uint256.Int, aux []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, overflow := new(uint256.Int).AddOverflow(p.deposits, amount)
	if overflow {
		return errors.Wrapf(domain.ErrorInvalidAmount, "pool %v cannot take back %v", p.id, amount.Dec())
	}
	p.add(next, amount)
	return nil
}

// add and sub move principal, which is not yield, so the baseline moves along.
func (p *Pool) add(next *uint256.Int, amount *uint256.Int) {
	p.deposits = next
	p.baseline = new(big.Int).Add(p.baseline, amount.ToBig())
}

func (p *Pool) sub(amount *uint256.Int) {
	p.deposits = new(uint256.Int).Sub(p.deposits, amount)
	p.baseline = new(big.Int).Sub(p.baseline, amount.ToBig())
}

func (p *Pool) DepositChange() (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Sub(p.deposits.ToBig(), p.baseline), nil
}

func (p *Pool) UpdateDeposits(aux []byte) ([]domain.StrategyFee, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var fees []domain.StrategyFee
	gain := new(big.Int).Sub(p.deposits.ToBig(), p.baseline)
	if p.feeBps > 0 && p.feeRecipient != "" && gain.Sign() > 0 {
		amount := gain.Mul(gain, big.NewInt(int64(p.feeBps)))
		amount.Quo(amount, big.NewInt(domain.BasisPointsDenominator))
		if fee, overflow := uint256.FromBig(amount); !overflow && !fee.IsZero() {
			fees = append(fees, domain.StrategyFee{Recipient: p.feeRecipient, Amount: fee})
		}
	}

	p.baseline = p.deposits.ToBig()
	return fees, nil
}

func (p *Pool) RestoreDepositChange(change *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.baseline = new(big.Int).Sub(p.deposits.ToBig(), change)
	return nil
}

// Accrue books a gain (positive) or loss (negative) on the pool's deposits.
// The change becomes visible to the vault at its next rebase.
func (p *Pool) Accrue(delta *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	value := new(big.Int).Add(p.deposits.ToBig(), delta)
	next, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return errors.Wrapf(domain.ErrorInvalidAmount, "pool %v cannot absorb %v", p.id, delta)
	}
	p.deposits = next
	return nil
}
