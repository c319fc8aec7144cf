package usecase

import (
	"vault/domain"
	"vault/interface/exporter"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

//-------------------------------------------------------------------
// Strategy list management

func (interactor *VaultInteractor) AddStrategy(strategy domain.Strategy) error {
	if strategy == nil {
		return interactor.fail("adding strategy", errors.Wrap(domain.ErrorInvalidStrategySet, "nil strategy"))
	}

	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	for _, existing := range interactor.strategies {
		if existing.ID() == strategy.ID() {
			return interactor.fail("adding strategy", errors.Wrapf(domain.ErrorAlreadyAdded, "strategy %v", strategy.ID()))
		}
	}

	interactor.strategies = append(interactor.strategies, strategy)
	log.Printf("🔵 strategy %v added at index %d", strategy.ID(), len(interactor.strategies)-1)
	return nil
}

func (interactor *VaultInteractor) RemoveStrategy(index int) error {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	if index < 0 || index >= len(interactor.strategies) {
		return interactor.fail("removing strategy", errors.Wrapf(domain.ErrorInvalidStrategySet, "index %d is not managed", index))
	}
	strategy := interactor.strategies[index]
	if deposits := strategy.TotalDeposits(); !deposits.IsZero() {
		return interactor.fail("removing strategy", errors.Wrapf(domain.ErrorStrategyNotEmpty, "strategy %v holds %v", strategy.ID(), deposits.Dec()))
	}

	strategies := make([]domain.Strategy, 0, len(interactor.strategies)-1)
	strategies = append(strategies, interactor.strategies[:index]...)
	strategies = append(strategies, interactor.strategies[index+1:]...)
	interactor.strategies = strategies

	log.Printf("🔵 strategy %v removed", strategy.ID())
	return nil
}

// ReorderStrategies sets the new priority order; order[i] is the current index
// of the strategy that moves to position i.
func (interactor *VaultInteractor) ReorderStrategies(order []int) error {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	if err := domain.ValidateOrder(order, len(interactor.strategies)); err != nil {
		return interactor.fail("reordering strategies", err)
	}

	strategies := make([]domain.Strategy, len(order))
	for i, index := range order {
		strategies[i] = interactor.strategies[index]
	}
	interactor.strategies = strategies

	log.Printf("🔵 strategies reordered %v", order)
	return nil
}

//-------------------------------------------------------------------
// Administrative switches

func (interactor *VaultInteractor) SetFeeTable(fees domain.FeeTable) error {
	if err := fees.Validate(); err != nil {
		return interactor.fail("setting fees", err)
	}

	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	interactor.state.Fees = fees.Clone()
	return nil
}

func (interactor *VaultInteractor) SetDepositsDisabled(disabled bool) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	interactor.state.DepositsDisabled = disabled
}

func (interactor *VaultInteractor) SetWithdrawalsDisabled(disabled bool) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	interactor.state.WithdrawalsDisabled = disabled
}

func (interactor *VaultInteractor) SetBufferBasisPoints(bps uint32) error {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	if err := interactor.state.SetBufferBasisPoints(bps); err != nil {
		return interactor.fail("setting buffer", err)
	}
	return nil
}

// RegisterMintListener attaches the hook of a notify-on-mint fee recipient.
func (interactor *VaultInteractor) RegisterMintListener(recipient domain.Account, listener domain.MintListener) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	if listener == nil {
		delete(interactor.listeners, recipient)
		return
	}
	interactor.listeners[recipient] = listener
}

//-------------------------------------------------------------------
// Views

func (interactor *VaultInteractor) SharePrice() decimal.Decimal {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.Ledger.SharePrice()
}

func (interactor *VaultInteractor) TotalStaked() *uint256.Int {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.Ledger.TotalStaked()
}

func (interactor *VaultInteractor) TotalShares() *uint256.Int {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.Ledger.TotalShares()
}

func (interactor *VaultInteractor) BalanceOf(account domain.Account) *uint256.Int {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.Ledger.BalanceOf(account)
}

// UnderlyingOf is the underlying value of the account's shares.
func (interactor *VaultInteractor) UnderlyingOf(account domain.Account) (*uint256.Int, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	ledger := interactor.state.Ledger
	return ledger.UnderlyingForShares(ledger.BalanceOf(account))
}

func (interactor *VaultInteractor) SharesForUnderlying(amount *uint256.Int) (*uint256.Int, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.Ledger.SharesForUnderlying(amount)
}

func (interactor *VaultInteractor) UnderlyingForShares(shares *uint256.Int) (*uint256.Int, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.Ledger.UnderlyingForShares(shares)
}

func (interactor *VaultInteractor) Accounts() []domain.Account {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.Ledger.Accounts()
}

func (interactor *VaultInteractor) Buffered() *uint256.Int {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.Buffered.Clone()
}

func (interactor *VaultInteractor) BufferTarget() *uint256.Int {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.BufferTarget()
}

// MaxDeposits is the buffer target plus the headroom left in every strategy.
func (interactor *VaultInteractor) MaxDeposits() *uint256.Int {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return maxDeposits(interactor.state, interactor.views())
}

// MinDeposits is the sum of every strategy's floor.
func (interactor *VaultInteractor) MinDeposits() *uint256.Int {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return minDeposits(interactor.views())
}

func maxDeposits(state *domain.VaultState, views []domain.StrategyView) *uint256.Int {
	total := state.BufferTarget()
	for _, view := range views {
		total.Add(total, view.Headroom())
	}
	return total
}

func minDeposits(views []domain.StrategyView) *uint256.Int {
	total := new(uint256.Int)
	for _, view := range views {
		total.Add(total, view.MinDeposits)
	}
	return total
}

func (interactor *VaultInteractor) Strategies() []domain.StrategyView {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.views()
}

// StrategyByID returns the managed strategy with the given ID, if any.
func (interactor *VaultInteractor) StrategyByID(id string) (domain.Strategy, int, bool) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	for i, strategy := range interactor.strategies {
		if strategy.ID() == id {
			return strategy, i, true
		}
	}
	return nil, -1, false
}

func (interactor *VaultInteractor) Fees() domain.FeeTable {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.Fees.Clone()
}

func (interactor *VaultInteractor) DepositsDisabled() bool {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.DepositsDisabled
}

func (interactor *VaultInteractor) WithdrawalsDisabled() bool {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.state.WithdrawalsDisabled
}

// AllIndices lists every managed strategy index, the set a keeper reconciles.
func (interactor *VaultInteractor) AllIndices() []int {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	indices := make([]int, len(interactor.strategies))
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// Restore swaps in a state and strategy list read back from storage. Mint
// listeners stay registered.
func (interactor *VaultInteractor) Restore(state *domain.VaultState, strategies []domain.Strategy) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	if state == nil {
		state = domain.NewVaultState()
	}
	interactor.state = state
	interactor.strategies = append([]domain.Strategy(nil), strategies...)
	interactor.exportGauges()
}

// PoolStater is implemented by strategies whose state can be saved with the vault.
type PoolStater interface {
	State() domain.PoolState
}

// Snapshot captures the vault and the state of every strategy that can be saved.
func (interactor *VaultInteractor) Snapshot() *domain.VaultSnapshot {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	snapshot := domain.SnapshotOf(interactor.state)
	for _, strategy := range interactor.strategies {
		snapshot.Strategies = append(snapshot.Strategies, strategy.ID())
		if stater, ok := strategy.(PoolStater); ok {
			snapshot.Pools = append(snapshot.Pools, stater.State())
		} else {
			exporter.IncErrorCount()
			log.Warnf("🟡 strategy %v state is not saved with the vault", strategy.ID())
		}
	}
	return snapshot
}
