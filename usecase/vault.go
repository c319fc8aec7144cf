package usecase

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"vault/domain"
	"vault/domain/util"
	"vault/interface/exporter"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Journal receives a record of every successful vault operation.
type Journal interface {
	Record(record domain.Record) error
}

// VaultInteractor is the vault controller. It owns the state aggregate and the
// ordered strategy list; every operation runs under one lock, plans against a
// single read of the strategies and only swaps the new state in once every
// strategy call has succeeded.
type VaultInteractor struct {
	mu         sync.Mutex
	state      *domain.VaultState
	strategies []domain.Strategy
	listeners  map[domain.Account]domain.MintListener
	journal    Journal
}

func NewVaultInteractor(state *domain.VaultState, strategies []domain.Strategy, journal Journal) *VaultInteractor {
	if state == nil {
		state = domain.NewVaultState()
	}
	interactor := &VaultInteractor{
		state:      state,
		strategies: append([]domain.Strategy(nil), strategies...),
		listeners:  make(map[domain.Account]domain.MintListener),
		journal:    journal,
	}
	interactor.exportGauges()
	return interactor
}

type mintNotice struct {
	listener  domain.MintListener
	recipient domain.Account
	shares    *uint256.Int
}

//-------------------------------------------------------------------
// Deposit

func (interactor *VaultInteractor) Deposit(ctx context.Context, depositor domain.Account, amount *uint256.Int, aux [][]byte) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	plan, err := domain.PlanDeposit(interactor.state, interactor.views(), depositor, amount)
	if err != nil {
		return nil, interactor.fail("deposit", err)
	}

	next := interactor.state.Clone()
	if err := plan.Apply(next); err != nil {
		return nil, interactor.fail("deposit", err)
	}

	done := make([]domain.Allocation, 0, len(plan.Allocations))
	for _, allocation := range plan.Allocations {
		strategy := interactor.strategies[allocation.Index]
		accepted, err := strategy.Deposit(allocation.Amount, auxAt(aux, allocation.Index))
		switch {
		case err != nil:
			err = errors.Wrapf(err, "depositing into strategy %v", strategy.ID())
		case accepted == nil || accepted.Lt(allocation.Amount):
			err = errors.Wrapf(domain.ErrorInsufficientDepositRoom, "strategy %v accepted %v of %v", strategy.ID(), util.AmountString(accepted), allocation.Amount.Dec())
		case accepted.Gt(allocation.Amount):
			err = errors.Wrapf(domain.ErrorStrategyMismatch, "strategy %v accepted %v of %v", strategy.ID(), accepted.Dec(), allocation.Amount.Dec())
		}
		if err == nil {
			done = append(done, allocation)
			continue
		}
		if accepted != nil && !accepted.IsZero() {
			done = append(done, domain.Allocation{Index: allocation.Index, Amount: accepted})
		}
		if rollbackErr := interactor.unwindDeposits(done, aux); rollbackErr != nil {
			err = fmt.Errorf("%w: %w", rollbackErr, err)
		}
		return nil, interactor.fail("deposit", err)
	}

	interactor.state = next

	record := domain.NewRecord(domain.RecordKindDeposit)
	record.Account = depositor
	record.Amount = plan.Amount.Dec()
	record.Shares = plan.Shares.Dec()
	record.Allocations = interactor.recordAllocations(plan.Allocations)
	interactor.commit(&record, exporter.METRIC_DEPOSIT_COUNT)

	log.Printf("✅ deposit [account: %v] %v for %v, %v deployed", depositor, util.AmountString(plan.Amount), util.SharesString(plan.Shares), util.AmountString(plan.Deployed()))
	return &record, nil
}

// unwindDeposits takes back what strategies already accepted in a failed
// deposit. Strategies that cannot be restored are reported with
// ErrorRollbackFailed.
func (interactor *VaultInteractor) unwindDeposits(done []domain.Allocation, aux [][]byte) error {
	var failed []string
	for i := len(done) - 1; i >= 0; i-- {
		strategy := interactor.strategies[done[i].Index]
		amount, data := done[i].Amount, auxAt(aux, done[i].Index)

		var err error
		if reverter, ok := strategy.(domain.Reverter); ok {
			err = reverter.RevertDeposit(amount, data)
		} else {
			var withdrawn *uint256.Int
			withdrawn, err = strategy.Withdraw(amount, data)
			if err == nil && (withdrawn == nil || !withdrawn.Eq(amount)) {
				err = errors.Wrapf(domain.ErrorStrategyMismatch, "returned %v of %v", util.AmountString(withdrawn), amount.Dec())
			}
		}
		if err != nil {
			exporter.IncErrorCount()
			log.Errorf("🔴 unwinding deposit [strategy: %v] %v - %v", strategy.ID(), amount.Dec(), err.Error())
			failed = append(failed, strategy.ID())
		}
	}
	if len(failed) > 0 {
		return errors.Wrapf(domain.ErrorRollbackFailed, "strategies %v keep deposits the ledger does not book", failed)
	}
	return nil
}

//-------------------------------------------------------------------
// Withdraw

func (interactor *VaultInteractor) Withdraw(ctx context.Context, account domain.Account, recipient domain.Account, amount *uint256.Int, aux [][]byte) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	plan, err := domain.PlanWithdrawal(interactor.state, interactor.views(), account, recipient, amount)
	if err != nil {
		return nil, interactor.fail("withdraw", err)
	}

	next := interactor.state.Clone()
	if err := plan.Apply(next); err != nil {
		return nil, interactor.fail("withdraw", err)
	}

	done := make([]domain.Allocation, 0, len(plan.Allocations))
	for _, allocation := range plan.Allocations {
		strategy := interactor.strategies[allocation.Index]
		withdrawn, err := strategy.Withdraw(allocation.Amount, auxAt(aux, allocation.Index))
		switch {
		case err != nil:
			err = errors.Wrapf(err, "withdrawing from strategy %v", strategy.ID())
		case withdrawn == nil || withdrawn.Lt(allocation.Amount):
			err = errors.Wrapf(domain.ErrorInsufficientLiquidity, "strategy %v returned %v of %v", strategy.ID(), util.AmountString(withdrawn), allocation.Amount.Dec())
		case withdrawn.Gt(allocation.Amount):
			// The surplus is not in the plan, so it is handed back too.
			err = errors.Wrapf(domain.ErrorStrategyMismatch, "strategy %v returned %v of %v", strategy.ID(), withdrawn.Dec(), allocation.Amount.Dec())
		}
		if err == nil {
			done = append(done, allocation)
			continue
		}
		if withdrawn != nil && !withdrawn.IsZero() {
			done = append(done, domain.Allocation{Index: allocation.Index, Amount: withdrawn})
		}
		if rollbackErr := interactor.unwindWithdrawals(done, aux); rollbackErr != nil {
			err = fmt.Errorf("%w: %w", rollbackErr, err)
		}
		return nil, interactor.fail("withdraw", err)
	}

	interactor.state = next

	record := domain.NewRecord(domain.RecordKindWithdraw)
	record.Account = account
	record.Recipient = recipient
	record.Amount = plan.Amount.Dec()
	record.Shares = plan.Shares.Dec()
	record.Allocations = interactor.recordAllocations(plan.Allocations)
	interactor.commit(&record, exporter.METRIC_WITHDRAW_COUNT)

	log.Printf("✅ withdraw [account: %v, recipient: %v] %v for %v", account, recipient, util.AmountString(plan.Amount), util.SharesString(plan.Shares))
	return &record, nil
}

// unwindWithdrawals puts back what strategies already paid out in a failed
// withdrawal.
func (interactor *VaultInteractor) unwindWithdrawals(done []domain.Allocation, aux [][]byte) error {
	var failed []string
	for i := len(done) - 1; i >= 0; i-- {
		strategy := interactor.strategies[done[i].Index]
		amount, data := done[i].Amount, auxAt(aux, done[i].Index)

		var err error
		if reverter, ok := strategy.(domain.Reverter); ok {
			err = reverter.RevertWithdraw(amount, data)
		} else {
			var accepted *uint256.Int
			accepted, err = strategy.Deposit(amount, data)
			if err == nil && (accepted == nil || !accepted.Eq(amount)) {
				err = errors.Wrapf(domain.ErrorStrategyMismatch, "accepted %v of %v", util.AmountString(accepted), amount.Dec())
			}
		}
		if err != nil {
			exporter.IncErrorCount()
			log.Errorf("🔴 unwinding withdrawal [strategy: %v] %v - %v", strategy.ID(), amount.Dec(), err.Error())
			failed = append(failed, strategy.ID())
		}
	}
	if len(failed) > 0 {
		return errors.Wrapf(domain.ErrorRollbackFailed, "strategies %v miss withdrawals the ledger does not book", failed)
	}
	return nil
}

//-------------------------------------------------------------------
// Reconcile

// Reconcile is the rebase: it collects the deposit change of the given
// strategies, resyncs them and books the net gain or loss.
func (interactor *VaultInteractor) Reconcile(ctx context.Context, indices []int, aux []byte) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record, notices, err := interactor.reconcile(indices, aux)
	if err != nil {
		return nil, err
	}

	// Listeners run outside the lock so they may read the vault.
	for _, notice := range notices {
		notice.listener.OnSharesMinted(notice.recipient, notice.shares)
	}
	return record, nil
}

func (interactor *VaultInteractor) reconcile(indices []int, aux []byte) (*domain.Record, []mintNotice, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	if err := domain.ValidateStrategySet(indices, len(interactor.strategies)); err != nil {
		return nil, nil, interactor.fail("reconcile", err)
	}

	changes := make([]*big.Int, len(indices))
	for i, index := range indices {
		strategy := interactor.strategies[index]
		change, err := strategy.DepositChange()
		if err != nil {
			return nil, nil, interactor.fail("reconcile", errors.Wrapf(err, "reading deposit change of strategy %v", strategy.ID()))
		}
		changes[i] = change
	}

	var strategyFees []domain.StrategyFee
	for i, index := range indices {
		strategy := interactor.strategies[index]
		fees, err := strategy.UpdateDeposits(aux)
		if err != nil {
			interactor.restoreBaselines(indices[:i], changes[:i])
			return nil, nil, interactor.fail("reconcile", errors.Wrapf(err, "updating deposits of strategy %v", strategy.ID()))
		}
		strategyFees = append(strategyFees, fees...)
	}

	plan, err := domain.PlanRebase(interactor.state, indices, changes, strategyFees)
	if err != nil {
		interactor.restoreBaselines(indices, changes)
		return nil, nil, interactor.fail("reconcile", err)
	}

	next := interactor.state.Clone()
	applied, err := plan.Apply(next)
	if err != nil {
		interactor.restoreBaselines(indices, changes)
		return nil, nil, interactor.fail("reconcile", err)
	}
	if applied.Cmp(plan.NetChange) != 0 {
		log.Warnf("🟡 loss of %v exceeds total staked, %v applied", plan.NetChange, applied)
	}
	interactor.state = next

	record := domain.NewRecord(domain.RecordKindRebase)
	record.NetChange = applied.String()
	record.Amount = new(big.Int).Abs(applied).String()
	record.Shares = plan.FeeShares().Dec()
	for i, index := range indices {
		record.Allocations = append(record.Allocations, domain.RecordAllocation{
			Strategy: interactor.strategies[index].ID(),
			Amount:   changes[i].String(),
		})
	}

	notices := make([]mintNotice, 0, len(plan.Fees))
	for _, fee := range plan.Fees {
		record.Fees = append(record.Fees, domain.RecordFee{Recipient: fee.Recipient, Amount: fee.Amount.Dec(), Shares: fee.Shares.Dec()})
		if fee.Kind != domain.RecipientNotify {
			continue
		}
		if listener, ok := interactor.listeners[fee.Recipient]; ok {
			notices = append(notices, mintNotice{listener: listener, recipient: fee.Recipient, shares: fee.Shares.Clone()})
		}
	}
	interactor.commit(&record, exporter.METRIC_REBASE_COUNT)

	log.Printf("✅ rebase of %d strateg(ies): net change %v, %d fee mint(s), share price %v", len(indices), applied, len(plan.Fees), record.SharePrice)
	return &record, notices, nil
}

// restoreBaselines gives the already-updated strategies their pending change
// back so the next reconciliation sees the same delta.
func (interactor *VaultInteractor) restoreBaselines(indices []int, changes []*big.Int) {
	for i, index := range indices {
		strategy := interactor.strategies[index]
		restorer, ok := strategy.(domain.BaselineRestorer)
		if !ok {
			log.Warnf("🟡 strategy %v cannot restore its baseline, change %v is lost", strategy.ID(), changes[i])
			continue
		}
		if err := restorer.RestoreDepositChange(changes[i]); err != nil {
			exporter.IncErrorCount()
			log.Errorf("🔴 restoring baseline [strategy: %v] - %v", strategy.ID(), err.Error())
		}
	}
}

//-------------------------------------------------------------------
// Transfer

func (interactor *VaultInteractor) Transfer(ctx context.Context, from domain.Account, to domain.Account, shares *uint256.Int) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if shares == nil || shares.IsZero() {
		return nil, interactor.fail("transfer", domain.ErrorInvalidAmount)
	}

	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	next := interactor.state.Clone()
	if err := next.Ledger.Move(from, to, shares); err != nil {
		return nil, interactor.fail("transfer", err)
	}
	amount, err := next.Ledger.UnderlyingForShares(shares)
	if err != nil {
		return nil, interactor.fail("transfer", err)
	}
	interactor.state = next

	record := domain.NewRecord(domain.RecordKindTransfer)
	record.Account = from
	record.Recipient = to
	record.Amount = amount.Dec()
	record.Shares = shares.Dec()
	interactor.commit(&record, exporter.METRIC_TRANSFER_COUNT)

	log.Printf("✅ transfer [from: %v, to: %v] %v", from, to, util.SharesString(shares))
	return &record, nil
}

//-------------------------------------------------------------------
// Helpers

// views reads every strategy once; the result is the strategy snapshot an
// operation plans against.
func (interactor *VaultInteractor) views() []domain.StrategyView {
	views := make([]domain.StrategyView, len(interactor.strategies))
	for i, strategy := range interactor.strategies {
		views[i] = domain.ViewOf(strategy)
	}
	return views
}

func (interactor *VaultInteractor) recordAllocations(allocations []domain.Allocation) []domain.RecordAllocation {
	result := make([]domain.RecordAllocation, 0, len(allocations))
	for _, allocation := range allocations {
		result = append(result, domain.RecordAllocation{
			Strategy: interactor.strategies[allocation.Index].ID(),
			Amount:   allocation.Amount.Dec(),
		})
	}
	return result
}

func (interactor *VaultInteractor) commit(record *domain.Record, counter string) {
	record.SharePrice = interactor.state.Ledger.SharePrice().String()
	exporter.IncCounter(counter)
	interactor.exportGauges()

	if interactor.journal == nil {
		return
	}
	// The ledger is already committed; a journal failure is reported, not rolled back.
	if err := interactor.journal.Record(*record); err != nil {
		exporter.IncErrorCount()
		log.Errorf("🔴 journaling %v [id: %v] - %v", record.Kind, record.ID, err.Error())
	}
}

func (interactor *VaultInteractor) fail(operation string, err error) error {
	exporter.IncErrorCount()
	log.Errorf("🔴 %v - %v", operation, err.Error())
	return err
}

func (interactor *VaultInteractor) exportGauges() {
	ledger := interactor.state.Ledger
	exporter.SetGauge(exporter.METRIC_TOTAL_STAKED, toFloat(ledger.TotalStaked()))
	exporter.SetGauge(exporter.METRIC_TOTAL_SHARES, toFloat(ledger.TotalShares()))
	exporter.SetGauge(exporter.METRIC_BUFFERED, toFloat(interactor.state.Buffered))
	exporter.SetGauge(exporter.METRIC_SHARE_PRICE, ledger.SharePrice().InexactFloat64())
}

func toFloat(amount *uint256.Int) float64 {
	return decimal.NewFromBigInt(amount.ToBig(), 0).InexactFloat64()
}

func auxAt(aux [][]byte, index int) []byte {
	if index < len(aux) {
		return aux[index]
	}
	return nil
}
