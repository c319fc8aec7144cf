package cmd

import (
	"fmt"

	"vault/domain"
	"vault/infrastructure/dbhandler"
	"vault/infrastructure/pool"
	"vault/interface/repository"
	"vault/usecase"

	log "github.com/sirupsen/logrus"
)

func defaultDependencyInject() error {
	var err error
	dbHandler, err = dbhandler.Open(domain.GetDbUri())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if err = dbHandler.Migrate(repository.Schema); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	memoRepository := repository.NewMemoRepository(dbHandler)
	recordRepository := repository.NewRecordRepository(dbHandler)

	memoInteractor = usecase.NewMemoInteractor(memoRepository)
	journalInteractor = usecase.NewJournalInteractor(recordRepository)
	storeInteractor = usecase.NewStoreInteractor(memoInteractor, journalInteractor, buildVault)

	state, strategies, err := storeInteractor.Load()
	if err != nil {
		return err
	}

	vaultInteractor = usecase.NewVaultInteractor(state, strategies, storeInteractor.Buffer())
	keeperInteractor = usecase.NewKeeperInteractor(vaultInteractor, storeInteractor)
	return nil
}

// buildVault brings back the saved vault, or builds a fresh one from the
// configured fees, buffer and strategies on first run.
func buildVault(snapshot *domain.VaultSnapshot) (*domain.VaultState, []domain.Strategy, error) {
	if snapshot == nil {
		return newVault()
	}

	state, err := snapshot.VaultState()
	if err != nil {
		return nil, nil, err
	}
	strategies, err := pool.RestoreAll(snapshot)
	if err != nil {
		return nil, nil, err
	}

	log.Debugf("🔵 vault restored with %d strateg(ies)", len(strategies))
	return state, strategies, nil
}

func newVault() (*domain.VaultState, []domain.Strategy, error) {
	state := domain.NewVaultState()
	state.Fees = domain.GetFees()
	if err := state.SetBufferBasisPoints(domain.GetBufferBasisPoints()); err != nil {
		return nil, nil, err
	}

	var strategies []domain.Strategy
	for _, sc := range domain.GetStrategies() {
		p, err := pool.FromConfig(sc)
		if err != nil {
			return nil, nil, err
		}
		strategies = append(strategies, p)
	}

	log.Printf("🔵 new vault with %d strateg(ies) and %d fee(s)", len(strategies), len(state.Fees))
	return state, strategies, nil
}

// withVault runs a command against the saved vault and saves it afterwards.
// The save fails with domain.ErrorSnapshotConflict when another process saved
// the vault in between; nothing of the command is kept then.
func withVault(task func() error) error {
	if err := defaultDependencyInject(); err != nil {
		return err
	}
	defer closeDependencies()

	if err := task(); err != nil {
		return err
	}
	if err := storeInteractor.Save(vaultInteractor); err != nil {
		return fmt.Errorf("saving vault: %w", err)
	}
	return nil
}

func closeDependencies() {
	if dbHandler == nil {
		return
	}
	if err := dbHandler.Close(); err != nil {
		log.Errorf("🔴 closing database - %v", err.Error())
	}
}

var dbHandler *dbhandler.DBHandler
var memoInteractor *usecase.MemoInteractor
var journalInteractor *usecase.JournalInteractor
var storeInteractor *usecase.StoreInteractor
var vaultInteractor *usecase.VaultInteractor
var keeperInteractor *usecase.KeeperInteractor
