package usecase

import (
	"context"
	"fmt"

	"vault/domain"
	"vault/interface/exporter"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// VaultStore keeps the keeper's vault in step with other writers.
type VaultStore interface {
	Reload(vault *VaultInteractor) error
	Save(vault *VaultInteractor) error
}

// KeeperInteractor reconciles every strategy on a cron schedule.
type KeeperInteractor struct {
	cron  *cron.Cron
	vault *VaultInteractor
	store VaultStore
}

// NewKeeperInteractor builds a keeper. With a store, every run starts from the
// latest saved vault and saves its result; without one it works in memory.
func NewKeeperInteractor(vault *VaultInteractor, store VaultStore) *KeeperInteractor {
	return &KeeperInteractor{
		cron:  cron.New(cron.WithSeconds()),
		vault: vault,
		store: store,
	}
}

func (interactor *KeeperInteractor) Schedule(spec string) error {
	if _, err := interactor.cron.AddFunc(spec, interactor.run); err != nil {
		return fmt.Errorf("register rebase task: %w", err)
	}
	return nil
}

func (interactor *KeeperInteractor) Start() {
	interactor.cron.Start()
	log.Println("🔵 keeper started")
}

// Stop waits for a running rebase to finish.
func (interactor *KeeperInteractor) Stop() {
	<-interactor.cron.Stop().Done()
	log.Println("🔵 keeper stopped")
}

func (interactor *KeeperInteractor) run() {
	_, err := interactor.RunOnce(context.Background())
	if errors.Is(err, domain.ErrorSnapshotConflict) {
		log.Warnf("🟡 scheduled rebase lost to another writer, retrying next run")
		return
	}
	if err != nil {
		log.Errorf("🔴 scheduled rebase - %v", err.Error())
	}
}

// RunOnce reloads the saved vault, reconciles all managed strategies and saves
// the result. A vault without strategies has nothing to reconcile and is
// skipped.
func (interactor *KeeperInteractor) RunOnce(ctx context.Context) (*domain.Record, error) {
	if interactor.store != nil {
		if err := interactor.store.Reload(interactor.vault); err != nil {
			exporter.IncErrorCount()
			return nil, err
		}
	}

	indices := interactor.vault.AllIndices()
	if len(indices) == 0 {
		log.Println("🔵 no strategy to reconcile")
		return nil, nil
	}

	record, err := interactor.vault.Reconcile(ctx, indices, nil)
	if err != nil {
		return nil, err
	}

	if interactor.store != nil {
		if err := interactor.store.Save(interactor.vault); err != nil {
			return nil, err
		}
	}
	return record, nil
}
