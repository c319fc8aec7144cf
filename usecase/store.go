package usecase

import (
	"sync"

	"vault/domain"
	"vault/interface/exporter"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// VaultBuilder turns a saved snapshot back into a vault. A nil snapshot means
// nothing was saved yet and a fresh vault is wanted.
type VaultBuilder func(snapshot *domain.VaultSnapshot) (*domain.VaultState, []domain.Strategy, error)

// RecordBuffer is the Journal of a vault whose records must wait until the
// vault they describe is saved.
type RecordBuffer struct {
	mu      sync.Mutex
	records []domain.Record
}

func (buffer *RecordBuffer) Record(record domain.Record) error {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	buffer.records = append(buffer.records, record)
	return nil
}

// Drain returns the held records and empties the buffer.
func (buffer *RecordBuffer) Drain() []domain.Record {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	records := buffer.records
	buffer.records = nil
	return records
}

// StoreInteractor loads and saves a vault with optimistic versioning. A save
// only lands over the version that was loaded; when another writer got there
// first it fails with domain.ErrorSnapshotConflict and the records of the
// lost operations are dropped. Records reach the journal only once their vault
// is saved.
type StoreInteractor struct {
	mu      sync.Mutex
	memo    *MemoInteractor
	journal Journal
	build   VaultBuilder
	buffer  *RecordBuffer
	version int64
}

func NewStoreInteractor(memo *MemoInteractor, journal Journal, build VaultBuilder) *StoreInteractor {
	return &StoreInteractor{
		memo:    memo,
		journal: journal,
		build:   build,
		buffer:  &RecordBuffer{},
	}
}

// Buffer is the journal a vault managed by this store must record into.
func (interactor *StoreInteractor) Buffer() *RecordBuffer {
	return interactor.buffer
}

// Load reads the latest saved vault and remembers its version.
func (interactor *StoreInteractor) Load() (*domain.VaultState, []domain.Strategy, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.load()
}

func (interactor *StoreInteractor) load() (*domain.VaultState, []domain.Strategy, error) {
	snapshot, version, err := interactor.memo.GetVaultSnapshot()
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading vault")
	}
	state, strategies, err := interactor.build(snapshot)
	if err != nil {
		return nil, nil, errors.Wrap(err, "restoring vault")
	}
	interactor.version = version
	interactor.buffer.Drain()
	return state, strategies, nil
}

// Reload replaces the vault's state and strategies with the latest saved ones.
// Records of unsaved operations are dropped with the state they described.
func (interactor *StoreInteractor) Reload(vault *VaultInteractor) error {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	state, strategies, err := interactor.load()
	if err != nil {
		return err
	}
	vault.Restore(state, strategies)
	log.Debugf("🔵 vault reloaded at v%d", interactor.version)
	return nil
}

// Save writes the vault over the loaded version, then journals the records of
// the operations it contains.
func (interactor *StoreInteractor) Save(vault *VaultInteractor) error {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	version, err := interactor.memo.SetVaultSnapshot(vault.Snapshot(), interactor.version)
	if err != nil {
		exporter.IncErrorCount()
		if dropped := interactor.buffer.Drain(); len(dropped) > 0 {
			log.Warnf("🟡 %d record(s) dropped with the unsaved vault", len(dropped))
		}
		return err
	}
	interactor.version = version

	records := interactor.buffer.Drain()
	if interactor.journal == nil {
		return nil
	}
	for _, record := range records {
		if err := interactor.journal.Record(record); err != nil {
			exporter.IncErrorCount()
			log.Errorf("🔴 journaling %v [id: %v] - %v", record.Kind, record.ID, err.Error())
		}
	}
	return nil
}
