package usecase

import (
	"vault/domain"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MemoRepository is the key/value store the vault snapshot is kept in. Save
// only succeeds over the stored version it is given.
type MemoRepository interface {
	Find(key string) (*domain.Memo, error)
	Save(key string, memo domain.Memorable, version int64) (*domain.Memo, error)
}

type MemoInteractor struct {
	memoRepository MemoRepository
}

func NewMemoInteractor(memoRepository MemoRepository) *MemoInteractor {
	interactor := &MemoInteractor{
		memoRepository: memoRepository,
	}
	return interactor
}

// GetVaultSnapshot returns the saved snapshot and its version, or nil and 0
// when none was saved yet.
func (interactor *MemoInteractor) GetVaultSnapshot() (*domain.VaultSnapshot, int64, error) {
	memo, err := interactor.memoRepository.Find(domain.VaultMemoKey)
	if err != nil || memo == nil {
		return nil, 0, err
	}

	var snapshot domain.VaultSnapshot
	if err := snapshot.FromJson(memo.Memo); err != nil {
		log.Errorf("🔴 decoding vault snapshot - %v", err.Error())
		return nil, 0, err
	}
	return &snapshot, memo.Version, nil
}

// SetVaultSnapshot saves the snapshot over the version it was loaded at and
// returns the new version.
func (interactor *MemoInteractor) SetVaultSnapshot(snapshot *domain.VaultSnapshot, version int64) (int64, error) {
	memo, err := interactor.memoRepository.Save(domain.VaultMemoKey, snapshot, version)
	if errors.Is(err, domain.ErrorSnapshotConflict) {
		log.Warnf("🟡 vault snapshot v%d is stale", version)
		return 0, err
	}
	if err != nil {
		log.Errorf("🔴 saving vault snapshot - %v", err.Error())
		return 0, err
	}
	return memo.Version, nil
}
