package usecase

import (
	"context"
	"testing"

	"vault/domain"

	"github.com/stretchr/testify/require"
)

type memoryMemos map[string]domain.Memo

func (m memoryMemos) Find(key string) (*domain.Memo, error) {
	memo, ok := m[key]
	if !ok {
		return nil, nil
	}
	return &memo, nil
}

func (m memoryMemos) Save(key string, memo domain.Memorable, version int64) (*domain.Memo, error) {
	if m[key].Version != version {
		return nil, domain.ErrorSnapshotConflict
	}
	saved := domain.Memo{Key: key, Memo: memo.ToJson(), Version: version + 1}
	m[key] = saved
	return &saved, nil
}

type memoryRecords struct {
	records []domain.Record
}

func (r *memoryRecords) Insert(record domain.Record) error {
	r.records = append(r.records, record)
	return nil
}

func (r *memoryRecords) FindLatest(limit int) ([]domain.Record, error) {
	var result []domain.Record
	for i := len(r.records) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, r.records[i])
	}
	return result, nil
}

func (r *memoryRecords) FindByAccount(account domain.Account, limit int) ([]domain.Record, error) {
	var result []domain.Record
	for i := len(r.records) - 1; i >= 0 && len(result) < limit; i-- {
		if r.records[i].Account == account || r.records[i].Recipient == account {
			result = append(result, r.records[i])
		}
	}
	return result, nil
}

func TestMemoInteractorSnapshot(t *testing.T) {
	interactor := NewMemoInteractor(memoryMemos{})

	snapshot, version, err := interactor.GetVaultSnapshot()
	require.NoError(t, err)
	require.Nil(t, snapshot)
	require.Zero(t, version)

	vault, _ := newVault(t, domain.FeeTable{{Recipient: "treasury", BasisPoints: 10}})
	version, err = interactor.SetVaultSnapshot(vault.Snapshot(), 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	snapshot, version, err = interactor.GetVaultSnapshot()
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	require.Equal(t, int64(1), version)
	require.Equal(t, vault.Fees(), snapshot.Fees)

	// Both writers loaded v1; the second one loses.
	_, err = interactor.SetVaultSnapshot(vault.Snapshot(), 1)
	require.NoError(t, err)
	_, err = interactor.SetVaultSnapshot(vault.Snapshot(), 1)
	require.ErrorIs(t, err, domain.ErrorSnapshotConflict)
}

func TestJournalHistory(t *testing.T) {
	journal := NewJournalInteractor(&memoryRecords{})
	vault := NewVaultInteractor(nil, nil, journal)
	ctx := context.Background()

	_, err := vault.Deposit(ctx, "alice", u(100), nil)
	require.NoError(t, err)
	_, err = vault.Deposit(ctx, "bob", u(100), nil)
	require.NoError(t, err)
	_, err = vault.Transfer(ctx, "alice", "bob", u(10))
	require.NoError(t, err)

	records, err := journal.History("", 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, domain.RecordKindTransfer, records[0].Kind)

	records, err = journal.History("alice", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	records, err = journal.History("bob", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, domain.Account("bob"), records[0].Recipient)
}
