package repository

import (
	"path/filepath"
	"testing"
	"time"

	"vault/domain"
	"vault/infrastructure/dbhandler"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *dbhandler.DBHandler {
	t.Helper()
	handler, err := dbhandler.Open(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = handler.Close() })
	require.NoError(t, handler.Migrate(Schema))
	// Migrations are idempotent.
	require.NoError(t, handler.Migrate(Schema))
	return handler
}

func TestMemoSaveAndFind(t *testing.T) {
	repo := NewMemoRepository(openTestDB(t))

	memo, err := repo.Find(domain.VaultMemoKey)
	require.NoError(t, err)
	require.Nil(t, memo)

	snapshot := &domain.VaultSnapshot{Buffered: "5", Strategies: []string{"a"}}
	memo, err = repo.Save(domain.VaultMemoKey, snapshot, 0)
	require.NoError(t, err)
	require.Equal(t, snapshot.ToJson(), memo.Memo)
	require.Equal(t, int64(1), memo.Version)

	snapshot.Buffered = "9"
	memo, err = repo.Save(domain.VaultMemoKey, snapshot, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), memo.Version)

	memo, err = repo.Find(domain.VaultMemoKey)
	require.NoError(t, err)
	require.Equal(t, int64(2), memo.Version)
	var loaded domain.VaultSnapshot
	require.NoError(t, loaded.FromJson(memo.Memo))
	require.Equal(t, "9", loaded.Buffered)
}

func TestMemoSaveRejectsStaleVersion(t *testing.T) {
	repo := NewMemoRepository(openTestDB(t))
	snapshot := &domain.VaultSnapshot{Buffered: "5"}

	_, err := repo.Save(domain.VaultMemoKey, snapshot, 0)
	require.NoError(t, err)
	_, err = repo.Save(domain.VaultMemoKey, snapshot, 0)
	require.ErrorIs(t, err, domain.ErrorSnapshotConflict)

	_, err = repo.Save(domain.VaultMemoKey, snapshot, 1)
	require.NoError(t, err)
	snapshot.Buffered = "7"
	_, err = repo.Save(domain.VaultMemoKey, snapshot, 1)
	require.ErrorIs(t, err, domain.ErrorSnapshotConflict)

	memo, err := repo.Find(domain.VaultMemoKey)
	require.NoError(t, err)
	require.Equal(t, int64(2), memo.Version)
	var loaded domain.VaultSnapshot
	require.NoError(t, loaded.FromJson(memo.Memo))
	require.Equal(t, "5", loaded.Buffered)
}

func TestRecordInsertAndFind(t *testing.T) {
	repo := NewRecordRepository(openTestDB(t))

	deposit := domain.NewRecord(domain.RecordKindDeposit)
	deposit.Account = "alice"
	deposit.Amount = "1000"
	deposit.Shares = "1000"
	deposit.SharePrice = "1"
	deposit.Allocations = []domain.RecordAllocation{{Strategy: "a", Amount: "600"}}
	deposit.CreateTime = time.UnixMilli(1_000).UTC()
	require.NoError(t, repo.Insert(deposit))

	rebase := domain.NewRecord(domain.RecordKindRebase)
	rebase.Amount = "80"
	rebase.Shares = "8"
	rebase.NetChange = "80"
	rebase.SharePrice = "1.07"
	rebase.Fees = []domain.RecordFee{{Recipient: "treasury", Amount: "8", Shares: "8"}}
	rebase.CreateTime = time.UnixMilli(2_000).UTC()
	require.NoError(t, repo.Insert(rebase))

	latest, err := repo.FindLatest(10)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, rebase.ID, latest[0].ID)
	require.Equal(t, rebase.Fees, latest[0].Fees)
	require.Equal(t, deposit.Allocations, latest[1].Allocations)
	require.Equal(t, deposit.CreateTime, latest[1].CreateTime)

	mine, err := repo.FindByAccount("alice", 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, deposit.ID, mine[0].ID)

	require.Error(t, repo.Insert(deposit))
}
