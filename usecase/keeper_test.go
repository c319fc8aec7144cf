package usecase

import (
	"context"
	"math/big"
	"testing"

	"vault/domain"
	"vault/infrastructure/pool"

	"github.com/stretchr/testify/require"
)

func buildFromSnapshot(snapshot *domain.VaultSnapshot) (*domain.VaultState, []domain.Strategy, error) {
	if snapshot == nil {
		return domain.NewVaultState(), nil, nil
	}
	state, err := snapshot.VaultState()
	if err != nil {
		return nil, nil, err
	}
	strategies, err := pool.RestoreAll(snapshot)
	if err != nil {
		return nil, nil, err
	}
	return state, strategies, nil
}

// openVault loads the saved vault the way a separate process would.
func openVault(t *testing.T, memos memoryMemos, records *memoryRecords) (*StoreInteractor, *VaultInteractor) {
	t.Helper()
	store := NewStoreInteractor(NewMemoInteractor(memos), NewJournalInteractor(records), buildFromSnapshot)
	state, strategies, err := store.Load()
	require.NoError(t, err)
	return store, NewVaultInteractor(state, strategies, store.Buffer())
}

func seedVault(t *testing.T, memos memoryMemos, strategies ...domain.Strategy) {
	t.Helper()
	store := NewStoreInteractor(NewMemoInteractor(memos), nil, buildFromSnapshot)
	vault := NewVaultInteractor(nil, strategies, store.Buffer())
	require.NoError(t, store.Save(vault))
}

func savedSnapshot(t *testing.T, memos memoryMemos) *domain.VaultSnapshot {
	t.Helper()
	var snapshot domain.VaultSnapshot
	require.NoError(t, snapshot.FromJson(memos[domain.VaultMemoKey].Memo))
	return &snapshot
}

func accrue(t *testing.T, vault *VaultInteractor, id string, delta int64) {
	t.Helper()
	strategy, _, ok := vault.StrategyByID(id)
	require.True(t, ok)
	require.NoError(t, strategy.(*pool.Pool).Accrue(big.NewInt(delta)))
}

func TestKeeperReconcilesEveryStrategy(t *testing.T) {
	ctx := context.Background()
	memos, records := memoryMemos{}, &memoryRecords{}
	seedVault(t, memos, pool.New("a", u(500), u(0)), pool.New("b", u(500), u(0)))

	keeperStore, keeperVault := openVault(t, memos, records)
	keeper := NewKeeperInteractor(keeperVault, keeperStore)

	cliStore, cliVault := openVault(t, memos, records)
	_, err := cliVault.Deposit(ctx, "alice", u(800), nil)
	require.NoError(t, err)
	accrue(t, cliVault, "a", 30)
	accrue(t, cliVault, "b", -10)
	require.NoError(t, cliStore.Save(cliVault))

	record, err := keeper.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, "20", record.NetChange)
	require.Len(t, record.Allocations, 2)
	require.Equal(t, "820", savedSnapshot(t, memos).Ledger.TotalStaked)
	require.Equal(t, "820", keeperVault.TotalStaked().Dec())

	require.Len(t, records.records, 2)
	require.Equal(t, domain.RecordKindDeposit, records.records[0].Kind)
	require.Equal(t, domain.RecordKindRebase, records.records[1].Kind)
}

func TestKeeperKeepsCommitsOfOtherWriters(t *testing.T) {
	ctx := context.Background()
	memos, records := memoryMemos{}, &memoryRecords{}
	seedVault(t, memos, pool.New("a", u(1000), u(0)))

	keeperStore, keeperVault := openVault(t, memos, records)
	keeper := NewKeeperInteractor(keeperVault, keeperStore)

	cliStore, cliVault := openVault(t, memos, records)
	_, err := cliVault.Deposit(ctx, "alice", u(500), nil)
	require.NoError(t, err)
	require.NoError(t, cliStore.Save(cliVault))

	_, err = keeper.RunOnce(ctx)
	require.NoError(t, err)
	snapshot := savedSnapshot(t, memos)
	require.Equal(t, "500", snapshot.Ledger.TotalStaked)
	require.Len(t, snapshot.Pools, 1)
	require.Equal(t, "500", snapshot.Pools[0].Deposits)
	require.Equal(t, "500", keeperVault.BalanceOf("alice").Dec())
}

// racingStore lets another writer save right before the keeper does.
type racingStore struct {
	*StoreInteractor
	race func()
}

func (s *racingStore) Save(vault *VaultInteractor) error {
	if s.race != nil {
		s.race()
		s.race = nil
	}
	return s.StoreInteractor.Save(vault)
}

func TestKeeperLosesRaceAndRetries(t *testing.T) {
	ctx := context.Background()
	memos, records := memoryMemos{}, &memoryRecords{}
	seedVault(t, memos, pool.New("a", u(1000), u(0)))

	cliStore, cliVault := openVault(t, memos, records)
	_, err := cliVault.Deposit(ctx, "alice", u(400), nil)
	require.NoError(t, err)
	require.NoError(t, cliStore.Save(cliVault))

	keeperStore, keeperVault := openVault(t, memos, records)
	store := &racingStore{StoreInteractor: keeperStore}
	keeper := NewKeeperInteractor(keeperVault, store)

	store.race = func() {
		otherStore, otherVault := openVault(t, memos, records)
		_, err := otherVault.Deposit(ctx, "bob", u(100), nil)
		require.NoError(t, err)
		require.NoError(t, otherStore.Save(otherVault))
	}
	_, err = keeper.RunOnce(ctx)
	require.ErrorIs(t, err, domain.ErrorSnapshotConflict)
	require.Equal(t, "500", savedSnapshot(t, memos).Ledger.TotalStaked)
	// Only the two deposits were journaled; the lost rebase was dropped.
	require.Len(t, records.records, 2)

	record, err := keeper.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, "0", record.NetChange)
	require.Equal(t, "500", savedSnapshot(t, memos).Ledger.TotalStaked)
	require.Equal(t, "100", keeperVault.BalanceOf("bob").Dec())
	require.Len(t, records.records, 3)
}

func TestKeeperSkipsVaultWithoutStrategies(t *testing.T) {
	vault, journal := newVault(t, nil)
	keeper := NewKeeperInteractor(vault, nil)

	record, err := keeper.RunOnce(context.Background())
	require.NoError(t, err)
	require.Nil(t, record)
	require.Empty(t, journal.records)
}

func TestKeeperRejectsBadSchedule(t *testing.T) {
	vault, _ := newVault(t, nil)
	keeper := NewKeeperInteractor(vault, nil)

	require.Error(t, keeper.Schedule("every now and then"))
	require.NoError(t, keeper.Schedule("*/5 * * * * *"))
}
