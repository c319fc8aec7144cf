package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vault/domain"
	"vault/infrastructure/pool"
	"vault/usecase"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *usecase.VaultInteractor {
	t.Helper()
	strategy := pool.New("a", uint256.NewInt(600), uint256.NewInt(0))
	vault := usecase.NewVaultInteractor(domain.NewVaultState(), []domain.Strategy{strategy}, nil)
	_, err := vault.Deposit(context.Background(), "alice", uint256.NewInt(1000), nil)
	require.NoError(t, err)
	return vault
}

func get(t *testing.T, handler http.Handler, path string, body interface{}) int {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
	if body != nil && recorder.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), body))
	}
	return recorder.Code
}

func TestVaultView(t *testing.T) {
	handler := NewRouter(newTestVault(t), nil)

	var status usecase.VaultStatus
	require.Equal(t, http.StatusOK, get(t, handler, "/vault", &status))
	require.Equal(t, "1000", status.TotalStaked)
	require.Equal(t, "400", status.Buffered)
	require.Len(t, status.Strategies, 1)
	require.Equal(t, "600", status.Strategies[0].TotalDeposits)
}

func TestAccountView(t *testing.T) {
	handler := NewRouter(newTestVault(t), nil)

	var account usecase.AccountStatus
	require.Equal(t, http.StatusOK, get(t, handler, "/accounts/alice", &account))
	require.Equal(t, "1000", account.Shares)
	require.Equal(t, "1000", account.Underlying)

	require.Equal(t, http.StatusOK, get(t, handler, "/accounts/bob", &account))
	require.Equal(t, "0", account.Shares)
}

func TestRecordsNeedJournal(t *testing.T) {
	handler := NewRouter(newTestVault(t), nil)
	require.Equal(t, http.StatusNotFound, get(t, handler, "/records", nil))
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewRouter(newTestVault(t), nil)
	require.Equal(t, http.StatusOK, get(t, handler, "/metrics", nil))
}
