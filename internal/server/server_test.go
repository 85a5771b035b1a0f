package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/ledger"
	"github.com/osse101/SpinVault_Go/internal/reward"
	"github.com/osse101/SpinVault_Go/internal/spin"
)

const testAPIKey = "test-key"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := ledger.NewMemoryStore()
	reconciler := ledger.NewReconciler(store, nil)
	claims := ledger.NewClaimLedger(store, reconciler, nil, ledger.NewFormatter(language.English))
	resolver := reward.NewResolver(reward.NewMemoryCatalog(), reward.NewSeededSource(1), 0)

	return NewRouter(Config{APIKey: testAPIKey, ServiceName: "spinvault"}, Deps{
		Claims:   claims,
		Balances: reconciler,
		Spins:    spin.NewService(store, resolver, reconciler, nil),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set(HeaderAPIKey, testAPIKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	captureLogs(t)
	h := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/healthz", "", false).Code)
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/readyz", "", false).Code)
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/version", "", false).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, "GET", "/api/v1/balance?user_id=u1", "", false).Code)
}

func TestRouter_BalanceLifecycle(t *testing.T) {
	captureLogs(t)
	h := newTestRouter(t)

	rec := do(t, h, "GET", "/api/v1/balance?user_id=u1", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, "POST", "/api/v1/accounts", `{"user_id":"u1"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, "GET", "/api/v1/balance?user_id=u1", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"u1","amount":0}`, rec.Body.String())
}

func TestRouter_UnknownWinAndWheel(t *testing.T) {
	captureLogs(t)
	h := newTestRouter(t)

	rec := do(t, h, "POST", "/api/v1/claims", `{"win_id":99,"user_id":"u1"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, "POST", "/api/v1/spins", `{"user_id":"u1","wheel_id":"missing"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_VaultDisabled(t *testing.T) {
	captureLogs(t)
	h := newTestRouter(t)

	rec := do(t, h, "POST", "/api/v1/vault/"+string(domain.OperationDeposit), `{}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
