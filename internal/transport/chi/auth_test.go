package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authedHandler(apiKeys []string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return BearerAuthMiddleware(apiKeys)(next)
}

func TestBearerAuth_DisabledWithoutKeys(t *testing.T) {
	h := authedHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/clustering", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	h := authedHandler([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/clustering", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	h := authedHandler([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/clustering", nil)
	req.Header.Set("Authorization", "Basic secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_InvalidKey(t *testing.T) {
	h := authedHandler([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/clustering", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_ValidKey(t *testing.T) {
	h := authedHandler([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/clustering", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerAuth_HealthIsExempt(t *testing.T) {
	h := authedHandler([]string{"secret"})

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestBearerAuth_EmptyKeysAreIgnored(t *testing.T) {
	// Unset ${TEMUDOC_API_KEY} expands to an empty string; it must not
	// enable auth with an empty key.
	h := authedHandler([]string{""})

	req := httptest.NewRequest(http.MethodGet, "/clustering", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
