package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun/auth-dashboard/internal/token"
)

func protected(t *testing.T, tokens *token.Manager) (http.Handler, *string) {
	t.Helper()
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	})
	return RequireAuth(tokens)(handler), &seen
}

func TestRequireAuth_ValidBearer(t *testing.T) {
	tokens := token.NewManager("secret")
	h, seen := protected(t, tokens)

	signed, err := tokens.Generate("user-42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", *seen)
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	tokens := token.NewManager("secret")
	h, seen := protected(t, tokens)

	signed, err := tokens.Generate("user-42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signed})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", *seen)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	tokens := token.NewManager("secret")
	h, seen := protected(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no token")
	assert.Empty(t, *seen, "handler must not run")
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	tokens := token.NewManager("secret")
	h, seen := protected(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, *seen)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	issuer := token.NewManager("secret", token.WithTTL(-time.Hour))
	verifier := token.NewManager("secret")
	h, seen := protected(t, verifier)

	signed, err := issuer.Generate("user-42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token failed")
	assert.Empty(t, *seen)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	other := token.NewManager("other-secret")
	h, seen := protected(t, token.NewManager("secret"))

	signed, err := other.Generate("user-42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, *seen)
}
