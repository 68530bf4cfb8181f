package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun/auth-dashboard/internal/models"
)

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.Profile{ID: "user-1"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok-1")
	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)

	c.ClearToken()
	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_SurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "User already exists"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Register(context.Background(), models.RegisterRequest{})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "User already exists", apiErr.Message)
}

func TestClient_FiresUnauthenticatedHookOnAnyCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not authorized, token failed"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	fired := 0
	c.OnUnauthenticated(func() { fired++ })

	_, err := c.Me(context.Background())
	require.Error(t, err)
	_, err = c.Login(context.Background(), "a@b.co", "pw")
	require.Error(t, err)

	assert.Equal(t, 2, fired)
}

func TestClient_NoHookOnOtherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "User not found"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	fired := 0
	c.OnUnauthenticated(func() { fired++ })

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Zero(t, fired)
}
