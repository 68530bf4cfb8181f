package profile

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arjun/auth-dashboard/internal/middleware"
	"github.com/arjun/auth-dashboard/internal/models"
	"github.com/arjun/auth-dashboard/internal/store"
	"github.com/arjun/auth-dashboard/internal/token"
)

type fakeUsers struct {
	user *models.User
}

func (s *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, store.ErrNotFound
	}
	copied := *s.user
	return &copied, nil
}

func (s *fakeUsers) SetAvatarKey(_ context.Context, id, key string) error {
	if s.user == nil || s.user.ID != id {
		return store.ErrNotFound
	}
	s.user.AvatarKey = key
	return nil
}

type fakeFiles struct {
	objects map[string][]byte
	types   map[string]string
	removed []string
	nextKey int
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeFiles) SaveAvatar(_ context.Context, data []byte, contentType string) (string, error) {
	f.nextKey++
	key := fmt.Sprintf("avatars/%d", f.nextKey)
	f.objects[key] = data
	f.types[key] = contentType
	return key, nil
}

func (f *fakeFiles) LoadAvatar(_ context.Context, key string) ([]byte, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return data, f.types[key], nil
}

func (f *fakeFiles) DeleteAvatar(_ context.Context, key string) error {
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func newAvatarRouter(t *testing.T) (*chi.Mux, *fakeUsers, *fakeFiles, string) {
	t.Helper()
	users := &fakeUsers{user: &models.User{ID: "user-1", Name: "Ann", Email: "ann@example.com"}}
	files := newFakeFiles()
	tokens := token.NewManager("secret")
	h := NewHandler(users, files, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/api/profile", func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))
		r.Put("/avatar", h.UploadAvatar)
		r.Get("/avatar", h.GetAvatar)
	})

	signed, err := tokens.Generate("user-1")
	require.NoError(t, err)
	return r, users, files, signed
}

func TestUploadAvatar_Roundtrip(t *testing.T) {
	r, users, files, bearer := newAvatarRouter(t)

	img := []byte{0x89, 'P', 'N', 'G'}
	req := httptest.NewRequest(http.MethodPut, "/api/profile/avatar", bytes.NewReader(img))
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, users.user.AvatarKey)
	assert.Equal(t, img, files.objects[users.user.AvatarKey])

	req = httptest.NewRequest(http.MethodGet, "/api/profile/avatar", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, img, rec.Body.Bytes())
}

func TestUploadAvatar_ReplacesPrevious(t *testing.T) {
	r, users, files, bearer := newAvatarRouter(t)

	for _, img := range [][]byte{{1}, {2}} {
		req := httptest.NewRequest(http.MethodPut, "/api/profile/avatar", bytes.NewReader(img))
		req.Header.Set("Authorization", "Bearer "+bearer)
		req.Header.Set("Content-Type", "image/jpeg")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Len(t, files.objects, 1, "old avatar object should be removed")
	assert.Len(t, files.removed, 1)
	assert.Equal(t, []byte{2}, files.objects[users.user.AvatarKey])
}

func TestUploadAvatar_RejectsNonImage(t *testing.T) {
	r, _, files, bearer := newAvatarRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/profile/avatar", bytes.NewReader([]byte("hello")))
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, files.objects)
}

func TestGetAvatar_NotSet(t *testing.T) {
	r, _, _, bearer := newAvatarRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profile/avatar", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvatar_RequiresAuth(t *testing.T) {
	r, _, files, _ := newAvatarRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/profile/avatar", bytes.NewReader([]byte{1}))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, files.objects)
}
