package profile

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/arjun/auth-dashboard/internal/middleware"
	"github.com/arjun/auth-dashboard/internal/models"
	"github.com/arjun/auth-dashboard/internal/store"
)

// maxAvatarSize caps uploaded avatar images.
const maxAvatarSize = 2 << 20

// UserStore defines the user persistence operations avatar handling needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetAvatarKey(ctx context.Context, id, key string) error
}

// AvatarStore defines the interface for avatar object storage.
type AvatarStore interface {
	SaveAvatar(ctx context.Context, data []byte, contentType string) (string, error)
	LoadAvatar(ctx context.Context, key string) ([]byte, string, error)
	DeleteAvatar(ctx context.Context, key string) error
}

// Handler holds avatar HTTP handlers.
type Handler struct {
	users   UserStore
	avatars AvatarStore
	log     *zap.Logger
}

func NewHandler(users UserStore, avatars AvatarStore, log *zap.Logger) *Handler {
	return &Handler{users: users, avatars: avatars, log: log}
}

// UploadAvatar stores the request body as the caller's avatar image.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeMessage(w, http.StatusBadRequest, "Avatar must be an image")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxAvatarSize+1))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(data) == 0 {
		writeMessage(w, http.StatusBadRequest, "Avatar image is empty")
		return
	}
	if len(data) > maxAvatarSize {
		writeMessage(w, http.StatusBadRequest, "Avatar image too large")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(w, "avatar upload: lookup", err)
		return
	}

	key, err := h.avatars.SaveAvatar(r.Context(), data, contentType)
	if err != nil {
		h.serverError(w, "avatar upload: store object", err)
		return
	}
	if err := h.users.SetAvatarKey(r.Context(), userID, key); err != nil {
		h.serverError(w, "avatar upload: set key", err)
		return
	}

	// Drop the superseded object. Failure leaves an orphan, nothing worse.
	if user.AvatarKey != "" {
		if err := h.avatars.DeleteAvatar(r.Context(), user.AvatarKey); err != nil {
			h.log.Warn("avatar upload: remove old object", zap.Error(err))
		}
	}

	writeMessage(w, http.StatusOK, "Avatar updated")
}

// GetAvatar serves the caller's avatar image.
func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(w, "avatar get: lookup", err)
		return
	}
	if user.AvatarKey == "" {
		writeMessage(w, http.StatusNotFound, "Avatar not set")
		return
	}

	data, contentType, err := h.avatars.LoadAvatar(r.Context(), user.AvatarKey)
	if err != nil {
		h.serverError(w, "avatar get: fetch object", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	writeMessage(w, http.StatusInternalServerError, "Server error")
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
