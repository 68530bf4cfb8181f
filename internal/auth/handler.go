package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arjun/auth-dashboard/internal/middleware"
	"github.com/arjun/auth-dashboard/internal/models"
	"github.com/arjun/auth-dashboard/internal/store"
	"github.com/arjun/auth-dashboard/internal/token"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// ProfileCache is an optional read-through cache in front of GetUserByID.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Set(ctx context.Context, p *models.Profile) error
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users   UserStore
	tokens  *token.Manager
	cache   ProfileCache // may be nil
	log     *zap.Logger
	devMode bool
}

func NewHandler(users UserStore, tokens *token.Manager, cache ProfileCache, log *zap.Logger, devMode bool) *Handler {
	return &Handler{users: users, tokens: tokens, cache: cache, log: log, devMode: devMode}
}

// Register creates a new user and issues a token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" || req.Email == "" || req.DateOfBirth == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Please fill all fields")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		writeMessage(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if !datePattern.MatchString(req.DateOfBirth) {
		writeMessage(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	// Best-effort duplicate check; the store's unique index is the backstop
	// if two identical registrations race past this point.
	if _, err := h.users.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.serverError(w, "register: duplicate check", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(w, "register: hash password", err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), &models.User{
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		Password:    string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.serverError(w, "register: create user", err)
		return
	}

	signed, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.serverError(w, "register: issue token", err)
		return
	}

	h.log.Info("user registered", zap.String("user_id", user.ID))
	setTokenCookie(w, signed)
	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: signed, User: user.Profile()})
}

// Login authenticates a user and issues a token. Lookup and password
// failures produce the same response, so callers cannot probe for
// registered emails.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.serverError(w, "login: lookup", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	signed, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.serverError(w, "login: issue token", err)
		return
	}

	h.log.Info("user logged in", zap.String("user_id", user.ID))
	setTokenCookie(w, signed)
	writeJSON(w, http.StatusOK, models.AuthResponse{Token: signed, User: user.Profile()})
}

// Logout clears the token cookie. Tokens themselves stay valid until
// natural expiry; the client drops its stored copy.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeMessage(w, http.StatusOK, "Logged out")
}

// Me returns the currently authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	if h.cache != nil {
		if p, err := h.cache.Get(r.Context(), userID); err == nil {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(w, "me: lookup", err)
		return
	}

	profile := user.Profile()
	if h.cache != nil {
		if err := h.cache.Set(r.Context(), &profile); err != nil {
			h.log.Warn("profile cache set failed", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	body := map[string]string{"message": "Server error"}
	if h.devMode {
		body["error"] = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

func setTokenCookie(w http.ResponseWriter, signed string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(token.DefaultTTL / time.Second),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
