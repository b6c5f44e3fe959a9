package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/invoice-manager/internal/auth"
	"github.com/diewo77/invoice-manager/internal/httpx"
	"github.com/diewo77/invoice-manager/internal/services"
)

// AuthHandler serves registration, session login and the JWT token pair.
type AuthHandler struct {
	users    *services.UserService
	tokens   *auth.TokenManager
	sessions *auth.Sessions
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenManager, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, sessions: sessions}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account. The staff flag is never accepted here; staff
// accounts are created through the user management endpoints.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in.IsStaff = false
	user, err := h.users.Register(in)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			httpx.JSONError(w, http.StatusBadRequest, "username_taken", nil)
			return
		}
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

// Login authenticates with username/password and opens a session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	user, err := h.users.Authenticate(in.Username, in.Password)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	h.sessions.Create(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// TokenObtain issues an access/refresh token pair for valid credentials.
func (h *AuthHandler) TokenObtain(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	user, err := h.users.Authenticate(in.Username, in.Password)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	access, refresh, err := h.tokens.Pair(user.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

// TokenRefresh exchanges a refresh token for a new access token.
func (h *AuthHandler) TokenRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	access, err := h.tokens.Refresh(in.Refresh)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_token", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"access": access})
}
