package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/httpx"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/policy"
	"github.com/diewo77/invoice-manager/internal/services"
)

// UserHandler serves the staff-only user management endpoints.
type UserHandler struct {
	db       *gorm.DB
	users    *services.UserService
	resolver *policy.Resolver
}

func NewUserHandler(db *gorm.DB, users *services.UserService, resolver *policy.Resolver) *UserHandler {
	return &UserHandler{db: db, users: users, resolver: resolver}
}

func (h *UserHandler) requireStaff(r *http.Request) (*policy.Principal, error) {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		return nil, err
	}
	if err := policy.RequireStaff(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireStaff(r); err != nil {
		httpx.Error(w, err)
		return
	}

	db := h.db.Preload("Profile").Order("id")
	if username := r.URL.Query().Get("username"); username != "" {
		db = db.Where("username = ?", username)
	}
	if staff := r.URL.Query().Get("is_staff"); staff != "" {
		db = db.Where("is_staff = ?", staff == "true" || staff == "1")
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireStaff(r); err != nil {
		httpx.Error(w, err)
		return
	}
	var in services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
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

func (h *UserHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireStaff(r); err != nil {
		httpx.Error(w, err)
		return
	}
	user, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireStaff(r); err != nil {
		httpx.Error(w, err)
		return
	}
	user, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in struct {
		Email   *string `json:"email"`
		IsStaff *bool   `json:"is_staff"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.IsStaff != nil {
		user.IsStaff = *in.IsStaff
	}
	if err := h.db.Model(user).Select("email", "is_staff").Updates(user).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireStaff(r); err != nil {
		httpx.Error(w, err)
		return
	}
	user, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.users.Delete(user.ID); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) load(r *http.Request) (*models.User, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, policy.ErrNotFound
	}
	var user models.User
	if err := h.db.Preload("Profile").First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
