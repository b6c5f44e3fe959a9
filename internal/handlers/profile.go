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
)

// ProfileHandler serves the caller's client profile. Staff may address
// another user's profile through the explicit ?user_id= override.
type ProfileHandler struct {
	db       *gorm.DB
	resolver *policy.Resolver
}

func NewProfileHandler(db *gorm.DB, resolver *policy.Resolver) *ProfileHandler {
	return &ProfileHandler{db: db, resolver: resolver}
}

func (h *ProfileHandler) Detail(w http.ResponseWriter, r *http.Request) {
	profile, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in struct {
		TaxID   *string `json:"tax_id"`
		Address *string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.TaxID != nil {
		profile.TaxID = *in.TaxID
	}
	if in.Address != nil {
		profile.Address = *in.Address
	}
	if err := h.db.Model(profile).Select("tax_id", "address").Updates(profile).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) load(r *http.Request) (*models.ClientProfile, error) {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		return nil, err
	}
	var override uint
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, policy.ErrNotFound
		}
		override = uint(id)
	}
	target, err := policy.ProfileTarget(p, override)
	if err != nil {
		return nil, err
	}
	var profile models.ClientProfile
	if err := h.db.Where("user_id = ?", target).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}
