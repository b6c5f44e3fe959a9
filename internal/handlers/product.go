package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/httpx"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/policy"
	"github.com/diewo77/invoice-manager/internal/validation"
)

// ProductHandler serves the product catalogue. Reads are public; writes
// require authentication, and mutation of an existing product requires staff
// or the recorded creator.
type ProductHandler struct {
	db       *gorm.DB
	resolver *policy.Resolver
}

func NewProductHandler(db *gorm.DB, resolver *policy.Resolver) *ProductHandler {
	return &ProductHandler{db: db, resolver: resolver}
}

type productInput struct {
	Name        *string                 `json:"name"`
	Price       *decimal.Decimal        `json:"price"`
	Description *string                 `json:"description"`
	Image       *string                 `json:"image"`
	Category    *models.ProductCategory `json:"category"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	db := h.db.Order("id")
	if search := r.URL.Query().Get("search"); search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}
	var products []models.Product
	if err := db.Find(&products).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	product := models.Product{
		Category:    models.CategoryOther,
		CreatedByID: &p.UserID,
		UpdatedByID: &p.UserID,
	}
	if err := applyProductInput(&product, in); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.db.Create(&product).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	product, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	product, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	// Products are publicly readable, so a foreign record is rejected as
	// forbidden rather than hidden as not-found.
	if !policy.CanMutate(p, product) {
		httpx.Error(w, policy.ErrForbidden)
		return
	}

	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := applyProductInput(product, in); err != nil {
		httpx.Error(w, err)
		return
	}
	product.UpdatedByID = &p.UserID

	if err := h.db.Model(product).
		Select("name", "price", "description", "image", "category", "updated_by_id").
		Updates(product).Error; err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	product, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !policy.CanMutate(p, product) {
		httpx.Error(w, policy.ErrForbidden)
		return
	}

	// Hard cascade: removing a product removes its historical line items.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) load(r *http.Request) (*models.Product, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, policy.ErrNotFound
	}
	var product models.Product
	if err := h.db.First(&product, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func applyProductInput(product *models.Product, in productInput) error {
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Image != nil {
		product.Image = *in.Image
	}
	if in.Category != nil {
		product.Category = *in.Category
	}

	v := make(validation.Violations)
	validation.Required("name", product.Name, v)
	validation.PositiveDecimal("price", product.Price, v)
	if !product.Category.Valid() {
		v["category"] = "invalid_choice"
	}
	if !v.Empty() {
		return validation.NewError(v)
	}
	return nil
}
