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
	"github.com/diewo77/invoice-manager/internal/reports"
	"github.com/diewo77/invoice-manager/internal/services"
)

// InvoiceHandler serves invoice CRUD. Regular users only ever see invoices
// they created; staff see everything. A foreign invoice addressed by id is a
// 404, never a 403, so its existence is not leaked.
type InvoiceHandler struct {
	db       *gorm.DB
	svc      *services.InvoiceService
	reports  *reports.Service
	resolver *policy.Resolver
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService, rep *reports.Service, resolver *policy.Resolver) *InvoiceHandler {
	return &InvoiceHandler{db: db, svc: svc, reports: rep, resolver: resolver}
}

// invoiceResponse augments the stored invoice with its derived total.
// The total is null for an itemless invoice; it is never stored.
type invoiceResponse struct {
	models.Invoice
	TotalValue decimal.NullDecimal `json:"total_value"`
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var invoices []models.Invoice
	if err := h.db.Scopes(policy.InvoiceScope(p)).
		Preload("Items").
		Order("invoices.id").
		Find(&invoices).Error; err != nil {
		httpx.Error(w, err)
		return
	}

	ids := make([]uint, 0, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
	}
	totals, err := h.reports.TotalsFor(ids)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp := invoiceResponse{Invoice: inv}
		if total, ok := totals[inv.ID]; ok {
			resp.TotalValue = decimal.NullDecimal{Decimal: total, Valid: true}
		}
		out = append(out, resp)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in services.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	invoice, err := h.svc.Create(p.UserID, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	h.respond(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) Detail(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	h.respond(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	invoice, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in services.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.svc.Update(invoice, p.UserID, in); err != nil {
		httpx.Error(w, err)
		return
	}
	h.respond(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	// Deleting an invoice deletes all its items.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(invoice).Error
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load fetches the addressed invoice within the caller's visibility scope.
func (h *InvoiceHandler) load(r *http.Request) (*models.Invoice, error) {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, policy.ErrNotFound
	}
	var invoice models.Invoice
	err = h.db.Scopes(policy.InvoiceScope(p)).
		Preload("Items").
		First(&invoice, uint(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (h *InvoiceHandler) respond(w http.ResponseWriter, status int, invoice *models.Invoice) {
	total, err := h.reports.InvoiceTotal(invoice.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, status, invoiceResponse{Invoice: *invoice, TotalValue: total})
}
