package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/invoice-manager/internal/httpx"
	"github.com/diewo77/invoice-manager/internal/policy"
	"github.com/diewo77/invoice-manager/internal/reports"
)

// ReportsHandler serves the read-only aggregate endpoints.
type ReportsHandler struct {
	reports  *reports.Service
	resolver *policy.Resolver
}

func NewReportsHandler(rep *reports.Service, resolver *policy.Resolver) *ReportsHandler {
	return &ReportsHandler{reports: rep, resolver: resolver}
}

func (h *ReportsHandler) staff(r *http.Request) error {
	p, err := h.resolver.FromContext(r.Context())
	if err != nil {
		return err
	}
	return policy.RequireStaff(p)
}

func (h *ReportsHandler) UsersWithPaidInvoices(w http.ResponseWriter, r *http.Request) {
	if err := h.staff(r); err != nil {
		httpx.Error(w, err)
		return
	}
	users, err := h.reports.UsersWithPaidInvoices()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *ReportsHandler) UsersWithInvoices(w http.ResponseWriter, r *http.Request) {
	if err := h.staff(r); err != nil {
		httpx.Error(w, err)
		return
	}
	users, err := h.reports.UsersWithInvoices()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *ReportsHandler) UsersWithClientProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.staff(r); err != nil {
		httpx.Error(w, err)
		return
	}
	users, err := h.reports.UsersWithClientProfile()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *ReportsHandler) ProductsInInvoices(w http.ResponseWriter, r *http.Request) {
	if _, err := h.resolver.FromContext(r.Context()); err != nil {
		httpx.Error(w, err)
		return
	}
	products, err := h.reports.ProductsInUse()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ReportsHandler) ProductsNotInInvoices(w http.ResponseWriter, r *http.Request) {
	if _, err := h.resolver.FromContext(r.Context()); err != nil {
		httpx.Error(w, err)
		return
	}
	products, err := h.reports.ProductsUnused()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ReportsHandler) ProductsByUser(w http.ResponseWriter, r *http.Request) {
	if err := h.staff(r); err != nil {
		httpx.Error(w, err)
		return
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.Error(w, policy.ErrNotFound)
		return
	}
	products, err := h.reports.ProductsByUserInvoices(uint(id))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

// PopularProducts is public, like the product catalogue itself.
func (h *ReportsHandler) PopularProducts(w http.ResponseWriter, _ *http.Request) {
	products, err := h.reports.PopularProducts()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ReportsHandler) InvoicesSimple(w http.ResponseWriter, r *http.Request) {
	if err := h.staff(r); err != nil {
		httpx.Error(w, err)
		return
	}
	rows, err := h.reports.InvoiceBasicInfo()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
