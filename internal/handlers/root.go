package handlers

import (
	"net/http"

	"github.com/diewo77/invoice-manager/internal/httpx"
	"github.com/diewo77/invoice-manager/internal/reports"
)

// RootHandler serves the API directory plus the system totals.
type RootHandler struct {
	reports *reports.Service
}

func NewRootHandler(rep *reports.Service) *RootHandler {
	return &RootHandler{reports: rep}
}

func (h *RootHandler) Index(w http.ResponseWriter, _ *http.Request) {
	totals, err := h.reports.SystemTotals()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"endpoints": map[string]string{
			"token":                    "/api/token",
			"token_refresh":            "/api/token/refresh",
			"register":                 "/api/auth/register",
			"login":                    "/api/auth/login",
			"users":                    "/api/users",
			"profile":                  "/api/profile",
			"products":                 "/api/products",
			"invoices":                 "/api/invoices",
			"users_with_paid_invoices": "/api/users-paid",
			"users_with_invoices":      "/api/users-with-invoices",
			"users_with_clientprofile": "/api/users-with-clientprofile",
			"products_in_invoices":     "/api/products-in-invoices",
			"products_not_in_invoices": "/api/products-not-invoices",
			"products_by_user":         "/api/products-by-user/{id}",
			"popular_products":         "/api/products/popular",
			"invoices_simple":          "/api/invoices-simple",
			"graphql":                  "/graphql",
		},
		"totals": totals,
	})
}
