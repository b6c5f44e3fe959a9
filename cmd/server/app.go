package main

import (
	"net/http"
	"time"

	gqlhandler "github.com/graphql-go/handler"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/auth"
	"github.com/diewo77/invoice-manager/internal/config"
	"github.com/diewo77/invoice-manager/internal/graph"
	"github.com/diewo77/invoice-manager/internal/handlers"
	"github.com/diewo77/invoice-manager/internal/policy"
	"github.com/diewo77/invoice-manager/internal/reports"
	"github.com/diewo77/invoice-manager/internal/services"
)

// App is the main application handler that sets up all routes.
type App struct {
	handler http.Handler
}

// NewApp wires the shared policy/reports/services stack into both API
// surfaces and configures all routes.
func NewApp(db *gorm.DB, cfg *config.Config) (*App, error) {
	tokens := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMins)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)
	sessions := auth.NewSessions(cfg.Auth.SessionSecret)
	resolver := policy.NewResolver(db)
	reportsSvc := reports.NewService(db)
	userSvc := services.NewUserService(db)
	invoiceSvc := services.NewInvoiceService(db)

	ah := handlers.NewAuthHandler(userSvc, tokens, sessions)
	uh := handlers.NewUserHandler(db, userSvc, resolver)
	pfh := handlers.NewProfileHandler(db, resolver)
	ph := handlers.NewProductHandler(db, resolver)
	ih := handlers.NewInvoiceHandler(db, invoiceSvc, reportsSvc, resolver)
	rh := handlers.NewReportsHandler(reportsSvc, resolver)
	rooth := handlers.NewRootHandler(reportsSvc)

	schema, err := graph.NewSchema(&graph.Root{
		DB:       db,
		Reports:  reportsSvc,
		Users:    userSvc,
		Tokens:   tokens,
		Resolver: resolver,
	})
	if err != nil {
		return nil, err
	}
	gql := gqlhandler.New(&gqlhandler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: cfg.App.Dev,
	})

	mux := http.NewServeMux()

	// API root and authentication
	mux.HandleFunc("GET /api/{$}", rooth.Index)
	mux.HandleFunc("POST /api/token", ah.TokenObtain)
	mux.HandleFunc("POST /api/token/refresh", ah.TokenRefresh)
	mux.HandleFunc("POST /api/auth/register", ah.Register)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.HandleFunc("POST /api/auth/logout", ah.Logout)

	// User management (staff)
	mux.HandleFunc("GET /api/users", uh.List)
	mux.HandleFunc("POST /api/users", uh.Create)
	mux.HandleFunc("GET /api/users/{id}", uh.Detail)
	mux.HandleFunc("PUT /api/users/{id}", uh.Update)
	mux.HandleFunc("DELETE /api/users/{id}", uh.Delete)

	// Client profile
	mux.HandleFunc("GET /api/profile", pfh.Detail)
	mux.HandleFunc("PUT /api/profile", pfh.Update)

	// Products
	mux.HandleFunc("GET /api/products", ph.List)
	mux.HandleFunc("POST /api/products", ph.Create)
	mux.HandleFunc("GET /api/products/popular", rh.PopularProducts)
	mux.HandleFunc("GET /api/products/{id}", ph.Detail)
	mux.HandleFunc("PUT /api/products/{id}", ph.Update)
	mux.HandleFunc("DELETE /api/products/{id}", ph.Delete)

	// Invoices
	mux.HandleFunc("GET /api/invoices", ih.List)
	mux.HandleFunc("POST /api/invoices", ih.Create)
	mux.HandleFunc("GET /api/invoices/{id}", ih.Detail)
	mux.HandleFunc("PUT /api/invoices/{id}", ih.Update)
	mux.HandleFunc("DELETE /api/invoices/{id}", ih.Delete)

	// Aggregates
	mux.HandleFunc("GET /api/users-paid", rh.UsersWithPaidInvoices)
	mux.HandleFunc("GET /api/users-with-invoices", rh.UsersWithInvoices)
	mux.HandleFunc("GET /api/users-with-clientprofile", rh.UsersWithClientProfile)
	mux.HandleFunc("GET /api/products-in-invoices", rh.ProductsInInvoices)
	mux.HandleFunc("GET /api/products-not-invoices", rh.ProductsNotInInvoices)
	mux.HandleFunc("GET /api/products-by-user/{id}", rh.ProductsByUser)
	mux.HandleFunc("GET /api/invoices-simple", rh.InvoicesSimple)

	// Query API surface
	mux.Handle("/graphql", gql)

	return &App{handler: auth.Middleware(tokens, sessions)(mux)}, nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
