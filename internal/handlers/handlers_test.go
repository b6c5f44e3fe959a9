package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/auth"
	"github.com/diewo77/invoice-manager/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ClientProfile{}, &models.Product{}, &models.Invoice{}, &models.InvoiceItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, staff bool) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", IsStaff: staff}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, createdBy *uint) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Category:    models.CategoryOther,
		CreatedByID: createdBy,
		UpdatedByID: createdBy,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// newRequest builds a request, optionally authenticated as the given user and
// optionally addressing a path id.
func newRequest(method, target, body string, as *models.User, id uint) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if as != nil {
		r = r.WithContext(auth.WithUserID(r.Context(), as.ID))
	}
	if id != 0 {
		r.SetPathValue("id", strconv.FormatUint(uint64(id), 10))
	}
	return r
}
