// Package reports is the aggregation engine: every derived number (invoice
// totals, usage counts, system-wide sums) is computed here with database
// aggregation, never stored redundantly.
package reports

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/models"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// InvoiceTotal computes SUM(quantity * price) over the invoice's items.
// An invoice with no items reports an absent (null) total; only the
// system-wide grand total falls back to zero.
func (s *Service) InvoiceTotal(invoiceID uint) (decimal.NullDecimal, error) {
	var total decimal.NullDecimal
	err := s.db.Model(&models.InvoiceItem{}).
		Select("SUM(quantity * price)").
		Where("invoice_id = ?", invoiceID).
		Scan(&total).Error
	return total, err
}

// TotalsFor computes the derived total for each of the given invoices in one
// query. Invoices without items are absent from the result map.
func (s *Service) TotalsFor(invoiceIDs []uint) (map[uint]decimal.Decimal, error) {
	totals := make(map[uint]decimal.Decimal, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return totals, nil
	}
	var rows []struct {
		InvoiceID uint
		Total     decimal.Decimal
	}
	err := s.db.Model(&models.InvoiceItem{}).
		Select("invoice_id, SUM(quantity * price) AS total").
		Where("invoice_id IN ?", invoiceIDs).
		Group("invoice_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		totals[row.InvoiceID] = row.Total
	}
	return totals, nil
}

// ProductUsage is a product annotated with its invoice-item reference count.
type ProductUsage struct {
	models.Product
	InvoiceCount int64 `json:"invoice_count"`
}

// PopularProducts returns products referenced by more than one invoice item,
// ordered by reference count descending. Ties break on product id ascending
// so the ordering is deterministic.
func (s *Service) PopularProducts() ([]ProductUsage, error) {
	var rows []struct {
		ProductID    uint
		InvoiceCount int64
	}
	err := s.db.Model(&models.InvoiceItem{}).
		Select("product_id, COUNT(id) AS invoice_count").
		Group("product_id").
		Having("COUNT(id) > 1").
		Order("invoice_count DESC, product_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []ProductUsage{}, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	var products []models.Product
	if err := s.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	usages := make([]ProductUsage, 0, len(rows))
	for _, row := range rows {
		usages = append(usages, ProductUsage{Product: byID[row.ProductID], InvoiceCount: row.InvoiceCount})
	}
	return usages, nil
}

// ProductsInUse returns products referenced by at least one invoice item.
func (s *Service) ProductsInUse() ([]models.Product, error) {
	var products []models.Product
	err := s.db.
		Where("id IN (?)", s.db.Model(&models.InvoiceItem{}).Distinct("product_id")).
		Order("id").
		Find(&products).Error
	return products, err
}

// ProductsUnused returns products with no invoice-item reference.
// At any snapshot it is the exact complement of ProductsInUse.
func (s *Service) ProductsUnused() ([]models.Product, error) {
	var products []models.Product
	err := s.db.
		Where("id NOT IN (?)", s.db.Model(&models.InvoiceItem{}).Distinct("product_id")).
		Order("id").
		Find(&products).Error
	return products, err
}

// ProductsByUserInvoices returns the distinct products appearing on the given
// user's invoices.
func (s *Service) ProductsByUserInvoices(userID uint) ([]models.Product, error) {
	var products []models.Product
	err := s.db.Model(&models.Product{}).
		Distinct("products.*").
		Joins("JOIN invoice_items ON invoice_items.product_id = products.id").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoices.user_id = ?", userID).
		Order("products.id").
		Find(&products).Error
	return products, err
}

// Totals is the system-wide aggregate reported by the API root.
type Totals struct {
	TotalInvoices int64           `json:"total_invoices"`
	TotalProducts int64           `json:"total_products"`
	TotalValue    decimal.Decimal `json:"total_invoice_value"`
}

// SystemTotals counts invoices and products and sums the value of every
// invoice item. This is the one aggregate that falls back to zero when there
// is nothing to sum.
func (s *Service) SystemTotals() (Totals, error) {
	var t Totals
	if err := s.db.Model(&models.Invoice{}).Count(&t.TotalInvoices).Error; err != nil {
		return t, err
	}
	if err := s.db.Model(&models.Product{}).Count(&t.TotalProducts).Error; err != nil {
		return t, err
	}
	var grand decimal.NullDecimal
	if err := s.db.Model(&models.InvoiceItem{}).
		Select("SUM(quantity * price)").
		Scan(&grand).Error; err != nil {
		return t, err
	}
	if grand.Valid {
		t.TotalValue = grand.Decimal
	} else {
		t.TotalValue = decimal.Zero
	}
	return t, nil
}

// InvoiceSummary is the invoices-simple row: basic fields plus item count.
type InvoiceSummary struct {
	ID         uint                 `json:"id"`
	Date       time.Time            `json:"date"`
	Status     models.InvoiceStatus `json:"status"`
	TotalItems int64                `json:"total_items"`
}

// InvoiceBasicInfo returns every invoice with its item count.
func (s *Service) InvoiceBasicInfo() ([]InvoiceSummary, error) {
	var rows []InvoiceSummary
	err := s.db.Model(&models.Invoice{}).
		Select("invoices.id, invoices.date, invoices.status, COUNT(invoice_items.id) AS total_items").
		Joins("LEFT JOIN invoice_items ON invoice_items.invoice_id = invoices.id").
		Group("invoices.id, invoices.date, invoices.status").
		Order("invoices.id").
		Scan(&rows).Error
	if rows == nil {
		rows = []InvoiceSummary{}
	}
	return rows, err
}

// UsersWithInvoices returns the distinct users owning at least one invoice,
// with their invoices preloaded.
func (s *Service) UsersWithInvoices() ([]models.User, error) {
	var users []models.User
	err := s.db.Model(&models.User{}).
		Distinct("users.*").
		Joins("JOIN invoices ON invoices.user_id = users.id").
		Order("users.id").
		Preload("Invoices").
		Find(&users).Error
	return users, err
}

// UsersWithPaidInvoices returns the distinct users owning at least one paid
// invoice.
func (s *Service) UsersWithPaidInvoices() ([]models.User, error) {
	var users []models.User
	err := s.db.Model(&models.User{}).
		Distinct("users.*").
		Joins("JOIN invoices ON invoices.user_id = users.id").
		Where("invoices.status = ?", models.InvoiceStatusPaid).
		Order("users.id").
		Find(&users).Error
	return users, err
}

// UsersWithClientProfile returns users that have a client profile, profile
// preloaded.
func (s *Service) UsersWithClientProfile() ([]models.User, error) {
	var users []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN client_profiles ON client_profiles.user_id = users.id").
		Order("users.id").
		Preload("Profile").
		Find(&users).Error
	return users, err
}
