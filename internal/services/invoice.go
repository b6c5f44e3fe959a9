package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/policy"
	"github.com/diewo77/invoice-manager/internal/validation"
)

// InvoiceService reconciles an invoice and its line items as one atomic unit.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// ItemInput is one requested line item. Price is optional: when nil, the
// referenced product's current price is captured at write time.
type ItemInput struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// CreateInput is the payload for creating an invoice. The owner is always the
// authenticated caller, never client-supplied, and the status starts at NEW.
type CreateInput struct {
	Items []ItemInput `json:"items"`
}

// UpdateInput is the payload for updating an invoice. A nil Items leaves the
// existing line items untouched; a non-nil Items replaces the whole set.
type UpdateInput struct {
	Status *models.InvoiceStatus `json:"status,omitempty"`
	Items  *[]ItemInput          `json:"items,omitempty"`
}

// Create persists a new invoice with its items in a single transaction.
// On any failure no rows from this operation remain.
func (s *InvoiceService) Create(callerID uint, in CreateInput) (*models.Invoice, error) {
	invoice := models.Invoice{
		UserID:      callerID,
		Date:        time.Now().Truncate(24 * time.Hour),
		Status:      models.InvoiceStatusNew,
		CreatedByID: &callerID,
		UpdatedByID: &callerID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		items, err := buildItems(tx, in.Items)
		if err != nil {
			return err
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create items: %w", err)
			}
		}
		invoice.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Update overwrites provided scalar fields and, when Items is present,
// replaces the entire previous item set. Delete-then-insert runs inside one
// transaction so concurrent readers never observe a half-replaced invoice.
func (s *InvoiceService) Update(invoice *models.Invoice, callerID uint, in UpdateInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if in.Status != nil {
			if !in.Status.Valid() {
				return validation.NewError(validation.Violations{"status": "invalid_choice"})
			}
			invoice.Status = *in.Status
		}
		invoice.UpdatedByID = &callerID
		if err := tx.Model(invoice).
			Select("status", "updated_by_id").
			Updates(invoice).Error; err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		if in.Items == nil {
			return nil
		}
		items, err := buildItems(tx, *in.Items)
		if err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create items: %w", err)
			}
		}
		invoice.Items = items
		return nil
	})
}

// buildItems validates line-item inputs and captures prices.
// Each item must reference an existing product and a positive quantity.
func buildItems(tx *gorm.DB, inputs []ItemInput) ([]models.InvoiceItem, error) {
	items := make([]models.InvoiceItem, 0, len(inputs))
	for i, in := range inputs {
		if in.Quantity <= 0 {
			return nil, validation.NewError(validation.Violations{
				fmt.Sprintf("items[%d].quantity", i): "must_be_positive",
			})
		}
		var product models.Product
		if err := tx.First(&product, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("items[%d] product %d: %w", i, in.ProductID, policy.ErrNotFound)
			}
			return nil, err
		}
		price := product.Price
		if in.Price != nil {
			price = *in.Price
		}
		items = append(items, models.InvoiceItem{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			Price:     price,
		})
	}
	return items, nil
}
