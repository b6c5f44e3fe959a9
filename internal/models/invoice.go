package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the enumerated invoice lifecycle state.
type InvoiceStatus string

const (
	InvoiceStatusNew  InvoiceStatus = "NEW"
	InvoiceStatusSent InvoiceStatus = "SENT"
	InvoiceStatusPaid InvoiceStatus = "PAID"
)

// Valid reports whether the status is one of the known codes.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusNew, InvoiceStatusSent, InvoiceStatusPaid:
		return true
	}
	return false
}

// Invoice represents a billing document owned by a user.
// The total value is never stored; it is always derived from the items
// (see the reports package).
type Invoice struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"index;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"-"`
	// Date is set once at creation and never updated.
	Date        time.Time     `gorm:"type:date;not null" json:"date"`
	Status      InvoiceStatus `gorm:"size:4;not null;default:'NEW'" json:"status"`
	CreatedByID *uint         `gorm:"index" json:"created_by,omitempty"`
	CreatedBy   *User         `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	UpdatedByID *uint         `json:"updated_by,omitempty"`
	UpdatedBy   *User         `gorm:"foreignKey:UpdatedByID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// GetUserID implements the policy.Ownable interface.
// Visibility follows the recorded creator, falling back to the owner when the
// creator reference was nulled by a user deletion.
func (i *Invoice) GetUserID() uint {
	if i.CreatedByID != nil {
		return *i.CreatedByID
	}
	return i.UserID
}

// InvoiceItem is one (product, quantity, captured price) line belonging to
// exactly one invoice. Price is captured at time of sale: later product price
// changes must not change the value of historical invoices.
type InvoiceItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	InvoiceID uint            `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice        `gorm:"foreignKey:InvoiceID" json:"-"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// Amount returns quantity × captured price for this line.
func (it *InvoiceItem) Amount() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
