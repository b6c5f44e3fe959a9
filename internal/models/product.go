package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory is the enumerated product category code.
type ProductCategory string

const (
	CategoryElectronics ProductCategory = "ELEC"
	CategoryBooks       ProductCategory = "BOOK"
	CategoryFood        ProductCategory = "FOOD"
	CategoryOther       ProductCategory = "OTHR"
)

// Valid reports whether the category is one of the known codes.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryBooks, CategoryFood, CategoryOther:
		return true
	}
	return false
}

// Label returns the human-readable category name.
func (c ProductCategory) Label() string {
	switch c {
	case CategoryElectronics:
		return "Electronics"
	case CategoryBooks:
		return "Books"
	case CategoryFood:
		return "Food"
	default:
		return "Other"
	}
}

// Product represents a sellable item.
// Creator and updater references survive user deletion as NULLs: ownership
// does not cascade-delete products.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	// Image is a storage path reference; the file store itself is external.
	Image       string          `gorm:"size:255" json:"image,omitempty"`
	Category    ProductCategory `gorm:"size:4;not null;default:'OTHR'" json:"category"`
	CreatedByID *uint           `gorm:"index" json:"created_by,omitempty"`
	CreatedBy   *User           `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	UpdatedByID *uint           `json:"updated_by,omitempty"`
	UpdatedBy   *User           `gorm:"foreignKey:UpdatedByID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// GetUserID implements the policy.Ownable interface using the recorded
// creator. A product whose creator was deleted reports 0, which matches no
// authenticated user, so only staff can mutate it.
func (p *Product) GetUserID() uint {
	if p.CreatedByID == nil {
		return 0
	}
	return *p.CreatedByID
}
