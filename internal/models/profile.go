package models

// ClientProfile holds per-user billing metadata.
// At most one profile exists per user; it is cascade-deleted with the user.
type ClientProfile struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	User    *User  `gorm:"foreignKey:UserID" json:"-"`
	TaxID   string `gorm:"size:20" json:"tax_id"`
	Address string `gorm:"type:text" json:"address"`
}

// GetUserID implements the policy.Ownable interface.
func (p *ClientProfile) GetUserID() uint {
	return p.UserID
}
