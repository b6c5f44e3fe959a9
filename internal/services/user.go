package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/auth"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/validation"
)

// ErrUsernameTaken is returned when registering a username that already exists.
var ErrUsernameTaken = errors.New("username already taken")

// UserService encapsulates account management.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsStaff  bool   `json:"is_staff"`
}

// Register creates a user together with its empty client profile.
// Profile creation is an explicit step of this use case, not a side effect
// hook, and both rows commit or neither does.
func (s *UserService) Register(in RegisterInput) (*models.User, error) {
	v := make(validation.Violations)
	validation.Required("username", in.Username, v)
	validation.Required("password", in.Password, v)
	if len(in.Password) > 0 && len(in.Password) < 8 {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		return nil, validation.NewError(v)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		IsStaff:  in.IsStaff,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.ClientProfile{UserID: user.ID}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = &profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user, cascading its profile and invoices (with their
// items) and nulling the creator/updater references it left on products and
// invoices. Done explicitly in one transaction so the semantics do not depend
// on database-level constraint enforcement.
func (s *UserService) Delete(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		ownedInvoices := tx.Model(&models.Invoice{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("invoice_id IN (?)", ownedInvoices).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.ClientProfile{}).Error; err != nil {
			return err
		}
		for _, column := range []string{"created_by_id", "updated_by_id"} {
			if err := tx.Model(&models.Product{}).Where(column+" = ?", userID).Update(column, nil).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Invoice{}).Where(column+" = ?", userID).Update(column, nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
}

// Authenticate verifies the username and password, returning the user if
// valid.
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, errors.New("invalid username or password")
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, errors.New("invalid username or password")
	}
	return &user, nil
}
