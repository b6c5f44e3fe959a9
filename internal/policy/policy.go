// Package policy is the access-control layer shared by the REST handlers and
// the GraphQL resolvers. Keeping the rules in one place is what guarantees
// the two API surfaces cannot diverge.
package policy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/auth"
	"github.com/diewo77/invoice-manager/internal/models"
)

// Principal is the authenticated actor issuing a request.
type Principal struct {
	UserID uint
	Staff  bool
}

// Ownable is a resource that records its owning user.
type Ownable interface {
	GetUserID() uint
}

// Resolver loads principals from the datastore, so a stale token can never
// grant staff rights the user no longer holds.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// FromContext resolves the principal for the request context.
// Returns ErrUnauthorized for anonymous callers or sessions referring to a
// deleted user.
func (r *Resolver) FromContext(ctx context.Context) (*Principal, error) {
	uid, ok := auth.UserIDFromContext(ctx)
	if !ok || uid == 0 {
		return nil, ErrUnauthorized
	}
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &Principal{UserID: user.ID, Staff: user.IsStaff}, nil
}

// InvoiceScope narrows an invoice query to what the principal may see:
// staff see everything, regular users only invoices they created.
func InvoiceScope(p *Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Staff {
			return db
		}
		return db.Where("invoices.created_by_id = ?", p.UserID)
	}
}

// CanMutate reports whether the principal may modify the given resource:
// staff always, otherwise only the recorded owner/creator.
func CanMutate(p *Principal, res Ownable) bool {
	if p.Staff {
		return true
	}
	return res.GetUserID() == p.UserID
}

// RequireStaff rejects non-staff principals.
func RequireStaff(p *Principal) error {
	if !p.Staff {
		return ErrForbidden
	}
	return nil
}

// ProfileTarget resolves which user's profile the principal is addressing.
// Regular users always get their own; staff may name another user through the
// override. A non-staff caller supplying a foreign override is rejected.
func ProfileTarget(p *Principal, overrideUserID uint) (uint, error) {
	if overrideUserID == 0 || overrideUserID == p.UserID {
		return p.UserID, nil
	}
	if !p.Staff {
		return 0, ErrForbidden
	}
	return overrideUserID, nil
}
