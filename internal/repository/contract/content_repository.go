package contract

import (
	"context"
	"errors"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/repository/specification"
)

var ErrAdminNotFound = errors.New("admin user not found")

// TierRepository is the narrow read surface the reconciliation core gets
// on the CMS-managed donation tiers.
type TierRepository interface {
	Create(ctx context.Context, tier *entity.DonationTier) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DonationTier, error)
}

type AdminRepository interface {
	Create(ctx context.Context, admin *entity.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error)
}
