package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
)

// AccessService answers the two distinct tenant-access questions. They are
// deliberately separate capabilities and must never be collapsed into one
// boolean: ordinary access is the broad read check, explicit access is the
// narrow gate in front of anything that mutates billable pricing.
type AccessService interface {
	// HasOrdinaryAccess: super-operator, primary tenant, membership record,
	// or the elevated full-access flag.
	HasOrdinaryAccess(ctx context.Context, user *model.User, isoID uuid.UUID) (bool, error)
	// HasExplicitAccess: a direct membership record (ordinary or admin) and
	// nothing else. FullAccess and primary-tenant identity do NOT count — a
	// globally elevated account must not silently mutate another tenant's
	// billable pricing.
	HasExplicitAccess(ctx context.Context, user *model.User, isoID uuid.UUID) (bool, error)
}

type accessService struct {
	users repository.UserRepository
}

func NewAccessService(users repository.UserRepository) AccessService {
	return &accessService{users: users}
}

func (s *accessService) HasOrdinaryAccess(ctx context.Context, user *model.User, isoID uuid.UUID) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.Role == model.RoleSuperOperator || user.FullAccess {
		return true, nil
	}
	if user.PrimaryIsoID != nil && *user.PrimaryIsoID == isoID {
		return true, nil
	}
	return s.hasMembership(ctx, user.ID, isoID)
}

func (s *accessService) HasExplicitAccess(ctx context.Context, user *model.User, isoID uuid.UUID) (bool, error) {
	if user == nil {
		return false, nil
	}
	return s.hasMembership(ctx, user.ID, isoID)
}

func (s *accessService) hasMembership(ctx context.Context, userID, isoID uuid.UUID) (bool, error) {
	_, err := s.users.FindMembership(ctx, userID, isoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
