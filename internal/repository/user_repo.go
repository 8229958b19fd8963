package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// FindMembership returns the membership record linking user and iso, or
	// gorm.ErrRecordNotFound.
	FindMembership(ctx context.Context, userID, isoID uuid.UUID) (*model.IsoMembership, error)
	AddMembership(ctx context.Context, m *model.IsoMembership) error
}

type userRepo struct{ conn *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{conn: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.conn.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.conn.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.conn.WithContext(ctx).First(&u, "username = ?", username).Error
	return &u, err
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.conn.WithContext(ctx).First(&u, "email = ?", email).Error
	return &u, err
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.conn.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *userRepo) FindMembership(ctx context.Context, userID, isoID uuid.UUID) (*model.IsoMembership, error) {
	var m model.IsoMembership
	err := r.conn.WithContext(ctx).
		Where("user_id = ? AND iso_id = ?", userID, isoID).First(&m).Error
	return &m, err
}

func (r *userRepo) AddMembership(ctx context.Context, m *model.IsoMembership) error {
	return r.conn.WithContext(ctx).Create(m).Error
}
