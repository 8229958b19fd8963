package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
)

type OneTimeTokenRepository interface {
	Create(ctx context.Context, t *model.OneTimeToken) error
	FindByHash(ctx context.Context, tokenHash string) (*model.OneTimeToken, error)
	// Consume marks the token used. The conditional update is the one-time
	// guarantee: a second Consume on the same token affects zero rows and
	// returns gorm.ErrRecordNotFound.
	Consume(ctx context.Context, tokenHash string) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type tokenRepo struct{ conn *gorm.DB }

func NewOneTimeTokenRepository(db *gorm.DB) OneTimeTokenRepository { return &tokenRepo{conn: db} }

func (r *tokenRepo) Create(ctx context.Context, t *model.OneTimeToken) error {
	return r.conn.WithContext(ctx).Create(t).Error
}

func (r *tokenRepo) FindByHash(ctx context.Context, tokenHash string) (*model.OneTimeToken, error) {
	var t model.OneTimeToken
	err := r.conn.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&t).Error
	return &t, err
}

func (r *tokenRepo) Consume(ctx context.Context, tokenHash string) error {
	res := r.conn.WithContext(ctx).Model(&model.OneTimeToken{}).
		Where("token_hash = ? AND consumed_at IS NULL AND expires_at > ?", tokenHash, time.Now()).
		Update("consumed_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tokenRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.conn.WithContext(ctx).Where("expires_at < ?", before).Delete(&model.OneTimeToken{})
	return res.RowsAffected, res.Error
}
