package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
)

type APIKeyRepository interface {
	Create(ctx context.Context, k *model.APIKey) error
	FindActiveByHash(ctx context.Context, keyHash string) (*model.APIKey, error)
	TouchLastUsed(ctx context.Context, keyHash string) error
}

type apiKeyRepo struct{ conn *gorm.DB }

func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository { return &apiKeyRepo{conn: db} }

func (r *apiKeyRepo) Create(ctx context.Context, k *model.APIKey) error {
	return r.conn.WithContext(ctx).Create(k).Error
}

func (r *apiKeyRepo) FindActiveByHash(ctx context.Context, keyHash string) (*model.APIKey, error) {
	var k model.APIKey
	err := r.conn.WithContext(ctx).Where("key_hash = ? AND active = true", keyHash).First(&k).Error
	return &k, err
}

func (r *apiKeyRepo) TouchLastUsed(ctx context.Context, keyHash string) error {
	return r.conn.WithContext(ctx).Model(&model.APIKey{}).Where("key_hash = ?", keyHash).
		Update("last_used_at", time.Now()).Error
}
