package repository

import (
	"becoming_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	DB *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{DB: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

// Consume 作废一个未过期的令牌并返回它。并发请求中只有一个能成功，
// 其余返回 gorm.ErrRecordNotFound。
func (r *RefreshTokenRepository) Consume(ctx context.Context, hash string, now time.Time) (*model.RefreshToken, error) {
	var token model.RefreshToken
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token_hash = ? AND revoked = ? AND expires_at > ?", hash, false, now).
			First(&token).Error; err != nil {
			return err
		}

		result := tx.Model(&model.RefreshToken{}).
			Where("id = ? AND revoked = ?", token.ID, false).
			Update("revoked", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// RevokeAllByUser 退出登录时作废该用户的全部令牌
func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
