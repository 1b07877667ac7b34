package repository

import (
	"becoming_backend/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PushTokenRepository struct {
	DB *gorm.DB
}

func NewPushTokenRepository(db *gorm.DB) *PushTokenRepository {
	return &PushTokenRepository{DB: db}
}

// Upsert 每个用户只保留最新注册的推送地址
func (r *PushTokenRepository) Upsert(ctx context.Context, token *model.PushToken) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "platform", "updated_at"}),
	}).Create(token).Error
}

func (r *PushTokenRepository) FindByUser(ctx context.Context, userID uint) (*model.PushToken, error) {
	var token model.PushToken
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteByUser 物理删除，避免软删除记录占用唯一索引
func (r *PushTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&model.PushToken{}).Error
}
