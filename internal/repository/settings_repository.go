package repository

import (
	"becoming_backend/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	DB *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// FindOrCreate 返回用户设置，不存在时写入默认值
func (r *SettingsRepository) FindOrCreate(ctx context.Context, userID uint) (*model.Settings, error) {
	var settings model.Settings
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaults := model.DefaultSettings(userID)
	err = r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(defaults).Error
	if err != nil {
		return nil, err
	}

	// 并发创建时以库中记录为准
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update 按列名部分更新
func (r *SettingsRepository) Update(ctx context.Context, userID uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&model.Settings{}).Where("user_id = ?", userID).Updates(updates).Error
}
