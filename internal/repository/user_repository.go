package repository

import (
	"becoming_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateWithSettings 在同一事务中创建用户及其默认设置
func (r *UserRepository) CreateWithSettings(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(model.DefaultSettings(user.ID)).Error
	})
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile 只更新非空字段
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, name, photoURL string) error {
	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if photoURL != "" {
		updates["photo_url"] = photoURL
	}
	if len(updates) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *UserRepository) TouchLogin(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", time.Now()).Error
}

// TouchSeen 记录最近活跃时间
func (r *UserRepository) TouchSeen(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).UpdateColumn("last_seen", time.Now()).Error
}

// DeleteAccount 在同一事务中物理删除用户及其全部数据
func (r *UserRepository) DeleteAccount(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := []interface{}{
			&model.PushToken{},
			&model.RefreshToken{},
			&model.CheckIn{},
			&model.Signal{},
			&model.Goal{},
			&model.Settings{},
		}
		for _, m := range owned {
			if err := tx.Unscoped().Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}

		result := tx.Unscoped().Delete(&model.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
