package repository

import (
	"becoming_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// DueUserRepository 计算每个时段需要投递的用户
type DueUserRepository struct {
	DB *gorm.DB
}

func NewDueUserRepository(db *gorm.DB) *DueUserRepository {
	return &DueUserRepository{DB: db}
}

// FindDue 返回 slot 时刻到期的用户：投递时间完全相等、星期在集合中、
// 已完成引导、已注册推送地址，并且至少有一个目标或非空使命。
func (r *DueUserRepository) FindDue(ctx context.Context, slot model.Slot) ([]model.DueUser, error) {
	var rows []model.DueUser

	hasGoal := r.DB.Model(&model.Goal{}).
		Select("1").
		Where("goals.user_id = users.id")

	err := r.DB.WithContext(ctx).
		Table("users").
		Select(`users.id AS user_id,
			users.name AS name,
			user_settings.tone AS tone,
			user_settings.main_mission AS main_mission,
			user_settings.notification_time AS notification_time,
			user_settings.notification_days AS notification_days,
			push_tokens.token AS token,
			push_tokens.platform AS platform`).
		Joins("JOIN user_settings ON user_settings.user_id = users.id AND user_settings.deleted_at IS NULL").
		Joins("JOIN push_tokens ON push_tokens.user_id = users.id").
		Where("users.deleted_at IS NULL").
		Where("user_settings.has_onboarded = ?", true).
		Where("user_settings.notification_time = ?", slot.Time).
		Where("user_settings.notification_days LIKE ?", "%"+slot.Weekday+"%").
		Where("push_tokens.token <> ''").
		Where("(EXISTS (?) OR COALESCE(user_settings.main_mission, '') <> '')", hasGoal).
		Order("users.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// LIKE 只是预筛选，这里做精确的星期匹配
	due := rows[:0]
	for _, row := range rows {
		if row.NotificationDays.Contains(slot.Weekday) {
			due = append(due, row)
		}
	}
	return due, nil
}
