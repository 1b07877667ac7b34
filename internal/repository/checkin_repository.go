package repository

import (
	"becoming_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type CheckInRepository struct {
	DB *gorm.DB
}

// NewCheckInRepository 创建签到仓库实例
func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{DB: db}
}

func (r *CheckInRepository) Create(ctx context.Context, checkIn *model.CheckIn) error {
	return r.DB.WithContext(ctx).Create(checkIn).Error
}

// ListByUser 按日期倒序返回签到记录
func (r *CheckInRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.CheckIn, error) {
	var checkIns []model.CheckIn
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&checkIns).Error
	return checkIns, err
}

// FindByUserAndDate 查找某天针对同一对象的签到
func (r *CheckInRepository) FindByUserAndDate(ctx context.Context, userID uint, date string, checkInType model.CheckInType, goalID *string) (*model.CheckIn, error) {
	var checkIn model.CheckIn
	q := r.DB.WithContext(ctx).Where("user_id = ? AND date = ? AND type = ?", userID, date, checkInType)
	if goalID != nil {
		q = q.Where("goal_id = ?", *goalID)
	} else {
		q = q.Where("goal_id IS NULL")
	}
	if err := q.First(&checkIn).Error; err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *CheckInRepository) Update(ctx context.Context, checkIn *model.CheckIn) error {
	return r.DB.WithContext(ctx).Model(checkIn).Updates(map[string]interface{}{
		"response":   checkIn.Response,
		"reflection": checkIn.Reflection,
	}).Error
}
