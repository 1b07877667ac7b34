package repository

import (
	"becoming_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type GoalRepository struct {
	DB *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: db}
}

func (r *GoalRepository) Create(ctx context.Context, goal *model.Goal) error {
	return r.DB.WithContext(ctx).Create(goal).Error
}

// Update 更新目标内容
func (r *GoalRepository) Update(ctx context.Context, goal *model.Goal) error {
	return r.DB.WithContext(ctx).Model(&model.Goal{}).
		Where("id = ? AND user_id = ?", goal.ID, goal.UserID).
		Updates(map[string]interface{}{
			"title":          goal.Title,
			"north_star":     goal.NorthStar,
			"why_it_matters": goal.WhyItMatters,
			"note":           goal.Note,
		}).Error
}

func (r *GoalRepository) Delete(ctx context.Context, userID uint, id string) error {
	return r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Goal{}).Error
}

// FindByID 只返回属于该用户的目标
func (r *GoalRepository) FindByID(ctx context.Context, userID uint, id string) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListByUser 按创建顺序返回用户的目标
func (r *GoalRepository) ListByUser(ctx context.Context, userID uint) ([]model.Goal, error) {
	var goals []model.Goal
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&goals).Error
	return goals, err
}

func (r *GoalRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Goal{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
