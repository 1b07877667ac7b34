package repository

import (
	"becoming_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type SignalRepository struct {
	DB *gorm.DB
}

func NewSignalRepository(db *gorm.DB) *SignalRepository {
	return &SignalRepository{DB: db}
}

func (r *SignalRepository) Create(ctx context.Context, signal *model.Signal) error {
	if signal.Feedback == "" {
		signal.Feedback = model.FeedbackNone
	}
	return r.DB.WithContext(ctx).Create(signal).Error
}

// RecentByUser 最近的信号，按时间倒序
func (r *SignalRepository) RecentByUser(ctx context.Context, userID uint, limit int) ([]model.Signal, error) {
	var signals []model.Signal
	q := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&signals).Error
	return signals, err
}

func (r *SignalRepository) FindByID(ctx context.Context, userID uint, id string) (*model.Signal, error) {
	var signal model.Signal
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&signal).Error
	if err != nil {
		return nil, err
	}
	return &signal, nil
}

// UpdateFeedback 只修改反馈字段，值未变化时不写库
func (r *SignalRepository) UpdateFeedback(ctx context.Context, userID uint, id string, feedback model.Feedback) (*model.Signal, error) {
	signal, err := r.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if signal.Feedback == feedback {
		return signal, nil
	}

	err = r.DB.WithContext(ctx).Model(signal).Update("feedback", feedback).Error
	if err != nil {
		return nil, err
	}
	signal.Feedback = feedback
	return signal, nil
}
