package service

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/repository"
	"becoming_backend/internal/util"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// SignalInput 客户端提交的信号
type SignalInput struct {
	ID             string
	Text           string
	Type           model.SignalCategory
	TargetType     model.TargetType
	TargetIdentity string
}

type SignalService struct {
	SignalRepo *repository.SignalRepository
}

func NewSignalService(signalRepo *repository.SignalRepository) *SignalService {
	return &SignalService{SignalRepo: signalRepo}
}

// List 最新的在前
func (s *SignalService) List(ctx context.Context, userID uint, limit int) ([]model.Signal, error) {
	if limit <= 0 {
		limit = util.SignalListLimit
	}
	if limit > util.MaxSignalListCap {
		limit = util.MaxSignalListCap
	}
	return s.SignalRepo.RecentByUser(ctx, userID, limit)
}

func (s *SignalService) Create(ctx context.Context, userID uint, in SignalInput) (*model.Signal, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" || !in.Type.Valid() || !in.TargetType.Valid() {
		return nil, util.ErrInvalidSignal
	}
	if in.TargetType == model.TargetGoal && strings.TrimSpace(in.TargetIdentity) == "" {
		return nil, util.ErrInvalidSignal
	}

	if in.ID != "" {
		if !model.ValidID(in.ID) {
			return nil, util.ErrInvalidID
		}
		if _, err := s.SignalRepo.FindByID(ctx, userID, in.ID); err == nil {
			return nil, util.ErrSignalExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	signal := &model.Signal{
		UserID:     userID,
		Text:       text,
		Category:   in.Type,
		TargetType: in.TargetType,
		Feedback:   model.FeedbackNone,
		Origin:     model.OriginClient,
	}
	signal.ID = in.ID
	if in.TargetType == model.TargetGoal {
		signal.TargetIdentity = strings.TrimSpace(in.TargetIdentity)
	}

	if err := s.SignalRepo.Create(ctx, signal); err != nil {
		return nil, err
	}
	return signal, nil
}

// SetFeedback 相同的值不产生写入，新值覆盖旧值
func (s *SignalService) SetFeedback(ctx context.Context, userID uint, id string, feedback model.Feedback) (*model.Signal, error) {
	if !feedback.Valid() {
		return nil, util.ErrInvalidFeedback
	}

	signal, err := s.SignalRepo.UpdateFeedback(ctx, userID, id, feedback)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSignalNotFound
	}
	return signal, err
}
