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

// GoalInput 创建或修改目标的字段，ID 可由客户端离线生成
type GoalInput struct {
	ID           string
	Title        string
	NorthStar    string
	WhyItMatters string
	Note         string
}

type GoalService struct {
	GoalRepo *repository.GoalRepository
}

func NewGoalService(goalRepo *repository.GoalRepository) *GoalService {
	return &GoalService{GoalRepo: goalRepo}
}

// List 按创建顺序返回
func (s *GoalService) List(ctx context.Context, userID uint) ([]model.Goal, error) {
	return s.GoalRepo.ListByUser(ctx, userID)
}

// Create 客户端重放同一 ID 时返回已有记录
func (s *GoalService) Create(ctx context.Context, userID uint, in GoalInput) (*model.Goal, error) {
	if in.ID != "" {
		if !model.ValidID(in.ID) {
			return nil, util.ErrInvalidID
		}
		existing, err := s.GoalRepo.FindByID(ctx, userID, in.ID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	goal := &model.Goal{
		UserID:       userID,
		Title:        strings.TrimSpace(in.Title),
		NorthStar:    strings.TrimSpace(in.NorthStar),
		WhyItMatters: strings.TrimSpace(in.WhyItMatters),
		Note:         strings.TrimSpace(in.Note),
	}
	goal.ID = in.ID
	if err := s.GoalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) Update(ctx context.Context, userID uint, id string, in GoalInput) (*model.Goal, error) {
	goal, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	goal.Title = strings.TrimSpace(in.Title)
	goal.NorthStar = strings.TrimSpace(in.NorthStar)
	goal.WhyItMatters = strings.TrimSpace(in.WhyItMatters)
	goal.Note = strings.TrimSpace(in.Note)
	if err := s.GoalRepo.Update(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete 至少保留一个目标
func (s *GoalService) Delete(ctx context.Context, userID uint, id string) error {
	if _, err := s.find(ctx, userID, id); err != nil {
		return err
	}

	count, err := s.GoalRepo.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= 1 {
		return util.ErrLastGoal
	}
	return s.GoalRepo.Delete(ctx, userID, id)
}

func (s *GoalService) find(ctx context.Context, userID uint, id string) (*model.Goal, error) {
	goal, err := s.GoalRepo.FindByID(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrGoalNotFound
	}
	return goal, err
}
