package service

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/repository"
	"becoming_backend/internal/util"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CheckInInput 一次自评
type CheckInInput struct {
	Type       model.CheckInType
	GoalID     string
	Date       string
	Response   model.CheckInResponse
	Reflection string
}

type CheckInService struct {
	CheckInRepo *repository.CheckInRepository
	GoalRepo    *repository.GoalRepository
}

func NewCheckInService(checkInRepo *repository.CheckInRepository, goalRepo *repository.GoalRepository) *CheckInService {
	return &CheckInService{CheckInRepo: checkInRepo, GoalRepo: goalRepo}
}

func (s *CheckInService) List(ctx context.Context, userID uint, limit int) ([]model.CheckIn, error) {
	return s.CheckInRepo.ListByUser(ctx, userID, limit)
}

// Record 同一天对同一对象的自评会覆盖之前的回答
func (s *CheckInService) Record(ctx context.Context, userID uint, in CheckInInput) (*model.CheckIn, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var goalID *string
	if in.Type == model.CheckInGoal {
		if _, err := s.GoalRepo.FindByID(ctx, userID, in.GoalID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrGoalNotFound
			}
			return nil, err
		}
		id := in.GoalID
		goalID = &id
	}

	existing, err := s.CheckInRepo.FindByUserAndDate(ctx, userID, in.Date, in.Type, goalID)
	if err == nil {
		existing.Response = in.Response
		existing.Reflection = strings.TrimSpace(in.Reflection)
		if err := s.CheckInRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	checkIn := &model.CheckIn{
		UserID:     userID,
		Type:       in.Type,
		GoalID:     goalID,
		Date:       in.Date,
		Response:   in.Response,
		Reflection: strings.TrimSpace(in.Reflection),
	}
	if err := s.CheckInRepo.Create(ctx, checkIn); err != nil {
		return nil, err
	}
	return checkIn, nil
}

func (in CheckInInput) validate() error {
	switch in.Type {
	case model.CheckInGoal:
		if in.GoalID == "" {
			return util.ErrInvalidCheckIn
		}
	case model.CheckInIdentity:
	default:
		return util.ErrInvalidCheckIn
	}

	switch in.Response {
	case model.CheckInYes, model.CheckInSomewhat, model.CheckInNo:
	default:
		return util.ErrInvalidCheckIn
	}

	if _, err := time.Parse(util.DateFormat, in.Date); err != nil {
		return util.ErrInvalidCheckIn
	}
	return nil
}
