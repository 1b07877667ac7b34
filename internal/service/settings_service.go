package service

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/repository"
	"becoming_backend/internal/util"
	"context"
	"strings"
)

// SettingsUpdate 部分更新，nil 字段保持原值
type SettingsUpdate struct {
	Frequency        *int
	Tone             *model.Tone
	NotificationTime *string
	NotificationDays []string
	HasOnboarded     *bool
	MainMission      *string
	CurrentGoalIndex *int
}

type SettingsService struct {
	SettingsRepo *repository.SettingsRepository
}

func NewSettingsService(settingsRepo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{SettingsRepo: settingsRepo}
}

// Get 不存在时写入默认设置
func (s *SettingsService) Get(ctx context.Context, userID uint) (*model.Settings, error) {
	return s.SettingsRepo.FindOrCreate(ctx, userID)
}

func (s *SettingsService) Update(ctx context.Context, userID uint, upd SettingsUpdate) (*model.Settings, error) {
	if _, err := s.SettingsRepo.FindOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	updates, err := upd.columns()
	if err != nil {
		return nil, err
	}
	if err := s.SettingsRepo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.SettingsRepo.FindOrCreate(ctx, userID)
}

// columns 校验并转换为列更新
func (u SettingsUpdate) columns() (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	if u.Frequency != nil {
		if *u.Frequency < 1 || *u.Frequency > 10 {
			return nil, util.ErrInvalidFrequency
		}
		updates["frequency"] = *u.Frequency
	}
	if u.Tone != nil {
		if !u.Tone.Valid() {
			return nil, util.ErrInvalidTone
		}
		updates["tone"] = *u.Tone
	}
	if u.NotificationTime != nil {
		clock, err := util.NormalizeClock(*u.NotificationTime)
		if err != nil {
			return nil, err
		}
		updates["notification_time"] = clock
	}
	if u.NotificationDays != nil {
		days, err := util.NormalizeWeekdays(u.NotificationDays)
		if err != nil {
			return nil, err
		}
		updates["notification_days"] = days
	}
	if u.HasOnboarded != nil {
		updates["has_onboarded"] = *u.HasOnboarded
	}
	if u.MainMission != nil {
		updates["main_mission"] = strings.TrimSpace(*u.MainMission)
	}
	if u.CurrentGoalIndex != nil {
		if *u.CurrentGoalIndex < 0 {
			updates["current_goal_index"] = 0
		} else {
			updates["current_goal_index"] = *u.CurrentGoalIndex
		}
	}
	return updates, nil
}
