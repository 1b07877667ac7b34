package service

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/repository"
	"becoming_backend/internal/util"
	"context"
	"strings"
)

type PushTokenService struct {
	TokenRepo  *repository.PushTokenRepository
	ValidToken func(string) bool
}

func NewPushTokenService(tokenRepo *repository.PushTokenRepository, validToken func(string) bool) *PushTokenService {
	return &PushTokenService{TokenRepo: tokenRepo, ValidToken: validToken}
}

// Register 每个用户只保留最新的推送地址
func (s *PushTokenService) Register(ctx context.Context, userID uint, token, platform string) (*model.PushToken, error) {
	token = strings.TrimSpace(token)
	if !s.ValidToken(token) {
		return nil, util.ErrInvalidPushToken
	}

	pt := &model.PushToken{UserID: userID, Token: token, Platform: strings.ToLower(strings.TrimSpace(platform))}
	if err := s.TokenRepo.Upsert(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *PushTokenService) Remove(ctx context.Context, userID uint) error {
	return s.TokenRepo.DeleteByUser(ctx, userID)
}
