package service

import (
	"becoming_backend/internal/config"
	"becoming_backend/internal/model"
	"becoming_backend/internal/repository"
	"becoming_backend/internal/util"
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenPair 访问令牌和一次性刷新令牌
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type AuthService struct {
	UserRepo  *repository.UserRepository
	TokenRepo *repository.RefreshTokenRepository
	Cfg       *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, tokenRepo *repository.RefreshTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:  userRepo,
		TokenRepo: tokenRepo,
		Cfg:       cfg,
	}
}

// Register 创建用户和默认设置并签发令牌
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, *TokenPair, error) {
	email = normalizeEmail(email)

	_, err := s.UserRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashedPassword),
		Provider: "email",
	}
	if err := s.UserRepo.CreateWithSettings(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := s.UserRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, util.ErrInvalidCredentials
	}

	if err := s.UserRepo.TouchLogin(ctx, user.ID); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Refresh 作废旧的刷新令牌并签发新的一对
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	old, err := s.TokenRepo.Consume(ctx, util.HashRefreshToken(refreshToken), time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidRefresh
		}
		return nil, err
	}

	user, err := s.UserRepo.FindByID(ctx, old.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidRefresh
		}
		return nil, err
	}
	return s.issue(ctx, user)
}

// Logout 作废用户全部刷新令牌，已签发的访问令牌到期前仍然有效
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.TokenRepo.RevokeAllByUser(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	refresh, hash, err := util.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.TokenRepo.Create(ctx, &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.Cfg.JWT.RefreshExpireTime),
	}); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
