package service

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/repository"
	"becoming_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"
)

// UserService 用户资料
type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Storage:  storage,
	}
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, name string) (*model.User, error) {
	if err := s.UserRepo.UpdateProfile(ctx, id, strings.TrimSpace(name), ""); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

// UploadAvatar 校验图片类型和大小后上传，并更新头像地址
func (s *UserService) UploadAvatar(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader) (*model.User, error) {
	if header.Size > util.MaxAvatarBytes {
		return nil, util.ErrInvalidFile
	}

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		return nil, util.ErrInvalidFile
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%d/%s%s", id, model.NewID(), util.AvatarExtension(header.Filename, mimeType))
	url, err := s.Storage.Upload(ctx, key, file, header.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	if err := s.UserRepo.UpdateProfile(ctx, id, "", url); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

// DeleteAccount 删除账号及全部数据，之后该用户不再出现在到期查询中
func (s *UserService) DeleteAccount(ctx context.Context, id uint) error {
	err := s.UserRepo.DeleteAccount(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	return err
}
