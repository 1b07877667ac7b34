package model

import "time"

// RefreshToken 只保存令牌的 SHA-256 摘要，使用一次后即作废
type RefreshToken struct {
	BaseModel
	UserID    uint      `gorm:"index;not null"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"not null;default:false"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
