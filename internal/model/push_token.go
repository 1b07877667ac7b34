package model

// PushToken 每个用户一个推送地址
type PushToken struct {
	BaseModel
	UserID   uint   `gorm:"uniqueIndex;not null" json:"-"`
	Token    string `gorm:"size:512;not null" json:"token"`
	Platform string `gorm:"size:20" json:"platform"`
}

func (PushToken) TableName() string {
	return "push_tokens"
}
