package model

// Goal 一个身份目标，Title 是简短的身份标签
// swagger:model Goal
type Goal struct {
	UUIDBase
	UserID       uint   `gorm:"index;not null" json:"-"`
	Title        string `gorm:"size:255;not null" json:"title"`
	NorthStar    string `gorm:"type:text" json:"northStar"`
	WhyItMatters string `gorm:"type:text" json:"whyItMatters"`
	Note         string `gorm:"type:text" json:"note"`
}

func (Goal) TableName() string {
	return "goals"
}
