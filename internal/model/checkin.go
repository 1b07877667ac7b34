package model

type CheckInType string

const (
	CheckInGoal     CheckInType = "goal"
	CheckInIdentity CheckInType = "identity"
)

type CheckInResponse string

const (
	CheckInYes      CheckInResponse = "yes"
	CheckInSomewhat CheckInResponse = "somewhat"
	CheckInNo       CheckInResponse = "no"
)

// CheckIn 用户对某个目标或整体身份的每日自评
// swagger:model CheckIn
type CheckIn struct {
	UUIDBase
	UserID     uint            `gorm:"index;not null" json:"-"`
	Type       CheckInType     `gorm:"size:16;not null" json:"type"`
	GoalID     *string         `gorm:"size:36;index" json:"goalId,omitempty"`
	Date       string          `gorm:"size:10;index;not null" json:"date"`
	Response   CheckInResponse `gorm:"size:16;not null" json:"response"`
	Reflection string          `gorm:"type:text" json:"reflection"`
}

func (CheckIn) TableName() string {
	return "check_ins"
}
