package model

import "time"

// SignalCategory 信号文本的修辞形式
type SignalCategory string

const (
	CategoryInquiry   SignalCategory = "inquiry"
	CategoryManifesto SignalCategory = "manifesto"
	CategoryInsight   SignalCategory = "insight"
)

func (c SignalCategory) Valid() bool {
	switch c {
	case CategoryInquiry, CategoryManifesto, CategoryInsight:
		return true
	}
	return false
}

// TargetType 信号指向单个目标还是整体使命
type TargetType string

const (
	TargetGoal     TargetType = "goal"
	TargetIdentity TargetType = "identity"
)

func (t TargetType) Valid() bool {
	return t == TargetGoal || t == TargetIdentity
}

type Feedback string

const (
	FeedbackLike    Feedback = "like"
	FeedbackDislike Feedback = "dislike"
	FeedbackNone    Feedback = "none"
)

func (f Feedback) Valid() bool {
	switch f {
	case FeedbackLike, FeedbackDislike, FeedbackNone:
		return true
	}
	return false
}

type SignalOrigin string

const (
	OriginScheduled SignalOrigin = "scheduled"
	OriginOnDemand  SignalOrigin = "on_demand"
	OriginClient    SignalOrigin = "client"
)

// Signal 一条生成并记录的推送内容。
// TargetIdentity 按标题软引用目标，目标被删除或改名后历史信号仍然有效。
// swagger:model Signal
type Signal struct {
	UUIDBase
	UserID         uint           `gorm:"index:idx_signals_user_created,priority:1;not null" json:"-"`
	Text           string         `gorm:"type:text;not null" json:"text"`
	Category       SignalCategory `gorm:"size:16;not null" json:"type"`
	TargetType     TargetType     `gorm:"size:16;not null" json:"targetType"`
	TargetIdentity string         `gorm:"size:255" json:"targetIdentity,omitempty"`
	Feedback       Feedback       `gorm:"size:16;default:none;not null" json:"feedback"`
	Origin         SignalOrigin   `gorm:"size:16;default:scheduled" json:"origin"`
}

func (Signal) TableName() string {
	return "signals"
}

// Timestamp 信号创建时间
func (s *Signal) Timestamp() time.Time {
	return s.CreatedAt
}
