package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

type Tone string

const (
	ToneGentle       Tone = "gentle"
	ToneDirect       Tone = "direct"
	ToneMotivational Tone = "motivational"
)

// Tones 所有合法语气
var Tones = []Tone{ToneGentle, ToneDirect, ToneMotivational}

func (t Tone) Valid() bool {
	switch t {
	case ToneGentle, ToneDirect, ToneMotivational:
		return true
	}
	return false
}

// OrDefault 非法语气回退为 gentle
func (t Tone) OrDefault() Tone {
	if t.Valid() {
		return t
	}
	return ToneGentle
}

// WeekdayNames 按 time.Weekday 顺序排列的星期缩写
var WeekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func ValidWeekday(day string) bool {
	for _, d := range WeekdayNames {
		if d == day {
			return true
		}
	}
	return false
}

// Weekdays 以逗号分隔字符串存储的星期集合，如 "Mon,Wed,Fri"
type Weekdays []string

func (w Weekdays) Contains(day string) bool {
	for _, d := range w {
		if d == day {
			return true
		}
	}
	return false
}

func (w Weekdays) Value() (driver.Value, error) {
	return strings.Join(w, ","), nil
}

func (w *Weekdays) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*w = Weekdays{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("weekdays: unsupported type %T", src)
	}

	days := Weekdays{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			days = append(days, part)
		}
	}
	*w = days
	return nil
}

func (Weekdays) GormDataType() string {
	return "string"
}

// Settings 用户的推送与引导设置
// swagger:model Settings
type Settings struct {
	BaseModel
	UserID           uint     `gorm:"uniqueIndex;not null" json:"-"`
	Frequency        int      `gorm:"default:2" json:"notificationFrequency"`
	Tone             Tone     `gorm:"size:20;default:gentle" json:"notificationTone"`
	NotificationTime string   `gorm:"size:5;index" json:"notificationTime"`
	NotificationDays Weekdays `gorm:"size:64" json:"notificationDays"`
	HasOnboarded     bool     `gorm:"default:false" json:"hasOnboarded"`
	MainMission      string   `gorm:"type:text" json:"mainMission"`
	CurrentGoalIndex int      `gorm:"default:0" json:"currentGoalIndex"`
}

func (Settings) TableName() string {
	return "user_settings"
}

// DefaultSettings 新用户的默认设置
func DefaultSettings(userID uint) *Settings {
	return &Settings{
		UserID:           userID,
		Frequency:        2,
		Tone:             ToneGentle,
		NotificationTime: "10:00",
		NotificationDays: Weekdays{"Mon", "Wed", "Fri"},
	}
}
