package model

import (
	"fmt"
	"time"
)

// Slot 一次调度对应的投递时段
type Slot struct {
	Time    string // 零填充 24 小时制 HH:MM
	Weekday string // Mon..Sun
	Date    string // YYYY-MM-DD
}

// SlotAt 计算 t 所在分钟的时段，t 应已转换到调度时区
func SlotAt(t time.Time) Slot {
	return Slot{
		Time:    fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()),
		Weekday: WeekdayNames[t.Weekday()],
		Date:    t.Format("2006-01-02"),
	}
}

func (s Slot) String() string {
	return s.Date + " " + s.Weekday + " " + s.Time
}

// DueUser 当前时段需要投递的用户
type DueUser struct {
	UserID           uint
	Name             string
	Tone             Tone
	MainMission      string
	NotificationTime string
	NotificationDays Weekdays
	Token            string
	Platform         string
}
