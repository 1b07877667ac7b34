package util

import (
	"becoming_backend/internal/model"
	"fmt"
	"strconv"
	"strings"
)

// NormalizeClock 把 "9:05"、"09:05" 统一成零填充的 "09:05"
func NormalizeClock(raw string) (string, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return "", ErrInvalidClock
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", ErrInvalidClock
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", ErrInvalidClock
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// NormalizeWeekdays 校验星期缩写并按周日到周六排序去重
func NormalizeWeekdays(days []string) (model.Weekdays, error) {
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		if !model.ValidWeekday(d) {
			return nil, ErrInvalidWeekday
		}
		seen[d] = true
	}

	out := model.Weekdays{}
	for _, d := range model.WeekdayNames {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out, nil
}
