package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdaysRoundTrip(t *testing.T) {
	days := Weekdays{"Mon", "Wed", "Fri"}
	v, err := days.Value()
	require.NoError(t, err)
	assert.Equal(t, "Mon,Wed,Fri", v)

	var scanned Weekdays
	require.NoError(t, scanned.Scan([]byte("Mon, Wed,,Fri")))
	assert.Equal(t, days, scanned)
	assert.True(t, scanned.Contains("Wed"))
	assert.False(t, scanned.Contains("We"))

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)
	assert.Error(t, scanned.Scan(42))
}

func TestSlotAtIsZeroPadded(t *testing.T) {
	at := time.Date(2026, time.October, 21, 9, 5, 30, 0, time.UTC)
	slot := SlotAt(at)

	assert.Equal(t, "09:05", slot.Time)
	assert.Equal(t, "Wed", slot.Weekday)
	assert.Equal(t, "2026-10-21", slot.Date)
}

func TestToneOrDefault(t *testing.T) {
	assert.Equal(t, ToneDirect, ToneDirect.OrDefault())
	assert.Equal(t, ToneGentle, Tone("shouty").OrDefault())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings(7)
	assert.Equal(t, uint(7), s.UserID)
	assert.Equal(t, 2, s.Frequency)
	assert.Equal(t, ToneGentle, s.Tone)
	assert.Equal(t, "10:00", s.NotificationTime)
	assert.Equal(t, Weekdays{"Mon", "Wed", "Fri"}, s.NotificationDays)
	assert.False(t, s.HasOnboarded)
}
