package cli

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/notify"
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTickTime(t *testing.T) {
	now := time.Date(2026, time.October, 21, 9, 59, 0, 0, time.UTC)

	got, err := parseTickTime("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = parseTickTime("2026-10-21T10:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, "10:00", model.SlotAt(got).Time)
	assert.Equal(t, "Wed", model.SlotAt(got).Weekday)

	_, err = parseTickTime("Wednesday at ten", now)
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	report := notify.TickReport{RunID: "01J", Due: 2, Delivered: 2}
	require.NoError(t, writeReport(&buf, report))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "01J", decoded["runId"])
	assert.Equal(t, float64(2), decoded["delivered"])

	buf.Reset()
	failed := notify.TickReport{Err: errors.New("due query failed")}
	assert.EqualError(t, writeReport(&buf, failed), "due query failed")
	assert.Empty(t, buf.String())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range RootCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["tick"])

	flag := RootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "configs", flag.DefValue)
}
