package util

import (
	"becoming_backend/internal/model"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10:00", want: "10:00"},
		{in: "9:05", want: "09:05"},
		{in: " 23:59 ", want: "23:59"},
		{in: "0:00", want: "00:00"},
		{in: "24:00", wantErr: true},
		{in: "10:60", wantErr: true},
		{in: "10:5", wantErr: true},
		{in: "1000", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeClock(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidClock, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeWeekdays(t *testing.T) {
	days, err := NormalizeWeekdays([]string{"Fri", "Mon", "Wed", "Mon"})
	require.NoError(t, err)
	assert.Equal(t, model.Weekdays{"Mon", "Wed", "Fri"}, days)

	_, err = NormalizeWeekdays([]string{"Monday"})
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	days, err = NormalizeWeekdays(nil)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "ada@example.com"}
	user.ID = 42

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)
}

func TestCustomValidationTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, registerOn(v, func(token string) bool {
		return strings.HasPrefix(token, "ok-")
	}))

	type payload struct {
		Token string   `validate:"required,pushtoken"`
		Time  string   `validate:"omitempty,clock"`
		Days  []string `validate:"omitempty,dive,weekday"`
	}

	assert.NoError(t, v.Struct(payload{Token: "ok-1", Time: "7:30", Days: []string{"Mon"}}))
	assert.Error(t, v.Struct(payload{Token: "nope"}))
	assert.Error(t, v.Struct(payload{Token: "ok-1", Time: "7:3"}))
	assert.Error(t, v.Struct(payload{Token: "ok-1", Days: []string{"Funday"}}))
}
