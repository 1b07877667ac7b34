package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("refresh token expired or revoked")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrGoalNotFound       = errors.New("goal not found")
	ErrLastGoal           = errors.New("at least one goal is required")
	ErrSignalNotFound     = errors.New("signal not found")
	ErrSignalExists       = errors.New("signal already exists")
	ErrInvalidFeedback    = errors.New("feedback must be like, dislike or none")
	ErrInvalidPushToken   = errors.New("invalid push token")
	ErrInvalidClock       = errors.New("time must be HH:MM in 24-hour format")
	ErrInvalidWeekday     = errors.New("days must be Mon, Tue, Wed, Thu, Fri, Sat or Sun")
	ErrInvalidTone        = errors.New("tone must be gentle, direct or motivational")
	ErrInvalidFrequency   = errors.New("frequency must be between 1 and 10")
	ErrInvalidID          = errors.New("id must be a UUID")
	ErrInvalidSignal      = errors.New("signal text, type or target is invalid")
	ErrInvalidCheckIn     = errors.New("check-in type, date or response is invalid")
	ErrInvalidFile        = errors.New("file must be an image no larger than 5MB")
)
