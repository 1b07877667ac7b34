package controller

import (
	"becoming_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusOf 业务错误对应的 HTTP 状态码，未知错误返回 0
func statusOf(err error) int {
	switch {
	case errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrGoalNotFound),
		errors.Is(err, util.ErrSignalNotFound):
		return http.StatusNotFound
	case errors.Is(err, util.ErrEmailRegistered),
		errors.Is(err, util.ErrSignalExists),
		errors.Is(err, util.ErrLastGoal):
		return http.StatusConflict
	case errors.Is(err, util.ErrInvalidCredentials),
		errors.Is(err, util.ErrInvalidRefresh):
		return http.StatusUnauthorized
	case errors.Is(err, util.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, util.ErrInvalidFeedback),
		errors.Is(err, util.ErrInvalidPushToken),
		errors.Is(err, util.ErrInvalidClock),
		errors.Is(err, util.ErrInvalidWeekday),
		errors.Is(err, util.ErrInvalidTone),
		errors.Is(err, util.ErrInvalidFrequency),
		errors.Is(err, util.ErrInvalidID),
		errors.Is(err, util.ErrInvalidSignal),
		errors.Is(err, util.ErrInvalidCheckIn),
		errors.Is(err, util.ErrInvalidFile):
		return http.StatusBadRequest
	}
	return 0
}

// respondError 已知错误按状态码返回，其余记录日志并返回 500
func respondError(ctx *gin.Context, err error) {
	if code := statusOf(err); code != 0 {
		util.Error(ctx, code, err.Error())
		return
	}
	util.LogInternalError(ctx, err)
}
