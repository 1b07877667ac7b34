package controller

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/service"
	"becoming_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	SettingsService *service.SettingsService
}

func NewSettingsController(settingsService *service.SettingsService) *SettingsController {
	return &SettingsController{SettingsService: settingsService}
}

// SettingsRequest 部分更新，缺省字段不修改
// swagger:model SettingsRequest
type SettingsRequest struct {
	NotificationFrequency *int        `json:"notificationFrequency" binding:"omitempty,min=1,max=10"`
	NotificationTone      *model.Tone `json:"notificationTone" binding:"omitempty,oneof=gentle direct motivational"`
	NotificationTime      *string     `json:"notificationTime" binding:"omitempty,clock"`
	NotificationDays      []string    `json:"notificationDays" binding:"omitempty,dive,weekday"`
	HasOnboarded          *bool       `json:"hasOnboarded"`
	MainMission           *string     `json:"mainMission"`
	CurrentGoalIndex      *int        `json:"currentGoalIndex"`
}

// Get godoc
// @Summary 获取推送设置
// @Tags 设置
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Settings} "成功"
// @Router /api/settings [get]
func (c *SettingsController) Get(ctx *gin.Context) {
	settings, err := c.SettingsService.Get(ctx.Request.Context(), util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// Update godoc
// @Summary 修改推送设置
// @Description 时间统一为零填充的 HH:MM
// @Tags 设置
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SettingsRequest true "设置"
// @Success 200 {object} util.Response{data=model.Settings} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/settings [put]
func (c *SettingsController) Update(ctx *gin.Context) {
	var req SettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	settings, err := c.SettingsService.Update(ctx.Request.Context(), util.CurrentUserID(ctx), service.SettingsUpdate{
		Frequency:        req.NotificationFrequency,
		Tone:             req.NotificationTone,
		NotificationTime: req.NotificationTime,
		NotificationDays: req.NotificationDays,
		HasOnboarded:     req.HasOnboarded,
		MainMission:      req.MainMission,
		CurrentGoalIndex: req.CurrentGoalIndex,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}
