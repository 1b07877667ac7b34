package controller

import (
	"becoming_backend/internal/service"
	"becoming_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PushTokenController struct {
	PushTokenService *service.PushTokenService
}

func NewPushTokenController(pushTokenService *service.PushTokenService) *PushTokenController {
	return &PushTokenController{PushTokenService: pushTokenService}
}

// swagger:model PushTokenRequest
type PushTokenRequest struct {
	Token    string `json:"token" binding:"required,pushtoken"`
	Platform string `json:"platform" binding:"omitempty,oneof=ios android web"`
}

// Register godoc
// @Summary 注册推送地址
// @Description 每个用户只保留一个推送地址，新地址覆盖旧地址
// @Tags 推送
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body PushTokenRequest true "推送地址"
// @Success 200 {object} util.Response{data=model.PushToken} "成功"
// @Failure 400 {object} util.Response "推送地址不合法"
// @Router /api/push-token [post]
func (c *PushTokenController) Register(ctx *gin.Context) {
	var req PushTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.PushTokenService.Register(ctx.Request.Context(), util.CurrentUserID(ctx), req.Token, req.Platform)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, token)
}

// Remove godoc
// @Summary 删除推送地址
// @Tags 推送
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "成功"
// @Router /api/push-token [delete]
func (c *PushTokenController) Remove(ctx *gin.Context) {
	if err := c.PushTokenService.Remove(ctx.Request.Context(), util.CurrentUserID(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
