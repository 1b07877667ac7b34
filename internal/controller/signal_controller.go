package controller

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/service"
	"becoming_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SignalController struct {
	SignalService *service.SignalService
}

func NewSignalController(signalService *service.SignalService) *SignalController {
	return &SignalController{SignalService: signalService}
}

// swagger:model SignalRequest
type SignalRequest struct {
	ID             string               `json:"id" binding:"omitempty,uuid"`
	Text           string               `json:"text" binding:"required"`
	Type           model.SignalCategory `json:"type" binding:"required,oneof=inquiry manifesto insight"`
	TargetType     model.TargetType     `json:"targetType" binding:"required,oneof=goal identity"`
	TargetIdentity string               `json:"targetIdentity"`
}

// swagger:model FeedbackRequest
type FeedbackRequest struct {
	Feedback model.Feedback `json:"feedback" binding:"required"`
}

// List godoc
// @Summary 信号历史
// @Description 最新的在前
// @Tags 信号
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "条数" default(50)
// @Success 200 {object} util.Response{data=[]model.Signal} "成功"
// @Router /api/signals [get]
func (c *SignalController) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(util.SignalListLimit)))

	signals, err := c.SignalService.List(ctx.Request.Context(), util.CurrentUserID(ctx), limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, signals)
}

// Create godoc
// @Summary 保存客户端生成的信号
// @Tags 信号
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SignalRequest true "信号"
// @Success 201 {object} util.Response{data=model.Signal} "创建成功"
// @Failure 409 {object} util.Response "信号已存在"
// @Router /api/signals [post]
func (c *SignalController) Create(ctx *gin.Context) {
	var req SignalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	signal, err := c.SignalService.Create(ctx.Request.Context(), util.CurrentUserID(ctx), service.SignalInput{
		ID:             req.ID,
		Text:           req.Text,
		Type:           req.Type,
		TargetType:     req.TargetType,
		TargetIdentity: req.TargetIdentity,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, signal)
}

// SetFeedback godoc
// @Summary 设置信号反馈
// @Description 重复提交相同的值不产生修改
// @Tags 信号
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "信号ID"
// @Param   body body FeedbackRequest true "反馈"
// @Success 200 {object} util.Response{data=model.Signal} "成功"
// @Failure 400 {object} util.Response "反馈值不合法"
// @Failure 404 {object} util.Response "信号不存在"
// @Router /api/signals/{id}/feedback [patch]
func (c *SignalController) SetFeedback(ctx *gin.Context) {
	var req FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	signal, err := c.SignalService.SetFeedback(ctx.Request.Context(), util.CurrentUserID(ctx), ctx.Param("id"), req.Feedback)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, signal)
}
