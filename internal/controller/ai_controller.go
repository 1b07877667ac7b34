package controller

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/notify"
	"becoming_backend/internal/service"
	"becoming_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type AIController struct {
	AIService *service.AIService
}

func NewAIController(aiService *service.AIService) *AIController {
	return &AIController{AIService: aiService}
}

// swagger:model ReframeRequest
type ReframeRequest struct {
	Title string     `json:"title" binding:"required,max=255"`
	Note  string     `json:"note"`
	Tone  model.Tone `json:"tone" binding:"omitempty,oneof=gentle direct motivational"`
}

// ReframeGoal godoc
// @Summary 把目标改写成身份陈述
// @Description 模型不可用时返回确定性的兜底结果
// @Tags AI
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ReframeRequest true "目标"
// @Success 200 {object} util.Response{data=service.Reframe} "成功"
// @Router /api/ai/reframe-goal [post]
func (c *AIController) ReframeGoal(ctx *gin.Context) {
	var req ReframeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.AIService.ReframeGoal(ctx.Request.Context(), req.Title, req.Note, req.Tone))
}

// GenerateMission godoc
// @Summary 根据已保存的目标生成使命
// @Tags AI
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/ai/generate-mission [post]
func (c *AIController) GenerateMission(ctx *gin.Context) {
	mission, fallback, err := c.AIService.GenerateMission(ctx.Request.Context(), util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"mainMission": mission, "fallback": fallback})
}

// GenerateSignal godoc
// @Summary 立即生成一条信号
// @Description 保存到历史但不推送
// @Tags AI
// @Produce  json
// @Security ApiKeyAuth
// @Success 201 {object} util.Response{data=model.Signal} "创建成功"
// @Failure 409 {object} util.Response "没有目标也没有使命"
// @Router /api/ai/generate-signal [post]
func (c *AIController) GenerateSignal(ctx *gin.Context) {
	signal, err := c.AIService.GenerateSignal(ctx.Request.Context(), util.CurrentUserID(ctx))
	if errors.Is(err, notify.ErrNothingToTarget) {
		util.Conflict(ctx, err.Error())
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, signal)
}
