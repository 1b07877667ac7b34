package controller

import (
	"becoming_backend/internal/service"
	"becoming_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GoalController struct {
	GoalService *service.GoalService
}

func NewGoalController(goalService *service.GoalService) *GoalController {
	return &GoalController{GoalService: goalService}
}

// GoalRequest 创建或修改目标
// swagger:model GoalRequest
type GoalRequest struct {
	ID           string `json:"id" binding:"omitempty,uuid"`
	Title        string `json:"title" binding:"required,max=255"`
	NorthStar    string `json:"northStar"`
	WhyItMatters string `json:"whyItMatters"`
	Note         string `json:"note"`
}

func (r GoalRequest) input() service.GoalInput {
	return service.GoalInput{
		ID:           r.ID,
		Title:        r.Title,
		NorthStar:    r.NorthStar,
		WhyItMatters: r.WhyItMatters,
		Note:         r.Note,
	}
}

// List godoc
// @Summary 目标列表
// @Description 按创建顺序返回
// @Tags 目标
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Goal} "成功"
// @Router /api/goals [get]
func (c *GoalController) List(ctx *gin.Context) {
	goals, err := c.GoalService.List(ctx.Request.Context(), util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goals)
}

// Create godoc
// @Summary 创建目标
// @Description 客户端可以提供 id，同一 id 重复提交返回已有目标
// @Tags 目标
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body GoalRequest true "目标"
// @Success 201 {object} util.Response{data=model.Goal} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/goals [post]
func (c *GoalController) Create(ctx *gin.Context) {
	var req GoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.Create(ctx.Request.Context(), util.CurrentUserID(ctx), req.input())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, goal)
}

// Update godoc
// @Summary 修改目标
// @Tags 目标
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "目标ID"
// @Param   body body GoalRequest true "目标"
// @Success 200 {object} util.Response{data=model.Goal} "成功"
// @Failure 404 {object} util.Response "目标不存在"
// @Router /api/goals/{id} [put]
func (c *GoalController) Update(ctx *gin.Context) {
	var req GoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.Update(ctx.Request.Context(), util.CurrentUserID(ctx), ctx.Param("id"), req.input())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// Delete godoc
// @Summary 删除目标
// @Description 不能删除最后一个目标
// @Tags 目标
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "目标ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "目标不存在"
// @Failure 409 {object} util.Response "至少保留一个目标"
// @Router /api/goals/{id} [delete]
func (c *GoalController) Delete(ctx *gin.Context) {
	if err := c.GoalService.Delete(ctx.Request.Context(), util.CurrentUserID(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}
