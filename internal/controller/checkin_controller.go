package controller

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/service"
	"becoming_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CheckInController struct {
	CheckInService *service.CheckInService
}

func NewCheckInController(checkInService *service.CheckInService) *CheckInController {
	return &CheckInController{CheckInService: checkInService}
}

// swagger:model CheckInRequest
type CheckInRequest struct {
	Type       model.CheckInType     `json:"type" binding:"required,oneof=goal identity"`
	GoalID     string                `json:"goalId" binding:"omitempty,uuid"`
	Date       string                `json:"date" binding:"required"`
	Response   model.CheckInResponse `json:"response" binding:"required,oneof=yes somewhat no"`
	Reflection string                `json:"reflection"`
}

// List godoc
// @Summary 自评记录
// @Tags 自评
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "条数"
// @Success 200 {object} util.Response{data=[]model.CheckIn} "成功"
// @Router /api/check-ins [get]
func (c *CheckInController) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))

	checkIns, err := c.CheckInService.List(ctx.Request.Context(), util.CurrentUserID(ctx), limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, checkIns)
}

// Record godoc
// @Summary 记录自评
// @Description 同一天对同一对象重复提交会覆盖之前的回答
// @Tags 自评
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CheckInRequest true "自评"
// @Success 200 {object} util.Response{data=model.CheckIn} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/check-ins [post]
func (c *CheckInController) Record(ctx *gin.Context) {
	var req CheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	checkIn, err := c.CheckInService.Record(ctx.Request.Context(), util.CurrentUserID(ctx), service.CheckInInput{
		Type:       req.Type,
		GoalID:     req.GoalID,
		Date:       req.Date,
		Response:   req.Response,
		Reflection: req.Reflection,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, checkIn)
}
