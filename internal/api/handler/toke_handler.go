package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"tokebook/internal/dto"
	"tokebook/internal/service"
	"tokebook/pkg/response"
)

// TokeHandler 小费池与签到 HTTP 处理器
type TokeHandler struct {
	tokeSvc service.TokeService
}

// NewTokeHandler 创建 TokeHandler
func NewTokeHandler(tokeSvc service.TokeService) *TokeHandler {
	return &TokeHandler{tokeSvc: tokeSvc}
}

// CurrentPeriod 今天的周期，不存在时自动创建
// GET /api/v1/periods/current
func (h *TokeHandler) CurrentPeriod(c *gin.Context) {
	h.caller(c, h.tokeSvc.CurrentPeriod)
}

// PreviousPeriod 昨天的周期
// GET /api/v1/periods/previous
func (h *TokeHandler) PreviousPeriod(c *gin.Context) {
	h.caller(c, h.tokeSvc.PreviousPeriod)
}

// ListPeriods 本赌场历史周期
// GET /api/v1/periods
func (h *TokeHandler) ListPeriods(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.PeriodListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c)
		return
	}

	list, total, err := h.tokeSvc.ListPeriods(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetPeriod 周期详情
// GET /api/v1/periods/:id
func (h *TokeHandler) GetPeriod(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	period, err := h.tokeSvc.GetPeriod(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, period)
}

// PeriodView 周期名册（含休假折算与汇总）
// GET /api/v1/periods/:id/roster
func (h *TokeHandler) PeriodView(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	view, err := h.tokeSvc.PeriodView(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, view)
}

// SetPool 设置奖池金额
// PUT /api/v1/periods/:id/pool
func (h *TokeHandler) SetPool(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.SetPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.tokeSvc.SetPoolAmount(c.Request.Context(), c.Param("id"), req.Amount, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Finalize 结算周期
// POST /api/v1/periods/:id/finalize
func (h *TokeHandler) Finalize(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	period, err := h.tokeSvc.Finalize(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, period)
}

// CreateSignOff 荷官签到
// POST /api/v1/sign-offs
func (h *TokeHandler) CreateSignOff(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateSignOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	signOff, err := h.tokeSvc.CreateSignOff(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, signOff)
}

// UpdateHours 调整签到的实际工时
// PUT /api/v1/sign-offs/:id/hours
func (h *TokeHandler) UpdateHours(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	signOff, err := h.tokeSvc.UpdateActualHours(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, signOff)
}

// LastShift 当前用户最近一次签到
// GET /api/v1/sign-offs/last
func (h *TokeHandler) LastShift(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	signOff, err := h.tokeSvc.LastShift(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, signOff)
}

func (h *TokeHandler) caller(c *gin.Context, fn func(ctx context.Context, callerID string) (*dto.PeriodResponse, error)) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	period, err := fn(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, period)
}
