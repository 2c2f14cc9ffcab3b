package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tokebook/internal/dto"
	"tokebook/internal/service"
	"tokebook/pkg/response"
)

// VacationHandler 休假 HTTP 处理器
type VacationHandler struct {
	vacationSvc service.VacationService
}

// NewVacationHandler 创建 VacationHandler
func NewVacationHandler(vacationSvc service.VacationService) *VacationHandler {
	return &VacationHandler{vacationSvc: vacationSvc}
}

// Request 提交休假申请
// POST /api/v1/vacations
func (h *VacationHandler) Request(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateVacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.vacationSvc.Request(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// List 休假列表（荷官只能看到自己的）
// GET /api/v1/vacations
func (h *VacationHandler) List(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.VacationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c)
		return
	}

	list, err := h.vacationSvc.List(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// MonthlyReport 月度已批准休假
// GET /api/v1/vacations/report?year=2024&month=4
func (h *VacationHandler) MonthlyReport(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.MonthlyReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c)
		return
	}

	list, err := h.vacationSvc.MonthlyReport(c.Request.Context(), req.Year, req.Month, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// History 当前用户按月分组的休假历史
// GET /api/v1/vacations/history
func (h *VacationHandler) History(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	groups, err := h.vacationSvc.History(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, gin.H{"list": groups})
}

// ExportICS 导出已批准休假日历
// GET /api/v1/vacations/calendar.ics
func (h *VacationHandler) ExportICS(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	data, err := h.vacationSvc.ExportICS(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="vacations.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// Get 休假详情
// GET /api/v1/vacations/:id
func (h *VacationHandler) Get(c *gin.Context) {
	h.byID(c, h.vacationSvc.Get)
}

// Approve 批准
// POST /api/v1/vacations/:id/approve
func (h *VacationHandler) Approve(c *gin.Context) {
	h.byID(c, h.vacationSvc.Approve)
}

// Deny 拒绝
// POST /api/v1/vacations/:id/deny
func (h *VacationHandler) Deny(c *gin.Context) {
	h.byID(c, h.vacationSvc.Deny)
}

// Cancel 申请人取消
// POST /api/v1/vacations/:id/cancel
func (h *VacationHandler) Cancel(c *gin.Context) {
	h.byID(c, h.vacationSvc.Cancel)
}

func (h *VacationHandler) byID(c *gin.Context, fn func(ctx context.Context, id, callerID string) (*dto.VacationResponse, error)) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}
