package handler

import (
	"github.com/gin-gonic/gin"

	"tokebook/internal/dto"
	"tokebook/internal/service"
	"tokebook/pkg/response"
)

// DiscrepancyHandler 清点差异 HTTP 处理器
type DiscrepancyHandler struct {
	discrepancySvc service.DiscrepancyService
}

// NewDiscrepancyHandler 创建 DiscrepancyHandler
func NewDiscrepancyHandler(discrepancySvc service.DiscrepancyService) *DiscrepancyHandler {
	return &DiscrepancyHandler{discrepancySvc: discrepancySvc}
}

// Report 上报差异
// POST /api/v1/discrepancies
func (h *DiscrepancyHandler) Report(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ReportDiscrepancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.discrepancySvc.Report(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// List 差异列表
// GET /api/v1/discrepancies
func (h *DiscrepancyHandler) List(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.DiscrepancyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c)
		return
	}

	list, total, err := h.discrepancySvc.List(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 差异详情
// GET /api/v1/discrepancies/:id
func (h *DiscrepancyHandler) Get(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	result, err := h.discrepancySvc.Get(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// Verify 小费经理核实
// POST /api/v1/discrepancies/:id/verify
func (h *DiscrepancyHandler) Verify(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.VerifyDiscrepancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.discrepancySvc.Verify(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Resolve 赌场经理处理
// POST /api/v1/discrepancies/:id/resolve
func (h *DiscrepancyHandler) Resolve(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ResolveDiscrepancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.discrepancySvc.Resolve(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}
