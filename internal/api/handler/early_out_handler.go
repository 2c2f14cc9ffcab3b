package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"tokebook/internal/dto"
	"tokebook/internal/service"
	"tokebook/pkg/response"
)

// EarlyOutHandler 提前下班 HTTP 处理器
type EarlyOutHandler struct {
	earlyOutSvc service.EarlyOutService
}

// NewEarlyOutHandler 创建 EarlyOutHandler
func NewEarlyOutHandler(earlyOutSvc service.EarlyOutService) *EarlyOutHandler {
	return &EarlyOutHandler{earlyOutSvc: earlyOutSvc}
}

// Request 提交提前下班申请
// POST /api/v1/early-outs
func (h *EarlyOutHandler) Request(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateEarlyOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.earlyOutSvc.Request(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// CurrentList 今天的申请列表
// GET /api/v1/early-outs
func (h *EarlyOutHandler) CurrentList(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.EarlyOutListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c)
		return
	}

	list, err := h.earlyOutSvc.CurrentList(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Get 申请详情
// GET /api/v1/early-outs/:id
func (h *EarlyOutHandler) Get(c *gin.Context) {
	h.byID(c, h.earlyOutSvc.Get)
}

// Authorize 批准并写入实际工时
// POST /api/v1/early-outs/:id/authorize
func (h *EarlyOutHandler) Authorize(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.AuthorizeEarlyOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.earlyOutSvc.Authorize(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Deny 拒绝
// POST /api/v1/early-outs/:id/deny
func (h *EarlyOutHandler) Deny(c *gin.Context) {
	h.byID(c, h.earlyOutSvc.Deny)
}

// Remove 申请人撤回
// DELETE /api/v1/early-outs/:id
func (h *EarlyOutHandler) Remove(c *gin.Context) {
	h.byID(c, h.earlyOutSvc.Remove)
}

func (h *EarlyOutHandler) byID(c *gin.Context, fn func(ctx context.Context, id, callerID string) (*dto.EarlyOutResponse, error)) {
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
