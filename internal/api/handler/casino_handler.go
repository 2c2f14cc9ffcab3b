package handler

import (
	"github.com/gin-gonic/gin"

	"tokebook/internal/dto"
	"tokebook/internal/service"
	"tokebook/pkg/response"
)

// CasinoHandler 赌场模块 HTTP 处理器
type CasinoHandler struct {
	casinoSvc service.CasinoService
}

// NewCasinoHandler 创建 CasinoHandler
func NewCasinoHandler(casinoSvc service.CasinoService) *CasinoHandler {
	return &CasinoHandler{casinoSvc: casinoSvc}
}

// ListCasinos 赌场列表
// GET /api/v1/casinos
func (h *CasinoHandler) ListCasinos(c *gin.Context) {
	list, err := h.casinoSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetCasino 赌场详情
// GET /api/v1/casinos/:id
func (h *CasinoHandler) GetCasino(c *gin.Context) {
	casino, err := h.casinoSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, casino)
}

// CreateCasino 创建赌场
// POST /api/v1/casinos
func (h *CasinoHandler) CreateCasino(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CasinoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	casino, err := h.casinoSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, casino)
}

// UpdateCasino 修改赌场名称与班次边界
// PUT /api/v1/casinos/:id
func (h *CasinoHandler) UpdateCasino(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CasinoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	casino, err := h.casinoSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, casino)
}

// CurrentShift 赌场当前班次
// GET /api/v1/casinos/:id/current-shift
func (h *CasinoHandler) CurrentShift(c *gin.Context) {
	result, err := h.casinoSvc.CurrentShift(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}
