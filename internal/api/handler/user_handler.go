package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"tokebook/internal/dto"
	"tokebook/internal/service"
	"tokebook/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// CreateUser 创建员工账号
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, user)
}

// ListUsers 用户列表
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c)
		return
	}

	list, total, err := h.userSvc.List(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetUser 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	h.byID(c, h.userSvc.Get)
}

// UpdateUser 修改用户资料、角色或所属赌场
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// ArchiveUser 归档
// POST /api/v1/users/:id/archive
func (h *UserHandler) ArchiveUser(c *gin.Context) {
	h.byID(c, h.userSvc.Archive)
}

// ReactivateUser 恢复已归档账号
// POST /api/v1/users/:id/reactivate
func (h *UserHandler) ReactivateUser(c *gin.Context) {
	h.byID(c, h.userSvc.Reactivate)
}

// GrantPencil 授予主管 pencil 权限
// POST /api/v1/users/:id/pencil
func (h *UserHandler) GrantPencil(c *gin.Context) {
	h.byID(c, h.userSvc.GrantPencil)
}

// RevokePencil 收回 pencil 权限
// DELETE /api/v1/users/:id/pencil
func (h *UserHandler) RevokePencil(c *gin.Context) {
	h.byID(c, h.userSvc.RevokePencil)
}

// VerifyPencil 主管校验自己的 pencil 编号
// POST /api/v1/users/me/pencil/verify
func (h *UserHandler) VerifyPencil(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.VerifyPencilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.userSvc.VerifyPencil(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *UserHandler) byID(c *gin.Context, fn func(ctx context.Context, id, callerID string) (*dto.UserResponse, error)) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	user, err := fn(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, user)
}
