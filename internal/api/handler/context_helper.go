package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"tokebook/pkg/response"
)

// 上下文键，由 JWTAuth 中间件写入
const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxCasinoID = "casino_id"
	ctxTokenJTI = "token_jti"
	ctxTokenExp = "token_exp"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(ctxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	s := c.GetString(ctxRole)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// GetCasinoID 提取 casino_id；管理员没有所属赌场，返回空串
func GetCasinoID(c *gin.Context) string {
	return c.GetString(ctxCasinoID)
}

// GetToken 提取当前 Access Token 的 jti 与过期时间
func GetToken(c *gin.Context) (string, time.Time) {
	return c.GetString(ctxTokenJTI), c.GetTime(ctxTokenExp)
}
