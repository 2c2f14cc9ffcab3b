package handler

import (
	"github.com/gin-gonic/gin"

	pkgerrors "tokebook/pkg/errors"
	"tokebook/pkg/response"
)

// respondError 将业务错误映射为 HTTP 响应
// 业务错误按分类取状态码；其余错误记入 gin.Context 由日志中间件输出，对外只返回 500
func respondError(c *gin.Context, err error) {
	if e, ok := pkgerrors.As(err); ok {
		response.Error(c, e.Kind.HTTPStatus(), e.Code, e.Reason)
		return
	}
	_ = c.Error(err)
	response.InternalError(c)
}

// badRequest 参数绑定失败
func badRequest(c *gin.Context) {
	response.BadRequest(c, 10001, "参数校验失败")
}
