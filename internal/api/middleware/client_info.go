package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"

	"tokebook/internal/service"
)

// ClientInfo 解析请求来源（IP、浏览器、操作系统）并写入 request context，供审计日志使用
func ClientInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Request.UserAgent()
		info := service.ClientInfo{
			IP:        c.ClientIP(),
			UserAgent: raw,
		}
		if raw != "" {
			ua := user_agent.New(raw)
			name, version := ua.Browser()
			if name != "" {
				info.Browser = name
				if version != "" {
					info.Browser += " " + version
				}
			}
			info.OS = ua.OS()
			info.Mobile = ua.Mobile()
		}

		c.Request = c.Request.WithContext(service.WithClientInfo(c.Request.Context(), info))
		c.Next()
	}
}
