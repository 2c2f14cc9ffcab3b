package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokebook/config"
	"tokebook/internal/api/handler"
	"tokebook/internal/api/middleware"
	"tokebook/internal/model"
	"tokebook/pkg/jwt"
	"tokebook/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时关闭 Token 黑名单与登录限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		blacklist middleware.Blacklist
		limiter   middleware.Limiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	r.Use(middleware.ClientInfo())

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow, logger), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 赌场模块
			casinos := authorized.Group("/casinos")
			{
				casinos.GET("", h.Casino.ListCasinos)
				casinos.GET("/:id", h.Casino.GetCasino)
				casinos.GET("/:id/current-shift", h.Casino.CurrentShift)
				casinos.POST("", middleware.RoleAuth(model.RoleAdmin), h.Casino.CreateCasino)
				casinos.PUT("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleCasinoManager), h.Casino.UpdateCasino)
			}

			// 用户模块
			users := authorized.Group("/users")
			{
				users.POST("/me/pencil/verify", h.User.VerifyPencil)
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.POST("/:id/archive", h.User.ArchiveUser)
				users.POST("/:id/reactivate", h.User.ReactivateUser)
				users.POST("/:id/pencil", middleware.RoleAuth(model.RoleCasinoManager), h.User.GrantPencil)
				users.DELETE("/:id/pencil", middleware.RoleAuth(model.RoleCasinoManager), h.User.RevokePencil)
			}

			// 小费池模块
			periods := authorized.Group("/periods")
			{
				periods.GET("", h.Toke.ListPeriods)
				periods.GET("/current", h.Toke.CurrentPeriod)
				periods.GET("/previous", h.Toke.PreviousPeriod)
				periods.GET("/:id", h.Toke.GetPeriod)
				periods.GET("/:id/roster", h.Toke.PeriodView)
				periods.PUT("/:id/pool", h.Toke.SetPool)
				periods.POST("/:id/finalize", h.Toke.Finalize)
				periods.GET("/:id/payouts.xlsx", h.Export.ExportPayouts)
			}

			// 签到模块
			signOffs := authorized.Group("/sign-offs")
			{
				signOffs.POST("", h.Toke.CreateSignOff)
				signOffs.GET("/last", h.Toke.LastShift)
				signOffs.PUT("/:id/hours", h.Toke.UpdateHours)
			}

			// 提前下班模块
			earlyOuts := authorized.Group("/early-outs")
			{
				earlyOuts.GET("", h.EarlyOut.CurrentList)
				earlyOuts.POST("", h.EarlyOut.Request)
				earlyOuts.GET("/:id", h.EarlyOut.Get)
				earlyOuts.DELETE("/:id", h.EarlyOut.Remove)
				earlyOuts.POST("/:id/authorize", h.EarlyOut.Authorize)
				earlyOuts.POST("/:id/deny", h.EarlyOut.Deny)
			}

			// 休假模块
			vacations := authorized.Group("/vacations")
			{
				vacations.GET("", h.Vacation.List)
				vacations.POST("", h.Vacation.Request)
				vacations.GET("/report", h.Vacation.MonthlyReport)
				vacations.GET("/history", h.Vacation.History)
				vacations.GET("/calendar.ics", h.Vacation.ExportICS)
				vacations.GET("/:id", h.Vacation.Get)
				vacations.POST("/:id/approve", h.Vacation.Approve)
				vacations.POST("/:id/deny", h.Vacation.Deny)
				vacations.POST("/:id/cancel", h.Vacation.Cancel)
			}

			// 差异模块
			discrepancies := authorized.Group("/discrepancies")
			{
				discrepancies.GET("", h.Discrepancy.List)
				discrepancies.POST("", h.Discrepancy.Report)
				discrepancies.GET("/:id", h.Discrepancy.Get)
				discrepancies.POST("/:id/verify", middleware.RoleAuth(model.RoleTokeManager), h.Discrepancy.Verify)
				discrepancies.POST("/:id/resolve", middleware.RoleAuth(model.RoleCasinoManager), h.Discrepancy.Resolve)
			}

			// 审计日志
			authorized.GET("/audit-logs", middleware.RoleAuth(model.RoleAdmin, model.RoleCasinoManager), h.Audit.List)
		}
	}

	return r
}
