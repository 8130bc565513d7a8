package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/config"
	"github.com/ElberTsolindo/pmsfcacademy/internal/api/handler"
	"github.com/ElberTsolindo/pmsfcacademy/internal/api/middleware"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/jwt"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/metrics"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时黑名单与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 接口类型的 nil 需要显式处理，避免 typed-nil
	var blacklist middleware.TokenBlacklist
	var limiter middleware.RateLimiter
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", healthHandler(db, rdb))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	admin := middleware.RoleAuth(model.RoleAdmin)
	staff := middleware.RoleAuth(model.StaffRoles...)
	registration := middleware.RoleAuth(model.RoleAdmin, model.RoleRegistrationManager)
	frequency := middleware.RoleAuth(model.RoleAdmin, model.RoleAttendanceManager)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		loginLimit := middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, time.Minute)

		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", loginLimit, h.Auth.Login)
			auth.POST("/member-login", loginLimit, h.Auth.MemberLogin)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 学员自助
			me := authorized.Group("/me", middleware.RoleAuth(model.RoleMember))
			{
				me.GET("/dashboard", h.Dashboard.Dashboard)
			}

			// 以下仅限工作人员
			st := authorized.Group("", staff)

			st.GET("/auth/me", h.Auth.Me)
			st.PUT("/auth/password", h.Auth.ChangePassword)

			// 工作人员账号
			users := st.Group("/users", admin)
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
				users.POST("/:id/reset-password", h.User.ResetPassword)
			}

			// 学员：登记类写操作归登记管理员，停训恢复归考勤管理员
			members := st.Group("/members")
			{
				members.GET("", h.Member.ListMembers)
				members.POST("", registration, h.Member.CreateMember)
				members.POST("/import", registration, h.Member.ImportMembers)
				members.GET("/:id", h.Member.GetMember)
				members.PUT("/:id", registration, h.Member.UpdateMember)
				members.DELETE("/:id", registration, h.Member.DeleteMember)
				members.POST("/:id/reactivate", frequency, h.Member.ReactivateMember)
				members.GET("/:id/eligibility", h.Member.Eligibility)
				members.GET("/:id/absences", h.Member.Absences)
				members.GET("/:id/attendance", h.Member.AttendanceHistory)
			}

			// 训练时段
			timeSlots := st.Group("/time-slots")
			{
				timeSlots.GET("", h.TimeSlot.ListTimeSlots)
				timeSlots.GET("/available", h.TimeSlot.ListAvailable)
				timeSlots.GET("/:id", h.TimeSlot.GetTimeSlot)
				timeSlots.POST("", registration, h.TimeSlot.CreateTimeSlot)
				timeSlots.PUT("/:id", registration, h.TimeSlot.UpdateTimeSlot)
				timeSlots.PUT("/:id/toggle", registration, h.TimeSlot.ToggleTimeSlot)
				timeSlots.DELETE("/:id", registration, h.TimeSlot.DeleteTimeSlot)
			}

			// 签到
			attendance := st.Group("/attendance", frequency)
			{
				attendance.POST("/check-in", h.Attendance.CheckIn)
				attendance.GET("", h.Attendance.ListByDate)
				attendance.DELETE("/:member_id/:date", h.Attendance.Remove)
			}

			// 缺勤说明
			justifications := st.Group("/justifications", frequency)
			{
				justifications.GET("", h.Justification.List)
				justifications.GET("/reasons", h.Justification.Reasons)
				justifications.POST("", h.Justification.Create)
				justifications.POST("/batch", h.Justification.CreateBatch)
				justifications.POST("/reactivate", h.Justification.Reactivate)
			}

			st.GET("/eligibility/certificate", h.Eligibility.CertificateStatus)

			// 提醒
			notifications := st.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.POST("/digest", h.Notification.SendDigest)
			}

			// 闭馆日
			closureDays := st.Group("/closure-days")
			{
				closureDays.GET("", h.ClosureDay.List)
				closureDays.POST("", admin, h.ClosureDay.Create)
				closureDays.POST("/import", admin, h.ClosureDay.Import)
				closureDays.DELETE("/:id", admin, h.ClosureDay.Delete)
			}

			// 报表：attendance | justifications | certificates | time-slots
			reports := st.Group("/reports", frequency)
			{
				reports.GET("/:kind", h.Report.Report)
				reports.GET("/:kind/export", h.Report.ExportExcel)
				reports.GET("/:kind/print", h.Report.Print)
			}

			// 系统配置
			systemConfig := st.Group("/system-config")
			{
				systemConfig.GET("", h.SystemConfig.GetConfig)
				systemConfig.PUT("", admin, h.SystemConfig.UpdateConfig)
			}

			st.GET("/audit-logs", admin, h.AuditLog.List)

			// 维护任务
			maintenance := st.Group("/maintenance", admin)
			{
				maintenance.POST("/sweep", h.Maintenance.Sweep)
				maintenance.POST("/deduplicate", h.Maintenance.Deduplicate)
			}
		}
	}

	return r
}

// healthHandler 检查数据库与 Redis；Redis 不可用只标记为降级
func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
		code := http.StatusOK

		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				status["status"] = "unavailable"
				status["database"] = "down"
				code = http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			if rdb.Healthy(ctx) {
				status["redis"] = "ok"
			} else {
				status["redis"] = "down"
				if code == http.StatusOK {
					status["status"] = "degraded"
				}
			}
		}

		c.JSON(code, status)
	}
}
