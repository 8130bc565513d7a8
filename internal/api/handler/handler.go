package handler

import (
	"time"

	"github.com/ElberTsolindo/pmsfcacademy/config"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
)

// Clock 返回业务时区的当前时间
type Clock func() time.Time

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth          *AuthHandler
	User          *UserHandler
	Member        *MemberHandler
	TimeSlot      *TimeSlotHandler
	Attendance    *AttendanceHandler
	Justification *JustificationHandler
	Eligibility   *EligibilityHandler
	Dashboard     *DashboardHandler
	Notification  *NotificationHandler
	ClosureDay    *ClosureDayHandler
	Report        *ReportHandler
	SystemConfig  *SystemConfigHandler
	AuditLog      *AuditLogHandler
	Maintenance   *MaintenanceHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	now := AcademyClock(&cfg.Academy)
	return &Handler{
		Auth:          NewAuthHandler(svc.Auth),
		User:          NewUserHandler(svc.User),
		Member:        NewMemberHandler(svc.Member, svc.Eligibility, svc.Attendance, now),
		TimeSlot:      NewTimeSlotHandler(svc.TimeSlot),
		Attendance:    NewAttendanceHandler(svc.Attendance, now),
		Justification: NewJustificationHandler(svc.Justification, now),
		Eligibility:   NewEligibilityHandler(svc.Eligibility, now),
		Dashboard:     NewDashboardHandler(svc.Dashboard, now),
		Notification:  NewNotificationHandler(svc.Notification, now),
		ClosureDay:    NewClosureDayHandler(svc.ClosureDay),
		Report:        NewReportHandler(svc.Report, now),
		SystemConfig:  NewSystemConfigHandler(svc.SystemConfig),
		AuditLog:      NewAuditLogHandler(svc.AuditLog),
		Maintenance:   NewMaintenanceHandler(svc.Maintenance, now),
	}
}

// AcademyClock 以健身房所在时区计算“今天”
func AcademyClock(cfg *config.AcademyConfig) Clock {
	loc := cfg.Location()
	return func() time.Time { return time.Now().In(loc) }
}
