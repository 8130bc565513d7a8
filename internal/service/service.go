package service

import (
	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/config"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/email"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/jwt"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth          AuthService
	User          UserService
	Member        MemberService
	TimeSlot      TimeSlotService
	Eligibility   EligibilityService
	Attendance    AttendanceService
	Dashboard     DashboardService
	Justification JustificationService
	Maintenance   MaintenanceService
	Notification  NotificationService
	ClosureDay    ClosureDayService
	Report        ReportService
	SystemConfig  SystemConfigService
	AuditLog      AuditLogService
}

// Deps 外部依赖（Redis 不可用时 Tokens/Locker 为 nil）
type Deps struct {
	JWT     *jwt.Manager
	Tokens  TokenStore
	Locker  Locker
	Mailer  email.Sender
	Metrics *metrics.Metrics
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	eligibilitySvc := NewEligibilityService(repo, logger)
	attendanceSvc := NewAttendanceService(repo, deps.Metrics, logger)
	return &Service{
		Auth:          NewAuthService(cfg, repo, deps.JWT, deps.Tokens, logger),
		User:          NewUserService(repo, logger),
		Member:        NewMemberService(repo, logger),
		TimeSlot:      NewTimeSlotService(repo, logger),
		Eligibility:   eligibilitySvc,
		Attendance:    attendanceSvc,
		Dashboard:     NewDashboardService(repo, eligibilitySvc, attendanceSvc, logger),
		Justification: NewJustificationService(repo, logger),
		Maintenance:   NewMaintenanceService(repo, deps.Locker, deps.Metrics, logger),
		Notification:  NewNotificationService(cfg, repo, deps.Mailer, logger),
		ClosureDay:    NewClosureDayService(repo, logger),
		Report:        NewReportService(cfg, repo, logger),
		SystemConfig:  NewSystemConfigService(repo, logger),
		AuditLog:      NewAuditLogService(repo, logger),
	}
}
