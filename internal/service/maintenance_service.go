package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/metrics"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/redis"
)

// ── 维护任务业务错误 ──

var (
	ErrMaintenanceBusy = errors.New("维护任务正在执行，请稍后再试")
)

const (
	maintenanceLockTTL = 2 * time.Minute
	sweepLockName      = "maintenance:sweep"
	dedupLockName      = "maintenance:dedup"
	auditNameLimit     = 20 // 审计详情中最多列出的学员姓名数
)

// Locker 跨实例互斥锁（由 pkg/redis.Client 实现）
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

// MaintenanceService 状态巡检与签到去重
type MaintenanceService interface {
	// RunInactivitySweep 基于原始记录重新计算全部学员状态，只写入发生变化的学员
	RunInactivitySweep(ctx context.Context, today time.Time) (*dto.SweepResponse, error)
	// DeduplicateAttendance 同一学员同一日期只保留最早插入的签到记录
	DeduplicateAttendance(ctx context.Context) (*dto.DedupResponse, error)
	// RunAll 先去重再巡检（启动时与定时任务使用）
	RunAll(ctx context.Context, today time.Time) error
}

type maintenanceService struct {
	repo    *repository.Repository
	locker  Locker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewMaintenanceService 创建 MaintenanceService 实例
// locker 为 nil 时不加锁（单实例或 Redis 不可用）
func NewMaintenanceService(repo *repository.Repository, locker Locker, m *metrics.Metrics, logger *zap.Logger) MaintenanceService {
	return &maintenanceService{repo: repo, locker: locker, metrics: m, logger: logger}
}

// acquire 获取维护锁；Redis 故障时降级为无锁执行
func (s *maintenanceService) acquire(ctx context.Context, name string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	release, err := s.locker.TryLock(ctx, name, maintenanceLockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			return nil, ErrMaintenanceBusy
		}
		s.logger.Warn("获取维护锁失败，降级为无锁执行", zap.String("lock", name), zap.Error(err))
		return func() {}, nil
	}
	return release, nil
}

// ────────────────────── RunInactivitySweep ──────────────────────

func (s *maintenanceService) RunInactivitySweep(ctx context.Context, today time.Time) (*dto.SweepResponse, error) {
	release, err := s.acquire(ctx, sweepLockName)
	if err != nil {
		s.metrics.MaintenanceRun("sweep", "skipped")
		return nil, err
	}
	defer release()

	resp, err := s.sweep(ctx, today)
	if err != nil {
		s.metrics.MaintenanceRun("sweep", "error")
		return nil, err
	}
	s.metrics.MaintenanceRun("sweep", "ok")
	s.metrics.SweepFlips(resp.FlippedToInactive, resp.FlippedToActive)
	return resp, nil
}

func (s *maintenanceService) sweep(ctx context.Context, today time.Time) (*dto.SweepResponse, error) {
	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return nil, err
	}

	members, err := s.repo.Member.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询学员失败", zap.Error(err))
		return nil, err
	}
	attendance, err := s.repo.Attendance.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询签到记录失败", zap.Error(err))
		return nil, err
	}
	justifications, err := s.repo.Justification.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询缺勤说明失败", zap.Error(err))
		return nil, err
	}

	changes := eligibility.Sweep(members, attendance, justifications, today, opts)
	resp := &dto.SweepResponse{}
	if len(changes) == 0 {
		s.logger.Debug("状态巡检完成，无变更", zap.Int("members", len(members)))
		return resp, nil
	}

	names := make(map[string]string, len(members))
	for i := range members {
		names[members[i].MemberID] = members[i].Name
	}

	statuses := make(map[string]string, len(changes))
	var toInactive, toActive []string
	for _, c := range changes {
		statuses[c.MemberID] = c.To
		if c.To == model.MemberStatusInactive {
			toInactive = append(toInactive, names[c.MemberID])
		} else {
			toActive = append(toActive, names[c.MemberID])
		}
	}
	resp.FlippedToInactive = len(toInactive)
	resp.FlippedToActive = len(toActive)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Member.UpdateStatuses(ctx, statuses); err != nil {
			return err
		}
		if len(toInactive) > 0 {
			details := fmt.Sprintf("%d 名学员因连续缺勤或体检证明过期被自动停用: %s", len(toInactive), joinNames(toInactive))
			if err := appendAudit(ctx, tx, model.AuditActionAutoInactivation, model.AuditActorSystem, details); err != nil {
				return err
			}
		}
		if len(toActive) > 0 {
			details := fmt.Sprintf("%d 名学员恢复活跃: %s", len(toActive), joinNames(toActive))
			if err := appendAudit(ctx, tx, model.AuditActionAutoReactivation, model.AuditActorSystem, details); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("写入巡检结果失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("状态巡检完成",
		zap.Int("members", len(members)),
		zap.Int("flipped_to_inactive", resp.FlippedToInactive),
		zap.Int("flipped_to_active", resp.FlippedToActive),
	)
	return resp, nil
}

// joinNames 拼接姓名列表，超过上限时截断
func joinNames(names []string) string {
	sort.Strings(names)
	if len(names) <= auditNameLimit {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:auditNameLimit], ", ") + fmt.Sprintf(" 等 %d 人", len(names))
}

// ────────────────────── DeduplicateAttendance ──────────────────────

func (s *maintenanceService) DeduplicateAttendance(ctx context.Context) (*dto.DedupResponse, error) {
	release, err := s.acquire(ctx, dedupLockName)
	if err != nil {
		s.metrics.MaintenanceRun("dedup", "skipped")
		return nil, err
	}
	defer release()

	resp, err := s.dedup(ctx)
	if err != nil {
		s.metrics.MaintenanceRun("dedup", "error")
		return nil, err
	}
	s.metrics.MaintenanceRun("dedup", "ok")
	s.metrics.DedupRemoved(resp.RemovedCount)
	return resp, nil
}

func (s *maintenanceService) dedup(ctx context.Context) (*dto.DedupResponse, error) {
	records, err := s.repo.Attendance.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询签到记录失败", zap.Error(err))
		return nil, err
	}

	ids := duplicateAttendanceIDs(records)
	if len(ids) == 0 {
		return &dto.DedupResponse{}, nil
	}

	var removed int64
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		n, err := tx.Attendance.DeleteByIDs(ctx, ids)
		if err != nil {
			return err
		}
		removed = n
		details := fmt.Sprintf("清理重复签到记录 %d 条", n)
		return appendAudit(ctx, tx, model.AuditActionDuplicateCleanup, model.AuditActorSystem, details)
	})
	if err != nil {
		s.logger.Error("清理重复签到失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("签到去重完成", zap.Int64("removed", removed))
	return &dto.DedupResponse{RemovedCount: int(removed)}, nil
}

// duplicateAttendanceIDs 按插入顺序（created_at, attendance_id）保留每个 (学员, 日期) 的第一条，返回其余记录 ID
func duplicateAttendanceIDs(records []model.AttendanceRecord) []string {
	sorted := make([]model.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].AttendanceID < sorted[j].AttendanceID
	})

	seen := make(map[string]struct{}, len(sorted))
	var dup []string
	for _, r := range sorted {
		date := eligibility.NormalizeDate(r.AttendanceDate)
		if date == "" {
			date = strings.TrimSpace(r.AttendanceDate)
		}
		key := r.MemberID + "|" + date
		if _, ok := seen[key]; ok {
			dup = append(dup, r.AttendanceID)
			continue
		}
		seen[key] = struct{}{}
	}
	return dup
}

// ────────────────────── RunAll ──────────────────────

func (s *maintenanceService) RunAll(ctx context.Context, today time.Time) error {
	if _, err := s.DeduplicateAttendance(ctx); err != nil {
		return fmt.Errorf("签到去重: %w", err)
	}
	if _, err := s.RunInactivitySweep(ctx, today); err != nil {
		return fmt.Errorf("状态巡检: %w", err)
	}
	return nil
}
