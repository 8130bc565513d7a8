package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/metrics"
)

// ── 签到模块业务错误 ──

var (
	ErrCheckInNotAllowed  = errors.New("当前不可签到")
	ErrCheckInTarget      = validationError("需提供学员 ID 或 CPF")
	ErrAttendanceNotFound = pkgerrors.Wrap(pkgerrors.ErrNotFound, "该日期无签到记录")
	ErrAlreadyCheckedIn   = pkgerrors.Wrap(pkgerrors.ErrDuplicateRecord, "今日已签到")
)

// AttendanceService 签到业务接口
type AttendanceService interface {
	// CheckIn 校验资格后写入签到；被拒绝时返回判定结果与 ErrCheckInNotAllowed
	CheckIn(ctx context.Context, req *dto.CheckInRequest, now time.Time, callerID string) (*dto.CheckInResponse, error)
	Remove(ctx context.Context, memberID, date, callerID string) error
	ListByDate(ctx context.Context, date string, today time.Time) (*dto.DailyAttendanceResponse, error)
	MemberHistory(ctx context.Context, memberID string) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, metrics: m, logger: logger}
}

// ────────────────────── CheckIn ──────────────────────

func (s *attendanceService) CheckIn(ctx context.Context, req *dto.CheckInRequest, now time.Time, callerID string) (*dto.CheckInResponse, error) {
	member, err := s.resolveMember(ctx, req)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			s.metrics.CheckIn(eligibility.ReasonMemberNotFound)
		}
		return nil, err
	}

	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return nil, err
	}
	attendance, justifications, err := memberHistory(ctx, s.repo, member.MemberID)
	if err != nil {
		s.logger.Error("查询学员记录失败", zap.String("member_id", member.MemberID), zap.Error(err))
		return nil, err
	}

	decision := eligibility.Evaluate(member, attendance, justifications, now, opts)
	resp := &dto.CheckInResponse{Decision: *toDecisionResponse(member.MemberID, decision)}
	if !decision.Allowed {
		for _, reason := range decision.Reasons {
			s.metrics.CheckIn(reason)
		}
		return resp, ErrCheckInNotAllowed
	}

	label := ""
	if member.TimeSlot != nil {
		label = member.TimeSlot.Label
	}
	record := &model.AttendanceRecord{
		MemberID:       member.MemberID,
		AttendanceDate: eligibility.FormatDate(eligibility.CivilDate(now)),
		CheckInTime:    now.Format("15:04"),
		TimeSlotLabel:  label,
		CreatedBy:      optionalID(callerID),
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 同一事务内再次确认，避免并发重复签到
		exists, err := tx.Attendance.ExistsForDate(ctx, record.MemberID, record.AttendanceDate)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyCheckedIn
		}
		if err := tx.Attendance.Create(ctx, record); err != nil {
			return err
		}
		details := fmt.Sprintf("%s 于 %s 签到", member.Name, record.CheckInTime)
		return appendAudit(ctx, tx, model.AuditActionCheckIn, actorOf(callerID), details)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCheckedIn) {
			s.metrics.CheckIn(eligibility.ReasonAlreadyCheckedIn)
			return nil, err
		}
		s.logger.Error("写入签到失败", zap.String("member_id", member.MemberID), zap.Error(err))
		return nil, err
	}

	s.metrics.CheckIn("allowed")
	s.logger.Info("学员签到",
		zap.String("member_id", member.MemberID),
		zap.String("date", record.AttendanceDate),
		zap.String("time", record.CheckInTime),
	)

	resp.Record = toAttendanceResponse(record, member.Name)
	return resp, nil
}

func (s *attendanceService) resolveMember(ctx context.Context, req *dto.CheckInRequest) (*model.Member, error) {
	if req.MemberID != "" {
		return getMember(ctx, s.repo, req.MemberID)
	}

	cpf := digitsOnly(req.CPF)
	if cpf == "" {
		return nil, ErrCheckInTarget
	}
	member, err := s.repo.Member.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		s.logger.Error("按 CPF 查询学员失败", zap.Error(err))
		return nil, err
	}
	return member, nil
}

// ────────────────────── Remove ──────────────────────

func (s *attendanceService) Remove(ctx context.Context, memberID, date, callerID string) error {
	day, err := parseDay(date)
	if err != nil {
		return err
	}
	date = eligibility.FormatDate(day)
	member, err := getMember(ctx, s.repo, memberID)
	if err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		n, err := tx.Attendance.DeleteByMemberAndDate(ctx, memberID, date)
		if err != nil {
			s.logger.Error("删除签到失败", zap.String("member_id", memberID), zap.String("date", date), zap.Error(err))
			return err
		}
		if n == 0 {
			return ErrAttendanceNotFound
		}
		details := fmt.Sprintf("删除 %s 在 %s 的签到", member.Name, date)
		return appendAudit(ctx, tx, model.AuditActionCheckInRemoved, actorOf(callerID), details)
	})
}

// ────────────────────── ListByDate ──────────────────────

func (s *attendanceService) ListByDate(ctx context.Context, date string, today time.Time) (*dto.DailyAttendanceResponse, error) {
	day, err := dayOrToday(date, today)
	if err != nil {
		return nil, err
	}
	key := eligibility.FormatDate(day)

	records, err := s.repo.Attendance.ListByDate(ctx, key)
	if err != nil {
		s.logger.Error("查询签到失败", zap.String("date", key), zap.Error(err))
		return nil, err
	}

	resp := &dto.DailyAttendanceResponse{
		Date:    key,
		Total:   len(records),
		BySlot:  make(map[string]int),
		Records: make([]dto.AttendanceResponse, 0, len(records)),
	}
	for i := range records {
		r := &records[i]
		label := r.TimeSlotLabel
		if strings.TrimSpace(label) == "" {
			label = "-"
		}
		resp.BySlot[label]++

		name := ""
		if r.Member != nil {
			name = r.Member.Name
		}
		resp.Records = append(resp.Records, toAttendanceResponse(r, name))
	}
	return resp, nil
}

// ────────────────────── MemberHistory ──────────────────────

func (s *attendanceService) MemberHistory(ctx context.Context, memberID string) ([]dto.AttendanceResponse, error) {
	member, err := getMember(ctx, s.repo, memberID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListByMember(ctx, memberID)
	if err != nil {
		s.logger.Error("查询签到历史失败", zap.String("member_id", memberID), zap.Error(err))
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].AttendanceDate > records[j].AttendanceDate
	})

	result := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		result = append(result, toAttendanceResponse(&records[i], member.Name))
	}
	return result, nil
}

// ── 辅助函数 ──

func toAttendanceResponse(r *model.AttendanceRecord, memberName string) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		ID:            r.AttendanceID,
		MemberID:      r.MemberID,
		MemberName:    memberName,
		Date:          r.AttendanceDate,
		CheckInTime:   r.CheckInTime,
		TimeSlotLabel: r.TimeSlotLabel,
		CreatedAt:     formatTime(r.CreatedAt),
	}
}

// optionalID 空字符串转为 nil（审计字段为可空 UUID）
func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// actorOf 审计日志中的操作人
func actorOf(callerID string) string {
	if callerID == "" {
		return model.AuditActorSystem
	}
	return callerID
}
