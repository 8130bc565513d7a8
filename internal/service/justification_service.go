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
	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
)

// ── 缺勤说明模块业务错误 ──

var (
	ErrDuplicateJustification = pkgerrors.Wrap(pkgerrors.ErrDuplicateRecord, "该日期已有缺勤说明")
	ErrEmptyReason            = validationError("缺勤原因不能为空")
	ErrNothingToJustify       = validationError("没有需要说明的缺勤日期")
)

// ReactivationReason 补交说明恢复学员时使用的原因
const ReactivationReason = "Justificativa para reativação"

// JustificationReasons 常用缺勤原因
var JustificationReasons = []string{
	"Atestado médico",
	"Compromisso familiar",
	"Viagem",
	"Problema de saúde",
	"Compromisso profissional",
	"Outros",
}

// JustificationService 缺勤说明业务接口
type JustificationService interface {
	Create(ctx context.Context, req *dto.CreateJustificationRequest, callerID string) (*dto.JustificationResponse, error)
	// CreateBatch 多日说明，已有说明的日期跳过
	CreateBatch(ctx context.Context, req *dto.BatchJustificationRequest, callerID string) (*dto.BatchJustificationResponse, error)
	List(ctx context.Context, req *dto.JustificationListRequest) ([]dto.JustificationResponse, error)
	// JustifyAndReactivate 为停用学员补交说明并重新计算状态
	JustifyAndReactivate(ctx context.Context, req *dto.ReactivateRequest, today time.Time, callerID string) (*dto.ReactivateResponse, error)
}

type justificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewJustificationService 创建 JustificationService 实例
func NewJustificationService(repo *repository.Repository, logger *zap.Logger) JustificationService {
	return &justificationService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *justificationService) Create(ctx context.Context, req *dto.CreateJustificationRequest, callerID string) (*dto.JustificationResponse, error) {
	day, err := parseDay(req.AbsenceDate)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	member, err := getMember(ctx, s.repo, req.MemberID)
	if err != nil {
		return nil, err
	}

	j := &model.Justification{
		MemberID:    member.MemberID,
		AbsenceDate: eligibility.FormatDate(day),
		Reason:      reason,
		Notes:       req.Notes,
		CreatedBy:   optionalID(callerID),
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Justification.Create(ctx, j); err != nil {
			return err
		}
		details := fmt.Sprintf("%s 在 %s 的缺勤已说明: %s", member.Name, j.AbsenceDate, reason)
		return appendAudit(ctx, tx, model.AuditActionJustification, actorOf(callerID), details)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
			return nil, ErrDuplicateJustification
		}
		s.logger.Error("创建缺勤说明失败", zap.String("member_id", member.MemberID), zap.Error(err))
		return nil, err
	}

	resp := toJustificationResponse(j, member.Name)
	return &resp, nil
}

// ────────────────────── CreateBatch ──────────────────────

func (s *justificationService) CreateBatch(ctx context.Context, req *dto.BatchJustificationRequest, callerID string) (*dto.BatchJustificationResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	for _, d := range req.AbsenceDates {
		if _, err := parseDay(d); err != nil {
			return nil, err
		}
	}
	member, err := getMember(ctx, s.repo, req.MemberID)
	if err != nil {
		return nil, err
	}

	created, skipped, err := s.createMany(ctx, member, req.AbsenceDates, reason, req.Notes, callerID)
	if err != nil {
		return nil, err
	}

	if created > 0 {
		details := fmt.Sprintf("%s 批量说明 %d 个缺勤日: %s", member.Name, created, reason)
		auditBestEffort(ctx, s.repo, s.logger, model.AuditActionBatchJustify, actorOf(callerID), details)
	}
	return &dto.BatchJustificationResponse{Created: created, Skipped: skipped}, nil
}

// createMany 逐日创建说明，已存在的日期（含并发写入）计入 skipped
func (s *justificationService) createMany(ctx context.Context, member *model.Member, dates []string, reason, notes, callerID string) (int, []string, error) {
	existing, err := s.repo.Justification.ListByMember(ctx, member.MemberID)
	if err != nil {
		s.logger.Error("查询缺勤说明失败", zap.String("member_id", member.MemberID), zap.Error(err))
		return 0, nil, err
	}
	have := make(map[string]struct{}, len(existing))
	for _, j := range existing {
		have[eligibility.NormalizeDate(j.AbsenceDate)] = struct{}{}
	}

	created := 0
	skipped := []string{}
	for _, d := range uniqueSorted(dates) {
		if _, ok := have[d]; ok {
			skipped = append(skipped, d)
			continue
		}
		err := s.repo.Justification.Create(ctx, &model.Justification{
			MemberID:    member.MemberID,
			AbsenceDate: d,
			Reason:      reason,
			Notes:       notes,
			CreatedBy:   optionalID(callerID),
		})
		if err != nil {
			if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
				skipped = append(skipped, d)
				continue
			}
			s.logger.Error("创建缺勤说明失败", zap.String("member_id", member.MemberID), zap.String("date", d), zap.Error(err))
			return created, skipped, err
		}
		have[d] = struct{}{}
		created++
	}
	return created, skipped, nil
}

// ────────────────────── List ──────────────────────

func (s *justificationService) List(ctx context.Context, req *dto.JustificationListRequest) ([]dto.JustificationResponse, error) {
	var from, to string
	if req.From != "" {
		d, err := parseDay(req.From)
		if err != nil {
			return nil, err
		}
		from = eligibility.FormatDate(d)
	}
	if req.To != "" {
		d, err := parseDay(req.To)
		if err != nil {
			return nil, err
		}
		to = eligibility.FormatDate(d)
	}

	list, err := s.repo.Justification.List(ctx, &repository.JustificationListFilters{
		MemberID: req.MemberID,
		From:     from,
		To:       to,
	})
	if err != nil {
		s.logger.Error("查询缺勤说明失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.JustificationResponse, 0, len(list))
	for i := range list {
		name := ""
		if list[i].Member != nil {
			name = list[i].Member.Name
		}
		result = append(result, toJustificationResponse(&list[i], name))
	}
	return result, nil
}

// ────────────────────── JustifyAndReactivate ──────────────────────

func (s *justificationService) JustifyAndReactivate(ctx context.Context, req *dto.ReactivateRequest, today time.Time, callerID string) (*dto.ReactivateResponse, error) {
	for _, d := range req.AbsenceDates {
		if _, err := parseDay(d); err != nil {
			return nil, err
		}
	}
	member, err := getMember(ctx, s.repo, req.MemberID)
	if err != nil {
		return nil, err
	}

	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return nil, err
	}

	dates := req.AbsenceDates
	if len(dates) == 0 {
		attendance, justifications, err := memberHistory(ctx, s.repo, member.MemberID)
		if err != nil {
			return nil, err
		}
		dates = eligibility.UnjustifiedAbsences(member.MemberID, attendance, justifications, today, opts)
	}

	created := 0
	if len(dates) > 0 {
		created, _, err = s.createMany(ctx, member, dates, ReactivationReason, req.Notes, callerID)
		if err != nil {
			return nil, err
		}
	}

	// 基于最新记录重新计算状态
	attendance, justifications, err := memberHistory(ctx, s.repo, member.MemberID)
	if err != nil {
		return nil, err
	}
	absences := eligibility.ConsecutiveAbsences(member.MemberID, attendance, justifications, today, opts)
	cert := eligibility.CertificateStatusOf(member.CertificateIssuedOn, today, opts)
	next, changed := eligibility.Transition(member.Status, absences, cert.Status, opts)

	if created == 0 && !changed {
		return nil, ErrNothingToJustify
	}

	if changed {
		err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			if err := tx.Member.UpdateStatuses(ctx, map[string]string{member.MemberID: next}); err != nil {
				return err
			}
			details := fmt.Sprintf("%s 补交 %d 个缺勤说明后状态变为 %s", member.Name, created, next)
			return appendAudit(ctx, tx, model.AuditActionManualReactivate, actorOf(callerID), details)
		})
		if err != nil {
			s.logger.Error("更新学员状态失败", zap.String("member_id", member.MemberID), zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("补交缺勤说明",
		zap.String("member_id", member.MemberID),
		zap.Int("justified", created),
		zap.String("status", next),
	)
	return &dto.ReactivateResponse{Justified: created, Status: next, Changed: changed}, nil
}

// ── 辅助函数 ──

func uniqueSorted(dates []string) []string {
	set := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		d = eligibility.NormalizeDate(d)
		if d == "" {
			continue
		}
		if _, ok := set[d]; ok {
			continue
		}
		set[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func toJustificationResponse(j *model.Justification, memberName string) dto.JustificationResponse {
	return dto.JustificationResponse{
		ID:          j.JustificationID,
		MemberID:    j.MemberID,
		MemberName:  memberName,
		AbsenceDate: j.AbsenceDate,
		Reason:      j.Reason,
		Notes:       j.Notes,
		CreatedAt:   formatTime(j.CreatedAt),
	}
}
