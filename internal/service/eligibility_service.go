package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
)

// EligibilityService 签到资格查询接口
//
// 业务条件（证明过期、缺勤过多）作为数据返回，不作为错误；
// 只有学员不存在时返回 ErrMemberNotFound。
type EligibilityService interface {
	ComputeConsecutiveAbsences(ctx context.Context, memberID string, today time.Time) (int, error)
	ComputeCertificateStatus(ctx context.Context, issueDate string, today time.Time) dto.CertificateStatusResponse
	CanCheckIn(ctx context.Context, memberID string, today time.Time) (*dto.CheckInDecisionResponse, error)
	AbsenceReport(ctx context.Context, memberID string, today time.Time) (*dto.AbsenceReportResponse, error)
}

type eligibilityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEligibilityService 创建 EligibilityService 实例
func NewEligibilityService(repo *repository.Repository, logger *zap.Logger) EligibilityService {
	return &eligibilityService{repo: repo, logger: logger}
}

// ────────────────────── ComputeConsecutiveAbsences ──────────────────────

func (s *eligibilityService) ComputeConsecutiveAbsences(ctx context.Context, memberID string, today time.Time) (int, error) {
	if _, err := getMember(ctx, s.repo, memberID); err != nil {
		return 0, err
	}

	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return 0, err
	}

	attendance, justifications, err := memberHistory(ctx, s.repo, memberID)
	if err != nil {
		s.logger.Error("查询学员记录失败", zap.String("member_id", memberID), zap.Error(err))
		return 0, err
	}

	return eligibility.ConsecutiveAbsences(memberID, attendance, justifications, today, opts), nil
}

// ────────────────────── ComputeCertificateStatus ──────────────────────

func (s *eligibilityService) ComputeCertificateStatus(ctx context.Context, issueDate string, today time.Time) dto.CertificateStatusResponse {
	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		// 计算本身不依赖存储，配置读取失败时按默认参数计算
		s.logger.Warn("加载计算参数失败，使用默认值", zap.Error(err))
		opts = eligibility.DefaultOptions()
	}
	return toCertificateResponse(eligibility.CertificateStatusOf(issueDate, today, opts))
}

// ────────────────────── CanCheckIn ──────────────────────

func (s *eligibilityService) CanCheckIn(ctx context.Context, memberID string, today time.Time) (*dto.CheckInDecisionResponse, error) {
	member, err := getMember(ctx, s.repo, memberID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			d := eligibility.Evaluate(nil, nil, nil, today, eligibility.DefaultOptions())
			return toDecisionResponse(memberID, d), ErrMemberNotFound
		}
		s.logger.Error("查询学员失败", zap.String("member_id", memberID), zap.Error(err))
		return nil, err
	}

	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return nil, err
	}

	attendance, justifications, err := memberHistory(ctx, s.repo, memberID)
	if err != nil {
		s.logger.Error("查询学员记录失败", zap.String("member_id", memberID), zap.Error(err))
		return nil, err
	}

	d := eligibility.Evaluate(member, attendance, justifications, today, opts)
	return toDecisionResponse(memberID, d), nil
}

// ────────────────────── AbsenceReport ──────────────────────

func (s *eligibilityService) AbsenceReport(ctx context.Context, memberID string, today time.Time) (*dto.AbsenceReportResponse, error) {
	if _, err := getMember(ctx, s.repo, memberID); err != nil {
		return nil, err
	}

	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return nil, err
	}

	attendance, justifications, err := memberHistory(ctx, s.repo, memberID)
	if err != nil {
		s.logger.Error("查询学员记录失败", zap.String("member_id", memberID), zap.Error(err))
		return nil, err
	}

	count := eligibility.ConsecutiveAbsences(memberID, attendance, justifications, today, opts)
	dates := eligibility.UnjustifiedAbsences(memberID, attendance, justifications, today, opts)
	if dates == nil {
		dates = []string{}
	}

	return &dto.AbsenceReportResponse{
		MemberID:            memberID,
		ConsecutiveAbsences: count,
		UnjustifiedDates:    dates,
		AtRisk:              count >= opts.AtRiskThreshold && count < opts.AbsenceThreshold,
	}, nil
}

func toDecisionResponse(memberID string, d eligibility.CheckInDecision) *dto.CheckInDecisionResponse {
	reasons := d.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return &dto.CheckInDecisionResponse{
		MemberID:            memberID,
		Allowed:             d.Allowed,
		Reasons:             reasons,
		ConsecutiveAbsences: d.Absences,
		Certificate:         toCertificateResponse(d.Certificate),
	}
}
