package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
)

// DashboardService 学员自助面板
type DashboardService interface {
	// MemberDashboard 汇总学员本人的签到、缺勤说明、连续缺勤与证明状态
	MemberDashboard(ctx context.Context, memberID string, today time.Time) (*dto.MemberDashboardResponse, error)
}

type dashboardService struct {
	repo        *repository.Repository
	eligibility EligibilityService
	attendance  AttendanceService
	logger      *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(
	repo *repository.Repository,
	eligibility EligibilityService,
	attendance AttendanceService,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		repo:        repo,
		eligibility: eligibility,
		attendance:  attendance,
		logger:      logger,
	}
}

// ────────────────────── MemberDashboard ──────────────────────

func (s *dashboardService) MemberDashboard(ctx context.Context, memberID string, today time.Time) (*dto.MemberDashboardResponse, error) {
	member, err := getMember(ctx, s.repo, memberID)
	if err != nil {
		return nil, err
	}

	absences, err := s.eligibility.AbsenceReport(ctx, memberID, today)
	if err != nil {
		return nil, err
	}

	history, err := s.attendance.MemberHistory(ctx, memberID)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.Justification.ListByMember(ctx, memberID)
	if err != nil {
		s.logger.Error("查询缺勤说明失败", zap.String("member_id", memberID), zap.Error(err))
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].AbsenceDate > list[j].AbsenceDate
	})
	justifications := make([]dto.JustificationResponse, 0, len(list))
	for i := range list {
		justifications = append(justifications, toJustificationResponse(&list[i], member.Name))
	}

	var slot *dto.TimeSlotBrief
	if member.TimeSlot != nil {
		slot = &dto.TimeSlotBrief{ID: member.TimeSlot.TimeSlotID, Label: member.TimeSlot.Label}
	}

	return &dto.MemberDashboardResponse{
		MemberID:            member.MemberID,
		Name:                member.Name,
		Status:              member.Status,
		TimeSlot:            slot,
		TotalCheckIns:       len(history),
		Attendance:          history,
		Justifications:      justifications,
		Absences:            *absences,
		CertificateIssuedOn: member.CertificateIssuedOn,
		Certificate:         s.eligibility.ComputeCertificateStatus(ctx, member.CertificateIssuedOn, today),
	}, nil
}
