package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
)

// ── 学员模块业务错误 ──

var (
	ErrCPFExists           = pkgerrors.Wrap(pkgerrors.ErrDuplicateRecord, "该 CPF 已登记")
	ErrTimeSlotUnavailable = validationError("所选时段已停用或已满")
	ErrMemberAlreadyActive = validationError("学员已是活跃状态")
	ErrMemberHasAbsences   = errors.New("学员仍有未说明的连续缺勤")
	ErrCertificateExpired  = errors.New("体检证明已过期")
)

// MemberService 学员业务接口
type MemberService interface {
	Create(ctx context.Context, req *dto.CreateMemberRequest, today time.Time, callerID string) (*dto.MemberResponse, error)
	GetByID(ctx context.Context, id string, today time.Time) (*dto.MemberResponse, error)
	List(ctx context.Context, req *dto.MemberListRequest, today time.Time) ([]dto.MemberResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateMemberRequest, today time.Time, callerID string) (*dto.MemberResponse, error)
	// Delete 软删除，签到与缺勤说明历史保留
	Delete(ctx context.Context, id string, callerID string) error
	// Reactivate 手动恢复为活跃；缺勤未说明或证明过期时拒绝
	Reactivate(ctx context.Context, id string, today time.Time, callerID string) (*dto.MemberResponse, error)
	ImportMembers(ctx context.Context, rows []ImportMemberRow, callerID string) (*dto.ImportMemberResponse, error)
}

type memberService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMemberService 创建 MemberService 实例
func NewMemberService(repo *repository.Repository, logger *zap.Logger) MemberService {
	return &memberService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *memberService) Create(ctx context.Context, req *dto.CreateMemberRequest, today time.Time, callerID string) (*dto.MemberResponse, error) {
	member := &model.Member{
		Name:                req.Name,
		CPF:                 req.CPF,
		RG:                  req.RG,
		Address:             req.Address,
		Phone:               req.Phone,
		EmergencyPhone:      req.EmergencyPhone,
		FatherName:          req.FatherName,
		MotherName:          req.MotherName,
		TimeSlotID:          req.TimeSlotID,
		CertificateIssuedOn: req.CertificateIssuedOn,
		IsMinor:             req.IsMinor,
		GuardianName:        req.GuardianName,
		GuardianRelation:    req.GuardianRelation,
		GuardianPhone:       req.GuardianPhone,
		UsesMedication:      req.UsesMedication,
		MedicationDetails:   req.MedicationDetails,
		HasCondition:        req.HasCondition,
		ConditionDetails:    req.ConditionDetails,
		Notes:               req.Notes,
		Status:              model.MemberStatusActive,
	}
	member.CreatedBy = optionalID(callerID)

	if err := s.create(ctx, member); err != nil {
		return nil, err
	}

	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionMemberCreated, actorOf(callerID),
		fmt.Sprintf("登记学员 %s", member.Name))
	s.logger.Info("登记学员", zap.String("member_id", member.MemberID))

	return s.GetByID(ctx, member.MemberID, today)
}

// create 校验并写入，导入流程复用
func (s *memberService) create(ctx context.Context, member *model.Member) error {
	normalizeMember(member)
	if err := validateMember(member); err != nil {
		return err
	}

	if _, err := s.repo.Member.GetByCPF(ctx, member.CPF); err == nil {
		return ErrCPFExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.checkSlotAvailable(ctx, member.TimeSlotID, ""); err != nil {
		return err
	}

	if err := s.repo.Member.Create(ctx, member); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
			return ErrCPFExists
		}
		s.logger.Error("创建学员失败", zap.Error(err))
		return err
	}
	return nil
}

// checkSlotAvailable 时段必须存在、启用且未满；currentMemberID 为已在该时段的学员时不计入
func (s *memberService) checkSlotAvailable(ctx context.Context, slotID, currentMemberID string) error {
	slot, err := s.repo.TimeSlot.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeSlotNotFound
		}
		return err
	}
	if !slot.IsActive {
		return ErrTimeSlotUnavailable
	}

	counts, err := s.repo.Member.CountByTimeSlot(ctx)
	if err != nil {
		s.logger.Error("统计时段人数失败", zap.Error(err))
		return err
	}
	count := counts[slotID]
	if currentMemberID != "" {
		if m, err := s.repo.Member.GetByID(ctx, currentMemberID); err == nil && m.TimeSlotID == slotID {
			count--
		}
	}
	if count >= slot.Capacity {
		return ErrTimeSlotUnavailable
	}
	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *memberService) GetByID(ctx context.Context, id string, today time.Time) (*dto.MemberResponse, error) {
	member, err := getMember(ctx, s.repo, id)
	if err != nil {
		if !errors.Is(err, ErrMemberNotFound) {
			s.logger.Error("查询学员失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return nil, err
	}
	resp := toMemberResponse(member, today, opts)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *memberService) List(ctx context.Context, req *dto.MemberListRequest, today time.Time) ([]dto.MemberResponse, int64, error) {
	filters := &repository.MemberListFilters{
		Keyword:    req.Keyword,
		Status:     req.Status,
		TimeSlotID: req.TimeSlotID,
	}
	members, total, err := s.repo.Member.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出学员失败", zap.Error(err))
		return nil, 0, err
	}

	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		result = append(result, toMemberResponse(&members[i], today, opts))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *memberService) Update(ctx context.Context, id string, req *dto.UpdateMemberRequest, today time.Time, callerID string) (*dto.MemberResponse, error) {
	member, err := getMember(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if req.Version != member.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	slotChanged := false
	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.RG != nil {
		member.RG = *req.RG
	}
	if req.Address != nil {
		member.Address = *req.Address
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.EmergencyPhone != nil {
		member.EmergencyPhone = *req.EmergencyPhone
	}
	if req.FatherName != nil {
		member.FatherName = *req.FatherName
	}
	if req.MotherName != nil {
		member.MotherName = *req.MotherName
	}
	if req.TimeSlotID != nil && *req.TimeSlotID != member.TimeSlotID {
		member.TimeSlotID = *req.TimeSlotID
		slotChanged = true
	}
	if req.CertificateIssuedOn != nil {
		member.CertificateIssuedOn = *req.CertificateIssuedOn
	}
	if req.IsMinor != nil {
		member.IsMinor = *req.IsMinor
	}
	if req.GuardianName != nil {
		member.GuardianName = *req.GuardianName
	}
	if req.GuardianRelation != nil {
		member.GuardianRelation = *req.GuardianRelation
	}
	if req.GuardianPhone != nil {
		member.GuardianPhone = *req.GuardianPhone
	}
	if req.UsesMedication != nil {
		member.UsesMedication = *req.UsesMedication
	}
	if req.MedicationDetails != nil {
		member.MedicationDetails = *req.MedicationDetails
	}
	if req.HasCondition != nil {
		member.HasCondition = *req.HasCondition
	}
	if req.ConditionDetails != nil {
		member.ConditionDetails = *req.ConditionDetails
	}
	if req.Notes != nil {
		member.Notes = *req.Notes
	}

	normalizeMember(member)
	if err := validateMember(member); err != nil {
		return nil, err
	}
	if slotChanged {
		if err := s.checkSlotAvailable(ctx, member.TimeSlotID, member.MemberID); err != nil {
			return nil, err
		}
	}

	member.UpdatedBy = optionalID(callerID)
	member.TimeSlot = nil
	if err := s.repo.Member.Update(ctx, member); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新学员失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionMemberUpdated, actorOf(callerID),
		fmt.Sprintf("更新学员 %s", member.Name))
	return s.GetByID(ctx, id, today)
}

// ────────────────────── Delete ──────────────────────

func (s *memberService) Delete(ctx context.Context, id string, callerID string) error {
	member, err := getMember(ctx, s.repo, id)
	if err != nil {
		return err
	}

	if err := s.repo.Member.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除学员失败", zap.String("id", id), zap.Error(err))
		return err
	}

	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionMemberDeleted, actorOf(callerID),
		fmt.Sprintf("删除学员 %s（历史记录保留）", member.Name))
	return nil
}

// ────────────────────── Reactivate ──────────────────────

func (s *memberService) Reactivate(ctx context.Context, id string, today time.Time, callerID string) (*dto.MemberResponse, error) {
	member, err := getMember(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if member.IsActive() {
		return nil, ErrMemberAlreadyActive
	}

	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return nil, err
	}
	attendance, justifications, err := memberHistory(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	absences := eligibility.ConsecutiveAbsences(id, attendance, justifications, today, opts)
	cert := eligibility.CertificateStatusOf(member.CertificateIssuedOn, today, opts)
	if next, _ := eligibility.Transition(member.Status, absences, cert.Status, opts); next != model.MemberStatusActive {
		var blocked []error
		if absences >= opts.AbsenceThreshold {
			blocked = append(blocked, ErrMemberHasAbsences)
		}
		if cert.Status == eligibility.CertificateExpired {
			blocked = append(blocked, ErrCertificateExpired)
		}
		return nil, errors.Join(blocked...)
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Member.UpdateStatuses(ctx, map[string]string{id: model.MemberStatusActive}); err != nil {
			return err
		}
		return appendAudit(ctx, tx, model.AuditActionManualReactivate, actorOf(callerID),
			fmt.Sprintf("手动恢复学员 %s", member.Name))
	})
	if err != nil {
		s.logger.Error("恢复学员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id, today)
}

// ── 辅助函数 ──

func toMemberResponse(m *model.Member, today time.Time, opts eligibility.Options) dto.MemberResponse {
	var slot *dto.TimeSlotBrief
	if m.TimeSlot != nil {
		slot = &dto.TimeSlotBrief{ID: m.TimeSlot.TimeSlotID, Label: m.TimeSlot.Label}
	}
	return dto.MemberResponse{
		ID:                  m.MemberID,
		Name:                m.Name,
		CPF:                 m.CPF,
		RG:                  m.RG,
		Address:             m.Address,
		Phone:               m.Phone,
		EmergencyPhone:      m.EmergencyPhone,
		FatherName:          m.FatherName,
		MotherName:          m.MotherName,
		TimeSlot:            slot,
		CertificateIssuedOn: m.CertificateIssuedOn,
		Certificate:         toCertificateResponse(eligibility.CertificateStatusOf(m.CertificateIssuedOn, today, opts)),
		IsMinor:             m.IsMinor,
		GuardianName:        m.GuardianName,
		GuardianRelation:    m.GuardianRelation,
		GuardianPhone:       m.GuardianPhone,
		UsesMedication:      m.UsesMedication,
		MedicationDetails:   m.MedicationDetails,
		HasCondition:        m.HasCondition,
		ConditionDetails:    m.ConditionDetails,
		Notes:               m.Notes,
		Status:              m.Status,
		Version:             m.Version,
		CreatedAt:           formatTime(m.CreatedAt),
		UpdatedAt:           formatTime(m.UpdatedAt),
	}
}
