package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
)

// ── 时段模块业务错误 ──

var (
	ErrTimeSlotInvalidTime = validationError("时间格式应为 HH:MM，且开始时间早于结束时间")
	ErrTimeSlotExists      = pkgerrors.Wrap(pkgerrors.ErrDuplicateRecord, "相同时间的时段已存在")
	ErrTimeSlotInUse       = validationError("该时段仍有学员，无法删除")
	ErrTimeSlotCapacity    = validationError("容量不能小于当前学员人数")
)

// 时段占用状态
const (
	SlotStateAvailable  = "available"
	SlotStateAlmostFull = "almost_full"
	SlotStateFull       = "full"
	SlotStateDisabled   = "disabled"

	almostFullPercent = 80
	defaultCapacity   = 20
)

// TimeSlotService 训练时段业务接口
type TimeSlotService interface {
	Create(ctx context.Context, req *dto.CreateTimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error)
	List(ctx context.Context) ([]dto.TimeSlotResponse, error)
	// ListAvailable 可供登记选择的时段（启用且未满）
	ListAvailable(ctx context.Context) ([]dto.TimeSlotResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error)
	Toggle(ctx context.Context, id string, callerID string) (*dto.TimeSlotResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type timeSlotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeSlotService 创建 TimeSlotService 实例
func NewTimeSlotService(repo *repository.Repository, logger *zap.Logger) TimeSlotService {
	return &timeSlotService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *timeSlotService) Create(ctx context.Context, req *dto.CreateTimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error) {
	start, end, label, err := slotLabel(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.TimeSlot.GetByLabel(ctx, label); err == nil {
		return nil, ErrTimeSlotExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	slot := &model.TimeSlot{
		Label:     label,
		StartTime: start,
		EndTime:   end,
		Capacity:  capacity,
		IsActive:  true,
	}
	slot.CreatedBy = optionalID(callerID)
	slot.UpdatedBy = optionalID(callerID)

	if err := s.repo.TimeSlot.Create(ctx, slot); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
			return nil, ErrTimeSlotExists
		}
		s.logger.Error("创建时段失败", zap.Error(err))
		return nil, err
	}

	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionTimeSlotChanged, actorOf(callerID),
		fmt.Sprintf("新增时段 %s（容量 %d）", label, capacity))
	return s.GetByID(ctx, slot.TimeSlotID)
}

// ────────────────────── GetByID ──────────────────────

func (s *timeSlotService) GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.Member.CountByTimeSlot(ctx)
	if err != nil {
		s.logger.Error("统计时段人数失败", zap.Error(err))
		return nil, err
	}
	resp := toTimeSlotResponse(slot, counts[slot.TimeSlotID])
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *timeSlotService) List(ctx context.Context) ([]dto.TimeSlotResponse, error) {
	return s.list(ctx, false)
}

func (s *timeSlotService) ListAvailable(ctx context.Context) ([]dto.TimeSlotResponse, error) {
	return s.list(ctx, true)
}

func (s *timeSlotService) list(ctx context.Context, availableOnly bool) ([]dto.TimeSlotResponse, error) {
	slots, err := s.repo.TimeSlot.List(ctx, availableOnly)
	if err != nil {
		s.logger.Error("列出时段失败", zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.Member.CountByTimeSlot(ctx)
	if err != nil {
		s.logger.Error("统计时段人数失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		resp := toTimeSlotResponse(&slots[i], counts[slots[i].TimeSlotID])
		if availableOnly && resp.State != SlotStateAvailable && resp.State != SlotStateAlmostFull {
			continue
		}
		result = append(result, resp)
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *timeSlotService) Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StartTime != nil || req.EndTime != nil {
		start, end := slot.StartTime, slot.EndTime
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}
		start, end, label, err := slotLabel(start, end)
		if err != nil {
			return nil, err
		}
		if label != slot.Label {
			if other, err := s.repo.TimeSlot.GetByLabel(ctx, label); err == nil && other.TimeSlotID != slot.TimeSlotID {
				return nil, ErrTimeSlotExists
			}
		}
		slot.StartTime, slot.EndTime, slot.Label = start, end, label
	}

	if req.Capacity != nil {
		counts, err := s.repo.Member.CountByTimeSlot(ctx)
		if err != nil {
			return nil, err
		}
		if *req.Capacity < counts[slot.TimeSlotID] {
			return nil, ErrTimeSlotCapacity
		}
		slot.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		slot.IsActive = *req.IsActive
	}

	if err := s.save(ctx, slot, callerID); err != nil {
		return nil, err
	}
	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionTimeSlotChanged, actorOf(callerID),
		fmt.Sprintf("更新时段 %s（容量 %d，启用 %t）", slot.Label, slot.Capacity, slot.IsActive))
	return s.GetByID(ctx, id)
}

// ────────────────────── Toggle ──────────────────────

func (s *timeSlotService) Toggle(ctx context.Context, id string, callerID string) (*dto.TimeSlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	slot.IsActive = !slot.IsActive

	if err := s.save(ctx, slot, callerID); err != nil {
		return nil, err
	}
	state := "停用"
	if slot.IsActive {
		state = "启用"
	}
	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionTimeSlotChanged, actorOf(callerID),
		fmt.Sprintf("%s时段 %s", state, slot.Label))
	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *timeSlotService) Delete(ctx context.Context, id string, callerID string) error {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return err
	}

	counts, err := s.repo.Member.CountByTimeSlot(ctx)
	if err != nil {
		return err
	}
	if counts[id] > 0 {
		return ErrTimeSlotInUse
	}

	if err := s.repo.TimeSlot.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除时段失败", zap.String("id", id), zap.Error(err))
		return err
	}
	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionTimeSlotChanged, actorOf(callerID),
		fmt.Sprintf("删除时段 %s", slot.Label))
	return nil
}

// ── 辅助函数 ──

func (s *timeSlotService) getSlot(ctx context.Context, id string) (*model.TimeSlot, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("查询时段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func (s *timeSlotService) save(ctx context.Context, slot *model.TimeSlot, callerID string) error {
	slot.UpdatedBy = optionalID(callerID)
	if err := s.repo.TimeSlot.Update(ctx, slot); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
			return ErrTimeSlotExists
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新时段失败", zap.String("id", slot.TimeSlotID), zap.Error(err))
		}
		return err
	}
	return nil
}

// slotLabel 校验 HH:MM，返回补零后的起止时间与 "HH:MM - HH:MM" 标签
func slotLabel(start, end string) (string, string, string, error) {
	st, err1 := time.Parse("15:04", strings.TrimSpace(start))
	et, err2 := time.Parse("15:04", strings.TrimSpace(end))
	if err1 != nil || err2 != nil || !st.Before(et) {
		return "", "", "", ErrTimeSlotInvalidTime
	}
	start, end = st.Format("15:04"), et.Format("15:04")
	return start, end, start + " - " + end, nil
}

// SlotOccupancy 返回占用百分比与状态
func SlotOccupancy(slot *model.TimeSlot, memberCount int) (percent int, state string) {
	if slot.Capacity > 0 {
		percent = memberCount * 100 / slot.Capacity
	}
	switch {
	case !slot.IsActive:
		state = SlotStateDisabled
	case memberCount >= slot.Capacity:
		state = SlotStateFull
	case percent >= almostFullPercent:
		state = SlotStateAlmostFull
	default:
		state = SlotStateAvailable
	}
	return percent, state
}

func toTimeSlotResponse(slot *model.TimeSlot, memberCount int) dto.TimeSlotResponse {
	percent, state := SlotOccupancy(slot, memberCount)
	return dto.TimeSlotResponse{
		ID:          slot.TimeSlotID,
		Label:       slot.Label,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		Capacity:    slot.Capacity,
		IsActive:    slot.IsActive,
		MemberCount: memberCount,
		Occupancy:   percent,
		State:       state,
		Version:     slot.Version,
		CreatedAt:   formatTime(slot.CreatedAt),
		UpdatedAt:   formatTime(slot.UpdatedAt),
	}
}
