package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
)

// MemberListFilters 学员列表筛选条件
type MemberListFilters struct {
	Keyword    string // 姓名或 CPF
	Status     string
	TimeSlotID string
}

// MemberRepository 学员数据访问接口
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id string) (*model.Member, error)
	GetByCPF(ctx context.Context, cpf string) (*model.Member, error)
	List(ctx context.Context, filters *MemberListFilters, offset, limit int) ([]model.Member, int64, error)
	// ListAll 返回全部未删除学员（巡检、提醒、报表使用）
	ListAll(ctx context.Context) ([]model.Member, error)
	Update(ctx context.Context, member *model.Member) error
	// UpdateStatuses 批量写入状态，key 为学员 ID
	UpdateStatuses(ctx context.Context, statuses map[string]string) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// CountByTimeSlot 按时段统计学员人数
	CountByTimeSlot(ctx context.Context) (map[string]int, error)
}

type memberRepo struct {
	db *gorm.DB
}

// NewMemberRepo 创建 MemberRepository 实例
func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *model.Member) error {
	return translate(r.db.WithContext(ctx).Create(member).Error)
}

func (r *memberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Preload("TimeSlot").
		Where("member_id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) GetByCPF(ctx context.Context, cpf string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Preload("TimeSlot").
		Where("cpf = ?", cpf).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) List(ctx context.Context, filters *MemberListFilters, offset, limit int) ([]model.Member, int64, error) {
	var members []model.Member
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Member{})
	if filters != nil {
		if filters.Keyword != "" {
			kw := "%" + filters.Keyword + "%"
			db = db.Where("(name ILIKE ? OR cpf LIKE ?)", kw, kw)
		}
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.TimeSlotID != "" {
			db = db.Where("time_slot_id = ?", filters.TimeSlotID)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("TimeSlot").
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *memberRepo) ListAll(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Preload("TimeSlot").
		Order("name ASC").
		Find(&members).Error
	return members, err
}

func (r *memberRepo) Update(ctx context.Context, member *model.Member) error {
	return updateVersioned(ctx, r.db, member, "member_id = ?", member.MemberID, &member.Version, map[string]interface{}{
		"name":                  member.Name,
		"rg":                    member.RG,
		"address":               member.Address,
		"phone":                 member.Phone,
		"emergency_phone":       member.EmergencyPhone,
		"father_name":           member.FatherName,
		"mother_name":           member.MotherName,
		"time_slot_id":          member.TimeSlotID,
		"certificate_issued_on": member.CertificateIssuedOn,
		"is_minor":              member.IsMinor,
		"guardian_name":         member.GuardianName,
		"guardian_relation":     member.GuardianRelation,
		"guardian_phone":        member.GuardianPhone,
		"uses_medication":       member.UsesMedication,
		"medication_details":    member.MedicationDetails,
		"has_condition":         member.HasCondition,
		"condition_details":     member.ConditionDetails,
		"notes":                 member.Notes,
		"status":                member.Status,
		"updated_by":            member.UpdatedBy,
	})
}

func (r *memberRepo) UpdateStatuses(ctx context.Context, statuses map[string]string) error {
	if len(statuses) == 0 {
		return nil
	}

	// 按目标状态分组，每组一条 UPDATE
	groups := make(map[string][]string)
	for id, status := range statuses {
		groups[status] = append(groups[status], id)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for status, ids := range groups {
			err := tx.Model(&model.Member{}).
				Where("member_id IN ?", ids).
				Updates(map[string]interface{}{
					"status":     status,
					"version":    gorm.Expr("version + 1"),
					"updated_at": gorm.Expr("NOW()"),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *memberRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Member{}, "member_id = ?", id, deletedBy)
}

func (r *memberRepo) CountByTimeSlot(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		TimeSlotID string
		Count      int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Member{}).
		Select("time_slot_id, COUNT(*) AS count").
		Group("time_slot_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.TimeSlotID] = row.Count
	}
	return counts, nil
}
