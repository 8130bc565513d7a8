package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
)

// JustificationListFilters 缺勤说明筛选条件
type JustificationListFilters struct {
	MemberID string
	From     string
	To       string
}

// JustificationRepository 缺勤说明数据访问接口
type JustificationRepository interface {
	// Create 同一学员同一日期重复时返回 pkgerrors.ErrDuplicateRecord
	Create(ctx context.Context, j *model.Justification) error
	ListAll(ctx context.Context) ([]model.Justification, error)
	List(ctx context.Context, filters *JustificationListFilters) ([]model.Justification, error)
	ListByMember(ctx context.Context, memberID string) ([]model.Justification, error)
}

type justificationRepo struct {
	db *gorm.DB
}

// NewJustificationRepo 创建 JustificationRepository 实例
func NewJustificationRepo(db *gorm.DB) JustificationRepository {
	return &justificationRepo{db: db}
}

func (r *justificationRepo) Create(ctx context.Context, j *model.Justification) error {
	return translate(r.db.WithContext(ctx).Create(j).Error)
}

func (r *justificationRepo) ListAll(ctx context.Context) ([]model.Justification, error) {
	var list []model.Justification
	err := r.db.WithContext(ctx).
		Order("absence_date ASC").
		Find(&list).Error
	return list, err
}

func (r *justificationRepo) List(ctx context.Context, filters *JustificationListFilters) ([]model.Justification, error) {
	var list []model.Justification
	db := r.db.WithContext(ctx).Preload("Member")
	if filters != nil {
		if filters.MemberID != "" {
			db = db.Where("member_id = ?", filters.MemberID)
		}
		if filters.From != "" {
			db = db.Where("absence_date >= ?", filters.From)
		}
		if filters.To != "" {
			db = db.Where("absence_date <= ?", filters.To)
		}
	}
	err := db.Order("absence_date DESC").Find(&list).Error
	return list, err
}

func (r *justificationRepo) ListByMember(ctx context.Context, memberID string) ([]model.Justification, error) {
	var list []model.Justification
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("absence_date DESC").
		Find(&list).Error
	return list, err
}
