package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
)

// ClosureDayRepository 闭馆日数据访问接口
type ClosureDayRepository interface {
	Create(ctx context.Context, day *model.ClosureDay) error
	// CreateIfAbsent 日期已存在时跳过，返回是否插入
	CreateIfAbsent(ctx context.Context, day *model.ClosureDay) (bool, error)
	GetByID(ctx context.Context, id string) (*model.ClosureDay, error)
	List(ctx context.Context, from, to string) ([]model.ClosureDay, error)
	Delete(ctx context.Context, id string) error
}

type closureDayRepo struct {
	db *gorm.DB
}

// NewClosureDayRepo 创建 ClosureDayRepository 实例
func NewClosureDayRepo(db *gorm.DB) ClosureDayRepository {
	return &closureDayRepo{db: db}
}

func (r *closureDayRepo) Create(ctx context.Context, day *model.ClosureDay) error {
	return translate(r.db.WithContext(ctx).Create(day).Error)
}

func (r *closureDayRepo) CreateIfAbsent(ctx context.Context, day *model.ClosureDay) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "date"}}, DoNothing: true}).
		Create(day)
	return result.RowsAffected > 0, result.Error
}

func (r *closureDayRepo) GetByID(ctx context.Context, id string) (*model.ClosureDay, error) {
	var day model.ClosureDay
	err := r.db.WithContext(ctx).
		Where("closure_day_id = ?", id).
		First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *closureDayRepo) List(ctx context.Context, from, to string) ([]model.ClosureDay, error) {
	var days []model.ClosureDay
	db := r.db.WithContext(ctx)
	if from != "" {
		db = db.Where("date >= ?", from)
	}
	if to != "" {
		db = db.Where("date <= ?", to)
	}
	err := db.Order("date ASC").Find(&days).Error
	return days, err
}

func (r *closureDayRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("closure_day_id = ?", id).
		Delete(&model.ClosureDay{}).Error
}
