package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User          UserRepository
	Member        MemberRepository
	TimeSlot      TimeSlotRepository
	Attendance    AttendanceRepository
	Justification JustificationRepository
	ClosureDay    ClosureDayRepository
	AuditLog      AuditLogRepository
	SystemConfig  SystemConfigRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		User:          NewUserRepo(db),
		Member:        NewMemberRepo(db),
		TimeSlot:      NewTimeSlotRepo(db),
		Attendance:    NewAttendanceRepo(db),
		Justification: NewJustificationRepo(db),
		ClosureDay:    NewClosureDayRepo(db),
		AuditLog:      NewAuditLogRepo(db),
		SystemConfig:  NewSystemConfigRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在事务中执行 fn，fn 返回错误时回滚
// 未绑定数据库（单元测试中的 mock 聚合）时直接在当前聚合上执行
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
