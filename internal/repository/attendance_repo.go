package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
)

// AttendanceRepository 签到记录数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	// ListAll 按插入顺序（created_at, attendance_id）返回全部记录
	ListAll(ctx context.Context) ([]model.AttendanceRecord, error)
	ListByDate(ctx context.Context, date string) ([]model.AttendanceRecord, error)
	// ListByDateRange 闭区间 [from, to]，日期为 YYYY-MM-DD 字符串
	ListByDateRange(ctx context.Context, from, to string) ([]model.AttendanceRecord, error)
	ListByMember(ctx context.Context, memberID string) ([]model.AttendanceRecord, error)
	ExistsForDate(ctx context.Context, memberID, date string) (bool, error)
	DeleteByMemberAndDate(ctx context.Context, memberID, date string) (int64, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepo) ListAll(ctx context.Context) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Order("created_at ASC, attendance_id ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByDate(ctx context.Context, date string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("attendance_date = ?", date).
		Order("check_in_time ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByDateRange(ctx context.Context, from, to string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("attendance_date BETWEEN ? AND ?", from, to).
		Order("attendance_date ASC, check_in_time ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByMember(ctx context.Context, memberID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("attendance_date DESC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ExistsForDate(ctx context.Context, memberID, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("member_id = ? AND attendance_date = ?", memberID, date).
		Count(&count).Error
	return count > 0, err
}

func (r *attendanceRepo) DeleteByMemberAndDate(ctx context.Context, memberID, date string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("member_id = ? AND attendance_date = ?", memberID, date).
		Delete(&model.AttendanceRecord{})
	return result.RowsAffected, result.Error
}

func (r *attendanceRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("attendance_id IN ?", ids).
		Delete(&model.AttendanceRecord{})
	return result.RowsAffected, result.Error
}
