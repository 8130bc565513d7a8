package model

import "time"

// AttendanceRecord 签到记录表，对应 attendance_records
//
// 同一学员同一日期至多一条；历史导入可能产生重复，由去重任务清理。
// AttendanceDate 保存 YYYY-MM-DD 字符串，格式异常的记录视为不存在。
type AttendanceRecord struct {
	AttendanceID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	MemberID       string    `gorm:"type:uuid;not null;index:idx_attendance_member_date" json:"member_id"`
	AttendanceDate string    `gorm:"type:varchar(32);not null;index:idx_attendance_member_date" json:"attendance_date"`
	CheckInTime    string    `gorm:"type:varchar(5);not null"                       json:"check_in_time"` // HH:MM
	TimeSlotLabel  string    `gorm:"type:varchar(50)"                               json:"time_slot_label"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy      *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`

	// 关联
	Member *Member `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
