package model

import "time"

// 审计动作
const (
	AuditActionAutoInactivation  = "auto_inactivation"
	AuditActionAutoReactivation  = "auto_reactivation"
	AuditActionDuplicateCleanup  = "duplicate_cleanup"
	AuditActionCheckIn           = "check_in"
	AuditActionCheckInRemoved    = "check_in_removed"
	AuditActionJustification     = "justification"
	AuditActionBatchJustify      = "batch_justification"
	AuditActionManualReactivate  = "manual_reactivation"
	AuditActionMemberCreated     = "member_created"
	AuditActionMemberUpdated     = "member_updated"
	AuditActionMemberDeleted     = "member_deleted"
	AuditActionTimeSlotChanged   = "time_slot_changed"
	AuditActionClosureDayChanged = "closure_day_changed"
	AuditActionConfigChanged     = "config_changed"
	AuditActionUserChanged       = "user_changed"
	AuditActionDigestSent        = "digest_sent"
)

// AuditActorSystem 系统自动任务的操作人
const AuditActorSystem = "system"

// AuditLog 审计日志表，对应 audit_logs（仅追加）
type AuditLog struct {
	AuditLogID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_log_id"`
	Action     string    `gorm:"type:varchar(50);not null;index"                json:"action"`
	Details    string    `gorm:"type:text;not null"                             json:"details"`
	Actor      string    `gorm:"type:varchar(100);not null"                     json:"actor"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }
