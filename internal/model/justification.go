package model

import "time"

// Justification 缺勤说明表，对应 justifications
// (member_id, absence_date) 唯一；创建后不可修改
type Justification struct {
	JustificationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"        json:"justification_id"`
	MemberID        string    `gorm:"type:uuid;not null;uniqueIndex:uq_justification_member_date" json:"member_id"`
	AbsenceDate     string    `gorm:"type:varchar(32);not null;uniqueIndex:uq_justification_member_date" json:"absence_date"`
	Reason          string    `gorm:"type:varchar(100);not null"                            json:"reason"`
	Notes           string    `gorm:"type:text"                                             json:"notes"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                    json:"created_at"`
	CreatedBy       *string   `gorm:"type:uuid"                                             json:"created_by,omitempty"`

	// 关联
	Member *Member `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
}

// TableName 指定表名
func (Justification) TableName() string { return "justifications" }
