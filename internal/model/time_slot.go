package model

// TimeSlot 训练时段表，对应 time_slots
type TimeSlot struct {
	TimeSlotID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"time_slot_id"`
	Label      string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"label"` // "06:00 - 07:00"
	StartTime  string `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime    string `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Capacity   int    `gorm:"not null;default:20"                            json:"capacity"`
	IsActive   bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (TimeSlot) TableName() string { return "time_slots" }
