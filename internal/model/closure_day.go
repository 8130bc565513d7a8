package model

// ClosureDay 闭馆日表，对应 closure_days
// 连续缺勤统计时与周末一样跳过
type ClosureDay struct {
	ClosureDayID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"closure_day_id"`
	Date         string `gorm:"type:varchar(10);not null;uniqueIndex"          json:"date"` // YYYY-MM-DD
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Source       string `gorm:"type:varchar(10);not null;default:'manual'"     json:"source"` // manual | ics
	BaseModel
}

// TableName 指定表名
func (ClosureDay) TableName() string { return "closure_days" }
