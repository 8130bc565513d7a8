package dto

// ── 训练时段模块 DTO ──

// CreateTimeSlotRequest 创建时段请求
type CreateTimeSlotRequest struct {
	StartTime string `json:"start_time" binding:"required"` // "06:00"
	EndTime   string `json:"end_time"   binding:"required"` // "07:00"
	Capacity  int    `json:"capacity"   binding:"omitempty,min=1,max=500"`
}

// UpdateTimeSlotRequest 更新时段请求
type UpdateTimeSlotRequest struct {
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Capacity  *int    `json:"capacity"  binding:"omitempty,min=1,max=500"`
	IsActive  *bool   `json:"is_active"`
}

// TimeSlotResponse 时段信息响应（含占用情况）
type TimeSlotResponse struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Capacity    int    `json:"capacity"`
	IsActive    bool   `json:"is_active"`
	MemberCount int    `json:"member_count"`
	Occupancy   int    `json:"occupancy_percent"`
	State       string `json:"state"` // available | almost_full | full | disabled
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
