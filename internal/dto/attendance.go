package dto

// ── 签到模块 DTO ──

// CheckInRequest 签到请求（学员 ID 与 CPF 二选一）
type CheckInRequest struct {
	MemberID string `json:"member_id" binding:"omitempty,uuid"`
	CPF      string `json:"cpf"`
}

// AttendanceListRequest 按日期查询签到
type AttendanceListRequest struct {
	Date string `form:"date"` // YYYY-MM-DD，默认为今天
}

// AttendanceResponse 签到记录
type AttendanceResponse struct {
	ID            string `json:"id"`
	MemberID      string `json:"member_id"`
	MemberName    string `json:"member_name,omitempty"`
	Date          string `json:"date"`
	CheckInTime   string `json:"check_in_time"`
	TimeSlotLabel string `json:"time_slot_label"`
	CreatedAt     string `json:"created_at"`
}

// CheckInResponse 签到结果
type CheckInResponse struct {
	Record   AttendanceResponse      `json:"record"`
	Decision CheckInDecisionResponse `json:"decision"`
}

// DailyAttendanceResponse 某日签到汇总
type DailyAttendanceResponse struct {
	Date    string               `json:"date"`
	Total   int                  `json:"total"`
	BySlot  map[string]int       `json:"by_slot"`
	Records []AttendanceResponse `json:"records"`
}
