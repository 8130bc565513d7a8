package dto

// ── 缺勤说明模块 DTO ──

// CreateJustificationRequest 单日缺勤说明
type CreateJustificationRequest struct {
	MemberID    string `json:"member_id"    binding:"required,uuid"`
	AbsenceDate string `json:"absence_date" binding:"required"`
	Reason      string `json:"reason"       binding:"required,max=100"`
	Notes       string `json:"notes"        binding:"omitempty,max=2000"`
}

// BatchJustificationRequest 多日缺勤说明（已存在的日期跳过）
type BatchJustificationRequest struct {
	MemberID     string   `json:"member_id"     binding:"required,uuid"`
	AbsenceDates []string `json:"absence_dates" binding:"required,min=1,max=60"`
	Reason       string   `json:"reason"        binding:"required,max=100"`
	Notes        string   `json:"notes"         binding:"omitempty,max=2000"`
}

// BatchJustificationResponse 多日缺勤说明结果
type BatchJustificationResponse struct {
	Created int      `json:"created"`
	Skipped []string `json:"skipped"`
}

// ReactivateRequest 补交说明并恢复学员
type ReactivateRequest struct {
	MemberID     string   `json:"member_id"     binding:"required,uuid"`
	AbsenceDates []string `json:"absence_dates"` // 为空时使用全部未说明的缺勤日
	Notes        string   `json:"notes"         binding:"omitempty,max=2000"`
}

// ReactivateResponse 恢复结果
type ReactivateResponse struct {
	Justified int    `json:"justified"`
	Status    string `json:"status"`
	Changed   bool   `json:"changed"`
}

// JustificationListRequest 缺勤说明查询参数
type JustificationListRequest struct {
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
	From     string `form:"from"`
	To       string `form:"to"`
}

// JustificationResponse 缺勤说明
type JustificationResponse struct {
	ID          string `json:"id"`
	MemberID    string `json:"member_id"`
	MemberName  string `json:"member_name,omitempty"`
	AbsenceDate string `json:"absence_date"`
	Reason      string `json:"reason"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
}
