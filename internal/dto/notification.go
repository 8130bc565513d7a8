package dto

// ── 提醒模块 DTO ──

// NotificationResponse 系统提醒
type NotificationResponse struct {
	ID       string `json:"id"`
	Type     string `json:"type"`     // certificate_expired | certificate_expiring | certificate_missing | member_inactive | member_at_risk | slot_full | slot_almost_full
	Severity string `json:"severity"` // error | warning
	Title    string `json:"title"`
	Message  string `json:"message"`
	MemberID string `json:"member_id,omitempty"`
	SlotID   string `json:"slot_id,omitempty"`
}

// DigestResponse 提醒摘要邮件发送结果
type DigestResponse struct {
	Sent       bool `json:"sent"`
	Recipients int  `json:"recipients"`
	Count      int  `json:"count"`
}
