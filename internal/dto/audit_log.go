package dto

// ── 审计日志模块 DTO ──

// AuditLogListRequest 审计日志查询参数
type AuditLogListRequest struct {
	PaginationRequest
	Action string `form:"action" binding:"omitempty,max=50"`
}

// AuditLogResponse 审计日志
type AuditLogResponse struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Actor     string `json:"actor"`
	CreatedAt string `json:"created_at"`
}
