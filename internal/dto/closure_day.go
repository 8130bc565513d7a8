package dto

// ── 闭馆日模块 DTO ──

// CreateClosureDayRequest 新增闭馆日
type CreateClosureDayRequest struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name" binding:"required,max=100"`
}

// ClosureDayListRequest 闭馆日查询参数
type ClosureDayListRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// ImportClosureDaysRequest 从 iCalendar 地址导入
type ImportClosureDaysRequest struct {
	URL string `json:"url" binding:"omitempty,url"`
}

// ClosureDayResponse 闭馆日
type ClosureDayResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// ImportClosureDaysResponse 导入结果
type ImportClosureDaysResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}
