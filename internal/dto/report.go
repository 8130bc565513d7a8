package dto

// ── 报表模块 DTO ──

// AttendanceReportRequest 报表查询参数
type AttendanceReportRequest struct {
	Period string `form:"period" binding:"omitempty,oneof=daily weekly monthly"`
	Date   string `form:"date"` // 参考日期，默认为今天
}

// AttendanceReportResponse 签到统计报表
type AttendanceReportResponse struct {
	Period          string               `json:"period"`
	From            string               `json:"from"`
	To              string               `json:"to"`
	TotalCheckIns   int                  `json:"total_check_ins"`
	UniqueMembers   int                  `json:"unique_members"`
	AveragePerDay   float64              `json:"average_per_day"`
	BySlot          []CountItem          `json:"by_slot"`
	ByDay           []CountItem          `json:"by_day"`
	TopMembers      []MemberCountItem    `json:"top_members"`
	ActiveMembers   int                  `json:"active_members"`
	InactiveMembers int                  `json:"inactive_members"`
	Records         []AttendanceResponse `json:"-"`
}

// CountItem 计数项
type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MemberCountItem 学员签到次数
type MemberCountItem struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

// JustificationReportResponse 缺勤说明报表
type JustificationReportResponse struct {
	Period                    string                  `json:"period"`
	From                      string                  `json:"from"`
	To                        string                  `json:"to"`
	Total                     int                     `json:"total"`
	MembersWithJustifications int                     `json:"members_with_justifications"`
	TopReasons                []CountItem             `json:"top_reasons"`
	Records                   []JustificationResponse `json:"records"`
}

// CertificateReportResponse 体检证明报表
type CertificateReportResponse struct {
	Date            string                  `json:"date"`
	TotalMembers    int                     `json:"total_members"`
	WithCertificate int                     `json:"with_certificate"`
	Valid           int                     `json:"valid"`
	ExpiringSoon    int                     `json:"expiring_soon"`
	Expired         int                     `json:"expired"`
	Missing         int                     `json:"missing"`
	Members         []CertificateReportItem `json:"members"`
}

// CertificateReportItem 单个学员的体检证明
type CertificateReportItem struct {
	MemberID      string                    `json:"member_id"`
	Name          string                    `json:"name"`
	CPF           string                    `json:"cpf"`
	TimeSlotLabel string                    `json:"time_slot_label"`
	IssuedOn      string                    `json:"issued_on"`
	Certificate   CertificateStatusResponse `json:"certificate"`
}

// TimeSlotReportResponse 时段报表
type TimeSlotReportResponse struct {
	Period         string               `json:"period"`
	From           string               `json:"from"`
	To             string               `json:"to"`
	TotalSlots     int                  `json:"total_slots"`
	ActiveSlots    int                  `json:"active_slots"`
	TotalMembers   int                  `json:"total_members"`
	AveragePerSlot float64              `json:"average_per_slot"`
	Slots          []TimeSlotReportItem `json:"slots"`
}

// TimeSlotReportItem 单个时段的统计
type TimeSlotReportItem struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Capacity  int    `json:"capacity"`
	Members   int    `json:"members"`
	Available int    `json:"available"`
	Occupancy int    `json:"occupancy_percent"`
	State     string `json:"state"`
	CheckIns  int    `json:"check_ins"` // 统计周期内的签到数
}
