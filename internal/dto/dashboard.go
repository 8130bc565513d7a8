package dto

// ── 学员自助模块 DTO ──

// MemberDashboardResponse 学员个人面板（GET /me/dashboard）
type MemberDashboardResponse struct {
	MemberID            string                    `json:"member_id"`
	Name                string                    `json:"name"`
	Status              string                    `json:"status"`
	TimeSlot            *TimeSlotBrief            `json:"time_slot,omitempty"`
	TotalCheckIns       int                       `json:"total_check_ins"`
	Attendance          []AttendanceResponse      `json:"attendance"`
	Justifications      []JustificationResponse   `json:"justifications"`
	Absences            AbsenceReportResponse     `json:"absences"`
	CertificateIssuedOn string                    `json:"certificate_issued_on"`
	Certificate         CertificateStatusResponse `json:"certificate"`
}
