package dto

// ── 签到资格模块 DTO ──

// CertificateStatusRequest 体检证明状态查询参数
type CertificateStatusRequest struct {
	IssueDate string `form:"issue_date"`
	Today     string `form:"today"` // 可选，默认为业务时区当天
}

// CertificateStatusResponse 体检证明状态
type CertificateStatusResponse struct {
	Status        string `json:"status"` // valid | expiring_soon | expired | missing
	DaysRemaining int    `json:"days_remaining"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
}

// CheckInDecisionResponse 签到资格判定
type CheckInDecisionResponse struct {
	MemberID            string                    `json:"member_id"`
	Allowed             bool                      `json:"allowed"`
	Reasons             []string                  `json:"reasons"`
	ConsecutiveAbsences int                       `json:"consecutive_absences"`
	Certificate         CertificateStatusResponse `json:"certificate"`
}

// AbsenceReportResponse 学员缺勤情况
type AbsenceReportResponse struct {
	MemberID            string   `json:"member_id"`
	ConsecutiveAbsences int      `json:"consecutive_absences"`
	UnjustifiedDates    []string `json:"unjustified_dates"`
	AtRisk              bool     `json:"at_risk"`
}

// ── 维护任务 DTO ──

// SweepResponse 状态巡检结果
type SweepResponse struct {
	FlippedToInactive int `json:"flipped_to_inactive"`
	FlippedToActive   int `json:"flipped_to_active"`
}

// DedupResponse 签到去重结果
type DedupResponse struct {
	RemovedCount int `json:"removed_count"`
}
