package dto

// ── 系统配置模块 DTO ──

// UpdateSystemConfigRequest 更新系统配置请求
type UpdateSystemConfigRequest struct {
	AbsenceThreshold          *int  `json:"absence_threshold"           binding:"omitempty,min=1,max=30"`
	AtRiskThreshold           *int  `json:"at_risk_threshold"           binding:"omitempty,min=1,max=30"`
	LookbackDays              *int  `json:"lookback_days"               binding:"omitempty,min=7,max=120"`
	CertificateValidityMonths *int  `json:"certificate_validity_months" binding:"omitempty,min=1,max=24"`
	CertificateWarningDays    *int  `json:"certificate_warning_days"    binding:"omitempty,min=0,max=90"`
	SlotNearFullPercent       *int  `json:"slot_near_full_percent"      binding:"omitempty,min=50,max=100"`
	BlockMissingCertificate   *bool `json:"block_missing_certificate"`
}

// SystemConfigResponse 系统配置响应
type SystemConfigResponse struct {
	AbsenceThreshold          int    `json:"absence_threshold"`
	AtRiskThreshold           int    `json:"at_risk_threshold"`
	LookbackDays              int    `json:"lookback_days"`
	CertificateValidityMonths int    `json:"certificate_validity_months"`
	CertificateWarningDays    int    `json:"certificate_warning_days"`
	SlotNearFullPercent       int    `json:"slot_near_full_percent"`
	BlockMissingCertificate   bool   `json:"block_missing_certificate"`
	UpdatedAt                 string `json:"updated_at"`
}
