package model

// SystemConfig 系统配置表，对应 system_config（单行强类型）
type SystemConfig struct {
	Singleton                 bool `gorm:"primaryKey;default:true"  json:"-"`
	AbsenceThreshold          int  `gorm:"not null;default:7"       json:"absence_threshold"`
	AtRiskThreshold           int  `gorm:"not null;default:5"       json:"at_risk_threshold"`
	LookbackDays              int  `gorm:"not null;default:30"      json:"lookback_days"`
	CertificateValidityMonths int  `gorm:"not null;default:6"       json:"certificate_validity_months"`
	CertificateWarningDays    int  `gorm:"not null;default:30"      json:"certificate_warning_days"`
	SlotNearFullPercent       int  `gorm:"not null;default:90"      json:"slot_near_full_percent"`
	BlockMissingCertificate   bool `gorm:"not null;default:false"   json:"block_missing_certificate"`
	BaseModel
}

// TableName 指定表名
func (SystemConfig) TableName() string { return "system_config" }
