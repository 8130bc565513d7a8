package model

// 学员状态
const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

// Member 学员表，对应 members
//
// 体检证明签发日期以原始字符串保存（YYYY-MM-DD），
// 历史数据未经格式校验，解析失败时按"未提交"处理。
type Member struct {
	MemberID            string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"member_id"`
	Name                string `gorm:"type:varchar(120);not null"                     json:"name"`
	CPF                 string `gorm:"type:varchar(11);not null"                      json:"cpf"`
	RG                  string `gorm:"type:varchar(9);not null"                       json:"rg"`
	Address             string `gorm:"type:varchar(255);not null"                     json:"address"`
	Phone               string `gorm:"type:varchar(11);not null"                      json:"phone"`
	EmergencyPhone      string `gorm:"type:varchar(11);not null"                      json:"emergency_phone"`
	FatherName          string `gorm:"type:varchar(120)"                              json:"father_name"`
	MotherName          string `gorm:"type:varchar(120)"                              json:"mother_name"`
	TimeSlotID          string `gorm:"type:uuid;not null;index"                       json:"time_slot_id"`
	CertificateIssuedOn string `gorm:"type:varchar(32)"                               json:"certificate_issued_on"`
	IsMinor             bool   `gorm:"not null;default:false"                         json:"is_minor"`
	GuardianName        string `gorm:"type:varchar(120)"                              json:"guardian_name"`
	GuardianRelation    string `gorm:"type:varchar(50)"                               json:"guardian_relation"`
	GuardianPhone       string `gorm:"type:varchar(11)"                               json:"guardian_phone"`
	UsesMedication      bool   `gorm:"not null;default:false"                         json:"uses_medication"`
	MedicationDetails   string `gorm:"type:varchar(255)"                              json:"medication_details"`
	HasCondition        bool   `gorm:"not null;default:false"                         json:"has_condition"`
	ConditionDetails    string `gorm:"type:varchar(255)"                              json:"condition_details"`
	Notes               string `gorm:"type:text"                                      json:"notes"`
	Status              string `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | inactive
	VersionedModel

	// 关联
	TimeSlot *TimeSlot `gorm:"foreignKey:TimeSlotID;references:TimeSlotID" json:"time_slot,omitempty"`
}

// TableName 指定表名
func (Member) TableName() string { return "members" }

// IsActive 是否为活跃学员
func (m *Member) IsActive() bool { return m.Status == MemberStatusActive }
