package dto

// ── 学员模块 DTO ──

// CreateMemberRequest 学员登记请求
// 数字类字段（CPF/RG/电话）允许带格式符号，服务层统一去除后校验位数
type CreateMemberRequest struct {
	Name                string `json:"name"                  binding:"required,min=2,max=120"`
	CPF                 string `json:"cpf"                   binding:"required"`
	RG                  string `json:"rg"                    binding:"required"`
	Address             string `json:"address"               binding:"required,max=255"`
	Phone               string `json:"phone"                 binding:"required"`
	EmergencyPhone      string `json:"emergency_phone"       binding:"required"`
	FatherName          string `json:"father_name"           binding:"required,max=120"`
	MotherName          string `json:"mother_name"           binding:"required,max=120"`
	TimeSlotID          string `json:"time_slot_id"          binding:"required,uuid"`
	CertificateIssuedOn string `json:"certificate_issued_on" binding:"required"`
	IsMinor             bool   `json:"is_minor"`
	GuardianName        string `json:"guardian_name"         binding:"omitempty,max=120"`
	GuardianRelation    string `json:"guardian_relation"     binding:"omitempty,max=50"`
	GuardianPhone       string `json:"guardian_phone"`
	UsesMedication      bool   `json:"uses_medication"`
	MedicationDetails   string `json:"medication_details"    binding:"omitempty,max=255"`
	HasCondition        bool   `json:"has_condition"`
	ConditionDetails    string `json:"condition_details"     binding:"omitempty,max=255"`
	Notes               string `json:"notes"                 binding:"omitempty,max=2000"`
}

// UpdateMemberRequest 更新学员请求（仅更新非 nil 字段）
type UpdateMemberRequest struct {
	Name                *string `json:"name"                  binding:"omitempty,min=2,max=120"`
	RG                  *string `json:"rg"`
	Address             *string `json:"address"               binding:"omitempty,max=255"`
	Phone               *string `json:"phone"`
	EmergencyPhone      *string `json:"emergency_phone"`
	FatherName          *string `json:"father_name"           binding:"omitempty,max=120"`
	MotherName          *string `json:"mother_name"           binding:"omitempty,max=120"`
	TimeSlotID          *string `json:"time_slot_id"          binding:"omitempty,uuid"`
	CertificateIssuedOn *string `json:"certificate_issued_on"`
	IsMinor             *bool   `json:"is_minor"`
	GuardianName        *string `json:"guardian_name"         binding:"omitempty,max=120"`
	GuardianRelation    *string `json:"guardian_relation"     binding:"omitempty,max=50"`
	GuardianPhone       *string `json:"guardian_phone"`
	UsesMedication      *bool   `json:"uses_medication"`
	MedicationDetails   *string `json:"medication_details"    binding:"omitempty,max=255"`
	HasCondition        *bool   `json:"has_condition"`
	ConditionDetails    *string `json:"condition_details"     binding:"omitempty,max=255"`
	Notes               *string `json:"notes"                 binding:"omitempty,max=2000"`
	Version             int     `json:"version"               binding:"required,min=1"`
}

// MemberListRequest 学员列表查询参数
type MemberListRequest struct {
	PaginationRequest
	Keyword    string `form:"keyword"      binding:"omitempty,max=50"` // 姓名或 CPF
	Status     string `form:"status"       binding:"omitempty,oneof=active inactive"`
	TimeSlotID string `form:"time_slot_id" binding:"omitempty,uuid"`
}

// MemberResponse 学员信息响应
type MemberResponse struct {
	ID                  string                    `json:"id"`
	Name                string                    `json:"name"`
	CPF                 string                    `json:"cpf"`
	RG                  string                    `json:"rg"`
	Address             string                    `json:"address"`
	Phone               string                    `json:"phone"`
	EmergencyPhone      string                    `json:"emergency_phone"`
	FatherName          string                    `json:"father_name"`
	MotherName          string                    `json:"mother_name"`
	TimeSlot            *TimeSlotBrief            `json:"time_slot,omitempty"`
	CertificateIssuedOn string                    `json:"certificate_issued_on"`
	Certificate         CertificateStatusResponse `json:"certificate"`
	IsMinor             bool                      `json:"is_minor"`
	GuardianName        string                    `json:"guardian_name,omitempty"`
	GuardianRelation    string                    `json:"guardian_relation,omitempty"`
	GuardianPhone       string                    `json:"guardian_phone,omitempty"`
	UsesMedication      bool                      `json:"uses_medication"`
	MedicationDetails   string                    `json:"medication_details,omitempty"`
	HasCondition        bool                      `json:"has_condition"`
	ConditionDetails    string                    `json:"condition_details,omitempty"`
	Notes               string                    `json:"notes,omitempty"`
	Status              string                    `json:"status"`
	Version             int                       `json:"version"`
	CreatedAt           string                    `json:"created_at"`
	UpdatedAt           string                    `json:"updated_at"`
}

// TimeSlotBrief 时段简要信息（嵌入学员响应）
type TimeSlotBrief struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ImportMemberResponse 批量导入学员响应
type ImportMemberResponse struct {
	Total   int                 `json:"total"`
	Success int                 `json:"success"`
	Failed  int                 `json:"failed"`
	Errors  []ImportMemberError `json:"errors,omitempty"`
}

// ImportMemberError 导入错误详情
type ImportMemberError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
