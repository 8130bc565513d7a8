package service

import (
	"strings"

	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
)

// normalizeMember 去除证件号与电话中的格式符号
func normalizeMember(m *model.Member) {
	m.Name = strings.TrimSpace(m.Name)
	m.CPF = digitsOnly(m.CPF)
	m.RG = digitsOnly(m.RG)
	m.Phone = digitsOnly(m.Phone)
	m.EmergencyPhone = digitsOnly(m.EmergencyPhone)
	m.GuardianPhone = digitsOnly(m.GuardianPhone)
	m.CertificateIssuedOn = strings.TrimSpace(m.CertificateIssuedOn)
	if !m.IsMinor {
		m.GuardianName, m.GuardianRelation, m.GuardianPhone = "", "", ""
	}
	if !m.UsesMedication {
		m.MedicationDetails = ""
	}
	if !m.HasCondition {
		m.ConditionDetails = ""
	}
}

// validateMember 校验学员登记信息，返回第一个不合法字段的描述
func validateMember(m *model.Member) error {
	switch {
	case m.Name == "":
		return validationError("姓名不能为空")
	case len(m.CPF) != 11:
		return validationError("CPF 必须为 11 位数字")
	case len(m.RG) == 0 || len(m.RG) > 9:
		return validationError("RG 必须为 1 至 9 位数字")
	case strings.TrimSpace(m.Address) == "":
		return validationError("地址不能为空")
	case len(m.Phone) != 11:
		return validationError("联系电话必须为 11 位数字")
	case len(m.EmergencyPhone) != 11:
		return validationError("紧急联系电话必须为 11 位数字")
	case strings.TrimSpace(m.FatherName) == "":
		return validationError("父亲姓名不能为空")
	case strings.TrimSpace(m.MotherName) == "":
		return validationError("母亲姓名不能为空")
	case m.TimeSlotID == "":
		return validationError("必须选择训练时段")
	case m.CertificateIssuedOn == "":
		return validationError("体检证明签发日期不能为空")
	}

	if _, ok := eligibility.ParseDate(m.CertificateIssuedOn); !ok {
		return validationError("体检证明签发日期格式应为 YYYY-MM-DD")
	}

	if m.IsMinor {
		switch {
		case strings.TrimSpace(m.GuardianName) == "":
			return validationError("未成年学员必须填写监护人姓名")
		case strings.TrimSpace(m.GuardianRelation) == "":
			return validationError("未成年学员必须填写监护人关系")
		case len(m.GuardianPhone) != 11:
			return validationError("监护人电话必须为 11 位数字")
		}
	}
	if m.UsesMedication && strings.TrimSpace(m.MedicationDetails) == "" {
		return validationError("请填写所用药物")
	}
	if m.HasCondition && strings.TrimSpace(m.ConditionDetails) == "" {
		return validationError("请填写健康状况说明")
	}
	return nil
}
