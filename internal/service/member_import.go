package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
)

// ────────────────────── ParseMemberImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = validationError("Excel 文件无数据行（第一行为表头）")
	ErrImportTooManyRows = validationError(fmt.Sprintf("数据行数超过上限 %d 行", maxImportRows))
	ErrImportBadHeader   = validationError("Excel 表头缺少必要列（nome/cpf/rg/horario/atestado）")
)

// ImportMemberRow Excel 导入解析后的单行数据
type ImportMemberRow struct {
	Row                 int
	Name                string
	CPF                 string
	RG                  string
	Address             string
	Phone               string
	EmergencyPhone      string
	FatherName          string
	MotherName          string
	SlotLabel           string
	CertificateIssuedOn string
	GuardianName        string
	GuardianRelation    string
	GuardianPhone       string
	Notes               string
}

// importColumns 表头别名 -> 字段键
var importColumns = map[string]string{
	"nome": "name", "name": "name", "姓名": "name",
	"cpf":      "cpf",
	"rg":       "rg",
	"endereco": "address", "endereço": "address", "address": "address",
	"telefone": "phone", "phone": "phone",
	"telefone_emergencia": "emergency_phone", "emergency_phone": "emergency_phone",
	"pai": "father", "father_name": "father",
	"mae": "mother", "mãe": "mother", "mother_name": "mother",
	"horario": "slot", "horário": "slot", "time_slot": "slot",
	"atestado": "certificate", "certificate_issued_on": "certificate",
	"responsavel": "guardian", "responsável": "guardian", "guardian_name": "guardian",
	"parentesco": "guardian_relation", "guardian_relation": "guardian_relation",
	"telefone_responsavel": "guardian_phone", "guardian_phone": "guardian_phone",
	"observacoes": "notes", "observações": "notes", "notes": "notes",
}

var requiredImportColumns = []string{"name", "cpf", "rg", "slot", "certificate"}

// ParseMemberImportFile 解析学员导入 Excel，第一行为表头，列序不限
func ParseMemberImportFile(reader io.Reader) ([]ImportMemberRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, validationError(fmt.Sprintf("无法解析 Excel 文件: %v", err))
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := make(map[string]int)
	for i, h := range excelRows[0] {
		if key, ok := importColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			colIndex[key] = i
		}
	}
	for _, key := range requiredImportColumns {
		if _, ok := colIndex[key]; !ok {
			return nil, ErrImportBadHeader
		}
	}

	var rows []ImportMemberRow
	for i := 1; i < len(excelRows); i++ {
		cells := excelRows[i]
		get := func(key string) string {
			idx, ok := colIndex[key]
			if !ok || idx >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx])
		}

		item := ImportMemberRow{
			Row:                 i + 1,
			Name:                get("name"),
			CPF:                 get("cpf"),
			RG:                  get("rg"),
			Address:             get("address"),
			Phone:               get("phone"),
			EmergencyPhone:      get("emergency_phone"),
			FatherName:          get("father"),
			MotherName:          get("mother"),
			SlotLabel:           get("slot"),
			CertificateIssuedOn: get("certificate"),
			GuardianName:        get("guardian"),
			GuardianRelation:    get("guardian_relation"),
			GuardianPhone:       get("guardian_phone"),
			Notes:               get("notes"),
		}
		// 跳过全空行
		if item.Name == "" && item.CPF == "" && item.RG == "" && item.SlotLabel == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// ────────────────────── ImportMembers ──────────────────────

// ImportMembers 先逐行校验，再在一个事务中写入全部通过校验的行
func (s *memberService) ImportMembers(ctx context.Context, rows []ImportMemberRow, callerID string) (*dto.ImportMemberResponse, error) {
	resp := &dto.ImportMemberResponse{Total: len(rows)}

	slots, err := s.repo.TimeSlot.List(ctx, false)
	if err != nil {
		s.logger.Error("加载时段失败", zap.Error(err))
		return nil, err
	}
	slotByLabel := make(map[string]*model.TimeSlot, len(slots))
	for i := range slots {
		slotByLabel[slots[i].Label] = &slots[i]
	}
	counts, err := s.repo.Member.CountByTimeSlot(ctx)
	if err != nil {
		s.logger.Error("统计时段人数失败", zap.Error(err))
		return nil, err
	}

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportMemberError{Row: row, Reason: reason})
	}

	// 第一阶段：校验（不写库）
	seenCPF := make(map[string]int)
	var valid []*model.Member
	var validRows []int
	for _, row := range rows {
		slot, ok := slotByLabel[strings.TrimSpace(row.SlotLabel)]
		if !ok {
			fail(row.Row, fmt.Sprintf("时段不存在: %s", row.SlotLabel))
			continue
		}

		member := row.toMember(slot.TimeSlotID, callerID)
		normalizeMember(member)
		if err := validateMember(member); err != nil {
			fail(row.Row, err.Error())
			continue
		}

		if prev, dup := seenCPF[member.CPF]; dup {
			fail(row.Row, fmt.Sprintf("CPF 与第 %d 行重复", prev))
			continue
		}
		if _, err := s.repo.Member.GetByCPF(ctx, member.CPF); err == nil {
			fail(row.Row, fmt.Sprintf("CPF 已登记: %s", member.CPF))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if !slot.IsActive || counts[slot.TimeSlotID] >= slot.Capacity {
			fail(row.Row, fmt.Sprintf("时段已停用或已满: %s", slot.Label))
			continue
		}

		counts[slot.TimeSlotID]++
		seenCPF[member.CPF] = row.Row
		valid = append(valid, member)
		validRows = append(validRows, row.Row)
	}

	if len(valid) == 0 {
		return resp, nil
	}

	// 第二阶段：事务写入，任一失败全部回滚
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for i, member := range valid {
			if err := tx.Member.Create(ctx, member); err != nil {
				s.logger.Error("导入学员写入失败，事务回滚", zap.Int("row", validRows[i]), zap.Error(err))
				return fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", validRows[i], err)
			}
		}
		return appendAudit(ctx, tx, model.AuditActionMemberCreated, actorOf(callerID),
			fmt.Sprintf("Excel 导入学员 %d 名", len(valid)))
	})
	if err != nil {
		return nil, err
	}

	resp.Success = len(valid)
	s.logger.Info("导入学员完成", zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}

func (r ImportMemberRow) toMember(slotID, callerID string) *model.Member {
	m := &model.Member{
		Name:                r.Name,
		CPF:                 r.CPF,
		RG:                  r.RG,
		Address:             r.Address,
		Phone:               r.Phone,
		EmergencyPhone:      r.EmergencyPhone,
		FatherName:          r.FatherName,
		MotherName:          r.MotherName,
		TimeSlotID:          slotID,
		CertificateIssuedOn: r.CertificateIssuedOn,
		IsMinor:             r.GuardianName != "",
		GuardianName:        r.GuardianName,
		GuardianRelation:    r.GuardianRelation,
		GuardianPhone:       r.GuardianPhone,
		Notes:               r.Notes,
		Status:              model.MemberStatusActive,
	}
	m.CreatedBy = optionalID(callerID)
	return m
}
