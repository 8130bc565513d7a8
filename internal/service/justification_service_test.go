package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
)

func setupTestJustificationService() (JustificationService, *mockRepos) {
	repo, m := newMockRepository()
	seedSlot(m, "ts-1", "07:00", "08:00", 20)
	return NewJustificationService(repo, zap.NewNop()), m
}

// ── Create 测试 ──

func TestJustificationService_Create_Success(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedMember(m, "m1", "Ana Lima", "52998224725", "ts-1", "2026-09-01", model.MemberStatusActive)

	resp, err := svc.Create(context.Background(), &dto.CreateJustificationRequest{
		MemberID:    "m1",
		AbsenceDate: "2026-10-16",
		Reason:      "  Atestado médico ",
	}, "user-admin")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Reason != "Atestado médico" || resp.MemberName != "Ana Lima" {
		t.Errorf("说明信息不符: %+v", resp)
	}
	if n := len(m.audits.byAction(model.AuditActionJustification)); n != 1 {
		t.Errorf("期望 1 条审计日志，实际 %d", n)
	}

	_, err = svc.Create(context.Background(), &dto.CreateJustificationRequest{
		MemberID:    "m1",
		AbsenceDate: "2026-10-16",
		Reason:      "Viagem",
	}, "user-admin")
	if !errors.Is(err, ErrDuplicateJustification) {
		t.Errorf("期望 ErrDuplicateJustification，实际: %v", err)
	}
}

func TestJustificationService_Create_StoresCanonicalDate(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedMember(m, "m1", "Ana Lima", "52998224725", "ts-1", "2026-09-01", model.MemberStatusActive)

	if _, err := svc.Create(context.Background(), &dto.CreateJustificationRequest{
		MemberID: "m1", AbsenceDate: "2026-10-16", Reason: "Viagem",
	}, "user-admin"); err != nil {
		t.Fatalf("首次 Create 应成功: %v", err)
	}

	_, err := svc.Create(context.Background(), &dto.CreateJustificationRequest{
		MemberID: "m1", AbsenceDate: " 2026-10-16 ", Reason: "Viagem",
	}, "user-admin")
	if !errors.Is(err, ErrDuplicateJustification) {
		t.Errorf("带空格的同一日期应判为重复，实际: %v", err)
	}
	if len(m.justifications.items) != 1 {
		t.Fatalf("期望仅 1 条说明，实际 %d", len(m.justifications.items))
	}
	if got := m.justifications.items[0].AbsenceDate; got != "2026-10-16" {
		t.Errorf("期望保存规范日期 2026-10-16，实际 %q", got)
	}
}

func TestJustificationService_List_TrimsRange(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedMember(m, "m1", "Ana Lima", "52998224725", "ts-1", "2026-09-01", model.MemberStatusActive)
	seedJustification(m, "m1", "2026-10-14", "2026-10-16")

	list, err := svc.List(context.Background(), &dto.JustificationListRequest{From: " 2026-10-15", To: "2026-10-16 "})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 1 || list[0].AbsenceDate != "2026-10-16" {
		t.Errorf("期望区间内仅 2026-10-16，实际 %+v", list)
	}
}

func TestJustificationService_Create_Invalid(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedMember(m, "m1", "Ana Lima", "52998224725", "ts-1", "2026-09-01", model.MemberStatusActive)

	tests := []struct {
		name    string
		req     *dto.CreateJustificationRequest
		wantErr error
	}{
		{"空原因", &dto.CreateJustificationRequest{MemberID: "m1", AbsenceDate: "2026-10-16", Reason: "   "}, ErrEmptyReason},
		{"日期格式错误", &dto.CreateJustificationRequest{MemberID: "m1", AbsenceDate: "16/10/2026", Reason: "Viagem"}, ErrInvalidDate},
		{"学员不存在", &dto.CreateJustificationRequest{MemberID: "nobody", AbsenceDate: "2026-10-16", Reason: "Viagem"}, ErrMemberNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.req, "user-admin"); !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}
	if len(m.justifications.items) != 0 {
		t.Error("失败时不应写入说明")
	}
}

// ── CreateBatch 测试 ──

func TestJustificationService_CreateBatch_SkipsExisting(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedMember(m, "m1", "Ana Lima", "52998224725", "ts-1", "2026-09-01", model.MemberStatusActive)
	seedJustification(m, "m1", "2026-10-15")

	resp, err := svc.CreateBatch(context.Background(), &dto.BatchJustificationRequest{
		MemberID:     "m1",
		AbsenceDates: []string{"2026-10-16", "2026-10-15", "2026-10-16", "2026-10-14"},
		Reason:       "Viagem",
	}, "user-admin")
	if err != nil {
		t.Fatalf("CreateBatch 应成功: %v", err)
	}
	if resp.Created != 2 {
		t.Errorf("期望 Created=2，实际=%d", resp.Created)
	}
	if !reflect.DeepEqual(resp.Skipped, []string{"2026-10-15"}) {
		t.Errorf("期望跳过 [2026-10-15]，实际 %v", resp.Skipped)
	}
	if n := len(m.audits.byAction(model.AuditActionBatchJustify)); n != 1 {
		t.Errorf("期望 1 条批量审计日志，实际 %d", n)
	}
}

func TestJustificationService_CreateBatch_AllSkipped(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedMember(m, "m1", "Ana Lima", "52998224725", "ts-1", "2026-09-01", model.MemberStatusActive)
	seedJustification(m, "m1", "2026-10-16")

	resp, err := svc.CreateBatch(context.Background(), &dto.BatchJustificationRequest{
		MemberID:     "m1",
		AbsenceDates: []string{"2026-10-16"},
		Reason:       "Viagem",
	}, "user-admin")
	if err != nil {
		t.Fatalf("CreateBatch 应成功: %v", err)
	}
	if resp.Created != 0 || len(resp.Skipped) != 1 {
		t.Errorf("期望全部跳过，实际 %+v", resp)
	}
	if len(m.audits.entries) != 0 {
		t.Error("没有新增说明时不应写审计日志")
	}

	if _, err := svc.CreateBatch(context.Background(), &dto.BatchJustificationRequest{
		MemberID:     "m1",
		AbsenceDates: []string{"2026-10-16", "bad"},
		Reason:       "Viagem",
	}, "user-admin"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

// ── List 测试 ──

func TestJustificationService_List(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedJustification(m, "m1", "2026-10-01", "2026-10-10")
	seedJustification(m, "m2", "2026-10-05")

	list, err := svc.List(context.Background(), &dto.JustificationListRequest{MemberID: "m1"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("期望 m1 有 2 条说明，实际 %d", len(list))
	}

	list, _ = svc.List(context.Background(), &dto.JustificationListRequest{From: "2026-10-02", To: "2026-10-31"})
	if len(list) != 2 {
		t.Errorf("期望区间内 2 条说明，实际 %d", len(list))
	}

	if _, err := svc.List(context.Background(), &dto.JustificationListRequest{From: "x"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

// ── JustifyAndReactivate 测试 ──

func TestJustificationService_JustifyAndReactivate_AllAbsences(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedMember(m, "m1", "Ana Lima", "52998224725", "ts-1", "2026-09-01", model.MemberStatusInactive)

	resp, err := svc.JustifyAndReactivate(context.Background(), &dto.ReactivateRequest{MemberID: "m1"}, day(testToday), "user-admin")
	if err != nil {
		t.Fatalf("JustifyAndReactivate 应成功: %v", err)
	}
	if resp.Justified != 20 || resp.Status != model.MemberStatusActive || !resp.Changed {
		t.Errorf("期望说明 20 天并恢复活跃，实际 %+v", resp)
	}
	if m.members.members["m1"].Status != model.MemberStatusActive {
		t.Error("期望学员状态已更新为 active")
	}
	for _, j := range m.justifications.items {
		if j.Reason != ReactivationReason {
			t.Errorf("期望原因为 %q，实际 %q", ReactivationReason, j.Reason)
		}
	}
	if n := len(m.audits.byAction(model.AuditActionManualReactivate)); n != 1 {
		t.Errorf("期望 1 条恢复审计日志，实际 %d", n)
	}
}

func TestJustificationService_JustifyAndReactivate_ExpiredCertificate(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedMember(m, "m1", "Ana Lima", "52998224725", "ts-1", "2026-01-10", model.MemberStatusInactive)

	resp, err := svc.JustifyAndReactivate(context.Background(), &dto.ReactivateRequest{MemberID: "m1"}, day(testToday), "user-admin")
	if err != nil {
		t.Fatalf("JustifyAndReactivate 应成功: %v", err)
	}
	if resp.Status != model.MemberStatusInactive || resp.Changed {
		t.Errorf("证明过期时应保持 inactive，实际 %+v", resp)
	}
	if len(m.audits.byAction(model.AuditActionManualReactivate)) != 0 {
		t.Error("状态未变化时不应写恢复审计日志")
	}
}

func TestJustificationService_JustifyAndReactivate_NothingToJustify(t *testing.T) {
	svc, m := setupTestJustificationService()
	seedMember(m, "m1", "Ana Lima", "52998224725", "ts-1", "2026-09-01", model.MemberStatusActive)
	seedAttendance(m, "m1", "2026-10-16")
	seedJustification(m, "m1", "2026-10-15")

	_, err := svc.JustifyAndReactivate(context.Background(), &dto.ReactivateRequest{
		MemberID:     "m1",
		AbsenceDates: []string{"2026-10-15"},
	}, day(testToday), "user-admin")
	if !errors.Is(err, ErrNothingToJustify) {
		t.Errorf("期望 ErrNothingToJustify，实际: %v", err)
	}

	_, err = svc.JustifyAndReactivate(context.Background(), &dto.ReactivateRequest{MemberID: "nobody"}, day(testToday), "user-admin")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("期望 ErrMemberNotFound，实际: %v", err)
	}
}
