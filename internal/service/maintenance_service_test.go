package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/metrics"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/redis"
)

// fakeLocker 记录加锁调用
type fakeLocker struct {
	err      error
	calls    []string
	released int
}

func (l *fakeLocker) TryLock(_ context.Context, name string, _ time.Duration) (func(), error) {
	l.calls = append(l.calls, name)
	if l.err != nil {
		return nil, l.err
	}
	return func() { l.released++ }, nil
}

func newTestMaintenanceService(locker Locker) (MaintenanceService, *mockRepos) {
	repo, m := newMockRepository()
	return NewMaintenanceService(repo, locker, metrics.New(), zap.NewNop()), m
}

// ────────────────────── RunInactivitySweep ──────────────────────

func TestMaintenanceService_Sweep_FlipsBothDirections(t *testing.T) {
	svc, m := newTestMaintenanceService(nil)
	seedMember(m, "mem-1", "Ana", "11111111111", "", "2026-09-01", model.MemberStatusActive)
	seedMember(m, "mem-2", "Bruno", "22222222222", "", "2026-09-01", model.MemberStatusInactive)
	seedMember(m, "mem-3", "Carla", "33333333333", "", "2026-01-10", model.MemberStatusActive)
	seedMember(m, "mem-4", "Davi", "44444444444", "", "2026-09-01", model.MemberStatusActive)
	seedAttendance(m, "mem-2", "2026-10-16")
	seedAttendance(m, "mem-3", "2026-10-16")
	seedAttendance(m, "mem-4", "2026-10-16")

	resp, err := svc.RunInactivitySweep(context.Background(), day(testToday))
	if err != nil {
		t.Fatalf("期望无错误，实际: %v", err)
	}
	if resp.FlippedToInactive != 2 || resp.FlippedToActive != 1 {
		t.Errorf("期望停用 2 人、恢复 1 人，实际 %+v", resp)
	}

	want := map[string]string{
		"mem-1": model.MemberStatusInactive, // 无签到记录
		"mem-2": model.MemberStatusActive,
		"mem-3": model.MemberStatusInactive, // 证明过期
		"mem-4": model.MemberStatusActive,
	}
	for id, status := range want {
		if got := m.members.members[id].Status; got != status {
			t.Errorf("%s: 期望状态 %s，实际 %s", id, status, got)
		}
	}

	inactive := m.audits.byAction(model.AuditActionAutoInactivation)
	active := m.audits.byAction(model.AuditActionAutoReactivation)
	if len(inactive) != 1 || len(active) != 1 {
		t.Fatalf("期望停用与恢复各一条审计，实际 %d / %d", len(inactive), len(active))
	}
	if inactive[0].Actor != model.AuditActorSystem {
		t.Errorf("期望审计操作人为 system，实际 %s", inactive[0].Actor)
	}
}

func TestMaintenanceService_Sweep_Idempotent(t *testing.T) {
	svc, m := newTestMaintenanceService(nil)
	seedMember(m, "mem-1", "Ana", "11111111111", "", "2026-09-01", model.MemberStatusActive)
	ctx := context.Background()

	if _, err := svc.RunInactivitySweep(ctx, day(testToday)); err != nil {
		t.Fatalf("第一次巡检失败: %v", err)
	}
	audits := len(m.audits.entries)

	resp, err := svc.RunInactivitySweep(ctx, day(testToday))
	if err != nil {
		t.Fatalf("第二次巡检失败: %v", err)
	}
	if resp.FlippedToInactive != 0 || resp.FlippedToActive != 0 {
		t.Errorf("期望第二次巡检无变更，实际 %+v", resp)
	}
	if len(m.audits.entries) != audits {
		t.Errorf("期望无变更时不写审计，实际新增 %d 条", len(m.audits.entries)-audits)
	}
}

func TestMaintenanceService_Sweep_JustificationKeepsActive(t *testing.T) {
	svc, m := newTestMaintenanceService(nil)
	seedMember(m, "mem-1", "Ana", "11111111111", "", "2026-09-01", model.MemberStatusActive)
	seedAttendance(m, "mem-1", "2026-10-05")
	seedJustification(m, "mem-1", "2026-10-12", "2026-10-13")

	resp, _ := svc.RunInactivitySweep(context.Background(), day(testToday))
	if resp.FlippedToInactive != 0 {
		t.Errorf("期望缺勤说明中断连续缺勤，实际停用 %d 人", resp.FlippedToInactive)
	}
}

func TestMaintenanceService_Sweep_WriteFailure(t *testing.T) {
	svc, m := newTestMaintenanceService(nil)
	seedMember(m, "mem-1", "Ana", "11111111111", "", "2026-09-01", model.MemberStatusActive)
	m.members.statusErr = errors.New("db down")

	if _, err := svc.RunInactivitySweep(context.Background(), day(testToday)); err == nil {
		t.Fatal("期望写入失败时返回错误")
	}
	if len(m.audits.entries) != 0 {
		t.Errorf("期望失败时不写审计，实际 %d 条", len(m.audits.entries))
	}
}

// ────────────────────── DeduplicateAttendance ──────────────────────

func TestMaintenanceService_Dedup_KeepsFirstRecord(t *testing.T) {
	svc, m := newTestMaintenanceService(nil)
	seedAttendance(m, "mem-1", "2026-10-16", "2026-10-16", " 2026-10-16", "2026-10-15")
	seedAttendance(m, "mem-2", "2026-10-16")

	resp, err := svc.DeduplicateAttendance(context.Background())
	if err != nil {
		t.Fatalf("期望无错误，实际: %v", err)
	}
	if resp.RemovedCount != 2 {
		t.Errorf("期望删除 2 条，实际 %d", resp.RemovedCount)
	}
	if len(m.attendance.records) != 3 {
		t.Fatalf("期望剩余 3 条，实际 %d", len(m.attendance.records))
	}
	if m.attendance.records[0].AttendanceID != "att-001" {
		t.Errorf("期望保留最早插入的记录 att-001，实际 %s", m.attendance.records[0].AttendanceID)
	}
	if len(m.audits.byAction(model.AuditActionDuplicateCleanup)) != 1 {
		t.Error("期望写入一条去重审计")
	}
}

func TestMaintenanceService_Dedup_NoDuplicates(t *testing.T) {
	svc, m := newTestMaintenanceService(nil)
	seedAttendance(m, "mem-1", "2026-10-16", "2026-10-15")

	resp, err := svc.DeduplicateAttendance(context.Background())
	if err != nil {
		t.Fatalf("期望无错误，实际: %v", err)
	}
	if resp.RemovedCount != 0 || len(m.audits.entries) != 0 {
		t.Errorf("期望无删除且无审计，实际 removed=%d audits=%d", resp.RemovedCount, len(m.audits.entries))
	}
}

func TestDuplicateAttendanceIDs_OrdersByCreatedAt(t *testing.T) {
	base := time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC)
	records := []model.AttendanceRecord{
		{AttendanceID: "b", MemberID: "mem-1", AttendanceDate: "2026-10-16", CreatedAt: base.Add(time.Minute)},
		{AttendanceID: "a", MemberID: "mem-1", AttendanceDate: "2026-10-16", CreatedAt: base},
		{AttendanceID: "c", MemberID: "mem-1", AttendanceDate: "16/10/2026", CreatedAt: base},
		{AttendanceID: "d", MemberID: "mem-1", AttendanceDate: "16/10/2026 ", CreatedAt: base.Add(time.Hour)},
	}

	ids := duplicateAttendanceIDs(records)
	if len(ids) != 2 {
		t.Fatalf("期望 2 条重复，实际 %v", ids)
	}
	drop := map[string]bool{ids[0]: true, ids[1]: true}
	if !drop["b"] || !drop["d"] {
		t.Errorf("期望删除 b 与 d，实际 %v", ids)
	}
}

// ────────────────────── 维护锁 ──────────────────────

func TestMaintenanceService_LockHeld(t *testing.T) {
	locker := &fakeLocker{err: redis.ErrLockHeld}
	svc, m := newTestMaintenanceService(locker)
	seedMember(m, "mem-1", "Ana", "11111111111", "", "2026-09-01", model.MemberStatusActive)

	_, err := svc.RunInactivitySweep(context.Background(), day(testToday))
	if !errors.Is(err, ErrMaintenanceBusy) {
		t.Fatalf("期望 ErrMaintenanceBusy，实际: %v", err)
	}
	if m.members.members["mem-1"].Status != model.MemberStatusActive {
		t.Error("锁被占用时不应修改状态")
	}
}

func TestMaintenanceService_LockErrorDegrades(t *testing.T) {
	locker := &fakeLocker{err: errors.New("connection refused")}
	svc, m := newTestMaintenanceService(locker)
	seedMember(m, "mem-1", "Ana", "11111111111", "", "2026-09-01", model.MemberStatusActive)

	resp, err := svc.RunInactivitySweep(context.Background(), day(testToday))
	if err != nil {
		t.Fatalf("期望 Redis 故障时降级执行，实际: %v", err)
	}
	if resp.FlippedToInactive != 1 {
		t.Errorf("期望停用 1 人，实际 %d", resp.FlippedToInactive)
	}
}

func TestMaintenanceService_RunAll(t *testing.T) {
	locker := &fakeLocker{}
	svc, m := newTestMaintenanceService(locker)
	seedMember(m, "mem-1", "Ana", "11111111111", "", "2026-09-01", model.MemberStatusInactive)
	seedAttendance(m, "mem-1", "2026-10-16", "2026-10-16")

	if err := svc.RunAll(context.Background(), day(testToday)); err != nil {
		t.Fatalf("期望无错误，实际: %v", err)
	}
	if len(locker.calls) != 2 || locker.calls[0] != dedupLockName || locker.calls[1] != sweepLockName {
		t.Errorf("期望先去重再巡检，实际 %v", locker.calls)
	}
	if locker.released != 2 {
		t.Errorf("期望释放两次锁，实际 %d", locker.released)
	}
	if len(m.attendance.records) != 1 {
		t.Errorf("期望去重后剩 1 条，实际 %d", len(m.attendance.records))
	}
	if m.members.members["mem-1"].Status != model.MemberStatusActive {
		t.Error("期望学员恢复活跃")
	}
}
