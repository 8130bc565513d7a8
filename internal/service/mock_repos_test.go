package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
)

// ── 测试聚合 ──

type mockRepos struct {
	users          *mockUserRepo
	members        *mockMemberRepo
	slots          *mockTimeSlotRepo
	attendance     *mockAttendanceRepo
	justifications *mockJustificationRepo
	closures       *mockClosureDayRepo
	audits         *mockAuditLogRepo
	config         *mockSystemConfigRepo
}

// newMockRepository 返回未绑定数据库的 Repository，Transaction 直接执行回调
func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:          newMockUserRepo(),
		slots:          newMockTimeSlotRepo(),
		attendance:     newMockAttendanceRepo(),
		justifications: newMockJustificationRepo(),
		closures:       newMockClosureDayRepo(),
		audits:         &mockAuditLogRepo{},
		config:         newMockSystemConfigRepo(),
	}
	m.members = newMockMemberRepo(m.slots)
	repo := &repository.Repository{
		User:          m.users,
		Member:        m.members,
		TimeSlot:      m.slots,
		Attendance:    m.attendance,
		Justification: m.justifications,
		ClosureDay:    m.closures,
		AuditLog:      m.audits,
		SystemConfig:  m.config,
	}
	return repo, m
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return pkgerrors.ErrDuplicateRecord
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	if user.Version == 0 {
		user.Version = 1
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	user.Version++
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filters != nil && filters.Role != "" && u.Role != filters.Role {
			continue
		}
		if filters != nil && filters.Keyword != "" &&
			!strings.Contains(u.Name, filters.Keyword) && !strings.Contains(u.Username, filters.Keyword) {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return paginate(result, offset, limit), int64(len(result)), nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock MemberRepository ──

type mockMemberRepo struct {
	members   map[string]*model.Member
	slots     *mockTimeSlotRepo
	statusErr error
}

func newMockMemberRepo(slots *mockTimeSlotRepo) *mockMemberRepo {
	return &mockMemberRepo{members: make(map[string]*model.Member), slots: slots}
}

func (m *mockMemberRepo) Create(_ context.Context, member *model.Member) error {
	for _, existing := range m.members {
		if existing.CPF == member.CPF {
			return pkgerrors.ErrDuplicateRecord
		}
	}
	if member.MemberID == "" {
		member.MemberID = "mem-" + member.CPF
	}
	if member.Version == 0 {
		member.Version = 1
	}
	if member.Status == "" {
		member.Status = model.MemberStatusActive
	}
	m.members[member.MemberID] = member
	return nil
}

func (m *mockMemberRepo) withSlot(member *model.Member) *model.Member {
	cp := *member
	if slot, ok := m.slots.slots[cp.TimeSlotID]; ok {
		cp.TimeSlot = slot
	}
	return &cp
}

func (m *mockMemberRepo) GetByID(_ context.Context, id string) (*model.Member, error) {
	if member, ok := m.members[id]; ok {
		return m.withSlot(member), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) GetByCPF(_ context.Context, cpf string) (*model.Member, error) {
	for _, member := range m.members {
		if member.CPF == cpf {
			return m.withSlot(member), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) List(_ context.Context, filters *repository.MemberListFilters, offset, limit int) ([]model.Member, int64, error) {
	all, _ := m.ListAll(context.Background())
	var result []model.Member
	for _, member := range all {
		if filters != nil {
			if filters.Status != "" && member.Status != filters.Status {
				continue
			}
			if filters.TimeSlotID != "" && member.TimeSlotID != filters.TimeSlotID {
				continue
			}
			if filters.Keyword != "" && !strings.Contains(member.Name, filters.Keyword) && !strings.Contains(member.CPF, filters.Keyword) {
				continue
			}
		}
		result = append(result, member)
	}
	return paginate(result, offset, limit), int64(len(result)), nil
}

func (m *mockMemberRepo) ListAll(_ context.Context) ([]model.Member, error) {
	result := make([]model.Member, 0, len(m.members))
	for _, member := range m.members {
		result = append(result, *m.withSlot(member))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockMemberRepo) Update(_ context.Context, member *model.Member) error {
	existing, ok := m.members[member.MemberID]
	if !ok || existing.Version != member.Version {
		return pkgerrors.ErrOptimisticLock
	}
	member.Version++
	cp := *member
	cp.TimeSlot = nil
	m.members[member.MemberID] = &cp
	return nil
}

func (m *mockMemberRepo) UpdateStatuses(_ context.Context, statuses map[string]string) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	for id, status := range statuses {
		if member, ok := m.members[id]; ok {
			member.Status = status
			member.Version++
		}
	}
	return nil
}

func (m *mockMemberRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.members, id)
	return nil
}

func (m *mockMemberRepo) CountByTimeSlot(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, member := range m.members {
		counts[member.TimeSlotID]++
	}
	return counts, nil
}

// ── Mock TimeSlotRepository ──

type mockTimeSlotRepo struct {
	slots map[string]*model.TimeSlot
}

func newMockTimeSlotRepo() *mockTimeSlotRepo {
	return &mockTimeSlotRepo{slots: make(map[string]*model.TimeSlot)}
}

func (m *mockTimeSlotRepo) Create(_ context.Context, slot *model.TimeSlot) error {
	for _, s := range m.slots {
		if s.Label == slot.Label {
			return pkgerrors.ErrDuplicateRecord
		}
	}
	if slot.TimeSlotID == "" {
		slot.TimeSlotID = "ts-" + slot.StartTime
	}
	if slot.Version == 0 {
		slot.Version = 1
	}
	m.slots[slot.TimeSlotID] = slot
	return nil
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	if s, ok := m.slots[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) GetByLabel(_ context.Context, label string) (*model.TimeSlot, error) {
	for _, s := range m.slots {
		if s.Label == label {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) List(_ context.Context, activeOnly bool) ([]model.TimeSlot, error) {
	var result []model.TimeSlot
	for _, s := range m.slots {
		if activeOnly && !s.IsActive {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockTimeSlotRepo) Update(_ context.Context, slot *model.TimeSlot) error {
	existing, ok := m.slots[slot.TimeSlotID]
	if !ok || existing.Version != slot.Version {
		return pkgerrors.ErrOptimisticLock
	}
	slot.Version++
	cp := *slot
	m.slots[slot.TimeSlotID] = &cp
	return nil
}

func (m *mockTimeSlotRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.slots, id)
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records []model.AttendanceRecord
	seq     int
	base    time.Time
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{base: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *mockAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	m.seq++
	if record.AttendanceID == "" {
		record.AttendanceID = fmt.Sprintf("att-%03d", m.seq)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = m.base.Add(time.Duration(m.seq) * time.Second)
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *mockAttendanceRepo) ListAll(_ context.Context) ([]model.AttendanceRecord, error) {
	result := append([]model.AttendanceRecord(nil), m.records...)
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].AttendanceID < result[j].AttendanceID
	})
	return result, nil
}

func (m *mockAttendanceRepo) ListByDate(_ context.Context, date string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.AttendanceDate == date {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByDateRange(_ context.Context, from, to string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.AttendanceDate >= from && r.AttendanceDate <= to {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByMember(_ context.Context, memberID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.MemberID == memberID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ExistsForDate(_ context.Context, memberID, date string) (bool, error) {
	for _, r := range m.records {
		if r.MemberID == memberID && r.AttendanceDate == date {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttendanceRepo) DeleteByMemberAndDate(_ context.Context, memberID, date string) (int64, error) {
	var kept []model.AttendanceRecord
	var removed int64
	for _, r := range m.records {
		if r.MemberID == memberID && r.AttendanceDate == date {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed, nil
}

func (m *mockAttendanceRepo) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []model.AttendanceRecord
	var removed int64
	for _, r := range m.records {
		if drop[r.AttendanceID] {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed, nil
}

// ── Mock JustificationRepository ──

type mockJustificationRepo struct {
	items []model.Justification
	seq   int
}

func newMockJustificationRepo() *mockJustificationRepo {
	return &mockJustificationRepo{}
}

func (m *mockJustificationRepo) Create(_ context.Context, j *model.Justification) error {
	for _, existing := range m.items {
		if existing.MemberID == j.MemberID && existing.AbsenceDate == j.AbsenceDate {
			return pkgerrors.ErrDuplicateRecord
		}
	}
	m.seq++
	if j.JustificationID == "" {
		j.JustificationID = fmt.Sprintf("just-%03d", m.seq)
	}
	m.items = append(m.items, *j)
	return nil
}

func (m *mockJustificationRepo) ListAll(_ context.Context) ([]model.Justification, error) {
	return append([]model.Justification(nil), m.items...), nil
}

func (m *mockJustificationRepo) List(_ context.Context, filters *repository.JustificationListFilters) ([]model.Justification, error) {
	var result []model.Justification
	for _, j := range m.items {
		if filters != nil {
			if filters.MemberID != "" && j.MemberID != filters.MemberID {
				continue
			}
			if filters.From != "" && j.AbsenceDate < filters.From {
				continue
			}
			if filters.To != "" && j.AbsenceDate > filters.To {
				continue
			}
		}
		result = append(result, j)
	}
	return result, nil
}

func (m *mockJustificationRepo) ListByMember(_ context.Context, memberID string) ([]model.Justification, error) {
	return m.List(context.Background(), &repository.JustificationListFilters{MemberID: memberID})
}

// ── Mock ClosureDayRepository ──

type mockClosureDayRepo struct {
	days map[string]*model.ClosureDay
}

func newMockClosureDayRepo() *mockClosureDayRepo {
	return &mockClosureDayRepo{days: make(map[string]*model.ClosureDay)}
}

func (m *mockClosureDayRepo) Create(_ context.Context, day *model.ClosureDay) error {
	for _, d := range m.days {
		if d.Date == day.Date {
			return pkgerrors.ErrDuplicateRecord
		}
	}
	if day.ClosureDayID == "" {
		day.ClosureDayID = "cd-" + day.Date
	}
	m.days[day.ClosureDayID] = day
	return nil
}

func (m *mockClosureDayRepo) CreateIfAbsent(ctx context.Context, day *model.ClosureDay) (bool, error) {
	if err := m.Create(ctx, day); err != nil {
		if err == pkgerrors.ErrDuplicateRecord {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *mockClosureDayRepo) GetByID(_ context.Context, id string) (*model.ClosureDay, error) {
	if d, ok := m.days[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClosureDayRepo) List(_ context.Context, from, to string) ([]model.ClosureDay, error) {
	var result []model.ClosureDay
	for _, d := range m.days {
		if (from == "" || d.Date >= from) && (to == "" || d.Date <= to) {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (m *mockClosureDayRepo) Delete(_ context.Context, id string) error {
	delete(m.days, id)
	return nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	entries []model.AuditLog
}

func (m *mockAuditLogRepo) Append(_ context.Context, entry *model.AuditLog) error {
	entry.AuditLogID = fmt.Sprintf("audit-%03d", len(m.entries)+1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, action string, offset, limit int) ([]model.AuditLog, int64, error) {
	var result []model.AuditLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		if action == "" || m.entries[i].Action == action {
			result = append(result, m.entries[i])
		}
	}
	return paginate(result, offset, limit), int64(len(result)), nil
}

// byAction 统计某类审计日志条数
func (m *mockAuditLogRepo) byAction(action string) []model.AuditLog {
	var result []model.AuditLog
	for _, e := range m.entries {
		if e.Action == action {
			result = append(result, e)
		}
	}
	return result
}

// ── Mock SystemConfigRepository ──

type mockSystemConfigRepo struct {
	cfg *model.SystemConfig
}

func newMockSystemConfigRepo() *mockSystemConfigRepo {
	return &mockSystemConfigRepo{cfg: defaultSystemConfig()}
}

func (m *mockSystemConfigRepo) Get(_ context.Context) (*model.SystemConfig, error) {
	if m.cfg == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *mockSystemConfigRepo) Update(_ context.Context, cfg *model.SystemConfig) error {
	cp := *cfg
	m.cfg = &cp
	return nil
}

// ── 测试辅助 ──

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// day 构造 UTC 日期
func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// seedSlot 写入一个启用的时段
func seedSlot(m *mockRepos, id, start, end string, capacity int) *model.TimeSlot {
	slot := &model.TimeSlot{
		TimeSlotID: id,
		Label:      start + " - " + end,
		StartTime:  start,
		EndTime:    end,
		Capacity:   capacity,
		IsActive:   true,
	}
	slot.Version = 1
	m.slots.slots[id] = slot
	return slot
}

// seedMember 写入一个学员
func seedMember(m *mockRepos, id, name, cpf, slotID, certificate, status string) *model.Member {
	member := &model.Member{
		MemberID:            id,
		Name:                name,
		CPF:                 cpf,
		TimeSlotID:          slotID,
		CertificateIssuedOn: certificate,
		Status:              status,
	}
	member.Version = 1
	m.members.members[id] = member
	return member
}

// seedAttendance 写入签到记录（按调用顺序视为插入顺序）
func seedAttendance(m *mockRepos, memberID string, dates ...string) {
	for _, d := range dates {
		_ = m.attendance.Create(context.Background(), &model.AttendanceRecord{
			MemberID:       memberID,
			AttendanceDate: d,
			CheckInTime:    "07:00",
		})
	}
}

// seedJustification 写入缺勤说明
func seedJustification(m *mockRepos, memberID string, dates ...string) {
	for _, d := range dates {
		_ = m.justifications.Create(context.Background(), &model.Justification{
			MemberID:    memberID,
			AbsenceDate: d,
			Reason:      "Viagem",
		})
	}
}
