package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/config"
	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrInvalidPeriod      = validationError("统计周期应为 daily、weekly 或 monthly")
	ErrInvalidReportKind  = validationError("报表类型应为 attendance、justifications、certificates 或 time-slots")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// 统计周期
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"

	topMembersLimit = 10
	topReasonsLimit = 10
)

// 报表类型
const (
	ReportAttendance     = "attendance"
	ReportJustifications = "justifications"
	ReportCertificates   = "certificates"
	ReportTimeSlots      = "time-slots"
)

// ReportService 报表业务接口
type ReportService interface {
	AttendanceReport(ctx context.Context, req *dto.AttendanceReportRequest, today time.Time) (*dto.AttendanceReportResponse, error)
	JustificationReport(ctx context.Context, req *dto.AttendanceReportRequest, today time.Time) (*dto.JustificationReportResponse, error)
	// CertificateReport 参考日期（默认今天）的体检证明状态，不使用统计周期
	CertificateReport(ctx context.Context, req *dto.AttendanceReportRequest, today time.Time) (*dto.CertificateReportResponse, error)
	TimeSlotReport(ctx context.Context, req *dto.AttendanceReportRequest, today time.Time) (*dto.TimeSlotReportResponse, error)
	// Report 按类型返回报表数据
	Report(ctx context.Context, kind string, req *dto.AttendanceReportRequest, today time.Time) (interface{}, error)
	// ExportExcel 导出报表为 Excel（汇总 + 明细两个工作表），返回内容与建议文件名
	ExportExcel(ctx context.Context, kind string, req *dto.AttendanceReportRequest, today time.Time) (*bytes.Buffer, string, error)
	// PrintHTML 生成可打印的 HTML 报表
	PrintHTML(ctx context.Context, kind string, req *dto.AttendanceReportRequest, today time.Time) (string, error)
}

type reportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, repo: repo, logger: logger}
}

// resolvePeriod 解析周期参数，默认 daily
func resolvePeriod(req *dto.AttendanceReportRequest, today time.Time) (string, string, string, error) {
	period := req.Period
	if period == "" {
		period = PeriodDaily
	}
	ref, err := dayOrToday(req.Date, today)
	if err != nil {
		return "", "", "", err
	}
	from, to, err := PeriodRange(period, ref)
	if err != nil {
		return "", "", "", err
	}
	return period, eligibility.FormatDate(from), eligibility.FormatDate(to), nil
}

// PeriodRange 计算参考日期所在周期：daily 当天，weekly 周一至周日，monthly 整月
func PeriodRange(period string, ref time.Time) (time.Time, time.Time, error) {
	ref = eligibility.CivilDate(ref)
	switch period {
	case PeriodDaily:
		return ref, ref, nil
	case PeriodWeekly:
		offset := (int(ref.Weekday()) + 6) % 7
		from := ref.AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 6), nil
	case PeriodMonthly:
		from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, -1), nil
	}
	return time.Time{}, time.Time{}, ErrInvalidPeriod
}

// ────────────────────── AttendanceReport ──────────────────────

func (s *reportService) AttendanceReport(ctx context.Context, req *dto.AttendanceReportRequest, today time.Time) (*dto.AttendanceReportResponse, error) {
	period, from, to, err := resolvePeriod(req, today)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListByDateRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询签到记录失败", zap.Error(err))
		return nil, err
	}
	members, err := s.repo.Member.ListAll(ctx)
	if err != nil {
		s.logger.Error("读取学员失败", zap.Error(err))
		return nil, err
	}

	return BuildAttendanceReport(period, from, to, records, members), nil
}

// BuildAttendanceReport 汇总区间内的签到记录
func BuildAttendanceReport(period, from, to string, records []model.AttendanceRecord, members []model.Member) *dto.AttendanceReportResponse {
	resp := &dto.AttendanceReportResponse{
		Period:        period,
		From:          from,
		To:            to,
		TotalCheckIns: len(records),
	}

	names := make(map[string]string, len(members))
	for i := range members {
		names[members[i].MemberID] = members[i].Name
		if members[i].IsActive() {
			resp.ActiveMembers++
		} else {
			resp.InactiveMembers++
		}
	}

	bySlot := make(map[string]int)
	byDay := make(map[string]int)
	byMember := make(map[string]int)
	resp.Records = make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		r := &records[i]
		bySlot[r.TimeSlotLabel]++
		byDay[r.AttendanceDate]++
		byMember[r.MemberID]++

		name := names[r.MemberID]
		if name == "" && r.Member != nil {
			name = r.Member.Name
		}
		resp.Records = append(resp.Records, toAttendanceResponse(r, name))
	}

	resp.UniqueMembers = len(byMember)
	if len(byDay) > 0 {
		resp.AveragePerDay = float64(len(records)) / float64(len(byDay))
	}
	resp.BySlot = sortedCounts(bySlot, func(a, b dto.CountItem) bool { return a.Key < b.Key })
	resp.ByDay = sortedCounts(byDay, func(a, b dto.CountItem) bool { return a.Key < b.Key })

	top := make([]dto.MemberCountItem, 0, len(byMember))
	for id, count := range byMember {
		top = append(top, dto.MemberCountItem{MemberID: id, Name: names[id], Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > topMembersLimit {
		top = top[:topMembersLimit]
	}
	resp.TopMembers = top
	return resp
}

// ────────────────────── JustificationReport ──────────────────────

func (s *reportService) JustificationReport(ctx context.Context, req *dto.AttendanceReportRequest, today time.Time) (*dto.JustificationReportResponse, error) {
	period, from, to, err := resolvePeriod(req, today)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.Justification.List(ctx, &repository.JustificationListFilters{From: from, To: to})
	if err != nil {
		s.logger.Error("查询缺勤说明失败", zap.Error(err))
		return nil, err
	}
	members, err := s.repo.Member.ListAll(ctx)
	if err != nil {
		s.logger.Error("读取学员失败", zap.Error(err))
		return nil, err
	}

	return BuildJustificationReport(period, from, to, list, members), nil
}

// BuildJustificationReport 汇总区间内的缺勤说明：总数、涉及学员、常见原因
func BuildJustificationReport(period, from, to string, list []model.Justification, members []model.Member) *dto.JustificationReportResponse {
	names := make(map[string]string, len(members))
	for i := range members {
		names[members[i].MemberID] = members[i].Name
	}

	resp := &dto.JustificationReportResponse{
		Period:  period,
		From:    from,
		To:      to,
		Total:   len(list),
		Records: make([]dto.JustificationResponse, 0, len(list)),
	}
	reasons := make(map[string]int)
	seen := make(map[string]struct{})
	for i := range list {
		j := &list[i]
		reasons[j.Reason]++
		seen[j.MemberID] = struct{}{}

		name := names[j.MemberID]
		if name == "" && j.Member != nil {
			name = j.Member.Name
		}
		resp.Records = append(resp.Records, toJustificationResponse(j, name))
	}
	resp.MembersWithJustifications = len(seen)

	sort.Slice(resp.Records, func(i, k int) bool {
		a, b := resp.Records[i], resp.Records[k]
		if a.AbsenceDate != b.AbsenceDate {
			return a.AbsenceDate < b.AbsenceDate
		}
		return a.MemberName < b.MemberName
	})
	resp.TopReasons = sortedCounts(reasons, func(a, b dto.CountItem) bool {
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Key < b.Key
	})
	if len(resp.TopReasons) > topReasonsLimit {
		resp.TopReasons = resp.TopReasons[:topReasonsLimit]
	}
	return resp
}

// ────────────────────── CertificateReport ──────────────────────

func (s *reportService) CertificateReport(ctx context.Context, req *dto.AttendanceReportRequest, today time.Time) (*dto.CertificateReportResponse, error) {
	ref, err := dayOrToday(req.Date, today)
	if err != nil {
		return nil, err
	}
	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		s.logger.Error("加载计算参数失败", zap.Error(err))
		return nil, err
	}
	members, err := s.repo.Member.ListAll(ctx)
	if err != nil {
		s.logger.Error("读取学员失败", zap.Error(err))
		return nil, err
	}
	slots, err := s.repo.TimeSlot.List(ctx, false)
	if err != nil {
		s.logger.Error("读取时段失败", zap.Error(err))
		return nil, err
	}

	return BuildCertificateReport(ref, members, slots, opts), nil
}

// BuildCertificateReport 统计全部学员的体检证明状态
func BuildCertificateReport(ref time.Time, members []model.Member, slots []model.TimeSlot, opts eligibility.Options) *dto.CertificateReportResponse {
	labels := make(map[string]string, len(slots))
	for i := range slots {
		labels[slots[i].TimeSlotID] = slots[i].Label
	}

	resp := &dto.CertificateReportResponse{
		Date:         eligibility.FormatDate(eligibility.CivilDate(ref)),
		TotalMembers: len(members),
		Members:      make([]dto.CertificateReportItem, 0, len(members)),
	}
	for i := range members {
		m := &members[i]
		report := eligibility.CertificateStatusOf(m.CertificateIssuedOn, ref, opts)
		switch report.Status {
		case eligibility.CertificateValid:
			resp.Valid++
		case eligibility.CertificateExpiringSoon:
			resp.ExpiringSoon++
		case eligibility.CertificateExpired:
			resp.Expired++
		case eligibility.CertificateMissing:
			resp.Missing++
		}

		label := labels[m.TimeSlotID]
		if label == "" && m.TimeSlot != nil {
			label = m.TimeSlot.Label
		}
		resp.Members = append(resp.Members, dto.CertificateReportItem{
			MemberID:      m.MemberID,
			Name:          m.Name,
			CPF:           m.CPF,
			TimeSlotLabel: label,
			IssuedOn:      m.CertificateIssuedOn,
			Certificate:   toCertificateResponse(report),
		})
	}
	resp.WithCertificate = resp.TotalMembers - resp.Missing

	sort.Slice(resp.Members, func(i, j int) bool { return resp.Members[i].Name < resp.Members[j].Name })
	return resp
}

// ────────────────────── TimeSlotReport ──────────────────────

func (s *reportService) TimeSlotReport(ctx context.Context, req *dto.AttendanceReportRequest, today time.Time) (*dto.TimeSlotReportResponse, error) {
	period, from, to, err := resolvePeriod(req, today)
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.TimeSlot.List(ctx, false)
	if err != nil {
		s.logger.Error("读取时段失败", zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.Member.CountByTimeSlot(ctx)
	if err != nil {
		s.logger.Error("统计时段人数失败", zap.Error(err))
		return nil, err
	}
	records, err := s.repo.Attendance.ListByDateRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询签到记录失败", zap.Error(err))
		return nil, err
	}

	return BuildTimeSlotReport(period, from, to, slots, counts, records), nil
}

// BuildTimeSlotReport 统计各时段人数、占用与周期内签到数
// 签到按记录中的时段名称快照归属
func BuildTimeSlotReport(period, from, to string, slots []model.TimeSlot, counts map[string]int, records []model.AttendanceRecord) *dto.TimeSlotReportResponse {
	checkIns := make(map[string]int)
	for i := range records {
		checkIns[records[i].TimeSlotLabel]++
	}

	resp := &dto.TimeSlotReportResponse{
		Period:     period,
		From:       from,
		To:         to,
		TotalSlots: len(slots),
		Slots:      make([]dto.TimeSlotReportItem, 0, len(slots)),
	}
	for i := range slots {
		slot := &slots[i]
		members := counts[slot.TimeSlotID]
		percent, state := SlotOccupancy(slot, members)
		available := slot.Capacity - members
		if available < 0 {
			available = 0
		}
		if slot.IsActive {
			resp.ActiveSlots++
		}
		resp.TotalMembers += members
		resp.Slots = append(resp.Slots, dto.TimeSlotReportItem{
			ID:        slot.TimeSlotID,
			Label:     slot.Label,
			Capacity:  slot.Capacity,
			Members:   members,
			Available: available,
			Occupancy: percent,
			State:     state,
			CheckIns:  checkIns[slot.Label],
		})
	}
	if len(slots) > 0 {
		resp.AveragePerSlot = float64(resp.TotalMembers) / float64(len(slots))
	}
	return resp
}

func sortedCounts(m map[string]int, less func(a, b dto.CountItem) bool) []dto.CountItem {
	items := make([]dto.CountItem, 0, len(m))
	for k, v := range m {
		items = append(items, dto.CountItem{Key: k, Count: v})
	}
	sort.Slice(items, func(i, j int) bool { return less(items[i], items[j]) })
	return items
}

// ────────────────────── Report / ExportExcel / PrintHTML ──────────────────────

func (s *reportService) Report(ctx context.Context, kind string, req *dto.AttendanceReportRequest, today time.Time) (interface{}, error) {
	switch kind {
	case ReportAttendance:
		return s.AttendanceReport(ctx, req, today)
	case ReportJustifications:
		return s.JustificationReport(ctx, req, today)
	case ReportCertificates:
		return s.CertificateReport(ctx, req, today)
	case ReportTimeSlots:
		return s.TimeSlotReport(ctx, req, today)
	}
	return nil, ErrInvalidReportKind
}

// document 构造报表的表格化表示，Excel 与打印版共用
func (s *reportService) document(ctx context.Context, kind string, req *dto.AttendanceReportRequest, today time.Time) (*reportDocument, error) {
	academy := s.cfg.Academy.Name
	switch kind {
	case ReportAttendance:
		r, err := s.AttendanceReport(ctx, req, today)
		if err != nil {
			return nil, err
		}
		return attendanceDocument(academy, r), nil
	case ReportJustifications:
		r, err := s.JustificationReport(ctx, req, today)
		if err != nil {
			return nil, err
		}
		return justificationDocument(academy, r), nil
	case ReportCertificates:
		r, err := s.CertificateReport(ctx, req, today)
		if err != nil {
			return nil, err
		}
		return certificateDocument(academy, r), nil
	case ReportTimeSlots:
		r, err := s.TimeSlotReport(ctx, req, today)
		if err != nil {
			return nil, err
		}
		return timeSlotDocument(academy, r), nil
	}
	return nil, ErrInvalidReportKind
}

func (s *reportService) ExportExcel(ctx context.Context, kind string, req *dto.AttendanceReportRequest, today time.Time) (*bytes.Buffer, string, error) {
	doc, err := s.document(ctx, kind, req, today)
	if err != nil {
		return nil, "", err
	}

	buf, err := renderReportExcel(doc)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("kind", kind), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, doc.Filename, nil
}

func (s *reportService) PrintHTML(ctx context.Context, kind string, req *dto.AttendanceReportRequest, today time.Time) (string, error) {
	doc, err := s.document(ctx, kind, req, today)
	if err != nil {
		return "", err
	}

	body, err := renderMarkdown(reportMarkdown(doc))
	if err != nil {
		s.logger.Error("生成打印报表失败", zap.String("kind", kind), zap.Error(err))
		return "", err
	}
	return htmlPage(doc.Title, body), nil
}

// ── 报表文档 ──

// reportDocument 报表的表格化表示
//   - Summary 为"指标 / 数值"行，Sections 为汇总页中的分组表格
//   - Detail 单独输出为明细工作表
type reportDocument struct {
	Title    string
	Filename string
	Summary  [][2]interface{}
	Sections []reportTable
	Detail   reportTable
}

type reportTable struct {
	Title   string
	Headers []string
	Rows    [][]interface{}
}

func countRows(items []dto.CountItem) [][]interface{} {
	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		rows = append(rows, []interface{}{item.Key, item.Count})
	}
	return rows
}

func attendanceDocument(academy string, r *dto.AttendanceReportResponse) *reportDocument {
	top := make([][]interface{}, 0, len(r.TopMembers))
	for _, item := range r.TopMembers {
		top = append(top, []interface{}{item.Name, item.Count})
	}
	detail := make([][]interface{}, 0, len(r.Records))
	for _, rec := range r.Records {
		detail = append(detail, []interface{}{rec.Date, rec.CheckInTime, rec.MemberName, rec.TimeSlotLabel})
	}

	return &reportDocument{
		Title:    fmt.Sprintf("%s 签到报表", academy),
		Filename: fmt.Sprintf("frequencia_%s_%s_%s.xlsx", r.Period, r.From, r.To),
		Summary: [][2]interface{}{
			{"周期", r.Period},
			{"起始日期", r.From},
			{"结束日期", r.To},
			{"签到总数", r.TotalCheckIns},
			{"签到人数", r.UniqueMembers},
			{"日均签到", fmt.Sprintf("%.1f", r.AveragePerDay)},
			{"活跃学员", r.ActiveMembers},
			{"停用学员", r.InactiveMembers},
		},
		Sections: []reportTable{
			{Title: "按时段", Headers: []string{"时段", "签到数"}, Rows: countRows(r.BySlot)},
			{Title: "按日期", Headers: []string{"日期", "签到数"}, Rows: countRows(r.ByDay)},
			{Title: "签到最多的学员", Headers: []string{"学员", "次数"}, Rows: top},
		},
		Detail: reportTable{Title: "签到记录", Headers: []string{"日期", "时间", "学员", "时段"}, Rows: detail},
	}
}

func justificationDocument(academy string, r *dto.JustificationReportResponse) *reportDocument {
	detail := make([][]interface{}, 0, len(r.Records))
	for _, j := range r.Records {
		notes := j.Notes
		if notes == "" {
			notes = "-"
		}
		detail = append(detail, []interface{}{j.AbsenceDate, j.MemberName, j.Reason, notes})
	}

	return &reportDocument{
		Title:    fmt.Sprintf("%s 缺勤说明报表", academy),
		Filename: fmt.Sprintf("justificativas_%s_%s_%s.xlsx", r.Period, r.From, r.To),
		Summary: [][2]interface{}{
			{"周期", r.Period},
			{"起始日期", r.From},
			{"结束日期", r.To},
			{"说明总数", r.Total},
			{"涉及学员", r.MembersWithJustifications},
		},
		Sections: []reportTable{
			{Title: "常见原因", Headers: []string{"原因", "次数"}, Rows: countRows(r.TopReasons)},
		},
		Detail: reportTable{Title: "缺勤说明", Headers: []string{"日期", "学员", "原因", "备注"}, Rows: detail},
	}
}

// certificateStatusLabel 体检证明状态的打印名称
var certificateStatusLabel = map[string]string{
	eligibility.CertificateValid:        "有效",
	eligibility.CertificateExpiringSoon: "即将过期",
	eligibility.CertificateExpired:      "已过期",
	eligibility.CertificateMissing:      "未提交",
}

func certificateDocument(academy string, r *dto.CertificateReportResponse) *reportDocument {
	detail := make([][]interface{}, 0, len(r.Members))
	for _, m := range r.Members {
		issued, expiry, remaining := "-", "-", interface{}("-")
		if m.Certificate.Status != eligibility.CertificateMissing {
			issued, expiry, remaining = m.IssuedOn, m.Certificate.ExpiryDate, m.Certificate.DaysRemaining
		}
		detail = append(detail, []interface{}{
			m.Name, m.CPF, issued, expiry, certificateStatusLabel[m.Certificate.Status], remaining, m.TimeSlotLabel,
		})
	}

	return &reportDocument{
		Title:    fmt.Sprintf("%s 体检证明报表", academy),
		Filename: fmt.Sprintf("atestados_%s.xlsx", r.Date),
		Summary: [][2]interface{}{
			{"参考日期", r.Date},
			{"学员总数", r.TotalMembers},
			{"已提交", r.WithCertificate},
			{"有效", r.Valid},
			{"即将过期", r.ExpiringSoon},
			{"已过期", r.Expired},
			{"未提交", r.Missing},
		},
		Detail: reportTable{
			Title:   "体检证明",
			Headers: []string{"学员", "CPF", "签发日期", "到期日期", "状态", "剩余天数", "时段"},
			Rows:    detail,
		},
	}
}

func timeSlotDocument(academy string, r *dto.TimeSlotReportResponse) *reportDocument {
	detail := make([][]interface{}, 0, len(r.Slots))
	for _, slot := range r.Slots {
		detail = append(detail, []interface{}{
			slot.Label, slot.Capacity, slot.Members, slot.Available, fmt.Sprintf("%d%%", slot.Occupancy), slot.CheckIns,
		})
	}

	return &reportDocument{
		Title:    fmt.Sprintf("%s 时段报表", academy),
		Filename: fmt.Sprintf("horarios_%s_%s_%s.xlsx", r.Period, r.From, r.To),
		Summary: [][2]interface{}{
			{"周期", r.Period},
			{"起始日期", r.From},
			{"结束日期", r.To},
			{"时段总数", r.TotalSlots},
			{"启用时段", r.ActiveSlots},
			{"学员总数", r.TotalMembers},
			{"平均每时段", fmt.Sprintf("%.1f", r.AveragePerSlot)},
		},
		Detail: reportTable{
			Title:   "时段明细",
			Headers: []string{"时段", "容量", "学员数", "剩余名额", "占用率", "周期内签到"},
			Rows:    detail,
		},
	}
}

// ────────────────────── Excel 渲染 ──────────────────────
//
// 输出格式：
//   - Sheet "汇总"：标题，指标 / 数值，随后各分组表格
//   - 明细 Sheet：表头 + 每行一条记录

func renderReportExcel(doc *reportDocument) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "汇总"
	detail := doc.Detail.Title
	idx, err := f.NewSheet(summary)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(detail); err != nil {
		return nil, err
	}
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 汇总
	f.SetColWidth(summary, "A", "A", 22)
	f.SetColWidth(summary, "B", "B", 14)
	f.SetCellValue(summary, "A1", doc.Title)
	f.MergeCell(summary, "A1", "B1")
	f.SetCellStyle(summary, "A1", "B1", headerStyle)

	row := 2
	for _, r := range doc.Summary {
		f.SetCellValue(summary, cell("A", row), r[0])
		f.SetCellValue(summary, cell("B", row), r[1])
		row++
	}

	for _, section := range doc.Sections {
		row++
		last := colName(len(section.Headers) - 1)
		for i, h := range section.Headers {
			f.SetCellValue(summary, cell(colName(i), row), h)
		}
		f.SetCellStyle(summary, cell("A", row), cell(last, row), headerStyle)
		row++
		for _, values := range section.Rows {
			for i, v := range values {
				f.SetCellValue(summary, cell(colName(i), row), v)
			}
			row++
		}
	}

	// 明细
	for i, h := range doc.Detail.Headers {
		f.SetCellValue(detail, cell(colName(i), 1), h)
	}
	f.SetCellStyle(detail, "A1", cell(colName(len(doc.Detail.Headers)-1), 1), headerStyle)
	f.SetColWidth(detail, "A", colName(len(doc.Detail.Headers)-1), 16)
	for i, values := range doc.Detail.Rows {
		for j, v := range values {
			f.SetCellValue(detail, cell(colName(j), i+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ────────────────────── 打印版 ──────────────────────

func reportMarkdown(doc *reportDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeCell(doc.Title))

	b.WriteString("| 指标 | 数值 |\n|---|---|\n")
	for _, r := range doc.Summary {
		fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(fmt.Sprint(r[0])), escapeCell(fmt.Sprint(r[1])))
	}
	b.WriteString("\n")

	for _, section := range doc.Sections {
		writeMarkdownTable(&b, section)
	}
	writeMarkdownTable(&b, doc.Detail)
	return b.String()
}

// writeMarkdownTable 无数据行的表格省略
func writeMarkdownTable(b *strings.Builder, t reportTable) {
	if len(t.Rows) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n|", escapeCell(t.Title))
	for _, h := range t.Headers {
		fmt.Fprintf(b, " %s |", escapeCell(h))
	}
	b.WriteString("\n|" + strings.Repeat("---|", len(t.Headers)) + "\n")
	for _, values := range t.Rows {
		b.WriteString("|")
		for _, v := range values {
			fmt.Fprintf(b, " %s |", escapeCell(fmt.Sprint(v)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
