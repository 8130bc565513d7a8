// Package eligibility 实现学员签到资格与活跃状态的纯计算逻辑。
//
// 本包不访问存储：调用方负责加载学员、签到记录、缺勤说明与闭馆日，
// 所有函数对同样的输入返回同样的结果。
package eligibility

import (
	"time"

	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
)

// 体检证明状态
const (
	CertificateValid        = "valid"
	CertificateExpiringSoon = "expiring_soon"
	CertificateExpired      = "expired"
	CertificateMissing      = "missing"
)

// 拒绝签到原因
const (
	ReasonMemberNotFound     = "member_not_found"
	ReasonAlreadyCheckedIn   = "already_checked_in"
	ReasonTooManyAbsences    = "too_many_absences"
	ReasonCertificateExpired = "certificate_expired"
	ReasonCertificateMissing = "certificate_missing"
)

// Options 计算参数，来自 system_config
type Options struct {
	AbsenceThreshold          int
	AtRiskThreshold           int
	LookbackDays              int
	CertificateValidityMonths int
	CertificateWarningDays    int
	BlockMissingCertificate   bool
	// ClosureDays 闭馆日集合（YYYY-MM-DD），与周末一样跳过
	ClosureDays map[string]struct{}
}

// DefaultOptions 默认参数：连续 7 次缺勤停用，5 次预警，回看 30 天，证明有效期 6 个月，提前 30 天提醒
func DefaultOptions() Options {
	return Options{
		AbsenceThreshold:          7,
		AtRiskThreshold:           5,
		LookbackDays:              30,
		CertificateValidityMonths: 6,
		CertificateWarningDays:    30,
	}
}

// OptionsFromConfig 由系统配置构造计算参数
func OptionsFromConfig(cfg *model.SystemConfig, closureDays []model.ClosureDay) Options {
	opts := DefaultOptions()
	if cfg != nil {
		if cfg.AbsenceThreshold > 0 {
			opts.AbsenceThreshold = cfg.AbsenceThreshold
		}
		if cfg.AtRiskThreshold > 0 {
			opts.AtRiskThreshold = cfg.AtRiskThreshold
		}
		if cfg.LookbackDays > 0 {
			opts.LookbackDays = cfg.LookbackDays
		}
		if cfg.CertificateValidityMonths > 0 {
			opts.CertificateValidityMonths = cfg.CertificateValidityMonths
		}
		if cfg.CertificateWarningDays >= 0 {
			opts.CertificateWarningDays = cfg.CertificateWarningDays
		}
		opts.BlockMissingCertificate = cfg.BlockMissingCertificate
	}
	if len(closureDays) > 0 {
		opts.ClosureDays = make(map[string]struct{}, len(closureDays))
		for _, cd := range closureDays {
			if d := NormalizeDate(cd.Date); d != "" {
				opts.ClosureDays[d] = struct{}{}
			}
		}
	}
	return opts
}

func (o Options) isClosed(date string) bool {
	if o.ClosureDays == nil {
		return false
	}
	_, ok := o.ClosureDays[date]
	return ok
}

// CertificateReport 体检证明状态
type CertificateReport struct {
	Status        string `json:"status"`
	DaysRemaining int    `json:"days_remaining"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
}

// CheckInDecision 签到资格判定
type CheckInDecision struct {
	Allowed     bool              `json:"allowed"`
	Reasons     []string          `json:"reasons"`
	Absences    int               `json:"consecutive_absences"`
	Certificate CertificateReport `json:"certificate"`
}

// ────────────────────── 连续缺勤 ──────────────────────

// coveredDates 收集学员有签到或缺勤说明的日期；格式异常的日期被忽略
func coveredDates(memberID string, attendance []model.AttendanceRecord, justifications []model.Justification) map[string]struct{} {
	covered := make(map[string]struct{})
	for i := range attendance {
		if attendance[i].MemberID != memberID {
			continue
		}
		if d := NormalizeDate(attendance[i].AttendanceDate); d != "" {
			covered[d] = struct{}{}
		}
	}
	for i := range justifications {
		if justifications[i].MemberID != memberID {
			continue
		}
		if d := NormalizeDate(justifications[i].AbsenceDate); d != "" {
			covered[d] = struct{}{}
		}
	}
	return covered
}

// ConsecutiveAbsences 从昨天开始向前逐日回看（最多 LookbackDays 天），
// 统计连续的无签到且无说明的工作日。周末和闭馆日跳过，
// 遇到有签到或有说明的工作日即停止。今天不计入。
func ConsecutiveAbsences(memberID string, attendance []model.AttendanceRecord, justifications []model.Justification, today time.Time, opts Options) int {
	return countAbsences(coveredDates(memberID, attendance, justifications), CivilDate(today), opts)
}

func countAbsences(covered map[string]struct{}, today time.Time, opts Options) int {
	count := 0
	for offset := 1; offset <= opts.LookbackDays; offset++ {
		day := today.AddDate(0, 0, -offset)
		if IsWeekend(day) {
			continue
		}
		key := FormatDate(day)
		if opts.isClosed(key) {
			continue
		}
		if _, ok := covered[key]; ok {
			break
		}
		count++
	}
	return count
}

// UnjustifiedAbsences 列出回看窗口内所有无签到且无说明的工作日（从近到远）
func UnjustifiedAbsences(memberID string, attendance []model.AttendanceRecord, justifications []model.Justification, today time.Time, opts Options) []string {
	covered := coveredDates(memberID, attendance, justifications)
	today = CivilDate(today)
	var days []string
	for offset := 1; offset <= opts.LookbackDays; offset++ {
		day := today.AddDate(0, 0, -offset)
		if IsWeekend(day) {
			continue
		}
		key := FormatDate(day)
		if opts.isClosed(key) {
			continue
		}
		if _, ok := covered[key]; !ok {
			days = append(days, key)
		}
	}
	return days
}

// ────────────────────── 体检证明 ──────────────────────

// CertificateStatusOf 计算体检证明状态：签发日 + 有效月数为到期日，
// 剩余天数 < 0 为过期，0..WarningDays 为即将过期；日期缺失或无法解析为 missing
func CertificateStatusOf(issueDate string, today time.Time, opts Options) CertificateReport {
	issued, ok := parseCertificateDate(issueDate)
	if !ok {
		return CertificateReport{Status: CertificateMissing}
	}
	expiry := AddMonths(issued, opts.CertificateValidityMonths)
	remaining := DaysBetween(CivilDate(today), expiry)

	report := CertificateReport{DaysRemaining: remaining, ExpiryDate: FormatDate(expiry)}
	switch {
	case remaining < 0:
		report.Status = CertificateExpired
	case remaining <= opts.CertificateWarningDays:
		report.Status = CertificateExpiringSoon
	default:
		report.Status = CertificateValid
	}
	return report
}

// ────────────────────── 签到资格 ──────────────────────

// Evaluate 判定学员今天能否签到；各拒绝原因独立上报
// member 为 nil 表示学员不存在
func Evaluate(member *model.Member, attendance []model.AttendanceRecord, justifications []model.Justification, today time.Time, opts Options) CheckInDecision {
	if member == nil {
		return CheckInDecision{Allowed: false, Reasons: []string{ReasonMemberNotFound}}
	}

	today = CivilDate(today)
	todayKey := FormatDate(today)
	decision := CheckInDecision{Reasons: []string{}}

	for i := range attendance {
		if attendance[i].MemberID == member.MemberID && NormalizeDate(attendance[i].AttendanceDate) == todayKey {
			decision.Reasons = append(decision.Reasons, ReasonAlreadyCheckedIn)
			break
		}
	}

	decision.Absences = ConsecutiveAbsences(member.MemberID, attendance, justifications, today, opts)
	if decision.Absences >= opts.AbsenceThreshold {
		decision.Reasons = append(decision.Reasons, ReasonTooManyAbsences)
	}

	decision.Certificate = CertificateStatusOf(member.CertificateIssuedOn, today, opts)
	switch decision.Certificate.Status {
	case CertificateExpired:
		decision.Reasons = append(decision.Reasons, ReasonCertificateExpired)
	case CertificateMissing:
		if opts.BlockMissingCertificate {
			decision.Reasons = append(decision.Reasons, ReasonCertificateMissing)
		}
	}

	decision.Allowed = len(decision.Reasons) == 0
	return decision
}

// ────────────────────── 状态迁移 ──────────────────────

// Transition 计算学员的下一个状态：缺勤达到阈值或证明过期时停用，
// 两者都不成立时恢复活跃。状态不变时 changed 为 false。
func Transition(current string, absences int, certificateStatus string, opts Options) (next string, changed bool) {
	next = model.MemberStatusActive
	if absences >= opts.AbsenceThreshold || certificateStatus == CertificateExpired {
		next = model.MemberStatusInactive
	}
	return next, next != current
}

// StatusChange 批量状态变更
type StatusChange struct {
	MemberID string
	From     string
	To       string
}

// Sweep 对全部学员重新计算状态，只返回发生变化的学员
func Sweep(members []model.Member, attendance []model.AttendanceRecord, justifications []model.Justification, today time.Time, opts Options) []StatusChange {
	today = CivilDate(today)

	covered := make(map[string]map[string]struct{}, len(members))
	for i := range members {
		covered[members[i].MemberID] = make(map[string]struct{})
	}
	for i := range attendance {
		if set, ok := covered[attendance[i].MemberID]; ok {
			if d := NormalizeDate(attendance[i].AttendanceDate); d != "" {
				set[d] = struct{}{}
			}
		}
	}
	for i := range justifications {
		if set, ok := covered[justifications[i].MemberID]; ok {
			if d := NormalizeDate(justifications[i].AbsenceDate); d != "" {
				set[d] = struct{}{}
			}
		}
	}

	var changes []StatusChange
	for i := range members {
		m := &members[i]
		absences := countAbsences(covered[m.MemberID], today, opts)
		cert := CertificateStatusOf(m.CertificateIssuedOn, today, opts)
		if next, changed := Transition(m.Status, absences, cert.Status, opts); changed {
			changes = append(changes, StatusChange{MemberID: m.MemberID, From: m.Status, To: next})
		}
	}
	return changes
}
