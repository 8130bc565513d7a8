package eligibility

import (
	"strings"
	"time"
)

// DateLayout 业务日期格式（签到、缺勤说明、闭馆日）
const DateLayout = "2006-01-02"

// certificateLayouts 体检证明日期可接受的格式，按顺序尝试
var certificateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"02/01/2006",
}

// CivilDate 截取 t 在其所在时区的日历日期，返回 UTC 零点
// 之后所有天数运算都在 UTC 上进行，避免夏令时导致的 23/25 小时日
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate 严格解析 YYYY-MM-DD；格式异常返回 false
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate 将日期字符串规范化为 YYYY-MM-DD；无法解析时返回空串
func NormalizeDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return FormatDate(t)
}

// parseCertificateDate 宽松解析体检证明签发日期
func parseCertificateDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range certificateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return CivilDate(t), true
		}
	}
	return time.Time{}, false
}

// AddMonths 日历月加法，目标月天数不足时取月末（1 月 31 日 + 1 月 = 2 月 28/29 日）
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// DaysBetween 两个日历日期之间的整天数（to - from）
func DaysBetween(from, to time.Time) int {
	return int(CivilDate(to).Sub(CivilDate(from)).Hours() / 24)
}

// IsWeekend 周六或周日
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
