package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 节假日日历解析为闭馆日：
//   - 全天 VEVENT（DTSTART;VALUE=DATE）每个日期一条，DTEND 不含
//   - 跨多天的事件逐日展开
//   - RRULE 仅支持 DAILY/WEEKLY/YEARLY，展开至 icsHorizonYears 年内
//   - 带具体时间的事件跳过并给出提示
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize   = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout  = 30 * time.Second
	icsMaxEventDays  = 31
	icsHorizonYears  = 2
	icsMaxOccurrence = 400
)

// ParsedClosure ICS 解析出的单个闭馆日
type ParsedClosure struct {
	Date string // YYYY-MM-DD
	Name string
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	ctx, cancel := context.WithTimeout(ctx, icsFetchTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: closerFunc(func() error {
			defer cancel()
			return resp.Body.Close()
		}),
	}, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// ParseClosureICS 解析 ICS 内容，返回按日期排序、去重后的闭馆日与解析提示
func ParseClosureICS(reader io.Reader) ([]ParsedClosure, []string, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var warnings []string
	byDate := make(map[string]string)
	for _, evt := range cal.Events() {
		dates, name, warn := expandVEvent(evt)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		for _, d := range dates {
			if _, ok := byDate[d]; !ok {
				byDate[d] = name
			}
		}
	}

	result := make([]ParsedClosure, 0, len(byDate))
	for d, name := range byDate {
		result = append(result, ParsedClosure{Date: d, Name: name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, warnings, nil
}

// expandVEvent 将单个 VEVENT 展开为日期列表
func expandVEvent(evt *ics.VEvent) ([]string, string, string) {
	name := "Feriado"
	if summary := evt.GetProperty(ics.ComponentPropertySummary); summary != nil && strings.TrimSpace(summary.Value) != "" {
		name = strings.TrimSpace(summary.Value)
	}

	start, allDay, ok := parseICSDate(evt, ics.ComponentPropertyDtStart)
	if !ok {
		return nil, name, fmt.Sprintf("%s: 缺少或无法解析 DTSTART", name)
	}
	if !allDay {
		return nil, name, fmt.Sprintf("%s: 非全天事件，已跳过", name)
	}

	days := 1
	if end, _, ok := parseICSDate(evt, ics.ComponentPropertyDtEnd); ok && end.After(start) {
		days = eligibility.DaysBetween(start, end)
	}
	if days > icsMaxEventDays {
		return nil, name, fmt.Sprintf("%s: 持续 %d 天，超过上限 %d 天，已跳过", name, days, icsMaxEventDays)
	}

	exDates := parseExDates(evt)
	var dates []string
	for _, occ := range occurrences(evt, start) {
		for i := 0; i < days; i++ {
			d := eligibility.FormatDate(occ.AddDate(0, 0, i))
			if !exDates[d] {
				dates = append(dates, d)
			}
		}
	}
	return dates, name, ""
}

// occurrences 根据 RRULE 计算事件起始日期；无 RRULE 时只有一次
func occurrences(evt *ics.VEvent, start time.Time) []time.Time {
	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		return []time.Time{start}
	}

	rule := parseRRule(rruleProp.Value)
	step := func(t time.Time, n int) time.Time {
		switch rule.freq {
		case "DAILY":
			return t.AddDate(0, 0, n)
		case "WEEKLY":
			return t.AddDate(0, 0, 7*n)
		case "YEARLY":
			return t.AddDate(n, 0, 0)
		}
		return t
	}
	if rule.freq != "DAILY" && rule.freq != "WEEKLY" && rule.freq != "YEARLY" {
		return []time.Time{start}
	}

	horizon := start.AddDate(icsHorizonYears, 0, 0)
	var result []time.Time
	for i := 0; i < icsMaxOccurrence; i++ {
		current := step(start, i*rule.interval)
		if rule.count > 0 && i >= rule.count {
			break
		}
		if !rule.until.IsZero() && current.After(rule.until) {
			break
		}
		if current.After(horizon) {
			break
		}
		result = append(result, current)
	}
	return result
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=YEARLY;COUNT=5）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
			}
			r.until = t
		}
	}
	if r.interval < 1 {
		r.interval = 1
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE，键为 YYYY-MM-DD
func parseExDates(evt *ics.VEvent) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			if t, _, ok := parseICSValue(v); ok {
				exDates[eligibility.FormatDate(t)] = true
			}
		}
	}
	return exDates
}

// parseICSDate 解析日期属性，返回 UTC 零点日期与是否全天
func parseICSDate(evt *ics.VEvent, propName ics.ComponentProperty) (time.Time, bool, bool) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, false
	}
	t, allDay, ok := parseICSValue(prop.Value)
	if !ok {
		return time.Time{}, false, false
	}
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "VALUE" && len(v) > 0 && strings.ToUpper(v[0]) == "DATE" {
			allDay = true
		}
	}
	return t, allDay, true
}

func parseICSValue(val string) (time.Time, bool, bool) {
	val = strings.TrimSpace(val)
	if t, err := time.Parse("20060102", val); err == nil {
		return t, true, true
	}
	for _, layout := range []string{"20060102T150405Z", "20060102T150405"} {
		if t, err := time.Parse(layout, val); err == nil {
			return eligibility.CivilDate(t), false, true
		}
	}
	return time.Time{}, false, false
}
