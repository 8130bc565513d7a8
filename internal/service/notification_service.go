package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/config"
	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/email"
)

// 提醒类型与级别
const (
	NotifyCertificateExpired  = "certificate_expired"
	NotifyCertificateExpiring = "certificate_expiring"
	NotifyCertificateMissing  = "certificate_missing"
	NotifyMemberInactive      = "member_inactive"
	NotifyMemberAtRisk        = "member_at_risk"
	NotifySlotFull            = "slot_full"
	NotifySlotAlmostFull      = "slot_almost_full"

	SeverityError   = "error"
	SeverityWarning = "warning"

	maxNotifications = 10
)

// NotificationService 系统提醒业务接口
// 提醒不落库，每次按当前数据计算
type NotificationService interface {
	List(ctx context.Context, today time.Time) ([]dto.NotificationResponse, error)
	// SendDigest 将当前提醒以邮件发送给配置的收件人
	SendDigest(ctx context.Context, today time.Time, callerID string) (*dto.DigestResponse, error)
}

type notificationService struct {
	cfg    *config.Config
	repo   *repository.Repository
	mailer email.Sender
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(cfg *config.Config, repo *repository.Repository, mailer email.Sender, logger *zap.Logger) NotificationService {
	if mailer == nil {
		mailer = email.NewNoopSender(logger)
	}
	return &notificationService{cfg: cfg, repo: repo, mailer: mailer, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *notificationService) List(ctx context.Context, today time.Time) ([]dto.NotificationResponse, error) {
	members, err := s.repo.Member.ListAll(ctx)
	if err != nil {
		s.logger.Error("读取学员失败", zap.Error(err))
		return nil, err
	}
	attendance, err := s.repo.Attendance.ListAll(ctx)
	if err != nil {
		s.logger.Error("读取签到记录失败", zap.Error(err))
		return nil, err
	}
	justifications, err := s.repo.Justification.ListAll(ctx)
	if err != nil {
		s.logger.Error("读取缺勤说明失败", zap.Error(err))
		return nil, err
	}
	slots, err := s.repo.TimeSlot.List(ctx, true)
	if err != nil {
		s.logger.Error("读取时段失败", zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.Member.CountByTimeSlot(ctx)
	if err != nil {
		return nil, err
	}
	nearFull, err := s.nearFullPercent(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := loadOptions(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	items := BuildNotifications(members, attendance, justifications, slots, counts, today, opts, nearFull)
	return items, nil
}

// BuildNotifications 依据当前数据生成提醒：按 ID 去重，错误优先，最多 10 条
func BuildNotifications(
	members []model.Member,
	attendance []model.AttendanceRecord,
	justifications []model.Justification,
	slots []model.TimeSlot,
	slotCounts map[string]int,
	today time.Time,
	opts eligibility.Options,
	nearFullPercent int,
) []dto.NotificationResponse {
	var items []dto.NotificationResponse

	for i := range members {
		m := &members[i]

		cert := eligibility.CertificateStatusOf(m.CertificateIssuedOn, today, opts)
		switch cert.Status {
		case eligibility.CertificateExpired:
			items = append(items, dto.NotificationResponse{
				ID:       "certificate-expired-" + m.MemberID,
				Type:     NotifyCertificateExpired,
				Severity: SeverityError,
				Title:    "体检证明已过期",
				Message:  fmt.Sprintf("%s 的体检证明已于 %s 过期", m.Name, cert.ExpiryDate),
				MemberID: m.MemberID,
			})
		case eligibility.CertificateExpiringSoon:
			items = append(items, dto.NotificationResponse{
				ID:       "certificate-expiring-" + m.MemberID,
				Type:     NotifyCertificateExpiring,
				Severity: SeverityWarning,
				Title:    "体检证明即将过期",
				Message:  fmt.Sprintf("%s 的体检证明将在 %d 天后过期（%s）", m.Name, cert.DaysRemaining, cert.ExpiryDate),
				MemberID: m.MemberID,
			})
		case eligibility.CertificateMissing:
			items = append(items, dto.NotificationResponse{
				ID:       "certificate-missing-" + m.MemberID,
				Type:     NotifyCertificateMissing,
				Severity: SeverityWarning,
				Title:    "缺少体检证明",
				Message:  fmt.Sprintf("%s 未登记有效的体检证明", m.Name),
				MemberID: m.MemberID,
			})
		}

		absences := eligibility.ConsecutiveAbsences(m.MemberID, attendance, justifications, today, opts)
		switch {
		case absences >= opts.AbsenceThreshold:
			items = append(items, dto.NotificationResponse{
				ID:       "member-inactive-" + m.MemberID,
				Type:     NotifyMemberInactive,
				Severity: SeverityError,
				Title:    "学员已停用",
				Message:  fmt.Sprintf("%s 连续 %d 次未说明缺勤", m.Name, absences),
				MemberID: m.MemberID,
			})
		case absences >= opts.AtRiskThreshold:
			items = append(items, dto.NotificationResponse{
				ID:       "member-at-risk-" + m.MemberID,
				Type:     NotifyMemberAtRisk,
				Severity: SeverityWarning,
				Title:    "学员有停用风险",
				Message:  fmt.Sprintf("%s 连续 %d 次缺勤", m.Name, absences),
				MemberID: m.MemberID,
			})
		}
	}

	for i := range slots {
		slot := &slots[i]
		if !slot.IsActive || slot.Capacity <= 0 {
			continue
		}
		count := slotCounts[slot.TimeSlotID]
		percent := count * 100 / slot.Capacity
		switch {
		case count >= slot.Capacity:
			items = append(items, dto.NotificationResponse{
				ID:       "slot-full-" + slot.TimeSlotID,
				Type:     NotifySlotFull,
				Severity: SeverityError,
				Title:    "时段已满",
				Message:  fmt.Sprintf("时段 %s 已达容量上限（%d/%d）", slot.Label, count, slot.Capacity),
				SlotID:   slot.TimeSlotID,
			})
		case percent >= nearFullPercent:
			items = append(items, dto.NotificationResponse{
				ID:       "slot-almost-full-" + slot.TimeSlotID,
				Type:     NotifySlotAlmostFull,
				Severity: SeverityWarning,
				Title:    "时段接近满员",
				Message:  fmt.Sprintf("时段 %s 已占用 %d%%", slot.Label, percent),
				SlotID:   slot.TimeSlotID,
			})
		}
	}

	// 按 ID 去重
	seen := make(map[string]struct{}, len(items))
	unique := items[:0]
	for _, n := range items {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		unique = append(unique, n)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Severity == SeverityError && unique[j].Severity != SeverityError
	})
	if len(unique) > maxNotifications {
		unique = unique[:maxNotifications]
	}
	return unique
}

// ────────────────────── SendDigest ──────────────────────

func (s *notificationService) SendDigest(ctx context.Context, today time.Time, callerID string) (*dto.DigestResponse, error) {
	items, err := s.List(ctx, today)
	if err != nil {
		return nil, err
	}

	recipients := s.cfg.Mail.DigestRecipients
	resp := &dto.DigestResponse{Recipients: len(recipients), Count: len(items)}
	if len(recipients) == 0 || !s.mailer.Enabled() {
		s.logger.Info("未配置邮件通道或收件人，跳过提醒摘要", zap.Int("count", len(items)))
		return resp, nil
	}

	date := eligibility.FormatDate(today)
	body, err := renderMarkdown(digestMarkdown(s.cfg.Academy.Name, date, items))
	if err != nil {
		return nil, err
	}

	result, err := s.mailer.Send(ctx, email.Message{
		To:      recipients,
		Subject: fmt.Sprintf("%s 每日提醒 %s", s.cfg.Academy.Name, date),
		HTML:    htmlPage("每日提醒", body),
	})
	if err != nil {
		s.logger.Error("发送提醒摘要失败", zap.Error(err))
		return nil, err
	}

	resp.Sent = true
	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionDigestSent, actorOf(callerID),
		fmt.Sprintf("发送提醒摘要 %d 条给 %d 位收件人（%s）", len(items), len(recipients), result.MessageID))
	return resp, nil
}

func digestMarkdown(academy, date string, items []dto.NotificationResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s 每日提醒\n\n日期：%s\n\n", academy, date)
	if len(items) == 0 {
		b.WriteString("今日无提醒。\n")
		return b.String()
	}
	b.WriteString("| 级别 | 标题 | 内容 |\n|---|---|---|\n")
	for _, n := range items {
		level := "提醒"
		if n.Severity == SeverityError {
			level = "**紧急**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", level, escapeCell(n.Title), escapeCell(n.Message))
	}
	return b.String()
}

func (s *notificationService) nearFullPercent(ctx context.Context) (int, error) {
	cfg, err := (&systemConfigService{repo: s.repo, logger: s.logger}).load(ctx)
	if err != nil {
		return 0, err
	}
	if cfg.SlotNearFullPercent <= 0 {
		return 90, nil
	}
	return cfg.SlotNearFullPercent, nil
}
