package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
)

const timestampLayout = "2006-01-02T15:04:05Z07:00"

// loadOptions 读取系统配置与闭馆日，构造计算参数
// 系统配置缺失时使用默认值
func loadOptions(ctx context.Context, repo *repository.Repository) (eligibility.Options, error) {
	cfg, err := repo.SystemConfig.Get(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return eligibility.Options{}, fmt.Errorf("读取系统配置: %w", err)
	}
	closures, err := repo.ClosureDay.List(ctx, "", "")
	if err != nil {
		return eligibility.Options{}, fmt.Errorf("读取闭馆日: %w", err)
	}
	return eligibility.OptionsFromConfig(cfg, closures), nil
}

// getMember 查询学员，不存在时返回 ErrMemberNotFound
func getMember(ctx context.Context, repo *repository.Repository, id string) (*model.Member, error) {
	member, err := repo.Member.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// memberHistory 读取单个学员的签到与缺勤说明
func memberHistory(ctx context.Context, repo *repository.Repository, memberID string) ([]model.AttendanceRecord, []model.Justification, error) {
	attendance, err := repo.Attendance.ListByMember(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}
	justifications, err := repo.Justification.ListByMember(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}
	return attendance, justifications, nil
}

// appendAudit 追加审计日志
func appendAudit(ctx context.Context, repo *repository.Repository, action, actor, details string) error {
	return repo.AuditLog.Append(ctx, &model.AuditLog{
		Action:  action,
		Details: details,
		Actor:   actor,
	})
}

// auditBestEffort 追加审计日志，失败只记录日志
func auditBestEffort(ctx context.Context, repo *repository.Repository, logger *zap.Logger, action, actor, details string) {
	if err := appendAudit(ctx, repo, action, actor, details); err != nil {
		logger.Warn("写入审计日志失败", zap.String("action", action), zap.Error(err))
	}
}

// parseDay 严格解析 YYYY-MM-DD
func parseDay(s string) (time.Time, error) {
	t, ok := eligibility.ParseDate(s)
	if !ok {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// dayOrToday 为空时返回 today，否则解析 s
func dayOrToday(s string, today time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return eligibility.CivilDate(today), nil
	}
	return parseDay(s)
}

// digitsOnly 去除证件号/电话中的格式符号
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

func toCertificateResponse(r eligibility.CertificateReport) dto.CertificateStatusResponse {
	return dto.CertificateStatusResponse{
		Status:        r.Status,
		DaysRemaining: r.DaysRemaining,
		ExpiryDate:    r.ExpiryDate,
	}
}
