// Package email 提供提醒摘要邮件的发送实现。
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Message 待发送邮件
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Result 发送结果
type Result struct {
	MessageID string
	SentAt    time.Time
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
	// Enabled 为 false 表示未配置实际发送通道
	Enabled() bool
}

// ── Resend ──

// ResendSender 通过 Resend API 发送
type ResendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendSender 创建 Resend 发送器
func NewResendSender(apiKey, from string, logger *zap.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		s.logger.Error("邮件发送失败", zap.Strings("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return Result{}, fmt.Errorf("resend 发送失败: %w", err)
	}

	s.logger.Info("邮件已发送", zap.String("message_id", sent.Id), zap.Strings("to", msg.To))
	return Result{MessageID: sent.Id, SentAt: time.Now()}, nil
}

func (s *ResendSender) Enabled() bool { return true }

// ── No-op ──

// NoopSender 未配置 API Key 时使用，只记录日志
type NoopSender struct {
	logger *zap.Logger
}

// NewNoopSender 创建空发送器
func NewNoopSender(logger *zap.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

func (s *NoopSender) Send(_ context.Context, msg Message) (Result, error) {
	s.logger.Info("邮件通道未配置，跳过发送", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return Result{SentAt: time.Now()}, nil
}

func (s *NoopSender) Enabled() bool { return false }

// New 根据 API Key 选择发送器
func New(apiKey, from string, logger *zap.Logger) Sender {
	if apiKey == "" {
		return NewNoopSender(logger)
	}
	return NewResendSender(apiKey, from, logger)
}
