package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
)

// ── 系统配置模块业务错误 ──

var (
	ErrThresholdOrder = validationError("风险阈值必须小于停用阈值")
)

// SystemConfigService 系统配置业务接口
type SystemConfigService interface {
	Get(ctx context.Context) (*dto.SystemConfigResponse, error)
	Update(ctx context.Context, req *dto.UpdateSystemConfigRequest, callerID string) (*dto.SystemConfigResponse, error)
}

type systemConfigService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSystemConfigService 创建 SystemConfigService 实例
func NewSystemConfigService(repo *repository.Repository, logger *zap.Logger) SystemConfigService {
	return &systemConfigService{repo: repo, logger: logger}
}

// ────────────────────── Get ──────────────────────

// Get 配置行缺失时返回默认值
func (s *systemConfigService) Get(ctx context.Context) (*dto.SystemConfigResponse, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return toSystemConfigResponse(cfg), nil
}

// ────────────────────── Update ──────────────────────

func (s *systemConfigService) Update(ctx context.Context, req *dto.UpdateSystemConfigRequest, callerID string) (*dto.SystemConfigResponse, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if req.AbsenceThreshold != nil {
		cfg.AbsenceThreshold = *req.AbsenceThreshold
	}
	if req.AtRiskThreshold != nil {
		cfg.AtRiskThreshold = *req.AtRiskThreshold
	}
	if req.LookbackDays != nil {
		cfg.LookbackDays = *req.LookbackDays
	}
	if req.CertificateValidityMonths != nil {
		cfg.CertificateValidityMonths = *req.CertificateValidityMonths
	}
	if req.CertificateWarningDays != nil {
		cfg.CertificateWarningDays = *req.CertificateWarningDays
	}
	if req.SlotNearFullPercent != nil {
		cfg.SlotNearFullPercent = *req.SlotNearFullPercent
	}
	if req.BlockMissingCertificate != nil {
		cfg.BlockMissingCertificate = *req.BlockMissingCertificate
	}

	if cfg.AtRiskThreshold >= cfg.AbsenceThreshold {
		return nil, ErrThresholdOrder
	}

	cfg.UpdatedBy = optionalID(callerID)
	if err := s.repo.SystemConfig.Update(ctx, cfg); err != nil {
		s.logger.Error("更新系统配置失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("系统配置已更新",
		zap.Int("absence_threshold", cfg.AbsenceThreshold),
		zap.Int("lookback_days", cfg.LookbackDays),
	)
	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionConfigChanged, actorOf(callerID),
		fmt.Sprintf("停用阈值 %d，风险阈值 %d，回看 %d 天，体检证明有效 %d 个月",
			cfg.AbsenceThreshold, cfg.AtRiskThreshold, cfg.LookbackDays, cfg.CertificateValidityMonths))
	return toSystemConfigResponse(cfg), nil
}

func (s *systemConfigService) load(ctx context.Context) (*model.SystemConfig, error) {
	cfg, err := s.repo.SystemConfig.Get(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询系统配置失败", zap.Error(err))
		return nil, err
	}
	return defaultSystemConfig(), nil
}

// defaultSystemConfig 与迁移脚本中的种子行一致
func defaultSystemConfig() *model.SystemConfig {
	d := eligibility.DefaultOptions()
	return &model.SystemConfig{
		Singleton:                 true,
		AbsenceThreshold:          d.AbsenceThreshold,
		AtRiskThreshold:           d.AtRiskThreshold,
		LookbackDays:              d.LookbackDays,
		CertificateValidityMonths: d.CertificateValidityMonths,
		CertificateWarningDays:    d.CertificateWarningDays,
		SlotNearFullPercent:       90,
		BlockMissingCertificate:   d.BlockMissingCertificate,
	}
}

func toSystemConfigResponse(cfg *model.SystemConfig) *dto.SystemConfigResponse {
	return &dto.SystemConfigResponse{
		AbsenceThreshold:          cfg.AbsenceThreshold,
		AtRiskThreshold:           cfg.AtRiskThreshold,
		LookbackDays:              cfg.LookbackDays,
		CertificateValidityMonths: cfg.CertificateValidityMonths,
		CertificateWarningDays:    cfg.CertificateWarningDays,
		SlotNearFullPercent:       cfg.SlotNearFullPercent,
		BlockMissingCertificate:   cfg.BlockMissingCertificate,
		UpdatedAt:                 formatTime(cfg.UpdatedAt),
	}
}
