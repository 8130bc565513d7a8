package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
)

// AuditLogService 审计日志查询（仅追加，无修改接口）
type AuditLogService interface {
	List(ctx context.Context, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error)
}

type auditLogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditLogService 创建 AuditLogService 实例
func NewAuditLogService(repo *repository.Repository, logger *zap.Logger) AuditLogService {
	return &auditLogService{repo: repo, logger: logger}
}

func (s *auditLogService) List(ctx context.Context, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error) {
	entries, total, err := s.repo.AuditLog.List(ctx, req.Action, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, dto.AuditLogResponse{
			ID:        e.AuditLogID,
			Action:    e.Action,
			Details:   e.Details,
			Actor:     e.Actor,
			CreatedAt: formatTime(e.CreatedAt),
		})
	}
	return result, total, nil
}
