package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// AuditLogHandler 审计日志 HTTP 处理器
type AuditLogHandler struct {
	auditSvc service.AuditLogService
}

// NewAuditLogHandler 创建 AuditLogHandler
func NewAuditLogHandler(auditSvc service.AuditLogService) *AuditLogHandler {
	return &AuditLogHandler{auditSvc: auditSvc}
}

// List 审计日志（新的在前）
// GET /api/v1/audit-logs?action=
func (h *AuditLogHandler) List(c *gin.Context) {
	var req dto.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.auditSvc.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
