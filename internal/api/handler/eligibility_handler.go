package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// EligibilityHandler 资格计算 HTTP 处理器
type EligibilityHandler struct {
	eligibilitySvc service.EligibilityService
	now            Clock
}

// NewEligibilityHandler 创建 EligibilityHandler
func NewEligibilityHandler(eligibilitySvc service.EligibilityService, now Clock) *EligibilityHandler {
	return &EligibilityHandler{eligibilitySvc: eligibilitySvc, now: now}
}

// CertificateStatus 计算体检证明状态（登记表单预览使用）
// GET /api/v1/eligibility/certificate?issue_date=&today=
func (h *EligibilityHandler) CertificateStatus(c *gin.Context) {
	var req dto.CertificateStatusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	today := h.now()
	if req.Today != "" {
		t, ok := eligibility.ParseDate(req.Today)
		if !ok {
			respondError(c, service.ErrInvalidDate)
			return
		}
		today = t
	}

	response.OK(c, h.eligibilitySvc.ComputeCertificateStatus(c.Request.Context(), req.IssueDate, today))
}
