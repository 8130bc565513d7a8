package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// DashboardHandler 学员自助 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
	now          Clock
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService, now Clock) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc, now: now}
}

// Dashboard 当前学员的个人面板，学员 ID 取自 Token
// GET /api/v1/me/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	memberID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.dashboardSvc.MemberDashboard(c.Request.Context(), memberID, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}
