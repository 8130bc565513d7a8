package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// MaintenanceHandler 维护任务 HTTP 处理器（仅管理员）
type MaintenanceHandler struct {
	maintenanceSvc service.MaintenanceService
	now            Clock
}

// NewMaintenanceHandler 创建 MaintenanceHandler
func NewMaintenanceHandler(maintenanceSvc service.MaintenanceService, now Clock) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceSvc: maintenanceSvc, now: now}
}

// Sweep 立即执行状态巡检
// POST /api/v1/maintenance/sweep
func (h *MaintenanceHandler) Sweep(c *gin.Context) {
	result, err := h.maintenanceSvc.RunInactivitySweep(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Deduplicate 清理重复签到
// POST /api/v1/maintenance/deduplicate
func (h *MaintenanceHandler) Deduplicate(c *gin.Context) {
	result, err := h.maintenanceSvc.DeduplicateAttendance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}
