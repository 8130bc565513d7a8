package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// JustificationHandler 缺勤说明 HTTP 处理器
type JustificationHandler struct {
	justificationSvc service.JustificationService
	now              Clock
}

// NewJustificationHandler 创建 JustificationHandler
func NewJustificationHandler(justificationSvc service.JustificationService, now Clock) *JustificationHandler {
	return &JustificationHandler{justificationSvc: justificationSvc, now: now}
}

// List 缺勤说明列表
// GET /api/v1/justifications
func (h *JustificationHandler) List(c *gin.Context) {
	var req dto.JustificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.justificationSvc.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Reasons 常用缺勤原因
// GET /api/v1/justifications/reasons
func (h *JustificationHandler) Reasons(c *gin.Context) {
	response.OK(c, gin.H{"list": service.JustificationReasons})
}

// Create 单日缺勤说明
// POST /api/v1/justifications
func (h *JustificationHandler) Create(c *gin.Context) {
	var req dto.CreateJustificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.justificationSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// CreateBatch 多日缺勤说明
// POST /api/v1/justifications/batch
func (h *JustificationHandler) CreateBatch(c *gin.Context) {
	var req dto.BatchJustificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.justificationSvc.CreateBatch(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Reactivate 补交说明并恢复学员
// POST /api/v1/justifications/reactivate
func (h *JustificationHandler) Reactivate(c *gin.Context) {
	var req dto.ReactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.justificationSvc.JustifyAndReactivate(c.Request.Context(), &req, h.now(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}
