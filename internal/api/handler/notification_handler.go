package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// NotificationHandler 提醒 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
	now             Clock
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService, now Clock) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc, now: now}
}

// List 当前提醒（实时计算）
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.notificationSvc.List(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// SendDigest 发送提醒摘要邮件
// POST /api/v1/notifications/digest
func (h *NotificationHandler) SendDigest(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.SendDigest(c.Request.Context(), h.now(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}
