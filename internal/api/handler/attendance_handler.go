package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// AttendanceHandler 签到模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
	now           Clock
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService, now Clock) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc, now: now}
}

// CheckIn 学员签到，被拒绝时返回 422 与判定详情
// POST /api/v1/attendance/check-in
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.CheckIn(c.Request.Context(), &req, h.now(), callerID)
	if err != nil {
		if errors.Is(err, service.ErrCheckInNotAllowed) && result != nil {
			response.ErrorWithData(c, http.StatusUnprocessableEntity, codeCheckInNotAllowed, err.Error(), result.Decision)
			return
		}
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// ListByDate 某日签到（默认为今天）
// GET /api/v1/attendance?date=YYYY-MM-DD
func (h *AttendanceHandler) ListByDate(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.attendanceSvc.ListByDate(c.Request.Context(), req.Date, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Remove 撤销签到
// DELETE /api/v1/attendance/:member_id/:date
func (h *AttendanceHandler) Remove(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.attendanceSvc.Remove(c.Request.Context(), c.Param("member_id"), c.Param("date"), callerID); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}
