package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// MemberHandler 学员模块 HTTP 处理器
type MemberHandler struct {
	memberSvc      service.MemberService
	eligibilitySvc service.EligibilityService
	attendanceSvc  service.AttendanceService
	now            Clock
}

// NewMemberHandler 创建 MemberHandler
func NewMemberHandler(memberSvc service.MemberService, eligibilitySvc service.EligibilityService, attendanceSvc service.AttendanceService, now Clock) *MemberHandler {
	return &MemberHandler{
		memberSvc:      memberSvc,
		eligibilitySvc: eligibilitySvc,
		attendanceSvc:  attendanceSvc,
		now:            now,
	}
}

// ListMembers 学员列表
// GET /api/v1/members
func (h *MemberHandler) ListMembers(c *gin.Context) {
	var req dto.MemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	members, total, err := h.memberSvc.List(c.Request.Context(), &req, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, members, total, req.GetPage(), req.GetPageSize())
}

// GetMember 学员详情
// GET /api/v1/members/:id
func (h *MemberHandler) GetMember(c *gin.Context) {
	member, err := h.memberSvc.GetByID(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, member)
}

// CreateMember 登记学员
// POST /api/v1/members
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	member, err := h.memberSvc.Create(c.Request.Context(), &req, h.now(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, member)
}

// UpdateMember 更新学员（需携带 version）
// PUT /api/v1/members/:id
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	member, err := h.memberSvc.Update(c.Request.Context(), c.Param("id"), &req, h.now(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, member)
}

// DeleteMember 删除学员
// DELETE /api/v1/members/:id
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.memberSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// ReactivateMember 手动恢复学员
// POST /api/v1/members/:id/reactivate
func (h *MemberHandler) ReactivateMember(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	member, err := h.memberSvc.Reactivate(c.Request.Context(), c.Param("id"), h.now(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, member)
}

// ImportMembers Excel 批量导入学员（multipart 字段 file）
// POST /api/v1/members/import
func (h *MemberHandler) ImportMembers(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		bindFailed(c, err)
		return
	}
	defer file.Close()

	rows, err := service.ParseMemberImportFile(file)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.memberSvc.ImportMembers(c.Request.Context(), rows, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Eligibility 学员今日签到资格
// GET /api/v1/members/:id/eligibility
func (h *MemberHandler) Eligibility(c *gin.Context) {
	decision, err := h.eligibilitySvc.CanCheckIn(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, decision)
}

// Absences 学员缺勤报告
// GET /api/v1/members/:id/absences
func (h *MemberHandler) Absences(c *gin.Context) {
	report, err := h.eligibilitySvc.AbsenceReport(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, report)
}

// AttendanceHistory 学员签到历史（新的在前）
// GET /api/v1/members/:id/attendance
func (h *MemberHandler) AttendanceHistory(c *gin.Context) {
	records, err := h.attendanceSvc.MemberHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}
