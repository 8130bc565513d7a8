package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// ClosureDayHandler 闭馆日 HTTP 处理器
type ClosureDayHandler struct {
	closureSvc service.ClosureDayService
}

// NewClosureDayHandler 创建 ClosureDayHandler
func NewClosureDayHandler(closureSvc service.ClosureDayService) *ClosureDayHandler {
	return &ClosureDayHandler{closureSvc: closureSvc}
}

// List 闭馆日列表
// GET /api/v1/closure-days?from=&to=
func (h *ClosureDayHandler) List(c *gin.Context) {
	var req dto.ClosureDayListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.closureSvc.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Create 手动添加闭馆日
// POST /api/v1/closure-days
func (h *ClosureDayHandler) Create(c *gin.Context) {
	var req dto.CreateClosureDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	day, err := h.closureSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, day)
}

// Delete 删除闭馆日
// DELETE /api/v1/closure-days/:id
func (h *ClosureDayHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.closureSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// Import 导入 iCalendar：multipart 字段 file，或 JSON/表单字段 url
// POST /api/v1/closure-days/import
func (h *ClosureDayHandler) Import(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			bindFailed(c, err)
			return
		}
		defer file.Close()

		result, err := h.closureSvc.ImportICS(c.Request.Context(), file, callerID)
		if err != nil {
			respondError(c, err)
			return
		}
		response.OK(c, result)
		return
	}

	var req dto.ImportClosureDaysRequest
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	} else {
		req.URL = c.PostForm("url")
	}

	result, err := h.closureSvc.ImportURL(c.Request.Context(), req.URL, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}
