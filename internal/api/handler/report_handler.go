package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 报表 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
	now       Clock
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService, now Clock) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, now: now}
}

// Report 报表数据
// GET /api/v1/reports/:kind?period=&date=
// kind: attendance | justifications | certificates | time-slots
func (h *ReportHandler) Report(c *gin.Context) {
	var req dto.AttendanceReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	report, err := h.reportSvc.Report(c.Request.Context(), c.Param("kind"), &req, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, report)
}

// ExportExcel 导出报表为 Excel
// GET /api/v1/reports/:kind/export
func (h *ReportHandler) ExportExcel(c *gin.Context) {
	var req dto.AttendanceReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.reportSvc.ExportExcel(c.Request.Context(), c.Param("kind"), &req, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Print 可打印的 HTML 报表
// GET /api/v1/reports/:kind/print
func (h *ReportHandler) Print(c *gin.Context) {
	var req dto.AttendanceReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	html, err := h.reportSvc.PrintHTML(c.Request.Context(), c.Param("kind"), &req, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
