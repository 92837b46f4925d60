// Package handler 提供 HTTP 请求处理器
package handler

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"tga-report-ai-api/internal/application/export"
	"tga-report-ai-api/internal/application/report"
	"tga-report-ai-api/internal/infrastructure/spreadsheet"
	"tga-report-ai-api/internal/interfaces/http/dto"
	wfmodel "tga-report-ai-api/internal/workflow/model"
	apperrors "tga-report-ai-api/pkg/errors"
)

// ReportHandler 报告生成处理器
type ReportHandler struct {
	service        *report.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewReportHandler 创建报告生成处理器
func NewReportHandler(service *report.Service, maxUploadBytes int64, logger *slog.Logger) *ReportHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ReportHandler{service: service, maxUploadBytes: maxUploadBytes, logger: logger}
}

// Generate 生成报告并以文件形式返回
// @Summary 生成 Erläuterungsbericht
// @Description 从项目参数和可选表格生成完整报告，返回 DOCX 或 Markdown 文件
// @Tags Reports
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/reports/generate [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	var req dto.GenerateReportRequest
	if err := c.ShouldBind(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	// 未知导出格式在任何生成工作之前拒绝
	if req.ExportFormat == "" {
		req.ExportFormat = "docx"
	}
	format, err := export.ParseFormat(req.ExportFormat)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	roomTable, err := h.readUpload(c, "room_book")
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	costTable, err := h.readUpload(c, "cost_estimate")
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	doc, err := h.service.Generate(c.Request.Context(), report.BuildInput{
		ProjectName:  req.ProjectName,
		Location:     req.Location,
		ProjectType:  req.ProjectType,
		FederalState: req.FederalState,
		RoomTable:    roomTable,
		CostTable:    costTable,
	})
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	rendered, err := export.Render(doc, format)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendered.Filename))
	c.Data(http.StatusOK, rendered.ContentType, rendered.Data)
}

// readUpload 读取并解析可选的表格上传，缺失时返回 nil
func (h *ReportHandler) readUpload(c *gin.Context, field string) ([]wfmodel.TableRow, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		// multipart 表单里没有该字段
		return nil, nil
	}
	if fileHeader.Size > h.maxUploadBytes {
		return nil, apperrors.ErrUploadUnparsable.WithDetail(
			fmt.Sprintf("%s exceeds upload limit of %d bytes", field, h.maxUploadBytes))
	}

	rows, err := h.parseTable(fileHeader)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "upload parsing failed",
			"field", field, "filename", fileHeader.Filename, "error", err)
		return nil, apperrors.ErrUploadUnparsable.WithDetail(
			fmt.Sprintf("%s (%s): %v", field, fileHeader.Filename, err))
	}
	return rows, nil
}

func (h *ReportHandler) parseTable(fileHeader *multipart.FileHeader) ([]wfmodel.TableRow, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return spreadsheet.ReadTable(f, fileHeader.Filename)
}
