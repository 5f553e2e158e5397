package handler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"resume-flow-go/internal/logger"
	"resume-flow-go/internal/processor"
	"resume-flow-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// ResumeHandler 简历解析相关的HTTP处理器
type ResumeHandler struct {
	service *processor.ResumeService
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(service *processor.ResumeService) *ResumeHandler {
	return &ResumeHandler{service: service}
}

// ParseTextRequest 纯文本解析请求
type ParseTextRequest struct {
	Text string `json:"text"`
}

// HandleParseText 解析请求体中的简历文本
// POST /api/v1/resume/parse
func (h *ResumeHandler) HandleParseText(ctx context.Context, c *app.RequestContext) {
	var req ParseTextRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "请求体不是合法的JSON"})
		return
	}

	result, err := h.service.ParseText(ctx, req.Text)
	if err != nil {
		status := statusForError(err)
		if errors.Is(err, processor.ErrEmptyResume) {
			status = consts.StatusBadRequest
		}
		writeError(ctx, c, status, err)
		return
	}
	c.JSON(consts.StatusOK, result)
}

// HandleResumeUpload 处理简历文件上传
// POST /api/v1/resume/upload (multipart, 字段名 file)
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
		return
	}

	maxBytes := h.service.Settings().MaxUploadBytes
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		writeError(ctx, c, consts.StatusBadRequest, processor.NewFileTooLargeError("",
			fmt.Sprintf("%d bytes > %d bytes", fileHeader.Size, maxBytes)))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "读取上传文件内容失败"})
		return
	}

	result, err := h.service.ParseUpload(ctx, fileHeader.Filename, data)
	if err != nil {
		writeError(ctx, c, statusForError(err), err)
		return
	}

	logger.Ctx(ctx).Info().
		Str("submission_uuid", result.SubmissionUUID).
		Str("file_name", tracing.SafeFileName(fileHeader.Filename)).
		Bool("cached", result.Cached).
		Msg("简历上传解析完成")
	c.JSON(consts.StatusOK, result)
}

// HandleGetResult 读取已持久化的解析结果
// GET /api/v1/resume/:submission_uuid
func (h *ResumeHandler) HandleGetResult(ctx context.Context, c *app.RequestContext) {
	submissionUUID := c.Param("submission_uuid")
	if submissionUUID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "submission_uuid 不能为空"})
		return
	}

	result, err := h.service.GetResult(ctx, submissionUUID)
	if err != nil {
		writeError(ctx, c, statusForError(err), err)
		return
	}
	c.JSON(consts.StatusOK, result)
}
