package handler

import (
	"context"
	"errors"

	"resume-flow-go/internal/logger"
	"resume-flow-go/internal/processor"
	"resume-flow-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// statusForError 把服务层错误映射为HTTP状态码
func statusForError(err error) int {
	switch {
	case errors.Is(err, processor.ErrUnsupportedFileType),
		errors.Is(err, processor.ErrFileTooLarge):
		return consts.StatusBadRequest
	case errors.Is(err, processor.ErrEmptyResume),
		errors.Is(err, processor.ErrDecodeFailed):
		return consts.StatusUnprocessableEntity
	case errors.Is(err, processor.ErrResultNotFound):
		return consts.StatusNotFound
	case errors.Is(err, processor.ErrStoreNotInit),
		errors.Is(err, processor.ErrExtractorNotInit):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}

// writeError 输出 {"error": ...}，ResumeProcessError 额外带上 detail 和 submission_uuid
func writeError(ctx context.Context, c *app.RequestContext, status int, err error) {
	span := trace.SpanFromContext(ctx)
	tracing.RecordHTTPError(span, err, status)

	body := utils.H{"error": err.Error()}
	var procErr *processor.ResumeProcessError
	if errors.As(err, &procErr) {
		body["error"] = procErr.BaseErr.Error()
		if procErr.Detail != "" {
			body["detail"] = procErr.Detail
			span.SetAttributes(attribute.String("error.detail",
				tracing.SafeAttributeValue("error.detail", procErr.Detail, tracing.DefaultMaxLength)))
		}
		if procErr.SubmissionUUID != "" {
			body["submission_uuid"] = procErr.SubmissionUUID
			span.SetAttributes(attribute.String("submission_uuid", procErr.SubmissionUUID))
		}
	}

	l := logger.Ctx(ctx)
	event := l.Warn()
	if status >= consts.StatusInternalServerError {
		event = l.Error()
	}
	event.Err(err).Int("status", status).Str("path", string(c.Path())).Msg("请求处理失败")

	c.JSON(status, body)
}
