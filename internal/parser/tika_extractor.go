package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resume-flow-go/internal/logger"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// PDFBackend 把 PDF 字节解码为纯文本
type PDFBackend interface {
	ExtractPDF(ctx context.Context, uri string, data []byte) (string, error)
}

// TikaPDFExtractor 基于 Apache Tika 服务的 PDF 解码
type TikaPDFExtractor struct {
	serverURL   string
	client      *client.Client
	timeout     time.Duration
	annotations bool
}

var _ PDFBackend = (*TikaPDFExtractor)(nil)

// TikaOption 定义配置选项函数
type TikaOption func(*TikaPDFExtractor)

// WithTikaTimeout 单次请求超时
func WithTikaTimeout(d time.Duration) TikaOption {
	return func(e *TikaPDFExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithAnnotations 是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.annotations = extract
	}
}

// NewTikaPDFExtractor 创建Tika PDF解码器，serverURL 例如 http://localhost:9998
func NewTikaPDFExtractor(serverURL string, options ...TikaOption) (*TikaPDFExtractor, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("tika server url is required")
	}
	c, err := client.NewClient(client.WithDialTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("创建Tika HTTP客户端失败: %w", err)
	}

	e := &TikaPDFExtractor{
		serverURL:   strings.TrimRight(serverURL, "/"),
		client:      c,
		timeout:     60 * time.Second,
		annotations: true,
	}
	for _, option := range options {
		option(e)
	}
	return e, nil
}

// ExtractPDF 以纯文本模式 PUT 到 /tika
func (e *TikaPDFExtractor) ExtractPDF(ctx context.Context, uri string, data []byte) (string, error) {
	startTime := time.Now()

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(e.serverURL + "/tika")
	req.SetMethod(consts.MethodPut)
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "text/plain")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}
	if !e.annotations {
		req.Header.Set("X-Tika-PDFExtractAnnotationText", "false")
	}
	req.SetBody(data)

	// 取 ctx 截止时间与自身超时中较早的一个
	deadline := time.Now().Add(e.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := e.client.DoDeadline(ctx, req, resp, deadline); err != nil {
		return "", fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	if resp.StatusCode() != consts.StatusOK {
		return "", fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode())
	}

	text := string(resp.Body())
	logger.Debug().
		Str("uri", uri).
		Int("text_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Tika PDF解码完成")
	return text, nil
}
