package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"resume-flow-go/internal/logger"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/nguyenthenguyen/docx"
)

// FileKind 上传文件的类型
type FileKind string

const (
	FileKindPDF     FileKind = "pdf"
	FileKindDOCX    FileKind = "docx"
	FileKindText    FileKind = "text"
	FileKindUnknown FileKind = ""
)

var (
	// ErrUnsupportedFormat 无法识别的文件类型
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrExtractTimeout 文档解码超过 extract_timeout
	ErrExtractTimeout = errors.New("document extraction timed out")
)

const defaultExtractTimeout = 30 * time.Second

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

// DetectFileKind 根据扩展名判断文件类型，.doc 按纯文本读取
func DetectFileKind(filename string) FileKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileKindPDF
	case ".docx":
		return FileKindDOCX
	case ".doc", ".txt":
		return FileKindText
	default:
		return FileKindUnknown
	}
}

// DocumentTextExtractor 把上传的 PDF / Word / 文本文件解码为纯文本
type DocumentTextExtractor struct {
	pdf     PDFBackend
	timeout time.Duration
}

// DocumentOption 文档提取器的配置选项
type DocumentOption func(*DocumentTextExtractor)

// WithExtractTimeout 设置单个文档的解析超时
func WithExtractTimeout(d time.Duration) DocumentOption {
	return func(e *DocumentTextExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithPDFBackend 替换默认的 Eino PDF 解码，例如改用 Tika
func WithPDFBackend(b PDFBackend) DocumentOption {
	return func(e *DocumentTextExtractor) {
		if b != nil {
			e.pdf = b
		}
	}
}

// NewDocumentTextExtractor 初始化文档文本提取器
func NewDocumentTextExtractor(ctx context.Context, options ...DocumentOption) (*DocumentTextExtractor, error) {
	extractor := &DocumentTextExtractor{
		timeout: defaultExtractTimeout,
	}
	for _, option := range options {
		option(extractor)
	}
	if extractor.pdf == nil {
		b, err := NewEinoPDFBackend(ctx)
		if err != nil {
			return nil, err
		}
		extractor.pdf = b
	}
	return extractor, nil
}

// ExtractText 按文件类型解码文件内容
func (e *DocumentTextExtractor) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	startTime := time.Now()
	kind := DetectFileKind(filename)

	var (
		text string
		err  error
	)
	switch kind {
	case FileKindPDF:
		text, err = e.extractPDF(ctx, filename, data)
	case FileKindDOCX:
		text, err = extractDOCX(data)
	case FileKindText:
		text, err = extractPlainText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}

	if err != nil {
		logger.Warn().Err(err).
			Str("file_name", filename).
			Str("kind", string(kind)).
			Dur("duration", time.Since(startTime)).
			Msg("文档解码失败")
		return "", err
	}

	logger.Debug().
		Str("file_name", filename).
		Str("kind", string(kind)).
		Int("text_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("文档解码完成")
	return text, nil
}

type pdfResult struct {
	text string
	err  error
}

// extractPDF 在独立 goroutine 中解码，后端不检查 ctx 时超时也能及时返回
func (e *DocumentTextExtractor) extractPDF(ctx context.Context, uri string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan pdfResult, 1)
	go func() {
		text, err := e.pdf.ExtractPDF(ctx, uri, data)
		done <- pdfResult{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s after %s", ErrExtractTimeout, uri, e.timeout)
		}
		return "", ctx.Err()
	}
}

// EinoPDFBackend 进程内的 Eino PDF 解码
type EinoPDFBackend struct {
	parser *pdf.PDFParser
}

// NewEinoPDFBackend 不按页面分割，以获取整个文档的连续文本
func NewEinoPDFBackend(ctx context.Context) (*EinoPDFBackend, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}
	return &EinoPDFBackend{parser: p}, nil
}

// ExtractPDF 合并所有文档片段的内容
func (b *EinoPDFBackend) ExtractPDF(ctx context.Context, uri string, data []byte) (string, error) {
	docs, err := b.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(map[string]any{
			"extraction_time": time.Now().Format(time.RFC3339),
		}),
	)
	if err != nil {
		return "", fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("eino PDF parser returned no documents for URI %s", uri)
	}

	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(doc.Content)
	}
	return sb.String(), nil
}

// extractDOCX 读取 word/document.xml，按段落换行后去掉标签
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxXMLToText(doc.Editable().GetContent()), nil
}

func docxXMLToText(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	content = strings.ReplaceAll(content, "<w:br/>", "\n")
	content = xmlTagRe.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text file is not valid UTF-8", ErrUnsupportedFormat)
	}
	return string(data), nil
}
