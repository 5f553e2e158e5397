package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileKind(t *testing.T) {
	assert.Equal(t, FileKindPDF, DetectFileKind("cv.PDF"))
	assert.Equal(t, FileKindDOCX, DetectFileKind("/tmp/resume.docx"))
	assert.Equal(t, FileKindText, DetectFileKind("old.doc"))
	assert.Equal(t, FileKindText, DetectFileKind("plain.txt"))
	assert.Equal(t, FileKindUnknown, DetectFileKind("photo.png"))
	assert.Equal(t, FileKindUnknown, DetectFileKind("noext"))
}

func TestNewDocumentTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewDocumentTextExtractor(ctx)
	require.NoError(t, err, "创建文档提取器不应返回错误")
	require.IsType(t, &EinoPDFBackend{}, extractor.pdf)
	assert.Equal(t, defaultExtractTimeout, extractor.timeout)

	extractor, err = NewDocumentTextExtractor(ctx, WithExtractTimeout(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, extractor.timeout)
}

func TestExtractText_PlainAndUnsupported(t *testing.T) {
	ctx := context.Background()
	extractor, err := NewDocumentTextExtractor(ctx)
	require.NoError(t, err)

	text, err := extractor.ExtractText(ctx, "resume.txt", []byte("John Smith\njohn@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "John Smith\njohn@x.com", text)

	_, err = extractor.ExtractText(ctx, "resume.png", []byte{0x89, 0x50})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = extractor.ExtractText(ctx, "resume.txt", []byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, ErrUnsupportedFormat, "非 UTF-8 文本应被拒绝")
}

func TestExtractText_DOCX(t *testing.T) {
	ctx := context.Background()
	extractor, err := NewDocumentTextExtractor(ctx)
	require.NoError(t, err)

	data := buildTestDocx(t, []string{"John Smith", "Skills: Go &amp; Docker"})
	text, err := extractor.ExtractText(ctx, "resume.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "John Smith\nSkills: Go & Docker", text)
}

func TestExtractText_InvalidDOCX(t *testing.T) {
	ctx := context.Background()
	extractor, err := NewDocumentTextExtractor(ctx)
	require.NoError(t, err)

	_, err = extractor.ExtractText(ctx, "broken.docx", []byte("not a zip archive"))
	assert.Error(t, err)
}

func TestExtractText_PDFFile(t *testing.T) {
	// 仓库里没有内置 PDF 样例，找不到时跳过
	candidates := []string{"testdata/resume.pdf", "../../testdata/resume.pdf"}
	var data []byte
	for _, p := range candidates {
		if b, err := os.ReadFile(p); err == nil {
			data = b
			break
		}
	}
	if data == nil {
		t.Skip("找不到测试PDF文件，跳过测试")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	extractor, err := NewDocumentTextExtractor(ctx)
	require.NoError(t, err)

	text, err := extractor.ExtractText(ctx, "resume.pdf", data)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestDocxXMLToText(t *testing.T) {
	xml := `<w:document><w:body><w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>a &lt; b</w:t></w:r></w:p></w:body></w:document>`
	assert.Equal(t, "Name\tValue\na < b", docxXMLToText(xml))
}

// buildTestDocx 在内存中构造一个只包含正文的最小 docx
func buildTestDocx(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`
	rels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"word/document.xml":            document,
		"word/_rels/document.xml.rels": rels,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// blockingBackend 忽略 ctx，直到 release 关闭才返回
type blockingBackend struct {
	release chan struct{}
}

func (b *blockingBackend) ExtractPDF(context.Context, string, []byte) (string, error) {
	<-b.release
	return "too late", nil
}

func TestExtractText_PDFBackendIgnoringContextTimesOut(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{})}
	defer close(backend.release)

	extractor, err := NewDocumentTextExtractor(context.Background(),
		WithPDFBackend(backend), WithExtractTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	text, err := extractor.ExtractText(context.Background(), "slow.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrExtractTimeout)
	assert.Empty(t, text)
	assert.Less(t, time.Since(start), 2*time.Second, "超时后应立即返回，不等待后端")
}

func TestExtractText_PDFCallerCancelled(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{})}
	defer close(backend.release)

	extractor, err := NewDocumentTextExtractor(context.Background(), WithPDFBackend(backend))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = extractor.ExtractText(ctx, "slow.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, context.Canceled)
}
