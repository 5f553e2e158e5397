package processor

import (
	"errors"
	"fmt"

	"resume-flow-go/internal/parser"
)

// 定义基础错误类型
var (
	ErrUnsupportedFileType = errors.New("Please upload a PDF, Word document, or text file")
	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
	ErrDecodeFailed        = errors.New("提取文档文本失败")
	ErrParseFailed         = errors.New("解析简历失败")
	ErrResultNotFound      = errors.New("解析记录不存在")
	ErrStoreNotInit        = errors.New("record store is not initialized")
	ErrExtractorNotInit    = errors.New("text extractor is not initialized")

	// ErrEmptyResume 与 parser.ErrEmptyInput 为同一个错误
	ErrEmptyResume = parser.ErrEmptyInput
)

// ResumeProcessError 包含详细错误信息的自定义错误
type ResumeProcessError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ResumeProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *ResumeProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewUnsupportedFileError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "validate",
		BaseErr:        ErrUnsupportedFileType,
		Detail:         detail,
	}
}

func NewFileTooLargeError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "validate",
		BaseErr:        ErrFileTooLarge,
		Detail:         detail,
	}
}

func NewDecodeError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "decode",
		BaseErr:        ErrDecodeFailed,
		Detail:         detail,
	}
}

func NewEmptyResumeError(uuid string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "extract",
		BaseErr:        ErrEmptyResume,
	}
}

func NewParseError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "extract",
		BaseErr:        ErrParseFailed,
		Detail:         detail,
	}
}
