package parser

import (
	"errors"
	"strings"

	"resume-flow-go/internal/types"
)

// ErrEmptyInput 输入文本为空或只包含空白字符
var ErrEmptyInput = errors.New("resume content is empty")

// ExtractResume 对简历纯文本执行各字段的启发式匹配并组装 ResumeRecord
// 除空输入外不会返回错误，未命中的字段退化为空值或占位值
func ExtractResume(text string) (*types.ResumeRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	original := strings.ReplaceAll(text, "\r\n", "\n")
	lowered := strings.ToLower(original)

	return &types.ResumeRecord{
		Name:       extractName(original),
		Email:      extractEmail(lowered),
		Phone:      extractPhone(lowered),
		Location:   extractLocation(lowered),
		Skills:     extractSkills(lowered),
		Experience: extractExperience(original),
		Education:  extractEducation(original),
		Summary:    extractSummary(original),
	}, nil
}

// HeuristicExtractor 将 ExtractResume 包装为可注入的组件
type HeuristicExtractor struct{}

// NewHeuristicExtractor 创建启发式简历提取器
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Extract 实现 processor.ResumeExtractor 接口
func (HeuristicExtractor) Extract(text string) (*types.ResumeRecord, error) {
	return ExtractResume(text)
}
