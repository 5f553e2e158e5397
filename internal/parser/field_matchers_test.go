package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"首行即姓名", "John Smith\njohn@x.com", "John Smith"},
		{"跳过空行并去掉首尾空白", "\n  \n  Jane Doe  \nEngineer", "Jane Doe"},
		{"39个字符仍接受", strings.Repeat("a", 39) + "\nrest", strings.Repeat("a", 39)},
		{"40个字符视为非姓名", strings.Repeat("a", 40) + "\nrest", UnknownName},
		{"包含邮箱", "john@x.com\nJohn Smith", UnknownName},
		{"包含resume", "Resume of John Smith\nJohn", UnknownName},
		{"大写RESUME同样视为标题", "RESUME of John\nJohn", UnknownName},
		{"只有空白", " \n\t", UnknownName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractName(tt.content))
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"Phone: (555) 123-4567", "(555) 123-4567"},
		{"Mobile +1 555.123.4567 (cell)", "+1 555.123.4567"},
		{"555-123-4567", "555-123-4567"},
		{"555 123 4567", "555 123 4567"},
		{"call 5551234567 today", "5551234567"},
		{"no phone here", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractPhone(tt.content), tt.content)
	}
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "location标签优先于address标签",
			content: "John\nAddress: 1 Main St, Springfield\nLocation: Austin, TX",
			want:    "Austin, TX",
		},
		{
			name:    "address标签优先于城市州缩写",
			content: "John\nDenver, CO\nAddress: 1 Main St, Springfield",
			want:    "1 Main St, Springfield",
		},
		{
			name:    "标签不区分大小写",
			content: "John\nLOCATION: Remote",
			want:    "Remote",
		},
		{
			name:    "城市州缩写",
			content: "Jane Doe\nSeattle, WA\njane@x.io",
			want:    "Seattle, WA",
		},
		{
			name:    "城市州缩写带邮编",
			content: "Jane Doe\nSeattle, WA, 98101",
			want:    "Seattle, WA, 98101",
		},
		{
			name:    "无位置信息",
			content: "Jane Doe\njane@x.io",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractLocation(tt.content))
		})
	}
}

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "summary标签章节",
			content: "Jane Roe\nSummary: Backend engineer who likes Go.\n\nSkills: Go",
			want:    "Backend engineer who likes Go.",
		},
		{
			name:    "professional summary标题行",
			content: "Jane Roe\nProfessional Summary\nBuilt payment systems for a decade.\n\nSkills: Go",
			want:    "Built payment systems for a decade.",
		},
		{
			name:    "无章节时取第2到4行",
			content: "Jane Roe\nStaff engineer in Berlin\nLoves distributed systems\nMentor and speaker\nFifth line ignored",
			want:    "Staff engineer in Berlin Loves distributed systems Mentor and speaker",
		},
		{
			name:    "拼接结果不超过20个字符时使用默认摘要",
			content: "Jane Roe\nGo dev",
			want:    DefaultSummary,
		},
		{
			name:    "只有姓名行",
			content: "Jane Roe",
			want:    DefaultSummary,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSummary(tt.content))
		})
	}
}
