package parser

import (
	"regexp"
	"strings"
)

// sectionBody 匹配章节标题之后的正文，直到空行、"word:" 行、"word section" 行或文本结尾
const sectionBody = `(?::|section|\n)([\s\S]*?)(?:\n\s*\n|\n\w+:|\n\w+\s+section|$)`

var (
	skillsSectionRe     = regexp.MustCompile(`(?i)skills` + sectionBody)
	experienceSectionRe = regexp.MustCompile(`(?i)(?:experience|work experience|employment|work history)` + sectionBody)
	educationSectionRe  = regexp.MustCompile(`(?i)(?:education|educational background|academic)` + sectionBody)
	summarySectionRe    = regexp.MustCompile(`(?i)(?:summary|profile|objective|about|professional summary)` + sectionBody)
)

// locateSection 返回第一个匹配章节的正文；正文为空时视为未找到
func locateSection(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// nonBlankLines 按行切分并丢弃空白行，保留行内原始内容
func nonBlankLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// keywordPattern 把关键词表编译为不区分大小写的整词匹配
func keywordPattern(words ...[]string) *regexp.Regexp {
	var quoted []string
	for _, list := range words {
		for _, w := range list {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
