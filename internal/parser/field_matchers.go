package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// UnknownName 无法识别姓名时的占位值
	UnknownName = "Unknown"
	// DefaultSummary 无法提取摘要时的通用描述
	DefaultSummary = "Experienced professional with skills in relevant technologies and methodologies."

	maxNameLength     = 40
	minFallbackLength = 20
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`(?:\+\d{1,2}\s?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)

	// 依次尝试：location 标签行、address 标签行、"City, ST" 形式
	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)location:\s*([^,\n]+(?:,\s*[^,\n]+)*)`),
		regexp.MustCompile(`(?i)address:\s*([^,\n]+(?:,\s*[^,\n]+)*)`),
		regexp.MustCompile(`(?i)\b([a-z][a-z \t]*,[ \t]*[a-z]{2}(?:,[ \t]*\d{5})?)\b`),
	}
)

// extractName 取第一条非空行作为姓名
func extractName(content string) string {
	lines := nonBlankLines(content)
	if len(lines) == 0 {
		return UnknownName
	}
	candidate := strings.TrimSpace(lines[0])
	if utf8.RuneCountInString(candidate) < maxNameLength &&
		!strings.Contains(candidate, "@") &&
		!strings.Contains(strings.ToLower(candidate), "resume") {
		return candidate
	}
	return UnknownName
}

func extractEmail(content string) string {
	return emailRe.FindString(content)
}

func extractPhone(content string) string {
	return phoneRe.FindString(content)
}

func extractLocation(content string) string {
	for _, re := range locationPatterns {
		m := re.FindStringSubmatch(content)
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractSkills 先在技能章节内匹配词表，没有命中时再扫描全文
func extractSkills(content string) []string {
	var found []string
	if section, ok := locateSection(skillsSectionRe, content); ok {
		found = matchVocabulary(strings.ToLower(section))
	}
	if len(found) == 0 {
		found = matchVocabulary(strings.ToLower(content))
	}
	if len(found) > maxSkills {
		found = found[:maxSkills]
	}

	skills := make([]string, 0, len(found))
	for _, s := range found {
		skills = append(skills, titleCase(s))
	}
	return skills
}

// matchVocabulary 按词表顺序返回 text 中出现的技能
func matchVocabulary(text string) []string {
	var out []string
	for _, skill := range skillVocabulary {
		if strings.Contains(text, skill) {
			out = append(out, skill)
		}
	}
	return out
}

// titleCase 将每个以空格分隔的单词首字母大写，其余字符保持不变
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// extractSummary 优先使用摘要章节，其次使用姓名之后的前三行
func extractSummary(content string) string {
	if section, ok := locateSection(summarySectionRe, content); ok {
		if s := strings.TrimSpace(section); s != "" {
			return s
		}
	}

	lines := nonBlankLines(content)
	if len(lines) > 1 {
		end := len(lines)
		if end > 4 {
			end = 4
		}
		parts := make([]string, 0, end-1)
		for _, l := range lines[1:end] {
			parts = append(parts, strings.TrimSpace(l))
		}
		if joined := strings.Join(parts, " "); len(joined) > minFallbackLength {
			return joined
		}
	}
	return DefaultSummary
}
