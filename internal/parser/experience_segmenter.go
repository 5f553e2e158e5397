package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resume-flow-go/internal/types"
)

const (
	monthNames = `(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)`
	monthYear  = `\b` + monthNames + `[\s.,-]+\d{4}\b`

	// 角色关键词行的最大长度，超过视为描述而不是条目标题
	maxRoleLineLength = 100
)

var (
	monthYearRe = regexp.MustCompile(`(?i)` + monthYear)
	// 日期区间：起始年月，可选的短连接（分隔符加至多一个连接词，如 to/through）+ 结束年月或 present/current
	experienceDateSpanRe = regexp.MustCompile(`(?i)` + monthYear +
		`(?:[^\w\n]{0,5}(?:[a-z]+[^\w\n]{1,5})?(?:\b(?:present|current)\b|` + monthYear + `))?`)
	// 删除日期后留下的空括号，例如 "( - )"
	emptyBracketRe = regexp.MustCompile(`\(\s*[-–—,/]*\s*\)|\[\s*[-–—,/]*\s*\]`)
	roleKeywordRe = keywordPattern(roleKeywords)

	// 标题与公司之间的分隔符，按优先级排列
	titleCompanySeparators = []string{" at ", " - ", ", ", " | "}
)

// openExperience 正在累积描述的经历条目；nil 表示当前没有打开的条目
type openExperience struct {
	entry   types.ExperienceEntry
	pending []string
}

// close 把累积的描述写入条目并返回
func (o *openExperience) close() types.ExperienceEntry {
	e := o.entry
	e.Description = strings.TrimSpace(strings.Join(o.pending, " "))
	return e
}

// extractExperience 定位工作经历章节并切分为条目
func extractExperience(content string) []types.ExperienceEntry {
	section, ok := locateSection(experienceSectionRe, content)
	if !ok {
		return []types.ExperienceEntry{}
	}
	return segmentExperience(nonBlankLines(section))
}

// segmentExperience 对章节各行做一次折叠：遇到条目起始行时关闭上一条目并打开新条目，
// 其余行追加到当前条目的描述，结尾关闭最后一个条目
func segmentExperience(lines []string) []types.ExperienceEntry {
	out := []types.ExperienceEntry{}
	var current *openExperience
	for _, line := range lines {
		current, out = stepExperience(current, out, line)
	}
	if current != nil {
		out = append(out, current.close())
	}
	return out
}

func stepExperience(current *openExperience, out []types.ExperienceEntry, line string) (*openExperience, []types.ExperienceEntry) {
	if isExperienceStart(line) {
		if current != nil {
			out = append(out, current.close())
		}
		return &openExperience{entry: parseExperienceHeader(line)}, out
	}
	if current != nil {
		current.pending = append(current.pending, strings.TrimSpace(line))
	}
	return current, out
}

// isExperienceStart 判断一行是否为经历条目起始行
func isExperienceStart(line string) bool {
	if experienceDateSpanRe.MatchString(line) {
		return true
	}
	return utf8.RuneCountInString(line) < maxRoleLineLength && roleKeywordRe.MatchString(line)
}

// parseExperienceHeader 从条目起始行中拆出日期、职位和公司
func parseExperienceHeader(line string) types.ExperienceEntry {
	var entry types.ExperienceEntry
	remainder := line

	if loc := experienceDateSpanRe.FindStringIndex(line); loc != nil {
		span := line[loc[0]:loc[1]]
		entry.StartDate, entry.EndDate = spanDates(span, monthYearRe)
		remainder = line[:loc[0]] + " " + line[loc[1]:]
	}

	entry.Title, entry.Company = splitTitleCompany(cleanHeader(remainder))
	return entry
}

// spanDates 从日期区间中取出起止日期，present/current 优先作为结束日期
func spanDates(span string, dateRe *regexp.Regexp) (start, end string) {
	lower := strings.ToLower(span)
	if strings.Contains(lower, "present") || strings.Contains(lower, "current") {
		end = types.PresentLabel
	}
	dates := dateRe.FindAllString(span, -1)
	if len(dates) >= 1 {
		start = dates[0]
	}
	if len(dates) >= 2 && end == "" {
		end = dates[1]
	}
	return start, end
}

// headerSeparators 条目行两端可以安全去掉的分隔符
const headerSeparators = "-–—|,/ \t"

// cleanHeader 去掉删除日期后残留在两端的分隔符；括号只在配对缺失时才去掉
func cleanHeader(s string) string {
	s = strings.Trim(emptyBracketRe.ReplaceAllString(s, " "), headerSeparators)
	for {
		trimmed := strings.Trim(trimUnpairedBracket(s, '(', ')'), headerSeparators)
		trimmed = strings.Trim(trimUnpairedBracket(trimmed, '[', ']'), headerSeparators)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// trimUnpairedBracket 去掉两端没有配对的括号，"Engineer (Contract)" 保持不变
func trimUnpairedBracket(s string, open, closing byte) string {
	if s == "" {
		return s
	}
	opens := strings.Count(s, string(open))
	closes := strings.Count(s, string(closing))
	switch {
	case s[len(s)-1] == open:
		return s[:len(s)-1]
	case s[0] == closing:
		return s[1:]
	case s[len(s)-1] == closing && closes > opens:
		return s[:len(s)-1]
	case s[0] == open && opens > closes:
		return s[1:]
	}
	return s
}

func splitTitleCompany(s string) (title, company string) {
	for _, sep := range titleCompanySeparators {
		if !strings.Contains(s, sep) {
			continue
		}
		parts := strings.Split(s, sep)
		title = strings.TrimSpace(parts[0])
		company = strings.TrimSpace(strings.Join(parts[1:], sep))
		break
	}
	if title == "" {
		title = s
	}
	return title, company
}
