package jobs

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"resume-flow-go/internal/types"
)

const (
	// DefaultBestMatchThreshold "best" 过滤的默认分数线
	DefaultBestMatchThreshold = 80
	// 每个岗位最多列出的已匹配技能理由
	maxSkillReasons = 2
)

var (
	dateSeparatorRe = regexp.MustCompile(`[.,\-\s]+`)
	monthLayouts    = []string{"Jan 2006", "January 2006"}
)

// Matcher 按技能覆盖率为岗位目录打分
type Matcher struct {
	listings  []types.JobListing
	threshold int
	baseScore int
	now       func() time.Time
}

// MatcherOption Matcher 的配置选项
type MatcherOption func(*Matcher)

// WithBestMatchThreshold 设置 "best" 过滤的分数线
func WithBestMatchThreshold(threshold int) MatcherOption {
	return func(m *Matcher) {
		if threshold > 0 && threshold <= 100 {
			m.threshold = threshold
		}
	}
}

// WithBaseScore 设置匹配度下限
func WithBaseScore(score int) MatcherOption {
	return func(m *Matcher) {
		if score >= 0 && score <= 100 {
			m.baseScore = score
		}
	}
}

// WithListings 替换默认岗位目录
func WithListings(listings []types.JobListing) MatcherOption {
	return func(m *Matcher) {
		m.listings = listings
	}
}

// WithClock 注入当前时间，用于计算工作年限
func WithClock(now func() time.Time) MatcherOption {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMatcher 创建岗位匹配器，默认使用内置岗位目录
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		listings:  Catalog(),
		threshold: DefaultBestMatchThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold 返回 "best" 过滤的分数线
func (m *Matcher) Threshold() int {
	return m.threshold
}

// ParseFilter 解析过滤方式，空值视为 all
func ParseFilter(s string) (types.JobFilter, error) {
	switch types.JobFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", types.JobFilterAll:
		return types.JobFilterAll, nil
	case types.JobFilterBest:
		return types.JobFilterBest, nil
	default:
		return "", fmt.Errorf("unknown job filter %q", s)
	}
}

// Match 为每个岗位计算匹配度，按匹配度降序返回，分数相同保持目录顺序
func (m *Matcher) Match(record *types.ResumeRecord) []types.JobMatch {
	profile := newResumeProfile(record, m.now())

	matches := make([]types.JobMatch, 0, len(m.listings))
	for _, listing := range m.listings {
		matches = append(matches, m.score(listing, profile))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchPercentage > matches[j].MatchPercentage
	})
	return matches
}

// Filter 按过滤方式筛选匹配结果
func (m *Matcher) Filter(matches []types.JobMatch, filter types.JobFilter) []types.JobMatch {
	if filter != types.JobFilterBest {
		return matches
	}
	out := make([]types.JobMatch, 0, len(matches))
	for _, match := range matches {
		if match.MatchPercentage >= m.threshold {
			out = append(out, match)
		}
	}
	return out
}

func (m *Matcher) score(listing types.JobListing, profile *resumeProfile) types.JobMatch {
	match := types.JobMatch{
		JobListing:    listing,
		MatchedSkills: []string{},
		MissingSkills: []string{},
	}
	for _, skill := range listing.RequiredSkills {
		if profile.covers(skill) {
			match.MatchedSkills = append(match.MatchedSkills, skill)
		} else {
			match.MissingSkills = append(match.MissingSkills, skill)
		}
	}

	total := len(listing.RequiredSkills)
	percentage := 100
	if total > 0 {
		percentage = int(math.Round(float64(len(match.MatchedSkills)) * 100 / float64(total)))
	}
	if percentage < m.baseScore {
		percentage = m.baseScore
	}
	match.MatchPercentage = percentage
	match.MatchReasons = matchReasons(listing, match, profile)
	return match
}

func matchReasons(listing types.JobListing, match types.JobMatch, profile *resumeProfile) []string {
	total := len(listing.RequiredSkills)
	matched := len(match.MatchedSkills)

	var reasons []string
	if total > 0 && matched == total {
		reasons = append(reasons, fmt.Sprintf("You have all %d of the required skills for this position", total))
	} else {
		reasons = append(reasons, fmt.Sprintf("You have %d out of %d required skills", matched, total))
	}

	for i, skill := range match.MatchedSkills {
		if i >= maxSkillReasons {
			break
		}
		reasons = append(reasons, fmt.Sprintf("Your experience with %s is directly applicable", skill))
	}

	if listing.MinYears > 0 && profile.years >= 0 {
		switch {
		case profile.years > listing.MinYears:
			reasons = append(reasons, fmt.Sprintf("Your %d+ years of experience exceeds the %d+ years required", profile.years, listing.MinYears))
		case profile.years == listing.MinYears:
			reasons = append(reasons, fmt.Sprintf("Your %d years of experience meets the %d+ years required", profile.years, listing.MinYears))
		default:
			reasons = append(reasons, fmt.Sprintf("This role asks for %d+ years of experience; your resume shows about %d", listing.MinYears, profile.years))
		}
	}

	if len(match.MissingSkills) > 0 {
		reasons = append(reasons, "Consider highlighting experience with: "+strings.Join(match.MissingSkills, ", "))
	}
	return reasons
}

// resumeProfile 用于匹配的简历视图：规范化后的技能集合、可检索文本和总工作年限
type resumeProfile struct {
	skills map[string]bool
	corpus string
	years  int // -1 表示无法推算
}

func newResumeProfile(record *types.ResumeRecord, now time.Time) *resumeProfile {
	p := &resumeProfile{skills: map[string]bool{}, years: -1}
	if record == nil {
		return p
	}

	var parts []string
	for _, s := range record.Skills {
		p.skills[normalizeSkill(s)] = true
		parts = append(parts, s)
	}
	for _, e := range record.Experience {
		parts = append(parts, e.Title, e.Description)
	}
	parts = append(parts, record.Summary)
	p.corpus = " " + strings.ToLower(strings.Join(parts, " \n ")) + " "
	p.years = totalYears(record.Experience, now)
	return p
}

// covers 判断简历是否覆盖某项要求技能；"HTML/CSS" 这类写法任意一项命中即可
func (p *resumeProfile) covers(required string) bool {
	for _, alt := range strings.Split(required, "/") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		if p.skills[normalizeSkill(alt)] || containsPhrase(p.corpus, phraseForm(alt)) {
			return true
		}
	}
	// 整体也试一次，例如 "CI/CD"
	return p.skills[normalizeSkill(required)] || containsPhrase(p.corpus, phraseForm(required))
}

// normalizeSkill 小写并去掉 ".js" 后缀和非字母数字字符，"Node.js" 与 "Node" 等价
func normalizeSkill(s string) string {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".js")
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '#' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func phraseForm(s string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".js")
}

// containsPhrase 整词匹配，避免 "java" 命中 "javascript"
func containsPhrase(corpus, phrase string) bool {
	if len(phrase) < 2 {
		return false
	}
	for start := 0; ; {
		i := strings.Index(corpus[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		if !isWordByte(corpus[i-1]) && (end >= len(corpus) || !isWordByte(corpus[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// totalYears 累加各段经历的月数，结束日期为空或 Present 时按当前时间计算
func totalYears(entries []types.ExperienceEntry, now time.Time) int {
	months := 0
	known := false
	for _, e := range entries {
		start, ok := parseMonthYear(e.StartDate)
		if !ok {
			continue
		}
		end := now
		if e.EndDate != "" && e.EndDate != types.PresentLabel {
			if t, ok := parseMonthYear(e.EndDate); ok {
				end = t
			}
		}
		if end.Before(start) {
			continue
		}
		months += (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
		known = true
	}
	if !known {
		return -1
	}
	return months / 12
}

func parseMonthYear(s string) (time.Time, bool) {
	s = strings.TrimSpace(dateSeparatorRe.ReplaceAllString(s, " "))
	if s == "" {
		return time.Time{}, false
	}
	s = strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	if strings.HasPrefix(s, "Sept ") {
		s = "Sep " + s[len("Sept "):]
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
