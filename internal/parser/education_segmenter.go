package parser

import (
	"regexp"
	"strings"

	"resume-flow-go/internal/types"
)

const (
	// PlaceholderDegree 无法识别学位时的占位值
	PlaceholderDegree = "Degree"
	// PlaceholderInstitution 无法识别院校时的占位值
	PlaceholderInstitution = "Institution"
)

var (
	degreeRe      = keywordPattern(degreeKeywords, degreePhrases)
	institutionRe = keywordPattern(institutionKeywords)
	yearRe        = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	// 年份及紧挨在前面的月份，例如 "Sep 2011"、"2015"
	educationDateRe = regexp.MustCompile(`(?i)(?:\b` + monthNames + `[\s.,-]*)?\b(?:19|20)\d{2}\b`)
	presentRe       = regexp.MustCompile(`(?i)\b(?:present|current)\b`)
	// 学位、院校之间常见的分隔方式
	educationSegmentSep = regexp.MustCompile(`\s*(?:,|;|\||\s[-–—]\s|\sat\s)\s*`)
)

// openEducation 当前打开的教育条目；nil 表示没有打开的条目
type openEducation struct {
	entry types.EducationEntry
}

func extractEducation(content string) []types.EducationEntry {
	section, ok := locateSection(educationSectionRe, content)
	if !ok {
		return []types.EducationEntry{}
	}
	return segmentEducation(nonBlankLines(section))
}

// segmentEducation 与经历切分相同的折叠结构，但教育条目不累积描述：
// 每个起始行独立产出一个条目，非起始行被忽略
func segmentEducation(lines []string) []types.EducationEntry {
	out := []types.EducationEntry{}
	var current *openEducation
	for _, line := range lines {
		if !isEducationStart(line) {
			continue
		}
		if current != nil {
			out = append(out, current.entry)
		}
		current = &openEducation{entry: parseEducationLine(line)}
	}
	if current != nil {
		out = append(out, current.entry)
	}
	return out
}

func isEducationStart(line string) bool {
	return degreeRe.MatchString(line) || institutionRe.MatchString(line) || yearRe.MatchString(line)
}

func parseEducationLine(line string) types.EducationEntry {
	var entry types.EducationEntry
	entry.StartDate, entry.EndDate = educationYears(line)

	remainder := educationDateRe.ReplaceAllString(line, " ")
	remainder = presentRe.ReplaceAllString(remainder, " ")

	entry.Degree, entry.Institution = splitDegreeInstitution(cleanHeader(remainder))
	if entry.Degree == "" {
		entry.Degree = PlaceholderDegree
	}
	if entry.Institution == "" {
		entry.Institution = PlaceholderInstitution
	}
	return entry
}

// educationYears 行内前两个年份分别作为起止年份，不要求二者之间有区间分隔符
func educationYears(line string) (start, end string) {
	years := yearRe.FindAllString(line, 2)
	if len(years) >= 1 {
		start = years[0]
	}
	if len(years) >= 2 {
		end = years[1]
	}
	if presentRe.MatchString(line) {
		end = types.PresentLabel
	}
	return start, end
}

// splitDegreeInstitution 按分隔符切段，分别找出学位段和院校段
func splitDegreeInstitution(s string) (degree, institution string) {
	var segments []string
	for _, seg := range educationSegmentSep.Split(s, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}

	degreeIdx := -1
	for i, seg := range segments {
		if degreeRe.MatchString(seg) && !institutionRe.MatchString(seg) {
			degreeIdx = i
			break
		}
	}
	if degreeIdx < 0 {
		for i, seg := range segments {
			if degreeRe.MatchString(seg) {
				degreeIdx = i
				break
			}
		}
	}
	if degreeIdx >= 0 {
		degree = segments[degreeIdx]
	}

	for i, seg := range segments {
		if i != degreeIdx && institutionRe.MatchString(seg) {
			return degree, seg
		}
	}
	// 已识别学位时，其余第一段视为院校简称，例如 "MIT"
	if degreeIdx >= 0 {
		for i, seg := range segments {
			if i != degreeIdx {
				return degree, seg
			}
		}
	}
	return degree, ""
}
