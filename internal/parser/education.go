package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

var universityKeywords = []string{"university", "college", "institute", "school", "academy", "polytechnic"}

var degreeKeywords = []string{
	"bachelor", "master", "phd", "doctorate", "b.s", "m.s", "b.a", "m.a",
	"b.tech", "m.tech", "b.e", "m.e", "associate", "diploma", "certificate",
}

var (
	trailingSepRe = regexp.MustCompile(`[-–—,]\s*$`)
	eduDescKeywords = []string{"gpa", "cgpa", "coursework", "honors", "activities", "relevant"}
	eduTechTerms    = []string{"Python", "Java", "React", "Node", "Angular", "Docker"}
)

// ParseEducation 从教育段落解析教育经历列表
// 块按空行分隔，依靠院校或学位关键词识别
func ParseEducation(text string) []types.EducationEntry {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	out := make([]types.EducationEntry, 0, 2)
	for _, block := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(block)
		if len(trimmed) < 10 {
			continue
		}

		lines := nonEmptyTrimmedLines(block)
		if len(lines) == 0 {
			continue
		}

		blockLower := strings.ToLower(block)
		if !containsAny(blockLower, universityKeywords) && !containsAny(blockLower, degreeKeywords) {
			continue
		}

		// 首行通常是 "院校名, 城市, 国家"，只取院校名
		schoolNameRaw := lines[0]
		schoolName := strings.TrimSpace(strings.SplitN(schoolNameRaw, ",", 2)[0])

		// 学位取第一个含学位关键词的行，剥掉日期和尾部分隔符
		degree := ""
		for _, ln := range lines {
			if containsAny(strings.ToLower(ln), degreeKeywords) {
				degree = strings.TrimSpace(dateRe.ReplaceAllString(ln, ""))
				degree = strings.TrimSpace(trailingSepRe.ReplaceAllString(degree, ""))
				break
			}
		}

		dates := dateRe.FindAllString(block, -1)
		var startDate, endDate string
		if len(dates) >= 1 {
			startDate = dates[0]
		}
		if len(dates) >= 2 {
			endDate = dates[1]
		}
		if presentRe.MatchString(block) {
			endDate = ""
		}

		// 描述只收GPA、课程、荣誉类内容，跳过技术清单
		var description []string
		for _, ln := range lines[1:] {
			if ln == schoolNameRaw || (degree != "" && strings.Contains(ln, degree)) {
				continue
			}
			if containsAny(strings.ToLower(ln), eduDescKeywords) {
				description = append(description, ln)
			} else if hasEduBulletPrefix(ln) && !containsAny(ln, eduTechTerms) {
				description = append(description, ln)
			}
		}

		out = append(out, types.EducationEntry{
			SchoolName:  schoolName,
			Degree:      degree,
			StartDate:   startDate,
			EndDate:     endDate,
			Description: description,
		})
	}
	return out
}

func hasEduBulletPrefix(line string) bool {
	for _, p := range []string{"•", "-", "*", "◦"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
