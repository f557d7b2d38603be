package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

// 职位关键词，首行命中才认为块描述一段工作经历
var roleKeywords = []string{
	"developer", "engineer", "manager", "analyst", "intern", "consultant",
	"designer", "architect", "lead", "specialist", "coordinator", "director",
	"associate", "assistant", "administrator", "officer", "executive",
}

// 宽松的日期格式: "Jan 2020"、"January 2020"、"03/2020"、"2020"
var dateRe = regexp.MustCompile(`(?i)((?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{4}|\d{1,2}/\d{4}|\d{4})`)

var (
	presentRe       = regexp.MustCompile(`(?i)\b(present|current)\b`)
	trailingDashRe  = regexp.MustCompile(`\s*[-–—]\s*$`)
	dashSeparatorRe = regexp.MustCompile(`\s+[-–—]\s+`)
	atSeparatorRe   = regexp.MustCompile(`(?i)\s+at\s+`)
	bulletPrefixes  = []string{"•", "-", "*", "◦", "▪", "→"}
)

// 雇主字段里混入技术栈时用来剔除的词表
var employerTechTerms = []string{
	"FastAPI", "Azure", "OpenAI", "Docker", "CI/CD", "Jenkins", "Kubernetes",
	"React", "Angular", "Vue", "Node", "Python", "Java", "JavaScript",
	"MongoDB", "PostgreSQL", "MySQL", "Redis", "AWS", "GCP", "Spring",
	"Django", "Flask", "Express", "Git", "GitHub", "HTML", "CSS", "API",
	"REST", "DBMS", "System Design", "OOPs", "Database design",
}

// ParseExperience 从经历段落解析工作经历列表
// 块按空行分隔，首行形如 "Senior Engineer - Acme Corp Jan 2020 - Present"
func ParseExperience(text string) []types.WorkExperience {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	out := make([]types.WorkExperience, 0, 4)
	for _, block := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(block)
		if len(trimmed) < 15 {
			continue
		}

		lines := nonEmptyTrimmedLines(block)
		if len(lines) == 0 {
			continue
		}

		firstLine := lines[0]
		if !containsAny(strings.ToLower(firstLine), roleKeywords) {
			continue
		}

		datesInLine := dateRe.FindAllString(firstLine, -1)

		// 去掉日期和在职标记后剩下的就是职位和雇主
		lineWithoutDates := strings.TrimSpace(dateRe.ReplaceAllString(firstLine, ""))
		lineWithoutDates = strings.TrimSpace(presentRe.ReplaceAllString(lineWithoutDates, ""))
		lineWithoutDates = strings.TrimSpace(trailingDashRe.ReplaceAllString(lineWithoutDates, ""))

		jobTitle, employer := splitTitleEmployer(lineWithoutDates)
		employer = cleanEmployer(employer)

		var startDate, endDate string
		if len(datesInLine) >= 1 {
			startDate = datesInLine[0]
		}
		if len(datesInLine) >= 2 {
			endDate = datesInLine[1]
		}

		isCurrent := presentRe.MatchString(firstLine)
		if isCurrent {
			endDate = ""
		}

		var description []string
		for _, ln := range lines[1:] {
			if hasBulletPrefix(ln) {
				description = append(description, ln)
			}
		}

		out = append(out, types.WorkExperience{
			JobTitle:    jobTitle,
			Company:     employer,
			StartDate:   startDate,
			EndDate:     endDate,
			IsCurrent:   isCurrent,
			Description: description,
		})
	}
	return out
}

// splitTitleEmployer 按 " - "、" at "、"|" 的优先级切分职位和雇主
func splitTitleEmployer(line string) (jobTitle, employer string) {
	switch {
	case strings.Contains(line, " - ") || strings.Contains(line, " – ") || strings.Contains(line, " — "):
		parts := dashSeparatorRe.Split(line, 2)
		jobTitle = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			employer = strings.TrimSpace(parts[1])
		}
	case strings.Contains(strings.ToLower(line), " at "):
		parts := atSeparatorRe.Split(line, 2)
		jobTitle = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			employer = strings.TrimSpace(parts[1])
		}
	case strings.Contains(line, "|"):
		parts := strings.SplitN(line, "|", 2)
		jobTitle = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			employer = strings.TrimSpace(parts[1])
		}
	default:
		jobTitle = strings.TrimSpace(line)
	}
	return jobTitle, employer
}

// cleanEmployer 雇主后面跟着逗号分隔的技术栈时只留下公司名
func cleanEmployer(employer string) string {
	if employer == "" || strings.Count(employer, ",") < 2 {
		return employer
	}

	for _, part := range strings.Split(employer, ",") {
		part = strings.TrimSpace(part)
		if len(part) <= 1 {
			continue
		}
		isTech := false
		for _, tech := range employerTechTerms {
			if strings.EqualFold(tech, part) {
				isTech = true
				break
			}
		}
		if !isTech {
			return part
		}
	}
	// 整串都是技术词，宁缺毋滥
	return ""
}

func nonEmptyTrimmedLines(block string) []string {
	lines := make([]string, 0, 8)
	for _, ln := range strings.Split(block, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

func hasBulletPrefix(line string) bool {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
