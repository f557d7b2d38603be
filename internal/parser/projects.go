package parser

import (
	"strings"

	"resume-parser-go/internal/types"
)

// 项目块里技术清单行的引子
var projectTechPrefixes = []string{"technologies used", "tech stack", "technologies", "built with"}

// ParseProjects 从项目段落解析项目列表
// 块按空行分隔，首行是项目名，项目符号行进描述
func ParseProjects(text string) []types.Project {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	out := make([]types.Project, 0, 2)
	for _, block := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(block)
		if len(trimmed) < 10 {
			continue
		}

		lines := nonEmptyTrimmedLines(block)
		if len(lines) == 0 {
			continue
		}

		name := strings.TrimSpace(dateRe.ReplaceAllString(lines[0], ""))
		name = strings.TrimSpace(trailingDashRe.ReplaceAllString(name, ""))
		if name == "" {
			continue
		}

		var description []string
		var technologies []string
		for _, ln := range lines[1:] {
			low := strings.ToLower(ln)
			if hasAnyPrefix(low, projectTechPrefixes) {
				tech := ln
				if idx := strings.Index(ln, ":"); idx >= 0 {
					tech = ln[idx+1:]
				}
				technologies = append(technologies, ExtractSkillsFromText(tech)...)
				continue
			}
			if hasBulletPrefix(ln) {
				description = append(description, ln)
			}
		}

		// 没有显式技术行时从块内文本里认已知技术词
		if len(technologies) == 0 {
			for i, known := range knownSkills {
				if knownSkillRes[i].MatchString(block) {
					technologies = append(technologies, known)
				}
			}
		}

		out = append(out, types.Project{
			Name:         name,
			Description:  description,
			Technologies: dedupeCaseInsensitive(technologies),
		})
	}
	return out
}
