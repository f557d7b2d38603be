package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-parser-go/internal/types"
)

// knownSkills 常见技术词表，命中后用这里的规范写法
var knownSkills = []string{
	"Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Ruby", "Go", "Rust", "Swift", "Kotlin", "Scala", "PHP", "Perl",
	"React", "Angular", "Vue", "Node.js", "Express", "Django", "Flask", "Spring", "FastAPI", "Next.js", "Nuxt.js",
	"HTML", "CSS", "SASS", "LESS", "Tailwind", "Bootstrap", "Material-UI", "Ant Design",
	"SQL", "MySQL", "PostgreSQL", "MongoDB", "Redis", "Cassandra", "DynamoDB", "Oracle", "SQLite",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Jenkins", "Git", "GitHub", "GitLab", "Bitbucket",
	"REST", "GraphQL", "gRPC", "WebSocket", "OAuth", "JWT", "SAML",
	"TensorFlow", "PyTorch", "Keras", "Scikit-learn", "Pandas", "NumPy", "Matplotlib",
	"Agile", "Scrum", "Kanban", "JIRA", "Confluence", "Slack", "Trello",
	"Linux", "Unix", "Windows", "macOS", "Bash", "PowerShell", "Shell",
	"Terraform", "Ansible", "CloudFormation", "CI/CD", "DevOps", "Microservices",
	"Machine Learning", "Deep Learning", "AI", "NLP", "Computer Vision", "Data Science",
}

// 长得像段落标题的词不当技能
var sectionLikeTokens = map[string]bool{
	"technical proficiencies": true,
	"technical proficiency":   true,
	"technical skills":        true,
	"skills":                  true,
	"core competencies":       true,
	"competencies":            true,
	"expertise":               true,
	"technologies":            true,
	"tools":                   true,
	"tools & technologies":    true,
	"key responsibilities":    true,
	"key technologies":        true,
}

var skillStopTokens = map[string]bool{
	"and": true, "or": true, "with": true, "from": true, "the": true,
	"a": true, "an": true, "to": true, "in": true, "of": true, "for": true,
}

var (
	leadingBulletRe  = regexp.MustCompile(`^[•\-*‣◦▪●]+\s*`)
	multiSpaceRe     = regexp.MustCompile(`\s{2,}`)
	candidateSplitRe = regexp.MustCompile(`[,;]`)
	labelValueSplit  = regexp.MustCompile(`[|/]`)
	hasLetterRe      = regexp.MustCompile(`[A-Za-z]`)
	pureNumberRe     = regexp.MustCompile(`^\d+(\.\d+)?$`)
	acronymRe        = regexp.MustCompile(`^[A-Z&/]{2,8}$`)
)

var knownSkillRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(knownSkills))
	for i, known := range knownSkills {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(known) + `\b`)
	}
	return res
}()

// cleanSkillToken 剥掉项目符号和两端的分隔符噪音
func cleanSkillToken(token string) string {
	t := strings.TrimSpace(token)
	t = leadingBulletRe.ReplaceAllString(t, "")
	t = strings.Trim(t, " \t\r\n,;|•-–—")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(t, " "))
}

// splitSkillCandidates 把技能文本拆成候选词
// 换行和项目符号先折叠成逗号，冒号标签展开成左右两部分
func splitSkillCandidates(text string) []string {
	if text == "" {
		return nil
	}

	s := strings.ReplaceAll(text, "\n", ",")
	s = strings.ReplaceAll(s, "•", ",")

	out := make([]string, 0, 16)
	for _, item := range candidateSplitRe.Split(s, -1) {
		item = cleanSkillToken(item)
		if item == "" {
			continue
		}

		// "ERP Systems: SAP HANA" 拆成 ["ERP Systems", "SAP HANA"]
		if strings.Contains(item, ":") && utf8.RuneCountInString(item) <= 80 {
			parts := strings.SplitN(item, ":", 2)
			left := cleanSkillToken(parts[0])
			right := cleanSkillToken(parts[1])
			if left != "" {
				out = append(out, left)
			}
			if right != "" {
				for _, p := range labelValueSplit.Split(right, -1) {
					if p = cleanSkillToken(p); p != "" {
						out = append(out, p)
					}
				}
			}
			continue
		}

		if strings.Contains(item, "|") {
			for _, p := range strings.Split(item, "|") {
				if p = cleanSkillToken(p); p != "" {
					out = append(out, p)
				}
			}
			continue
		}

		out = append(out, item)
	}
	return out
}

// ExtractSkillsFromText 从自由文本中识别技能词
// 已知词表精确或词边界命中优先，未知词走缩写和Title Case启发
func ExtractSkillsFromText(text string) []string {
	if text == "" {
		return nil
	}

	skills := make([]string, 0, 16)
	for _, cand := range splitSkillCandidates(text) {
		cleaned := cleanSkillToken(cand)
		if cleaned == "" {
			continue
		}
		n := utf8.RuneCountInString(cleaned)
		if n < 2 || n > 60 {
			continue
		}

		low := strings.ToLower(cleaned)
		if sectionLikeTokens[low] || skillStopTokens[low] {
			continue
		}
		if !hasLetterRe.MatchString(cleaned) || pureNumberRe.MatchString(cleaned) {
			continue
		}

		if matched := matchKnownSkill(cleaned, low); matched != "" {
			skills = append(skills, matched)
			continue
		}

		// 未知词启发: 短缩写 (ERP, S&OP) 或不太长的Title Case短语
		if acronymRe.MatchString(cleaned) {
			skills = append(skills, cleaned)
			continue
		}
		first, _ := utf8.DecodeRuneInString(cleaned)
		if unicode.IsUpper(first) && n >= 3 && n <= 45 {
			if len(strings.Fields(cleaned)) <= 6 && !strings.HasSuffix(cleaned, ".") {
				skills = append(skills, cleaned)
			}
		}
	}

	return dedupeCaseInsensitive(skills)
}

func matchKnownSkill(cleaned, low string) string {
	for i, known := range knownSkills {
		if strings.ToLower(known) == low {
			return known
		}
		if knownSkillRes[i].MatchString(cleaned) {
			return known
		}
	}
	return ""
}

func dedupeCaseInsensitive(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		k := strings.ToLower(s)
		if !seen[k] {
			seen[k] = true
			out = append(out, s)
		}
	}
	return out
}

// 经历里技术清单行的引子
var techLinePrefixes = []string{"key technologies", "technologies used", "tech stack"}

// ConsolidateSkills 汇总技能段、经历段技术行和经历描述里的技能
func ConsolidateSkills(sections *ResumeSections, experience []types.WorkExperience) []types.Skill {
	skills := make([]string, 0, 32)

	if sections.Has("skills") {
		skills = append(skills, ExtractSkillsFromText(sections.Get("skills"))...)
	}

	// 名字里带技能意味的段落一并扫一遍
	for _, name := range sections.Names() {
		if containsAny(strings.ToLower(name), []string{"skill", "technical", "technology", "tools", "expertise"}) {
			skills = append(skills, ExtractSkillsFromText(sections.Get(name))...)
		}
	}

	// "Key Technologies: ..." 形态的行常出现在经历块内
	expSection := sections.Get("experience")
	for _, line := range strings.Split(expSection, "\n") {
		low := strings.TrimSpace(strings.ToLower(line))
		if hasAnyPrefix(low, techLinePrefixes) {
			tech := line
			if idx := strings.Index(line, ":"); idx >= 0 {
				tech = line[idx+1:]
			}
			skills = append(skills, ExtractSkillsFromText(tech)...)
		}
	}

	// 项目符号密集的简历往往把技能写在经历描述里
	for _, e := range experience {
		if len(e.Description) > 0 {
			skills = append(skills, ExtractSkillsFromText(strings.Join(e.Description, "\n"))...)
		}
	}

	seen := make(map[string]bool, len(skills))
	out := make([]types.Skill, 0, len(skills))
	for _, s := range skills {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, types.Skill{SkillName: s})
	}
	return out
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
