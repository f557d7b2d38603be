package parser

import "strings"

// 标准段落名，按简历常见顺序
var sectionHeaders = []string{
	"experience", "education", "skills", "projects", "certifications",
	"summary", "objective", "profile", "about",
}

// sectionAliasOrder 与 sectionAliases 配对，保证部分匹配时遍历顺序稳定
var sectionAliasOrder = []string{
	"work experience",
	"employment history",
	"professional experience",
	"work history",
	"academic background",
	"educational background",
	"qualifications",
	"technical skills",
	"core competencies",
	"expertise",
	"technologies",
	"professional summary",
	"career summary",
	"career objective",
	"professional profile",
	"about me",
	"licenses & certifications",
	"certificates",
}

// sectionAliases 常见段落别名到标准名的映射
var sectionAliases = map[string]string{
	"work experience":           "experience",
	"employment history":        "experience",
	"professional experience":   "experience",
	"work history":              "experience",
	"academic background":       "education",
	"educational background":    "education",
	"qualifications":            "education",
	"technical skills":          "skills",
	"core competencies":         "skills",
	"expertise":                 "skills",
	"technologies":              "skills",
	"professional summary":      "summary",
	"career summary":            "summary",
	"career objective":          "objective",
	"professional profile":      "summary",
	"about me":                  "summary",
	"licenses & certifications": "certifications",
	"certificates":              "certifications",
}

var sectionHeaderSet = func() map[string]bool {
	m := make(map[string]bool, len(sectionHeaders))
	for _, h := range sectionHeaders {
		m[h] = true
	}
	return m
}()

// ResumeSections 按发现顺序保存切分出的段落文本
type ResumeSections struct {
	content map[string]string
	order   []string
}

// Get 返回指定段落的文本，不存在时为空串
func (s *ResumeSections) Get(name string) string {
	if s == nil {
		return ""
	}
	return s.content[name]
}

// Has 判断段落是否存在
func (s *ResumeSections) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.content[name]
	return ok
}

// Names 返回发现的段落名，保持文中出现顺序
func (s *ResumeSections) Names() []string {
	if s == nil {
		return nil
	}
	return s.order
}

func (s *ResumeSections) set(name, value string) {
	if _, ok := s.content[name]; !ok {
		s.order = append(s.order, name)
	}
	s.content[name] = value
}

func (s *ResumeSections) appendLine(name, line string) {
	s.content[name] += line + "\n"
}

// SplitSections 按标题行把简历文本切分为段落
// 标题识别按三步走: 标准名精确匹配、别名精确匹配、别名部分匹配
func SplitSections(text string) *ResumeSections {
	sections := &ResumeSections{content: make(map[string]string)}
	current := ""

	for _, line := range strings.Split(text, "\n") {
		low := strings.Trim(strings.ToLower(line), ": -•")

		isHeader := false
		switch {
		case sectionHeaderSet[low]:
			// 精确命中标准名时重置该段内容，简历里重复出现以后者为准
			current = low
			sections.set(current, "")
			isHeader = true

		case sectionAliases[low] != "":
			current = sectionAliases[low]
			if !sections.Has(current) {
				sections.set(current, "")
			}
			isHeader = true

		default:
			// 形如 "Work Experience:" 外带少量修饰的标题行
			for _, alias := range sectionAliasOrder {
				if strings.Contains(low, alias) && len(low) < len(alias)+10 {
					current = sectionAliases[alias]
					if !sections.Has(current) {
						sections.set(current, "")
					}
					isHeader = true
					break
				}
			}
		}

		if !isHeader && current != "" {
			sections.appendLine(current, line)
		}
	}

	return sections
}
