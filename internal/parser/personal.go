package parser

import (
	"regexp"
	"strings"
	"unicode"

	"resume-parser-go/internal/types"
)

// 联系信息通常集中在简历头部，位置启发只扫描前几行
const personalHeaderLines = 8

var (
	emailRe = regexp.MustCompile(`\b[\w.+-]+@[\w.-]+\.[a-zA-Z]{2,}\b`)

	// 按可能性排序的电话格式，先命中先用
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[\s.-]?\d{3,4}[\s.-]?\d{3,4}[\s.-]?\d{4}`), // +91 1234567890
		regexp.MustCompile(`\(\d{3}\)[\s.-]?\d{3}[\s.-]?\d{4}`),                 // (123) 456-7890
		regexp.MustCompile(`\d{3}[\s.-]?\d{3}[\s.-]?\d{4}`),                     // 123-456-7890
		regexp.MustCompile(`\+\d{10,15}`),                                       // +911234567890
	}

	// "City, ST" 或 "City, State, Country" 形态的完整段匹配
	locationSegmentRe = regexp.MustCompile(
		`^(?P<city>[A-Za-z][A-Za-z.' \-]{1,40})\s*,\s*(?P<region>[A-Za-z]{2,3}|[A-Za-z][A-Za-z.' \-]{1,30})(?:\s*,\s*(?P<country>[A-Za-z][A-Za-z.' \-]{1,30}))?$`)

	contactSegmentSplitRe = regexp.MustCompile(`[|•·]`)
)

// 位置行里出现这些词时基本是机构名而不是居住地
var locationSkipWords = []string{"university", "college", "institute", "school", "company", "services", "consulting"}

// ExtractPersonal 从全文提取姓名、邮箱、电话和所在地
// 找不到的字段留空串，不做猜测
func ExtractPersonal(text string) types.PersonalDetails {
	details := types.PersonalDetails{}
	if strings.TrimSpace(text) == "" {
		return details
	}

	lines := make([]string, 0, 32)
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, ln)
		}
	}

	// 姓名取第一行，要求1到4个纯字母词
	if len(lines) > 0 {
		parts := strings.Fields(strings.TrimSpace(lines[0]))
		if len(parts) >= 1 && len(parts) <= 4 && allNameParts(parts) {
			details.Name = strings.Join(parts, " ")
		}
	}

	details.Email = emailRe.FindString(text)

	for _, re := range phoneRes {
		if m := re.FindString(text); m != "" {
			details.PhoneNumber = strings.TrimSpace(m)
			break
		}
	}

	// 城市和国家合并为单个展示用位置字段
	if city, country := extractLocation(lines); city != "" {
		details.Location = city
		if country != "" {
			details.Location = city + ", " + country
		}
	}
	return details
}

// allNameParts 每个词去掉连字符、撇号和点后必须全为字母
func allNameParts(parts []string) bool {
	for _, part := range parts {
		cleaned := strings.NewReplacer("-", "", "'", "", ".", "").Replace(part)
		if cleaned == "" {
			return false
		}
		for _, r := range cleaned {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

// extractLocation 只在头部行里找 "City, Country" 形态的段
// 避免把经历段落里的城市当成居住地
func extractLocation(lines []string) (city, country string) {
	limit := personalHeaderLines
	if len(lines) < limit {
		limit = len(lines)
	}

	cityIdx := locationSegmentRe.SubexpIndex("city")
	regionIdx := locationSegmentRe.SubexpIndex("region")
	countryIdx := locationSegmentRe.SubexpIndex("country")

	for _, ln := range lines[:limit] {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		low := strings.ToLower(ln)
		if containsAny(low, locationSkipWords) {
			continue
		}

		// 联系行常把地址、邮箱、电话用竖线排在一行，允许较长
		// 但纯段落文本不扫
		if len(ln) > 220 && !strings.ContainsAny(ln, "|•·") {
			continue
		}

		segments := make([]string, 0, 4)
		for _, seg := range contactSegmentSplitRe.Split(ln, -1) {
			if s := strings.TrimSpace(seg); s != "" {
				segments = append(segments, s)
			}
		}
		if len(segments) > 3 {
			segments = segments[:3]
		}

		for _, seg := range segments {
			if strings.Contains(seg, "@") || strings.Contains(strings.ToLower(seg), "http") {
				continue
			}
			if strings.ContainsAny(seg, "0123456789") {
				continue
			}

			m := locationSegmentRe.FindStringSubmatch(seg)
			if m == nil {
				continue
			}
			city = strings.TrimSpace(m[cityIdx])
			region := strings.TrimSpace(m[regionIdx])
			ctry := strings.TrimSpace(m[countryIdx])

			// 没有国家时用州/省顶位，展示端只认 city + country 两个字段
			if ctry != "" {
				country = ctry
			} else {
				country = region
			}
			return city, country
		}
	}
	return "", ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
