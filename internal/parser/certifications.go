package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

var certYearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ParseCertifications 从证书段落解析证书列表
// 常见写法: "AWS Certified Solutions Architect - Amazon, 2022"
func ParseCertifications(text string) []types.Certification {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	out := make([]types.Certification, 0, 2)
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(leadingBulletRe.ReplaceAllString(strings.TrimSpace(ln), ""))
		if len(ln) < 3 {
			continue
		}

		year := certYearRe.FindString(ln)

		rest := strings.TrimSpace(certYearRe.ReplaceAllString(ln, ""))
		rest = strings.Trim(rest, " ,-–—()")

		name := rest
		issuer := ""
		if strings.Contains(rest, " - ") {
			parts := strings.SplitN(rest, " - ", 2)
			name = strings.TrimSpace(parts[0])
			issuer = strings.Trim(strings.TrimSpace(parts[1]), " ,-")
		} else if strings.Contains(rest, ",") {
			parts := strings.SplitN(rest, ",", 2)
			name = strings.TrimSpace(parts[0])
			issuer = strings.Trim(strings.TrimSpace(parts[1]), " ,-")
		}

		if name == "" {
			continue
		}
		out = append(out, types.Certification{
			Name:   name,
			Issuer: issuer,
			Year:   year,
		})
	}
	return out
}
