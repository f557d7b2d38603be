package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

var (
	linkedinRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[\w-]+`)
	githubRe   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[\w-]+`)
	websiteRe  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?[\w-]+\.(?:com|net|org|io|dev|me|co)(?:/[\w-]*)*`)
	twitterRe  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:twitter\.com|x\.com)/[\w-]+`)
)

// 个人网站匹配里要排除的邮箱域名
var emailDomains = []string{"gmail.com", "yahoo.com", "outlook.com", "hotmail.com"}

// ExtractSocialLinks 从全文提取LinkedIn、GitHub、作品集和Twitter链接
// 无协议的裸域名补上https前缀，按出现顺序去重
func ExtractSocialLinks(text string) []types.SocialLink {
	links := make([]types.SocialLink, 0, 4)

	for _, m := range linkedinRe.FindAllString(text, -1) {
		links = append(links, types.SocialLink{Label: "LinkedIn", URL: ensureHTTPS(m)})
	}

	for _, m := range githubRe.FindAllString(text, -1) {
		links = append(links, types.SocialLink{Label: "GitHub", URL: ensureHTTPS(m)})
	}

	for _, pos := range websiteRe.FindAllStringIndex(text, -1) {
		m := text[pos[0]:pos[1]]
		// 邮箱地址的域名部分不是作品集
		if pos[0] > 0 && text[pos[0]-1] == '@' {
			continue
		}
		low := strings.ToLower(m)
		if strings.Contains(low, "linkedin.com") || strings.Contains(low, "github.com") {
			continue
		}
		if containsAny(low, emailDomains) {
			continue
		}
		links = append(links, types.SocialLink{Label: "Portfolio", URL: ensureHTTPS(m)})
	}

	for _, m := range twitterRe.FindAllString(text, -1) {
		links = append(links, types.SocialLink{Label: "Twitter", URL: ensureHTTPS(m)})
	}

	seen := make(map[string]bool, len(links))
	out := make([]types.SocialLink, 0, len(links))
	for _, l := range links {
		k := strings.ToLower(l.URL)
		if !seen[k] {
			seen[k] = true
			out = append(out, l)
		}
	}
	return out
}

func ensureHTTPS(url string) string {
	if strings.HasPrefix(url, "http") {
		return url
	}
	return "https://" + url
}
