package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// 常见的unicode项目符号，包含部分PDF使用的Wingdings符号 (U+F0B7)
var bulletChars = []string{"•", "‣", "◦", "▪", "●", "⁃", "∙", ""}

// separatorReplacer 统一各类竖线分隔符
var separatorReplacer = strings.NewReplacer(
	"│", "|", // box drawings light vertical
	"¦", "|", // broken bar
	"｜", "|", // fullwidth vertical line
)

// dashReplacer 统一连字符变体
var dashReplacer = strings.NewReplacer(
	"–", "-",
	"—", "-",
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"−", "-", // minus sign
)

var (
	hyphenLineBreakRe = regexp.MustCompile(`([\p{L}\p{N}_])-\n([\p{L}\p{N}_])`)
	excessBlankRe     = regexp.MustCompile(`\n{3,}`)
	repeatSpaceRe     = regexp.MustCompile(`[ \t]{2,}`)
)

// NormalizeText 归一化提取出的简历文本 (PDF/DOCX/TXT)
// 目标是削减排版噪音而不丢失语义信息
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	// Unicode归一化，兼容字形、智能引号等都折叠为标准形式
	text = norm.NFKC.String(text)

	// 分隔符归一
	text = separatorReplacer.Replace(text)

	// 换行符归一
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	// 部分PDF提取会出现替换符，在日期区间里它通常是en-dash，折叠为连字符方便日期解析
	text = strings.ReplaceAll(text, "�", "-")

	// 项目符号统一为 "•"
	for _, b := range bulletChars {
		text = strings.ReplaceAll(text, b, "•")
	}

	// 连字符变体统一
	text = dashReplacer.Replace(text)

	// 去除除换行和制表符外的C0控制字符
	text = stripControlChars(text)

	// 拼接被断行的连字词: "Cost-to-\nServe" -> "Cost-to-Serve"
	// 连续断行需要多轮替换收敛
	for {
		replaced := hyphenLineBreakRe.ReplaceAllString(text, "$1-$2")
		if replaced == text {
			break
		}
		text = replaced
	}

	// 合并被折行的项目符号续行:
	// "• did X\n  continued" -> "• did X continued"
	lines := strings.Split(text, "\n")
	merged := make([]string, 0, len(lines))
	for _, ln := range lines {
		s := strings.TrimRight(ln, " \t")
		if s == "" {
			merged = append(merged, "")
			continue
		}
		// 部分PDF会把项目符号单独放一行，正文在下一行，这里先保留符号行，交给第二轮合并
		if strings.TrimSpace(s) == "•" {
			merged = append(merged, "•")
			continue
		}
		if len(merged) > 0 &&
			!strings.HasPrefix(strings.TrimLeft(s, " \t"), "•") &&
			strings.HasPrefix(strings.TrimLeft(merged[len(merged)-1], " \t"), "•") {
			// 上一行是项目符号条目且当前行缩进，视为续行拼接
			if strings.HasPrefix(ln, " ") || strings.HasPrefix(ln, "\t") {
				merged[len(merged)-1] = strings.TrimSpace(strings.TrimRight(merged[len(merged)-1], " \t") + " " + strings.TrimSpace(s))
				continue
			}
		}
		merged = append(merged, s)
	}

	// 第二轮: 单独的 "•" 行与下一行正文合并为 "• text"
	fixed := make([]string, 0, len(merged))
	for i := 0; i < len(merged); {
		cur := strings.TrimSpace(merged[i])
		if cur == "•" && i+1 < len(merged) {
			nxt := strings.TrimSpace(merged[i+1])
			if nxt != "" && !strings.HasPrefix(nxt, "•") {
				fixed = append(fixed, "• "+nxt)
				i += 2
				continue
			}
		}
		fixed = append(fixed, merged[i])
		i++
	}
	text = strings.Join(fixed, "\n")

	// 压缩连续空行
	text = excessBlankRe.ReplaceAllString(text, "\n\n")

	// 压缩行内连续空格/制表符
	outLines := strings.Split(text, "\n")
	for i, ln := range outLines {
		outLines[i] = strings.TrimSpace(repeatSpaceRe.ReplaceAllString(ln, " "))
	}
	text = strings.Join(outLines, "\n")

	return strings.TrimSpace(text)
}

// stripControlChars 移除C0控制字符，保留换行和制表符
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
}
