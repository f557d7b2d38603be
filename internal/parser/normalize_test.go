package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTextUnicodeFolding(t *testing.T) {
	// 1. NFKC折叠合字与全角字符
	assert.Equal(t, "finance", NormalizeText("ﬁnance"), "合字应折叠为普通字母")
	assert.Equal(t, "Go", NormalizeText("Ｇｏ"), "全角字母应折叠为半角")

	// 2. 分隔符与连字符变体归一
	assert.Equal(t, "Dev | NY | US", NormalizeText("Dev │ NY ¦ US"), "竖线变体应统一为 |")
	assert.Equal(t, "2019 - 2021", NormalizeText("2019 – 2021"), "en-dash应折叠为连字符")
	assert.Equal(t, "2019 - 2021", NormalizeText("2019 � 2021"), "替换符应按日期连字符处理")

	// 3. 项目符号统一
	assert.Equal(t, "• Built X\n• Shipped Y", NormalizeText("‣ Built X\n▪ Shipped Y"), "各类项目符号应统一为 •")
}

func TestNormalizeTextLineHandling(t *testing.T) {
	// 1. 换行符归一
	assert.Equal(t, "a\nb\nc", NormalizeText("a\r\nb\rc"), "CRLF与CR都应归一为LF")

	// 2. 断行连字词拼接，连续断行也要收敛
	assert.Equal(t, "Cost-to-Serve model", NormalizeText("Cost-to-\nServe model"), "断行连字词应拼接")
	assert.Equal(t, "state-of-the-art", NormalizeText("state-\nof-\nthe-art"), "连续断行应全部拼接")

	// 3. 连续空行压缩为一个空行
	assert.Equal(t, "a\n\nb", NormalizeText("a\n\n\n\n\nb"), "多余空行应压缩")

	// 4. 行内连续空白压缩，单个制表符不受影响
	assert.Equal(t, "John Doe Engineer", NormalizeText("John    Doe \t Engineer"), "连续空白应压缩为单个空格")
	assert.Equal(t, "a\tb", NormalizeText("a\tb"), "单个制表符应保留")
}

func TestNormalizeTextBulletContinuation(t *testing.T) {
	// 1. 缩进续行并入上一个项目符号条目
	got := NormalizeText("• Led the team\n   across three regions")
	assert.Equal(t, "• Led the team across three regions", got, "缩进续行应并入条目")

	// 2. 顶格的下一行不并入
	got = NormalizeText("• Led the team\nAcme Corp")
	assert.Equal(t, "• Led the team\nAcme Corp", got, "顶格行应保持独立")

	// 3. 单独成行的项目符号与下一行合并
	got = NormalizeText("•\nImproved latency by 40%")
	assert.Equal(t, "• Improved latency by 40%", got, "孤立符号行应与正文合并")
}

func TestNormalizeTextControlChars(t *testing.T) {
	// 1. C0控制字符被剔除，换行与制表保留
	assert.Equal(t, "abcdefghi", NormalizeText("abc\x00def\x07ghi"), "控制字符应被剔除")

	// 2. 空输入
	assert.Equal(t, "", NormalizeText(""), "空输入应原样返回")
	assert.Equal(t, "", NormalizeText("  \n\t  "), "纯空白输入应归一为空串")
}
