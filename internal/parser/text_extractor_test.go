package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/types"
	"resume-parser-go/pkg/utils"
)

// buildDOCX 构造仅含 word/document.xml 的最小DOCX
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	// 1. 构造带BOM、CRLF和无效UTF-8字节的文本
	raw := append([]byte("﻿John Doe\r\nEngineer"), 0xff, 0xfe)
	raw = append(raw, []byte(" at Acme")...)

	extractor, err := NewDocumentExtractor(context.Background())
	require.NoError(t, err)

	result, err := extractor.Extract(context.Background(), &types.RawDocument{
		Data:     raw,
		FileType: types.FileTypeTXT,
	})
	require.NoError(t, err)

	// 2. 验证解码与归一化结果
	assert.Equal(t, "John Doe\nEngineer at Acme", result.Content, "BOM与无效字节应被剔除")
	assert.False(t, result.Truncated, "未超长时不应标记截断")

	// 3. 摘要信息基于原始字节计算
	assert.Equal(t, utils.CalculateSHA256(raw), result.SHA256, "SHA256应基于原始字节")
	assert.Equal(t, int64(len(raw)), result.BytesLength, "字节数应为原始长度")
}

func TestExtractTruncation(t *testing.T) {
	extractor, err := NewDocumentExtractor(context.Background(), WithMaxTextLength(5))
	require.NoError(t, err)

	result, err := extractor.Extract(context.Background(), &types.RawDocument{
		Data:     []byte("abcdefghij"),
		FileType: types.FileTypeTXT,
	})
	require.NoError(t, err)

	assert.Equal(t, "abcde", result.Content, "超长文本应按字符截断")
	assert.True(t, result.Truncated, "截断后应打标")
}

func TestExtractDOCX(t *testing.T) {
	// 1. 段落加表格的最小文档
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Smith</w:t></w:r></w:p>
    <w:p><w:r><w:t>Senior </w:t></w:r><w:r><w:t>Developer</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Python</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Expert</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`
	data := buildDOCX(t, docXML)

	extractor, err := NewDocumentExtractor(context.Background())
	require.NoError(t, err)

	result, err := extractor.Extract(context.Background(), &types.RawDocument{
		Data:     data,
		FileType: types.FileTypeDOCX,
	})
	require.NoError(t, err)

	// 2. 段落按行拼接，表格行以 | 分隔单元格
	assert.Equal(t, "Jane Smith\nSenior Developer\nPython | Expert", result.Content)
}

func TestExtractDOCXMissingDocumentXML(t *testing.T) {
	// zip合法但缺少word/document.xml
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	extractor, err := NewDocumentExtractor(context.Background())
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), &types.RawDocument{
		Data:     buf.Bytes(),
		FileType: types.FileTypeDOCX,
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrKindCorruptDocument, types.KindOf(err), "缺失正文应判定为文档损坏")
}

func TestExtractCorruptPDF(t *testing.T) {
	extractor, err := NewDocumentExtractor(context.Background())
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), &types.RawDocument{
		Data:     []byte("this is not a pdf"),
		FileType: types.FileTypePDF,
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrKindCorruptDocument, types.KindOf(err), "非PDF字节应判定为文档损坏")
}

func TestExtractUnsupportedType(t *testing.T) {
	extractor, err := NewDocumentExtractor(context.Background())
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), &types.RawDocument{
		Data:     []byte("anything"),
		FileType: types.FileType("jpg"),
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrKindUnsupportedFormat, types.KindOf(err), "未知类型应判定为不支持的格式")
}
