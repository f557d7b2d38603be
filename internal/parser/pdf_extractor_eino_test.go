package parser

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEinoPDFTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor, "创建的PDF提取器不应为nil")
	require.NotNil(t, extractor.parser, "PDF提取器内部的parser不应为nil")
	require.NotNil(t, extractor.logger, "PDF提取器应该有默认的logger")

	// 测试带自定义logger的创建
	customLogger := log.New(os.Stdout, "[测试PDF提取器] ", log.LstdFlags)
	extractorWithCustomLogger, err := NewEinoPDFTextExtractor(ctx, WithEinoLogger(customLogger))
	require.NoError(t, err, "创建带自定义logger的PDF提取器不应返回错误")
	require.Equal(t, customLogger, extractorWithCustomLogger.logger, "应该使用提供的自定义logger")
}

// TestEinoExtractInvalidPDFBytes 伪造的PDF头后面没有合法的交叉引用表，解析必须报错
func TestEinoExtractInvalidPDFBytes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")

	mockPDFContent := []byte("%PDF-1.5\nMock PDF content for testing\nThis is not a real PDF file\n")

	text, err := extractor.ExtractTextFromBytes(ctx, mockPDFContent, "mock_pdf.pdf")
	require.Error(t, err, "解析伪造的PDF内容应该返回错误")
	assert.Empty(t, text, "解析失败时不应返回任何文本")
	assert.Contains(t, err.Error(), "mock_pdf.pdf", "错误消息应该包含来源URI")
}

// TestEinoExtractEmptyBytes 空输入没有任何PDF结构，同样走错误路径
func TestEinoExtractEmptyBytes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")

	text, err := extractor.ExtractTextFromBytes(ctx, nil, "empty.pdf")
	require.Error(t, err, "解析空内容应该返回错误")
	assert.Empty(t, text, "解析失败时不应返回任何文本")
}
