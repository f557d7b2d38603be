package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"resume-parser-go/internal/types"
	"resume-parser-go/pkg/utils"
)

// DocumentExtractor 按文件类型分发到对应的提取实现
// PDF 走 Eino 解析器，DOCX 走 OOXML 解析，TXT 直接按 UTF-8 宽松解码
type DocumentExtractor struct {
	pdfExtractor  *EinoPDFTextExtractor
	maxTextLength int // 归一化后保留的最大字符数，0 表示不限制
	logger        *log.Logger
}

// DocumentExtractorOption 定义提取器的配置选项
type DocumentExtractorOption func(*DocumentExtractor)

// WithExtractorLogger 设置日志记录器
func WithExtractorLogger(logger *log.Logger) DocumentExtractorOption {
	return func(e *DocumentExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxTextLength 设置归一化文本的截断上限
func WithMaxTextLength(n int) DocumentExtractorOption {
	return func(e *DocumentExtractor) {
		e.maxTextLength = n
	}
}

// NewDocumentExtractor 创建文档文本提取器
func NewDocumentExtractor(ctx context.Context, opts ...DocumentExtractorOption) (*DocumentExtractor, error) {
	pdfExtractor, err := NewEinoPDFTextExtractor(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化PDF提取器失败: %w", err)
	}

	extractor := &DocumentExtractor{
		pdfExtractor: pdfExtractor,
		logger:       log.New(io.Discard, "[DocumentExtractor] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(extractor)
	}
	return extractor, nil
}

// Extract 提取并归一化文本，同时记录原始字节的摘要信息
// 提取结果为空不视为错误，由上层决定后续策略
func (e *DocumentExtractor) Extract(ctx context.Context, doc *types.RawDocument) (*types.ExtractedText, error) {
	if doc == nil {
		return nil, errors.New("文档不能为空")
	}

	raw, err := e.extractRaw(ctx, doc)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeText(raw)

	truncated := false
	if e.maxTextLength > 0 {
		runes := []rune(normalized)
		if len(runes) > e.maxTextLength {
			normalized = string(runes[:e.maxTextLength])
			truncated = true
		}
	}

	e.logger.Printf("文本提取完成: type=%s, bytes=%d, chars=%d, truncated=%v",
		doc.FileType, len(doc.Data), len([]rune(normalized)), truncated)

	return &types.ExtractedText{
		Content:     normalized,
		Truncated:   truncated,
		SHA256:      utils.CalculateSHA256(doc.Data),
		BytesLength: int64(len(doc.Data)),
	}, nil
}

// extractRaw 按类型调用具体提取器，并把底层失败归类为可判定的解析错误
func (e *DocumentExtractor) extractRaw(ctx context.Context, doc *types.RawDocument) (string, error) {
	switch doc.FileType {
	case types.FileTypePDF:
		text, err := e.pdfExtractor.ExtractTextFromBytes(ctx, doc.Data, doc.SourceKey)
		if err != nil {
			return "", classifyExtractionError(ctx, doc, err)
		}
		return text, nil

	case types.FileTypeDOCX:
		text, err := ExtractDOCXText(doc.Data)
		if err != nil {
			return "", classifyExtractionError(ctx, doc, err)
		}
		return text, nil

	case types.FileTypeTXT:
		return decodePlainText(doc.Data), nil

	default:
		return "", types.NewParseError(types.ErrKindUnsupportedFormat,
			fmt.Sprintf("不支持的文件类型: %s", doc.FileType))
	}
}

// classifyExtractionError 区分上下文取消与文档本身损坏
func classifyExtractionError(ctx context.Context, doc *types.RawDocument, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("文本提取被中断: %w", ctx.Err())
	}
	return types.WrapParseError(types.ErrKindCorruptDocument,
		fmt.Sprintf("无法解析%s文档", doc.FileType), err)
}

// decodePlainText 宽松解码UTF-8文本，丢弃无效字节序列和BOM
func decodePlainText(data []byte) string {
	text := strings.ToValidUTF8(string(data), "")
	return strings.TrimPrefix(text, "﻿")
}
