package processor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/llm"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/storage"
)

// NewPipelineFromConfig 按配置装配完整的解析流水线
// 推理服务凭证缺失或主提取器构建失败时降级为仅回退模式，不会中断启动
func NewPipelineFromConfig(ctx context.Context, cfg *config.Config, store *storage.Storage, zl *zerolog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if store == nil || store.MinIO == nil {
		return nil, fmt.Errorf("对象存储未初始化，无法拉取简历文件")
	}
	if zl == nil {
		nop := zerolog.Nop()
		zl = &nop
	}

	components := &Components{
		Fetcher: store.MinIO,
	}

	// 创建文本提取器
	extractorOpts := []parser.DocumentExtractorOption{
		parser.WithExtractorLogger(logger.NewComponentLogger("DocumentExtractor")),
	}
	if cfg.Parser.MaxTextLength > 0 {
		extractorOpts = append(extractorOpts, parser.WithMaxTextLength(cfg.Parser.MaxTextLength))
	}
	textExtractor, err := parser.NewDocumentExtractor(ctx, extractorOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建文本提取器失败: %w", err)
	}
	components.TextExtractor = textExtractor

	// 创建主提取器（如果配置了推理服务凭证）
	// 凭证缺失时完全不构建客户端，也不会发出任何网络请求
	if cfg.HasGroqCredential() {
		chatModel, err := llm.NewGroqChatModel(
			cfg.Groq.APIKey,
			cfg.Groq.Model,
			cfg.Groq.APIURL,
			llm.WithTemperature(cfg.Groq.Temperature),
			llm.WithMaxTokens(cfg.Groq.MaxTokens),
			llm.WithJSONMode(true),
			llm.WithLogger(logger.NewComponentLogger("GroqModel")),
		)
		if err != nil {
			zl.Warn().Err(err).Msg("创建推理服务客户端失败，降级为仅回退模式")
		} else {
			primary, err := parser.NewLLMExtractor(
				chatModel,
				cfg.Groq.Model,
				parser.WithLLMTimeout(cfg.ExtractionTimeout()),
				parser.WithLLMLogger(logger.NewComponentLogger("LLMExtractor")),
			)
			if err != nil {
				zl.Warn().Err(err).Msg("创建主提取器失败，降级为仅回退模式")
			} else {
				components.Primary = primary
			}
		}
	}

	// 创建回退提取器，任何情况下都可用
	components.Fallback = parser.NewRegexExtractor(
		parser.WithRegexLogger(logger.NewComponentLogger("RegexExtractor")),
	)

	return NewPipeline(components, &Settings{
		Debug:  cfg.Logger.Level == "debug",
		Logger: zl,
	})
}
