package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/llm"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

// 定义公共错误类型，用于整个流水线
var (
	ErrFetcherNotInit       = errors.New("fetcher is not initialized")            // 文件拉取器未初始化
	ErrTextExtractorNotInit = errors.New("text extractor is not initialized")     // 文本提取器未初始化
	ErrFallbackNotInit      = errors.New("fallback extractor is not initialized") // 回退提取器未初始化
)

// 定义tracer
var tracer = otel.Tracer("processor")

// Components 聚合解析流水线的组件依赖，便于集中管理和测试替换
type Components struct {
	// 核心组件接口
	Fetcher       ObjectFetcher // 原始文件拉取接口
	TextExtractor TextExtractor // 文本提取接口

	// 提取策略
	Primary  ProfileExtractor // 主提取策略（LLM），凭证未配置时为nil
	Fallback ProfileExtractor // 回退提取策略（规则），必须存在
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Debug  bool            // 是否开启调试模式
	Logger *zerolog.Logger // 日志记录器
}

// Pipeline 解析流水线编排器
// 驱动单次请求的状态流转：拉取 → 提文本 → 主提取或回退 → 终态信封
// 请求之间相互独立，不共享任何可变状态
type Pipeline struct {
	components Components
	settings   Settings
}

// NewPipeline 创建解析流水线，使用明确分离的组件和设置
// Primary 允许为nil，此时流水线进入仅回退模式，不发起任何网络调用
func NewPipeline(comp *Components, set *Settings, opts ...SettingOpt) (*Pipeline, error) {
	if comp == nil {
		return nil, fmt.Errorf("组件不能为空")
	}
	if set == nil {
		set = &Settings{}
	}

	// 应用额外的设置选项
	for _, opt := range opts {
		opt(set)
	}

	// 确保必要的默认值
	if set.Logger == nil {
		nop := zerolog.Nop()
		set.Logger = &nop
	}

	// 验证关键组件
	if comp.Fetcher == nil {
		return nil, ErrFetcherNotInit
	}
	if comp.TextExtractor == nil {
		return nil, ErrTextExtractorNotInit
	}
	if comp.Fallback == nil {
		return nil, ErrFallbackNotInit
	}

	return &Pipeline{components: *comp, settings: *set}, nil
}

// FallbackOnly 是否处于仅回退模式（主提取路径未装配）
func (p *Pipeline) FallbackOnly() bool {
	return p.components.Primary == nil
}

// Parse 处理一条解析请求
// 任何失败都归一化为错误信封返回，诊断细节只进日志与trace，绝不向调用方抛原始异常
func (p *Pipeline) Parse(ctx context.Context, req *types.ParseRequest) *types.ParseResult {
	start := time.Now()

	// 创建span
	ctx, span := tracer.Start(ctx, "ParseResume")
	defer span.End()

	req.Normalize()

	// 添加关键业务属性
	span.SetAttributes(
		attribute.String("resume_id", req.ResumeID),
		attribute.String("user_id", req.UserID),
		attribute.String("file_type", string(req.FileType)),
	)

	// 使用带trace信息的logger
	ctx = logger.WithResumeID(ctx, req.ResumeID)
	log := logger.FromContext(ctx)

	log.Debug().Str("file_type", string(req.FileType)).Msg("开始处理解析请求")

	// 文件类型不在支持集合内时立即拒绝，不触发任何拉取或提取
	if !types.SupportedFileTypes[req.FileType] {
		perr := types.NewParseError(types.ErrKindUnsupportedFormat,
			fmt.Sprintf("不支持的文件类型 %q，仅支持 pdf/docx/txt", req.FileType))
		tracing.RecordError(span, perr, tracing.ErrorTypeValidation)
		log.Warn().Str("file_type", string(req.FileType)).Msg("文件类型不在支持集合内")
		return types.NewErrorResult(perr.Kind, perr.Message)
	}

	// 1. 拉取原始文件
	fetchCtx, fetchSpan := tracer.Start(ctx, "FetchDocument")
	doc, err := p.components.Fetcher.Fetch(fetchCtx, req)
	if err != nil {
		tracing.RecordErrorWithInfo(fetchSpan, err, tracing.ErrorTypeStorage,
			attribute.String("s3.bucket", req.S3Bucket),
			attribute.String("s3.key", req.S3Key))
		fetchSpan.End()
		span.SetStatus(codes.Error, "拉取原始文件失败")
		log.Error().Err(err).Msg("拉取原始文件失败")
		return types.NewErrorResult(types.KindOf(err), types.MessageOf(err))
	}
	fetchSpan.SetAttributes(attribute.Int("file_size_bytes", len(doc.Data)))
	fetchSpan.End()
	log.Debug().Int("size_bytes", len(doc.Data)).Msg("拉取原始文件成功")

	// 2. 提取归一化文本；失败即为请求终态，"文件读不出来"没有回退路径
	extractCtx, extractSpan := tracer.Start(ctx, "ExtractText")
	text, err := p.components.TextExtractor.Extract(extractCtx, doc)
	if err != nil {
		tracing.RecordError(extractSpan, err, tracing.ErrorTypeParsing)
		extractSpan.End()
		span.SetStatus(codes.Error, "文本提取失败")
		log.Error().Err(err).Msg("文本提取失败")
		return types.NewErrorResult(types.KindOf(err), types.MessageOf(err))
	}
	extractSpan.SetAttributes(
		attribute.Int("text_length", len(text.Content)),
		attribute.Bool("truncated", text.Truncated),
		attribute.String("text_preview", tracing.SafeResumeContent(text.Content)),
	)
	extractSpan.End()
	span.AddEvent("text_extraction_completed")
	log.Debug().
		Int("text_length", len(text.Content)).
		Bool("truncated", text.Truncated).
		Msg("文本提取完成")

	// 3. 主提取路径：仅在配置了凭证时装配，单次请求只调用一次，不做内部重试
	var primaryErr error
	if p.components.Primary != nil {
		primaryCtx, primarySpan := tracer.Start(ctx, "PrimaryExtract")
		outcome, perr := p.components.Primary.Extract(primaryCtx, text)
		if perr == nil && (outcome == nil || outcome.Profile == nil) {
			perr = types.NewParseError(types.ErrKindEmptyExtraction, "主提取路径未产出档案")
		}
		if perr != nil {
			// 主路径失败不是请求失败，记录诊断后降级到回退路径
			var apiErr *llm.APIError
			if errors.As(perr, &apiErr) {
				tracing.RecordHTTPError(primarySpan, perr, apiErr.StatusCode)
			} else {
				tracing.RecordError(primarySpan, perr, tracing.ErrorTypeLLM)
			}
			primarySpan.End()
			primaryErr = perr
			tracing.RecordFallback(span, string(types.KindOf(perr)), types.MessageOf(perr))
			log.Warn().Err(perr).
				Str("error_kind", string(types.KindOf(perr))).
				Msg("主提取路径失败，降级到回退路径")
		} else {
			primarySpan.SetAttributes(attribute.String("model", outcome.Model))
			primarySpan.End()
			return p.finalize(span, log, text, outcome, p.components.Primary.Name(),
				types.StrategyPrimary, types.ConfidenceHigh, nil, start)
		}
	} else {
		span.SetAttributes(attribute.Bool("parse.primary_skipped", true))
		log.Debug().Msg("未配置推理服务凭证，跳过主提取路径")
	}

	// 4. 回退提取路径：规则提取最坏情况下返回空档案的低置信成功，不会失败
	fallbackCtx, fallbackSpan := tracer.Start(ctx, "FallbackExtract")
	outcome, err := p.components.Fallback.Extract(fallbackCtx, text)
	if err != nil {
		tracing.RecordError(fallbackSpan, err, tracing.ErrorTypeParsing)
		fallbackSpan.End()
		span.SetStatus(codes.Error, "回退提取失败")
		log.Error().Err(err).Msg("回退提取路径失败")
		return types.NewErrorResult(types.KindOf(err), types.MessageOf(err))
	}
	fallbackSpan.End()

	return p.finalize(span, log, text, outcome, p.components.Fallback.Name(),
		types.StrategyFallback, types.ConfidenceLow, primaryErr, start)
}

// finalize 后处理档案并组装成功信封
// 回退成功时保留主路径失败的分类与摘要，供下游观测降级情况
func (p *Pipeline) finalize(span trace.Span, log *zerolog.Logger, text *types.ExtractedText,
	outcome *types.ExtractionOutcome, parserName string, strategy types.SourceStrategy,
	confidence types.Confidence, primaryErr error, start time.Time) *types.ParseResult {

	profile := outcome.Profile
	if profile == nil {
		profile = &types.CandidateProfile{}
	}
	parser.PostprocessProfile(profile)

	meta := &types.ResultMeta{
		Parser:        parserName,
		Model:         outcome.Model,
		Truncated:     text.Truncated,
		SectionsFound: outcome.SectionsFound,
		Partial:       outcome.Partial,
		SHA256:        text.SHA256,
		BytesLength:   text.BytesLength,
	}
	if primaryErr != nil {
		meta.LLMFailed = true
		meta.LLMErrorKind = types.KindOf(primaryErr)
		meta.LLMError = types.MessageOf(primaryErr)
	}

	candidateName := ""
	if profile.PersonalDetails != nil {
		candidateName = profile.PersonalDetails.Name
	}
	span.SetAttributes(
		attribute.String("parse.source_strategy", string(strategy)),
		attribute.String("parse.confidence", string(confidence)),
		attribute.Bool("parse.profile_empty", profile.IsEmpty()),
		attribute.String("candidate.name", tracing.SafeAttributeValue("name", candidateName, tracing.DefaultMaxLength)),
	)
	span.SetStatus(codes.Ok, "处理成功")

	if p.settings.Debug {
		log.Debug().
			Int("experience_count", len(profile.WorkExperience)).
			Int("education_count", len(profile.Education)).
			Int("skill_count", len(profile.Skills)).
			Msg("档案字段统计")
	}

	log.Info().
		Str("source_strategy", string(strategy)).
		Str("confidence", string(confidence)).
		Str("parser", parserName).
		Dur("elapsed", time.Since(start)).
		Msg("解析请求处理完成")

	return types.NewSuccessResult(profile, strategy, confidence, meta)
}
