package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/llm"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

const llmSystemPrompt = "You are a precise resume parser that extracts structured data and returns only valid JSON."

// llmUserPromptTemplate 档案提取提示词，%s 处填入简历全文
const llmUserPromptTemplate = `You are a professional resume parser. Extract ALL information from the resume text below and return ONLY valid JSON.

Resume Text:
%s

IMPORTANT INSTRUCTIONS:
1. Extract EVERY detail accurately - names, dates, locations, descriptions
2. For dates: Use DD-MM-YYYY format (e.g., "15-06-2020")
3. For current positions: Use null for endDate and set isCurrent to true
4. Extract complete job descriptions as a list of bullet point strings
5. Identify all skills mentioned throughout the resume
6. Find all social links (LinkedIn, GitHub, portfolio, etc.)
7. For skills, try to infer experience level based on context (Beginner/Intermediate/Advanced/Expert)

Return JSON with this EXACT structure:
{
  "personalDetails": {
    "name": "string (full name)",
    "email": "string",
    "phoneNumber": "string",
    "location": "string (city, country)",
    "profileLink": "string (LinkedIn profile URL) or null"
  },
  "professionalSummary": "string (2-3 sentence summary of professional background and expertise)",
  "workExperience": [
    {
      "jobTitle": "string (e.g., Senior Software Engineer)",
      "company": "string (company name)",
      "startDate": "string (DD-MM-YYYY format)",
      "endDate": "string (DD-MM-YYYY format) or null if current",
      "isCurrent": boolean,
      "location": "string (work location city)",
      "description": ["string (one bullet point per item)"],
      "skills": ["string (technologies used in this role)"]
    }
  ],
  "education": [
    {
      "schoolName": "string (university/institution name)",
      "degree": "string (degree title, e.g., Bachelor of Science in Computer Science)",
      "startDate": "string (DD-MM-YYYY format)",
      "endDate": "string (DD-MM-YYYY format)",
      "location": "string (institution location)",
      "description": ["string (relevant coursework, honors, GPA, activities)"]
    }
  ],
  "skills": [
    {
      "skillName": "string (e.g., Python, React, AWS)",
      "experienceLevel": "string (Beginner/Intermediate/Advanced/Expert) or null"
    }
  ],
  "certifications": [
    {
      "name": "string (certification title)",
      "issuer": "string (issuing organization) or null",
      "year": "string (YYYY) or null"
    }
  ],
  "projects": [
    {
      "name": "string (project name)",
      "description": ["string (one bullet point per item)"],
      "technologies": ["string"]
    }
  ],
  "socialLinks": [
    {
      "label": "string (e.g., LinkedIn, GitHub, Portfolio)",
      "url": "string (full URL starting with https://)"
    }
  ]
}

CRITICAL:
- Extract at least 5-10 skills if available
- Include ALL work experiences from last 10 years
- Capture complete job descriptions with achievements
- Find and include ALL social media/professional links
- If information is missing, use null (not empty string)

Return ONLY the JSON, no markdown, no explanations.`

// LLMExtractor LLM主提取器，调用外部推理服务把简历文本转成结构化档案
// 单请求内只调用一次，失败重试交给上游策略
type LLMExtractor struct {
	chatModel model.ToolCallingChatModel
	modelName string
	timeout   time.Duration
	logger    *log.Logger
}

// LLMOption LLM提取器的配置选项
type LLMOption func(*LLMExtractor)

// WithLLMTimeout 设置单次调用的超时
func WithLLMTimeout(d time.Duration) LLMOption {
	return func(e *LLMExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLLMLogger 设置日志记录器
func WithLLMLogger(logger *log.Logger) LLMOption {
	return func(e *LLMExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewLLMExtractor 创建LLM提取器
// 没有可用的模型客户端属于配置不完整，不发起任何网络调用
func NewLLMExtractor(chatModel model.ToolCallingChatModel, modelName string, opts ...LLMOption) (*LLMExtractor, error) {
	if chatModel == nil {
		return nil, types.NewParseError(types.ErrKindIncompleteConfiguration, "reasoning service client is not configured")
	}

	e := &LLMExtractor{
		chatModel: chatModel,
		modelName: modelName,
		timeout:   60 * time.Second,
		logger:    log.New(io.Discard, "[LLMExtractor] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Name 返回策略名
func (e *LLMExtractor) Name() string {
	return constants.ParserNameLLM
}

// Extract 单次调用推理服务并把回复当不可信输入解码
// 超时与取消跟随请求上下文，错误都带上分类供编排层决定回退
func (e *LLMExtractor) Extract(ctx context.Context, text *types.ExtractedText) (*types.ExtractionOutcome, error) {
	if text == nil {
		return nil, errors.New("文本不能为空")
	}

	userPrompt := fmt.Sprintf(llmUserPromptTemplate, text.Content)
	messages := []*einoschema.Message{
		{Role: "system", Content: llmSystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	// 提示词里是简历全文，上报span前必须截断
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("llm.prompt_chars", len(userPrompt)),
		attribute.String("llm.prompt_preview", tracing.SafePromptContent(userPrompt)),
	)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	startTime := time.Now()
	response, err := e.chatModel.Generate(callCtx, messages)
	duration := time.Since(startTime)

	if err != nil {
		e.logger.Printf("LLM调用失败: %v (用时 %.2f秒)", err, duration.Seconds())
		return nil, classifyGenerateError(err)
	}

	// 只记录长度，回复里是候选人隐私
	e.logger.Printf("LLM调用完成: %d 字节 (用时 %.2f秒)", len(response.Content), duration.Seconds())

	jsonStr := extractJSON(response.Content)
	if jsonStr == "" {
		return nil, types.NewParseError(types.ErrKindMalformedResponse, "reasoning service returned no JSON object")
	}

	profile, err := DecodeProfile(jsonStr)
	if err != nil {
		return nil, types.WrapParseError(types.ErrKindMalformedResponse, "reasoning service reply does not match profile structure", err)
	}

	if profile.IsEmpty() {
		return nil, types.NewParseError(types.ErrKindEmptyExtraction, "reasoning service returned an empty profile")
	}

	return &types.ExtractionOutcome{
		Profile: profile,
		Model:   e.modelName,
	}, nil
}

// classifyGenerateError 把传输层错误映射到统一分类
// 超时按服务不可用处理，限流单独标记方便上游做退避
func classifyGenerateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.WrapParseError(types.ErrKindServiceUnavailable, "reasoning service timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return types.WrapParseError(types.ErrKindServiceUnavailable, "request cancelled", err)
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return types.WrapParseError(types.ErrKindRateLimited, "reasoning service rate limited", err)
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return types.WrapParseError(types.ErrKindServiceUnavailable, "reasoning service rejected credentials", err)
		case apiErr.StatusCode >= 500:
			return types.WrapParseError(types.ErrKindServiceUnavailable, "reasoning service error", err)
		default:
			return types.WrapParseError(types.ErrKindServiceUnavailable, "reasoning service request failed", err)
		}
	}

	return types.WrapParseError(types.ErrKindServiceUnavailable, "reasoning service unreachable", err)
}

var jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// extractJSON 从LLM回复中抠出JSON对象
// 优先取 markdown 代码块，退而求其次做花括号配对扫描
func extractJSON(text string) string {
	matches := jsonFenceRe.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	level := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}
