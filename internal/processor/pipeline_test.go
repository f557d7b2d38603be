package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/types"
)

// MockFetcher 模拟对象拉取器
type MockFetcher struct {
	doc   *types.RawDocument
	err   error
	calls int
}

func (m *MockFetcher) Fetch(ctx context.Context, req *types.ParseRequest) (*types.RawDocument, error) {
	m.calls++
	return m.doc, m.err
}

// MockTextExtractor 模拟文本提取器
type MockTextExtractor struct {
	text  *types.ExtractedText
	err   error
	calls int
}

func (m *MockTextExtractor) Extract(ctx context.Context, doc *types.RawDocument) (*types.ExtractedText, error) {
	m.calls++
	return m.text, m.err
}

// MockProfileExtractor 模拟档案提取策略
type MockProfileExtractor struct {
	name    string
	outcome *types.ExtractionOutcome
	err     error
	calls   int
}

func (m *MockProfileExtractor) Name() string {
	return m.name
}

func (m *MockProfileExtractor) Extract(ctx context.Context, text *types.ExtractedText) (*types.ExtractionOutcome, error) {
	m.calls++
	return m.outcome, m.err
}

const sampleResumeText = `John Doe
Email: john.doe@example.com
Phone: +1 (555) 123-4567

Summary
Seasoned backend engineer with a focus on distributed systems.

Experience
Senior Software Engineer at Acme Corp
Jan 2020 - Present
- Built event-driven ingestion services in Go.

Education
B.S. in Computer Science, State University, 2016

Skills
Go, Python, Kubernetes, PostgreSQL
`

func newTestRequest() *types.ParseRequest {
	return &types.ParseRequest{
		UserID:   "user-1",
		ResumeID: "resume-1",
		S3Bucket: "resumes",
		S3Key:    "2025/resume-1.txt",
		FileType: "txt",
	}
}

func newTestText(content string) *types.ExtractedText {
	return &types.ExtractedText{
		Content:     content,
		SHA256:      "deadbeef",
		BytesLength: int64(len(content)),
	}
}

// TestNewPipelineValidation 测试流水线构建时的组件校验
func TestNewPipelineValidation(t *testing.T) {
	_, err := NewPipeline(nil, nil)
	assert.Error(t, err, "组件为空时应当报错")

	_, err = NewPipeline(&Components{
		TextExtractor: &MockTextExtractor{},
		Fallback:      &MockProfileExtractor{name: "regex"},
	}, nil)
	assert.ErrorIs(t, err, ErrFetcherNotInit, "缺少拉取器时应当返回对应错误")

	_, err = NewPipeline(&Components{
		Fetcher:  &MockFetcher{},
		Fallback: &MockProfileExtractor{name: "regex"},
	}, nil)
	assert.ErrorIs(t, err, ErrTextExtractorNotInit, "缺少文本提取器时应当返回对应错误")

	_, err = NewPipeline(&Components{
		Fetcher:       &MockFetcher{},
		TextExtractor: &MockTextExtractor{},
	}, nil)
	assert.ErrorIs(t, err, ErrFallbackNotInit, "缺少回退提取器时应当返回对应错误")

	// 主提取器允许缺席，此时进入仅回退模式
	p, err := NewPipeline(&Components{
		Fetcher:       &MockFetcher{},
		TextExtractor: &MockTextExtractor{},
		Fallback:      &MockProfileExtractor{name: "regex"},
	}, nil)
	require.NoError(t, err)
	assert.True(t, p.FallbackOnly(), "未装配主提取器时应当处于仅回退模式")
}

// TestParseFallbackOnly 未配置推理凭证时直接走规则回退并成功
func TestParseFallbackOnly(t *testing.T) {
	fetcher := &MockFetcher{doc: &types.RawDocument{Data: []byte(sampleResumeText), FileType: types.FileTypeTXT}}
	textExtractor := &MockTextExtractor{text: newTestText(sampleResumeText)}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: textExtractor,
		Fallback:      parser.NewRegexExtractor(),
	}, nil)
	require.NoError(t, err)

	result := p.Parse(context.Background(), newTestRequest())

	require.Equal(t, types.StatusSuccess, result.Status, "规则回退应当产出成功信封")
	assert.Equal(t, types.StrategyFallback, result.SourceStrategy)
	assert.Equal(t, types.ConfidenceLow, result.Confidence)
	require.NotNil(t, result.Profile)
	require.NotNil(t, result.Profile.PersonalDetails)
	assert.Equal(t, "john.doe@example.com", result.Profile.PersonalDetails.Email)
	require.NotNil(t, result.Meta)
	assert.Equal(t, constants.ParserNameRegex, result.Meta.Parser)
	assert.False(t, result.Meta.LLMFailed, "主路径未尝试时不应标记失败")
	assert.NotEmpty(t, result.Meta.SectionsFound, "规则路径应当记录识别出的段落")
}

// TestParsePrimarySuccess 主提取成功时直接产出高置信结果，不触发回退
func TestParsePrimarySuccess(t *testing.T) {
	fetcher := &MockFetcher{doc: &types.RawDocument{Data: []byte(sampleResumeText), FileType: types.FileTypeTXT}}
	textExtractor := &MockTextExtractor{text: newTestText(sampleResumeText)}
	primary := &MockProfileExtractor{
		name: constants.ParserNameLLM,
		outcome: &types.ExtractionOutcome{
			Profile: &types.CandidateProfile{
				PersonalDetails: &types.PersonalDetails{Name: "John Doe", Email: "john.doe@example.com"},
				Skills:          []types.Skill{{SkillName: "Go"}},
			},
			Model: "llama-3.3-70b-versatile",
		},
	}
	fallback := &MockProfileExtractor{name: constants.ParserNameRegex}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: textExtractor,
		Primary:       primary,
		Fallback:      fallback,
	}, nil)
	require.NoError(t, err)

	result := p.Parse(context.Background(), newTestRequest())

	require.Equal(t, types.StatusSuccess, result.Status)
	assert.Equal(t, types.StrategyPrimary, result.SourceStrategy)
	assert.Equal(t, types.ConfidenceHigh, result.Confidence)
	require.NotNil(t, result.Meta)
	assert.Equal(t, constants.ParserNameLLM, result.Meta.Parser)
	assert.Equal(t, "llama-3.3-70b-versatile", result.Meta.Model)
	assert.False(t, result.Meta.LLMFailed)
	assert.Equal(t, 1, primary.calls, "主提取只应尝试一次")
	assert.Equal(t, 0, fallback.calls, "主提取成功后不应触发回退")
}

// TestParsePrimaryFailureFallsBack 主提取失败时降级回退，诊断信息保留在meta中
func TestParsePrimaryFailureFallsBack(t *testing.T) {
	fetcher := &MockFetcher{doc: &types.RawDocument{Data: []byte(sampleResumeText), FileType: types.FileTypeTXT}}
	textExtractor := &MockTextExtractor{text: newTestText(sampleResumeText)}
	primary := &MockProfileExtractor{
		name: constants.ParserNameLLM,
		err:  types.NewParseError(types.ErrKindMalformedResponse, "模型返回内容无法解析为档案"),
	}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: textExtractor,
		Primary:       primary,
		Fallback:      parser.NewRegexExtractor(),
	}, nil)
	require.NoError(t, err)

	result := p.Parse(context.Background(), newTestRequest())

	require.Equal(t, types.StatusSuccess, result.Status, "主路径失败应当降级为回退成功而非错误信封")
	assert.Equal(t, types.StrategyFallback, result.SourceStrategy)
	assert.Equal(t, types.ConfidenceLow, result.Confidence)
	require.NotNil(t, result.Meta)
	assert.Equal(t, constants.ParserNameRegex, result.Meta.Parser)
	assert.True(t, result.Meta.LLMFailed, "回退成功时应保留主路径失败标记")
	assert.Equal(t, types.ErrKindMalformedResponse, result.Meta.LLMErrorKind)
	assert.NotEmpty(t, result.Meta.LLMError)
	assert.Equal(t, 1, primary.calls, "主提取失败后不应重试")
}

// TestParsePrimaryEmptyProfileFallsBack 主提取返回空档案视同失败，触发回退
func TestParsePrimaryEmptyProfileFallsBack(t *testing.T) {
	fetcher := &MockFetcher{doc: &types.RawDocument{Data: []byte(sampleResumeText), FileType: types.FileTypeTXT}}
	textExtractor := &MockTextExtractor{text: newTestText(sampleResumeText)}
	primary := &MockProfileExtractor{
		name:    constants.ParserNameLLM,
		outcome: &types.ExtractionOutcome{Model: "llama-3.3-70b-versatile"},
	}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: textExtractor,
		Primary:       primary,
		Fallback:      parser.NewRegexExtractor(),
	}, nil)
	require.NoError(t, err)

	result := p.Parse(context.Background(), newTestRequest())

	require.Equal(t, types.StatusSuccess, result.Status)
	assert.Equal(t, types.StrategyFallback, result.SourceStrategy)
	require.NotNil(t, result.Meta)
	assert.True(t, result.Meta.LLMFailed)
	assert.Equal(t, types.ErrKindEmptyExtraction, result.Meta.LLMErrorKind)
}

// TestParseFetchFailure 文件拉取失败时直接返回错误信封，不调用任何提取器
func TestParseFetchFailure(t *testing.T) {
	fetcher := &MockFetcher{
		err: types.NewParseError(types.ErrKindSourceUnavailable, "指定的简历文件不存在"),
	}
	textExtractor := &MockTextExtractor{}
	primary := &MockProfileExtractor{name: constants.ParserNameLLM}
	fallback := &MockProfileExtractor{name: constants.ParserNameRegex}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: textExtractor,
		Primary:       primary,
		Fallback:      fallback,
	}, nil)
	require.NoError(t, err)

	result := p.Parse(context.Background(), newTestRequest())

	require.Equal(t, types.StatusError, result.Status)
	assert.Equal(t, types.ErrKindSourceUnavailable, result.ErrorKind)
	assert.Equal(t, "指定的简历文件不存在", result.Message)
	assert.Nil(t, result.Profile)
	assert.Equal(t, 0, textExtractor.calls, "拉取失败后不应调用文本提取器")
	assert.Equal(t, 0, primary.calls, "拉取失败后不应调用主提取器")
	assert.Equal(t, 0, fallback.calls, "拉取失败后不应调用回退提取器")
}

// TestParseUnsupportedFileType 不支持的文件类型立即拒绝，不触发任何拉取
func TestParseUnsupportedFileType(t *testing.T) {
	fetcher := &MockFetcher{}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: &MockTextExtractor{},
		Fallback:      &MockProfileExtractor{name: constants.ParserNameRegex},
	}, nil)
	require.NoError(t, err)

	req := newTestRequest()
	req.FileType = "exe"
	result := p.Parse(context.Background(), req)

	require.Equal(t, types.StatusError, result.Status)
	assert.Equal(t, types.ErrKindUnsupportedFormat, result.ErrorKind)
	assert.Equal(t, 0, fetcher.calls, "类型校验失败后不应发起拉取")
}

// TestParseFileTypeNormalization 文件类型大小写在入口处统一
func TestParseFileTypeNormalization(t *testing.T) {
	fetcher := &MockFetcher{doc: &types.RawDocument{Data: []byte(sampleResumeText), FileType: types.FileTypeTXT}}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: &MockTextExtractor{text: newTestText(sampleResumeText)},
		Fallback:      parser.NewRegexExtractor(),
	}, nil)
	require.NoError(t, err)

	req := newTestRequest()
	req.FileType = "TXT"
	result := p.Parse(context.Background(), req)

	assert.Equal(t, types.StatusSuccess, result.Status, "大写文件类型应当在规范化后被接受")
}

// TestParseTextExtractionFailure 文本提取失败是请求终态，没有回退路径
func TestParseTextExtractionFailure(t *testing.T) {
	fetcher := &MockFetcher{doc: &types.RawDocument{Data: []byte{0x25, 0x50}, FileType: types.FileTypePDF}}
	textExtractor := &MockTextExtractor{
		err: types.NewParseError(types.ErrKindCorruptDocument, "文件内容无法解码"),
	}
	fallback := &MockProfileExtractor{name: constants.ParserNameRegex}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: textExtractor,
		Fallback:      fallback,
	}, nil)
	require.NoError(t, err)

	req := newTestRequest()
	req.FileType = "pdf"
	result := p.Parse(context.Background(), req)

	require.Equal(t, types.StatusError, result.Status)
	assert.Equal(t, types.ErrKindCorruptDocument, result.ErrorKind)
	assert.Equal(t, 0, fallback.calls, "文件读不出来时不存在回退路径")
}

// TestParseEmptyTextLowConfidence 空文本走回退并产出空档案的低置信成功
func TestParseEmptyTextLowConfidence(t *testing.T) {
	fetcher := &MockFetcher{doc: &types.RawDocument{Data: []byte("  "), FileType: types.FileTypeTXT}}
	textExtractor := &MockTextExtractor{text: newTestText("")}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: textExtractor,
		Fallback:      parser.NewRegexExtractor(),
	}, nil)
	require.NoError(t, err)

	result := p.Parse(context.Background(), newTestRequest())

	require.Equal(t, types.StatusSuccess, result.Status, "空文本不是错误，应当产出低置信空档案")
	assert.Equal(t, types.ConfidenceLow, result.Confidence)
	require.NotNil(t, result.Profile)
	assert.True(t, result.Profile.IsEmpty())
	assert.NotNil(t, result.Profile.WorkExperience, "空档案的切片字段应当序列化为[]而非null")
	assert.NotNil(t, result.Profile.Skills)
}

// TestParseTruncationFlagPropagates 截断标记必须透传到结果诊断
func TestParseTruncationFlagPropagates(t *testing.T) {
	text := newTestText(sampleResumeText)
	text.Truncated = true
	fetcher := &MockFetcher{doc: &types.RawDocument{Data: []byte(sampleResumeText), FileType: types.FileTypeTXT}}

	p, err := NewPipeline(&Components{
		Fetcher:       fetcher,
		TextExtractor: &MockTextExtractor{text: text},
		Fallback:      parser.NewRegexExtractor(),
	}, nil)
	require.NoError(t, err)

	result := p.Parse(context.Background(), newTestRequest())

	require.Equal(t, types.StatusSuccess, result.Status)
	require.NotNil(t, result.Meta)
	assert.True(t, result.Meta.Truncated)
	assert.Equal(t, "deadbeef", result.Meta.SHA256)
}
