package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/llm"
	"resume-parser-go/internal/types"
)

// stubChatModel 可编程的模型替身，记录收到的消息
type stubChatModel struct {
	reply string
	err   error
	delay time.Duration

	gotMessages []*einoschema.Message
}

func (s *stubChatModel) Generate(ctx context.Context, messages []*einoschema.Message, _ ...model.Option) (*einoschema.Message, error) {
	s.gotMessages = messages
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &einoschema.Message{Role: einoschema.Assistant, Content: s.reply}, nil
}

func (s *stubChatModel) Stream(context.Context, []*einoschema.Message, ...model.Option) (*einoschema.StreamReader[*einoschema.Message], error) {
	return nil, errors.New("stream not supported")
}

func (s *stubChatModel) BindTools([]*einoschema.ToolInfo) error {
	return nil
}

func (s *stubChatModel) WithTools([]*einoschema.ToolInfo) (model.ToolCallingChatModel, error) {
	return s, nil
}

var _ model.ToolCallingChatModel = (*stubChatModel)(nil)

func TestLLMExtractorRequiresModel(t *testing.T) {
	// 模型客户端缺失属于配置不完整，不发起任何调用
	_, err := NewLLMExtractor(nil, "m")
	require.Error(t, err)
	assert.Equal(t, types.ErrKindIncompleteConfiguration, types.KindOf(err), "缺少模型客户端应判为配置不完整")
}

func TestLLMExtractorSuccess(t *testing.T) {
	stub := &stubChatModel{reply: `{
		"personalDetails": {"name": "Jane Smith", "email": "jane@y.org"},
		"workExperience": [{"jobTitle": "Engineer", "company": "Initech", "isCurrent": false}],
		"skills": [{"skillName": "Go"}]
	}`}

	extractor, err := NewLLMExtractor(stub, "llama-3.3-70b-versatile")
	require.NoError(t, err)

	outcome, err := extractor.Extract(context.Background(), &types.ExtractedText{Content: "resume text"})
	require.NoError(t, err)

	// 1. 档案与模型名
	assert.Equal(t, "Jane Smith", outcome.Profile.PersonalDetails.Name)
	assert.Equal(t, "llama-3.3-70b-versatile", outcome.Model)

	// 2. 消息结构: system提示加含简历全文的user提示
	require.Len(t, stub.gotMessages, 2)
	assert.Equal(t, "system", string(stub.gotMessages[0].Role))
	assert.Contains(t, stub.gotMessages[1].Content, "resume text")
	assert.Contains(t, stub.gotMessages[1].Content, "DD-MM-YYYY")
}

func TestLLMExtractorFencedReply(t *testing.T) {
	// markdown围栏包裹的JSON也能接受
	stub := &stubChatModel{reply: "```json\n{\"skills\": [{\"skillName\": \"Python\"}]}\n```"}

	extractor, err := NewLLMExtractor(stub, "m")
	require.NoError(t, err)

	outcome, err := extractor.Extract(context.Background(), &types.ExtractedText{Content: "x"})
	require.NoError(t, err)
	require.Len(t, outcome.Profile.Skills, 1)
}

func TestLLMExtractorMalformedReply(t *testing.T) {
	stub := &stubChatModel{reply: "I could not find any structured information, sorry!"}

	extractor, err := NewLLMExtractor(stub, "m")
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), &types.ExtractedText{Content: "x"})
	require.Error(t, err)
	assert.Equal(t, types.ErrKindMalformedResponse, types.KindOf(err), "非结构化回复应判为畸形响应")
}

func TestLLMExtractorEmptyProfile(t *testing.T) {
	// 结构合法但内容全空，作为内部信号触发回退
	stub := &stubChatModel{reply: `{"workExperience": [], "skills": []}`}

	extractor, err := NewLLMExtractor(stub, "m")
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), &types.ExtractedText{Content: "x"})
	require.Error(t, err)
	assert.Equal(t, types.ErrKindEmptyExtraction, types.KindOf(err))
}

func TestLLMExtractorRateLimited(t *testing.T) {
	stub := &stubChatModel{err: &llm.APIError{StatusCode: 429, Body: "rate limit reached"}}

	extractor, err := NewLLMExtractor(stub, "m")
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), &types.ExtractedText{Content: "x"})
	require.Error(t, err)
	assert.Equal(t, types.ErrKindRateLimited, types.KindOf(err))
}

func TestLLMExtractorServerError(t *testing.T) {
	stub := &stubChatModel{err: &llm.APIError{StatusCode: 503, Body: "overloaded"}}

	extractor, err := NewLLMExtractor(stub, "m")
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), &types.ExtractedText{Content: "x"})
	require.Error(t, err)
	assert.Equal(t, types.ErrKindServiceUnavailable, types.KindOf(err))
}

func TestLLMExtractorTimeout(t *testing.T) {
	stub := &stubChatModel{delay: 2 * time.Second, reply: "{}"}

	extractor, err := NewLLMExtractor(stub, "m", WithLLMTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = extractor.Extract(context.Background(), &types.ExtractedText{Content: "x"})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, types.ErrKindServiceUnavailable, types.KindOf(err), "超时归类为服务不可用")
	assert.Less(t, elapsed, time.Second, "超时应立刻返回而不是等待慢响应")
}
