package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubServer 构造一个返回固定响应的 OpenAI 兼容桩服务
func newStubServer(t *testing.T, status int, body string, capture *ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture), "请求体应为合法JSON")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGroqGenerate(t *testing.T) {
	var captured ChatCompletionRequest
	respBody := `{"id":"cmpl-1","object":"chat.completion","model":"llama-3.3-70b-versatile",
		"choices":[{"index":0,"message":{"role":"assistant","content":"{\"personalDetails\":{\"name\":\"John Doe\"}}"},"finish_reason":"stop"}]}`
	server := newStubServer(t, http.StatusOK, respBody, &captured)
	defer server.Close()

	// 1. 构造客户端并固定温度/补全上限/JSON模式
	m, err := NewGroqChatModel("gsk_test", "llama-3.3-70b-versatile", server.URL,
		WithTemperature(0.1),
		WithMaxTokens(4000),
		WithJSONMode(true),
	)
	require.NoError(t, err)

	// 2. 发起调用
	msg, err := m.Generate(context.Background(), []*schema.Message{
		{Role: schema.System, Content: "You are a precise resume parser."},
		{Role: schema.User, Content: "resume text"},
	})
	require.NoError(t, err)

	// 3. 断言响应内容透传
	assert.Equal(t, schema.RoleType("assistant"), msg.Role)
	assert.Contains(t, msg.Content, "John Doe")

	// 4. 断言请求报文携带固定参数
	assert.Equal(t, "llama-3.3-70b-versatile", captured.Model)
	assert.Equal(t, 0.1, captured.Temperature)
	assert.Equal(t, 4000, captured.MaxTokens)
	require.NotNil(t, captured.ResponseFormat, "JSON模式下必须携带response_format")
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, schema.System, captured.Messages[0].Role)
}

func TestGroqGenerateNon200(t *testing.T) {
	// 1. 限流响应应返回带状态码的 APIError
	server := newStubServer(t, http.StatusTooManyRequests, `{"error":{"message":"rate limit reached"}}`, nil)
	defer server.Close()

	m, err := NewGroqChatModel("gsk_test", "", server.URL)
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{{Role: schema.User, Content: "x"}})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "非200响应必须可提取为APIError")
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rate limit")
}

func TestGroqGenerateContextTimeout(t *testing.T) {
	// 1. 桩服务故意拖延，调用方超时后应立即收到错误
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	m, err := NewGroqChatModel("gsk_test", "", server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = m.Generate(ctx, []*schema.Message{{Role: schema.User, Content: "x"}})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "超时应在截止时间附近返回而不是等待桩服务")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "错误链中应包含DeadlineExceeded")
}

func TestGroqRequiresAPIKey(t *testing.T) {
	// 凭证为空时不允许构造客户端
	_, err := NewGroqChatModel("", "model", "http://localhost")
	require.Error(t, err)

	_, err = NewGroqChatModel("   ", "model", "http://localhost")
	require.Error(t, err, "空白凭证同样拒绝")
}
