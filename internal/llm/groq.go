package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	// Groq 的 OpenAI 兼容接口地址
	openAICompatibleGroqAPIURL = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModelName       = "llama-3.3-70b-versatile"
)

// APIError 上游返回非 200 时的错误，保留状态码供调用方归类
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("groq api status %d: %s", e.StatusCode, e.Body)
}

// --- OpenAI 兼容请求/响应结构 ---

// ResponseFormat 指定输出格式，{"type":"json_object"} 强制模型输出合法 JSON
type ResponseFormat struct {
	Type string `json:"type"`
}

type OpenAIToolFunctionParamsProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

type OpenAIToolFunctionParams struct {
	Type       string                                      `json:"type"` // 通常为 "object"
	Properties map[string]OpenAIToolFunctionParamsProperty `json:"properties"`
	Required   []string                                    `json:"required,omitempty"`
}

type OpenAIFunction struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Parameters  OpenAIToolFunctionParams `json:"parameters"`
}

type OpenAITool struct {
	Type     string         `json:"type"` // 固定为 "function"
	Function OpenAIFunction `json:"function"`
}

type ChatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []*schema.Message `json:"messages"` // eino 的 schema.Message 在 role/content 上与 OpenAI 报文兼容
	Temperature    float64           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat   `json:"response_format,omitempty"`
	Tools          []OpenAITool      `json:"tools,omitempty"`
}

type OpenAIToolCallData struct {
	Id       string `json:"id"`
	Type     string `json:"type"` // 固定为 "function"
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"` // 参数的 JSON 字符串
	} `json:"function"`
}

type APIMessage struct {
	Role      string               `json:"role"`
	Content   *string              `json:"content"` // 存在 tool_calls 时可能为 null
	ToolCalls []OpenAIToolCallData `json:"tool_calls,omitempty"`
}

type ChatChoice struct {
	Index        int        `json:"index"`
	Message      APIMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type ChatCompletionResponse struct {
	Id      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
}

// GroqChatModel 通过 OpenAI 兼容接口访问 Groq 推理服务
// 实现 model.ChatModel 与 model.ToolCallingChatModel，可与任意 eino 兼容模型互换
type GroqChatModel struct {
	apiKey      string
	modelName   string
	apiURL      string
	temperature float64
	maxTokens   int
	jsonMode    bool
	httpClient  *http.Client
	logger      *log.Logger
	boundTools  []OpenAITool
}

// GroqOption 配置 GroqChatModel 的函数选项
type GroqOption func(*GroqChatModel)

// WithTemperature 设置采样温度
func WithTemperature(t float64) GroqOption {
	return func(m *GroqChatModel) {
		m.temperature = t
	}
}

// WithMaxTokens 设置单次补全的最大 token 数
func WithMaxTokens(n int) GroqOption {
	return func(m *GroqChatModel) {
		m.maxTokens = n
	}
}

// WithJSONMode 强制模型输出 JSON 对象
func WithJSONMode(enabled bool) GroqOption {
	return func(m *GroqChatModel) {
		m.jsonMode = enabled
	}
}

// WithHTTPClient 替换底层 HTTP 客户端，测试时用于指向本地桩服务
func WithHTTPClient(c *http.Client) GroqOption {
	return func(m *GroqChatModel) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// WithLogger 注入组件日志
func WithLogger(l *log.Logger) GroqOption {
	return func(m *GroqChatModel) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewGroqChatModel 创建一个新的 GroqChatModel 实例
// apiKey 为空直接报错：凭证缺失时调用方不应构造本客户端
func NewGroqChatModel(apiKey string, modelName string, apiURL string, opts ...GroqOption) (*GroqChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultGroqModelName
	}

	url := apiURL
	if strings.TrimSpace(url) == "" {
		url = openAICompatibleGroqAPIURL
	}

	m := &GroqChatModel{
		apiKey:     apiKey,
		modelName:  mn,
		apiURL:     url,
		httpClient: &http.Client{},
		logger:     log.New(io.Discard, "", 0),
		boundTools: make([]OpenAITool, 0),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.logger.Printf("Groq LLM 客户端就绪，API URL: %s, 模型: %s", m.apiURL, m.modelName)
	return m, nil
}

// Generate 实现 model.ChatModel 接口，单次请求/响应调用
// 超时与取消完全由传入的 ctx 控制，内部不做重试
func (g *GroqChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	for _, opt := range options {
		_ = opt // 通用选项暂无可应用项
	}

	reqPayload := ChatCompletionRequest{
		Model:       g.modelName,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}
	if g.jsonMode {
		reqPayload.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	if len(g.boundTools) > 0 {
		reqPayload.Tools = g.boundTools
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	g.logger.Printf("发送请求到 %s，模型 %s，请求体 %d 字节", g.apiURL, g.modelName, len(jsonData))

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	g.logger.Printf("收到响应: Status=%s, Body=%d 字节", httpResp.Status, len(bodyBytes))

	if httpResp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: httpResp.StatusCode, Body: string(bodyBytes)}
	}

	var apiResp ChatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("从 API 收到空选项")
	}

	apiMessage := apiResp.Choices[0].Message
	responseContent := ""
	if apiMessage.Content != nil {
		responseContent = *apiMessage.Content
	}

	resultMessage := &schema.Message{
		Role:    schema.RoleType(apiMessage.Role),
		Content: responseContent,
	}

	if len(apiMessage.ToolCalls) > 0 {
		resultMessage.ToolCalls = make([]schema.ToolCall, len(apiMessage.ToolCalls))
		for i, tc := range apiMessage.ToolCalls {
			resultMessage.ToolCalls[i] = schema.ToolCall{
				ID: tc.Id,
				Function: schema.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			}
		}
	}

	if resultMessage.Role == "" {
		resultMessage.Role = schema.RoleType("assistant")
	}

	return resultMessage, nil
}

// Stream 实现 model.ChatModel 接口
// 解析场景只需要完整的 JSON 文档，流式输出没有意义
func (g *GroqChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("GroqChatModel 的 Stream 方法未实现")
}

// BindTools 实现 model.ChatModel 接口，把 eino 工具描述转换为 OpenAI tools 报文
func (g *GroqChatModel) BindTools(tools []*schema.ToolInfo) error {
	g.boundTools = make([]OpenAITool, 0, len(tools))
	for _, toolInfo := range tools {
		if toolInfo == nil {
			continue
		}
		g.boundTools = append(g.boundTools, OpenAITool{
			Type: "function",
			Function: OpenAIFunction{
				Name:        toolInfo.Name,
				Description: toolInfo.Desc,
				Parameters:  OpenAIToolFunctionParams{Type: "object", Properties: map[string]OpenAIToolFunctionParamsProperty{}},
			},
		})
	}
	return nil
}

// WithTools 实现 model.ToolCallingChatModel 接口，内部复用 BindTools
func (g *GroqChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if err := g.BindTools(tools); err != nil {
		return nil, err
	}
	return g, nil
}

var _ model.ChatModel = (*GroqChatModel)(nil)
var _ model.ToolCallingChatModel = (*GroqChatModel)(nil)
