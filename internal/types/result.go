package types

// ParseStatus 解析结果状态
type ParseStatus string

const (
	// StatusSuccess 解析成功
	StatusSuccess ParseStatus = "success"
	// StatusError 解析失败
	StatusError ParseStatus = "error"
)

// SourceStrategy 记录最终产出档案的提取策略
type SourceStrategy string

const (
	// StrategyPrimary LLM 主提取路径
	StrategyPrimary SourceStrategy = "primary"
	// StrategyFallback 规则回退路径
	StrategyFallback SourceStrategy = "fallback"
)

// Confidence 结果置信度提示
type Confidence string

const (
	// ConfidenceHigh 主路径成功
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow 回退路径产出
	ConfidenceLow Confidence = "low"
)

// ResultMeta 结果诊断信息
// 回退成功时保留主路径的失败分类与摘要，供下游观测降级情况
type ResultMeta struct {
	Parser        string    `json:"parser,omitempty"` // llm 或 regex
	Model         string    `json:"model,omitempty"`
	Truncated     bool      `json:"truncated"`
	SectionsFound []string  `json:"sectionsFound,omitempty"`
	Partial       bool      `json:"partial,omitempty"`
	LLMFailed     bool      `json:"llmFailed,omitempty"`
	LLMErrorKind  ErrorKind `json:"llmErrorKind,omitempty"`
	LLMError      string    `json:"llmError,omitempty"`
	SHA256        string    `json:"sha256,omitempty"`
	BytesLength   int64     `json:"bytesLength,omitempty"`
}

// ParseResult 解析响应信封
// 成功时 Profile 非空；失败时 Profile 为 null，ErrorKind/Message 给出分类与简述
type ParseResult struct {
	Status         ParseStatus       `json:"status"`
	Profile        *CandidateProfile `json:"profile"`
	SourceStrategy SourceStrategy    `json:"sourceStrategy,omitempty"`
	Confidence     Confidence        `json:"confidence,omitempty"`
	ErrorKind      ErrorKind         `json:"errorKind,omitempty"`
	Message        string            `json:"message,omitempty"`
	Meta           *ResultMeta       `json:"meta,omitempty"`
}

// NewSuccessResult 构造成功结果
func NewSuccessResult(profile *CandidateProfile, strategy SourceStrategy, confidence Confidence, meta *ResultMeta) *ParseResult {
	profile.EnsureSlices()
	return &ParseResult{
		Status:         StatusSuccess,
		Profile:        profile,
		SourceStrategy: strategy,
		Confidence:     confidence,
		Meta:           meta,
	}
}

// NewErrorResult 构造失败结果，调用方只看到分类与简短描述
func NewErrorResult(kind ErrorKind, message string) *ParseResult {
	return &ParseResult{
		Status:    StatusError,
		ErrorKind: kind,
		Message:   message,
	}
}
