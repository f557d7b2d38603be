package types

// RawDocument 拉取到的原始文件，仅在单次请求内存在，不落盘
type RawDocument struct {
	Data     []byte
	FileType FileType
	// SourceKey 来源标识（bucket/key 或预签名地址），仅用于日志与追踪
	SourceKey string
}

// ExtractedText 提取并归一化后的简历文本
// Truncated 表示原文超过配置上限被截断，该标记必须随结果透出
type ExtractedText struct {
	Content   string
	Truncated bool
	// 文件内容指纹与大小，进入结果诊断
	SHA256      string
	BytesLength int64
}

// ExtractionOutcome 单个提取策略的产出
// 除档案本身外携带该策略专属的诊断信息
type ExtractionOutcome struct {
	Profile *CandidateProfile
	// SectionsFound 规则策略识别出的段落名，按出现顺序
	SectionsFound []string
	// Partial 规则策略下经历或教育有一项缺失
	Partial bool
	// Model LLM策略实际使用的模型名
	Model string
}
