package processor

import (
	"context"

	"resume-parser-go/internal/types"
)

//
// 文件拉取相关接口
//

// ObjectFetcher 原始简历文件拉取接口
// 按请求中的对象存储引用或预签名地址取回文件字节
type ObjectFetcher interface {
	// Fetch 拉取原始文件
	// 对象不存在或无权限时返回可被 errors.Is 识别的存储哨兵错误
	Fetch(ctx context.Context, req *types.ParseRequest) (*types.RawDocument, error)
}

//
// 文本提取相关接口
//

// TextExtractor 文档文本提取接口
// 将原始文件字节转为归一化后的纯文本
type TextExtractor interface {
	// Extract 提取并归一化文本
	// 失败时返回带分类的 *types.ParseError（UnsupportedFormat / CorruptDocument）
	Extract(ctx context.Context, doc *types.RawDocument) (*types.ExtractedText, error)
}

//
// 档案提取相关接口
//

// ProfileExtractor 档案提取策略接口
// 主路径（LLM）与回退路径（规则）都实现该接口，由编排器按状态机调度
type ProfileExtractor interface {
	// Name 策略名，进入结果诊断的 parser 字段
	Name() string

	// Extract 从归一化文本提取结构化档案
	Extract(ctx context.Context, text *types.ExtractedText) (*types.ExtractionOutcome, error)
}
