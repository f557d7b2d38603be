package constants

import "time"

const (
	// ParserNameLLM 主路径解析器在结果诊断中的名称
	ParserNameLLM = "llm"
	// ParserNameRegex 回退路径解析器在结果诊断中的名称
	ParserNameRegex = "regex"

	// DedupMarkerTTL 请求指纹的默认保留时长
	DedupMarkerTTL = 24 * time.Hour

	// PresignedFetchTimeout 预签名地址下载的默认超时
	PresignedFetchTimeout = 60 * time.Second
)
