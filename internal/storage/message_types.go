package storage

import (
	"time"

	"resume-parser-go/internal/types"
)

// ParseCompletedMessage 解析完成事件
// 发布到完成路由键，信封原样携带，下游按 resume_id 幂等消费
type ParseCompletedMessage struct {
	RequestID   string             `json:"request_id"`             // 本次解析的请求ID (UUIDv7)
	UserID      string             `json:"user_id"`                // 候选人所属用户
	ResumeID    string             `json:"resume_id"`              // 简历ID
	CompletedAt time.Time          `json:"completed_at"`           // 完成时间戳
	Result      *types.ParseResult `json:"result"`                 // 解析结果信封
	Queue       string             `json:"source_queue,omitempty"` // 消费来源队列，辅助排查
}
