package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
	"resume-parser-go/pkg/utils"
)

// 队列入口没有HTTP中间件兜底，消费侧自己开span
var consumerTracer = otel.Tracer("resume-parser-go/api/handler")

// ParseHandler 解析入口处理器，HTTP与队列两条入口共用
type ParseHandler struct {
	cfg      *config.Config
	storage  *storage.Storage
	pipeline *processor.Pipeline
}

// NewParseHandler 创建解析入口处理器
func NewParseHandler(cfg *config.Config, store *storage.Storage, pipeline *processor.Pipeline) *ParseHandler {
	return &ParseHandler{
		cfg:      cfg,
		storage:  store,
		pipeline: pipeline,
	}
}

// HandleParseRequest 处理一条解析请求并返回请求ID与结果信封
// 信封自身携带成功或失败状态，这里不再抛错
func (h *ParseHandler) HandleParseRequest(ctx context.Context, req *types.ParseRequest) (string, *types.ParseResult) {
	requestID := newRequestID()
	ctx = logger.WithRequestID(ctx, requestID)
	return requestID, h.pipeline.Parse(ctx, req)
}

// Ready 检查各存储依赖是否就绪
// 未配置的可选依赖不参与判定
func (h *ParseHandler) Ready(ctx context.Context) (bool, map[string]string) {
	checks := make(map[string]string)
	ready := true

	if h.storage == nil || h.storage.MinIO == nil {
		checks["minio"] = "未初始化"
		ready = false
	} else if !h.storage.MinIO.Online() {
		checks["minio"] = "离线"
		ready = false
	} else {
		checks["minio"] = "ok"
	}

	if h.storage != nil && h.storage.RabbitMQ != nil {
		if err := h.storage.RabbitMQ.Ping(); err != nil {
			checks["rabbitmq"] = err.Error()
			ready = false
		} else {
			checks["rabbitmq"] = "ok"
		}
	}

	if h.storage != nil && h.storage.Redis != nil {
		if err := h.storage.Redis.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	return ready, checks
}

// StartParseRequestConsumer 启动解析请求消费者
// 先声明交换机、队列与绑定，再开始消费；ctx取消时退出
func (h *ParseHandler) StartParseRequestConsumer(ctx context.Context) error {
	if h.storage == nil || h.storage.RabbitMQ == nil {
		return fmt.Errorf("消息队列未初始化")
	}

	mq := h.storage.RabbitMQ
	rcfg := h.cfg.RabbitMQ

	logger.Info().
		Str("exchange", rcfg.ResumeEventsExchange).
		Str("routing_key", rcfg.ParseRequestedRoutingKey).
		Msg("初始化解析请求队列拓扑")

	// 1. 确保交换机和队列存在
	if err := mq.EnsureExchange(rcfg.ResumeEventsExchange, "direct", true); err != nil {
		return fmt.Errorf("确保交换机存在失败: %w", err)
	}
	if err := mq.EnsureQueue(rcfg.ParseRequestQueue, true); err != nil {
		return fmt.Errorf("确保队列存在失败: %w", err)
	}
	if err := mq.BindQueue(rcfg.ParseRequestQueue, rcfg.ResumeEventsExchange, rcfg.ParseRequestedRoutingKey); err != nil {
		return fmt.Errorf("绑定队列失败: %w", err)
	}

	logger.Info().
		Str("queue", rcfg.ParseRequestQueue).
		Int("prefetch_count", rcfg.PrefetchCount).
		Msg("解析请求消费者就绪")

	// 2. 启动消费者
	return mq.StartConsumer(ctx, rcfg.ParseRequestQueue, rcfg.PrefetchCount, h.consumeParseRequest)
}

// consumeParseRequest 处理单条队列消息
// 无法解码或字段缺失的消息是毒消息，直接丢弃不重投
func (h *ParseHandler) consumeParseRequest(ctx context.Context, data []byte) storage.ConsumeAction {
	ctx, span := consumerTracer.Start(ctx, "ConsumeParseRequest",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination.name", h.cfg.RabbitMQ.ParseRequestQueue),
	)

	var req types.ParseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		logger.Error().Err(err).Msg("解析请求消息解码失败，丢弃")
		return storage.ActionNackDrop
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		logger.Error().
			Err(err).
			Str("resume_id", req.ResumeID).
			Msg("解析请求字段校验失败，丢弃")
		return storage.ActionNackDrop
	}

	// 重复投递检查：标记存储故障时降级为继续处理，不阻塞解析
	fingerprintMD5 := utils.CalculateMD5FromString(req.Fingerprint())
	if h.storage.Redis != nil {
		seen, err := h.storage.Redis.SeenRecently(ctx, fingerprintMD5)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("resume_id", req.ResumeID).
				Msg("查询请求指纹失败，继续处理")
		} else if seen {
			span.SetAttributes(attribute.Bool("messaging.duplicate", true))
			logger.Info().
				Str("resume_id", req.ResumeID).
				Str("user_id", req.UserID).
				Msg("检测到重复投递，直接确认跳过")
			return storage.ActionAck
		}
	}

	requestID, result := h.HandleParseRequest(ctx, &req)

	completed := &storage.ParseCompletedMessage{
		RequestID:   requestID,
		UserID:      req.UserID,
		ResumeID:    req.ResumeID,
		CompletedAt: time.Now(),
		Result:      result,
		Queue:       h.cfg.RabbitMQ.ParseRequestQueue,
	}

	// 发布结果信封；失败时重投，重新处理后再次尝试发布
	err := h.storage.RabbitMQ.PublishJSON(
		ctx,
		h.cfg.RabbitMQ.ResumeEventsExchange,
		h.cfg.RabbitMQ.ParseCompletedRoutingKey,
		completed,
		true, // 持久化
	)
	if err != nil {
		tracing.RecordRabbitMQNack(span, requestID, "发布解析结果失败")
		logger.Error().
			Err(err).
			Str("resume_id", req.ResumeID).
			Str("request_id", requestID).
			Msg("发布解析结果失败，消息将重投")
		return storage.ActionNackRequeue
	}

	// 结果发布成功后才写入指纹标记，发布失败引发的重投不会被误判为重复
	if h.storage.Redis != nil {
		if err := h.storage.Redis.MarkSeen(ctx, fingerprintMD5); err != nil {
			logger.Warn().
				Err(err).
				Str("resume_id", req.ResumeID).
				Msg("写入请求指纹失败")
		}
	}

	logger.Info().
		Str("resume_id", req.ResumeID).
		Str("request_id", requestID).
		Str("status", string(result.Status)).
		Msg("解析请求消费完成")
	return storage.ActionAck
}

// newRequestID 生成UUIDv7请求ID，时钟异常时退化为UUIDv4
func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.Must(uuid.NewV4()).String()
}
