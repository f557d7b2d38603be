package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/types"
)

// 存储层哨兵错误，编排器与测试通过 errors.Is 判定拉取失败的种类
var (
	ErrObjectNotFound     = errors.New("object not found")     // 对象或存储桶不存在
	ErrObjectAccessDenied = errors.New("object access denied") // 无访问权限或预签名已失效
)

// MinIO 提供对象存储功能
// 只做读取：解析服务不落盘、不回写任何对象
type MinIO struct {
	client       *minio.Client
	cfg          *config.MinIOConfig
	httpClient   *http.Client // 预签名地址下载专用
	cancelHealth context.CancelFunc
	logger       *log.Logger
}

// NewMinIO 创建MinIO客户端
// 存储桶来自每条请求，不在初始化时校验或创建任何桶
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] 初始化客户端: endpoint=%s", cfg.Endpoint)

	// 创建MinIO客户端
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Location,
	})
	if err != nil {
		logger.Printf("[MinIO] 初始化失败: %v", err)
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	// 启动后台健康探测，就绪探针据此上报对象存储可用性
	cancelHealth, err := client.HealthCheck(5 * time.Second)
	if err != nil {
		logger.Printf("[MinIO] 启动健康探测失败: %v", err)
		cancelHealth = nil
	}

	presignedTimeout := constants.PresignedFetchTimeout
	if cfg.PresignedTimeoutSeconds > 0 {
		presignedTimeout = time.Duration(cfg.PresignedTimeoutSeconds) * time.Second
	}

	m := &MinIO{
		client:       client,
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: presignedTimeout},
		cancelHealth: cancelHealth,
		logger:       logger,
	}

	logger.Printf("[MinIO] 客户端初始化完成: %s", cfg.Endpoint)
	return m, nil
}

// Fetch 按请求拉取原始简历文件
// 携带预签名地址时走HTTP下载，否则按 bucket/key 从对象存储读取
func (m *MinIO) Fetch(ctx context.Context, req *types.ParseRequest) (*types.RawDocument, error) {
	if req.S3PresignedURL != "" {
		data, err := m.fetchPresigned(ctx, req.S3PresignedURL)
		if err != nil {
			return nil, err
		}
		return &types.RawDocument{
			Data:      data,
			FileType:  req.FileType,
			SourceKey: "presigned:" + req.S3Key,
		}, nil
	}

	data, err := m.FetchObject(ctx, req.S3Bucket, req.S3Key)
	if err != nil {
		return nil, err
	}
	return &types.RawDocument{
		Data:      data,
		FileType:  req.FileType,
		SourceKey: req.S3Bucket + "/" + req.S3Key,
	}, nil
}

// FetchObject 下载对象并分类失败原因
func (m *MinIO) FetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	m.logger.Printf("[MinIO] 下载对象: %s/%s", bucket, key)

	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.classifyObjectError(bucket, key, err)
	}
	defer obj.Close()

	// GetObject 是惰性的，Stat 才真正发起请求，对象不存在的错误在这里暴露
	if _, err := obj.Stat(); err != nil {
		return nil, m.classifyObjectError(bucket, key, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.classifyObjectError(bucket, key, err)
	}

	m.logger.Printf("[MinIO] 下载对象成功: %s/%s, %d 字节", bucket, key, len(data))
	return data, nil
}

// classifyObjectError 将MinIO错误映射到解析错误分类
// 不存在与无权限统一归为来源不可用，其余视为存储服务不可用
func (m *MinIO) classifyObjectError(bucket, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		m.logger.Printf("[MinIO] 对象不存在: %s/%s", bucket, key)
		return types.WrapParseError(types.ErrKindSourceUnavailable,
			"指定的简历文件不存在", fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key))
	case "AccessDenied":
		m.logger.Printf("[MinIO] 对象访问被拒绝: %s/%s", bucket, key)
		return types.WrapParseError(types.ErrKindSourceUnavailable,
			"没有访问简历文件的权限", fmt.Errorf("%w: %s/%s", ErrObjectAccessDenied, bucket, key))
	}
	m.logger.Printf("[MinIO] 下载对象失败: %s/%s: %v", bucket, key, err)
	return types.WrapParseError(types.ErrKindServiceUnavailable,
		"对象存储暂时不可用", fmt.Errorf("下载对象 %s/%s 失败: %w", bucket, key, err))
}

// fetchPresigned 通过预签名地址下载文件
// 403/404 映射到与对象存储路径一致的来源不可用分类
func (m *MinIO) fetchPresigned(ctx context.Context, rawURL string) ([]byte, error) {
	m.logger.Printf("[MinIO] 通过预签名地址下载文件")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, types.WrapParseError(types.ErrKindSourceUnavailable, "预签名地址无效", err)
	}

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, types.WrapParseError(types.ErrKindServiceUnavailable, "预签名地址下载失败", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, types.WrapParseError(types.ErrKindSourceUnavailable,
			"指定的简历文件不存在", fmt.Errorf("%w: HTTP %d", ErrObjectNotFound, resp.StatusCode))
	case http.StatusForbidden, http.StatusUnauthorized:
		return nil, types.WrapParseError(types.ErrKindSourceUnavailable,
			"预签名地址已过期或无访问权限", fmt.Errorf("%w: HTTP %d", ErrObjectAccessDenied, resp.StatusCode))
	default:
		return nil, types.WrapParseError(types.ErrKindServiceUnavailable,
			"预签名地址下载失败", fmt.Errorf("意外的HTTP状态码 %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.WrapParseError(types.ErrKindServiceUnavailable, "读取预签名响应失败", err)
	}

	m.logger.Printf("[MinIO] 预签名下载成功: %d 字节", len(data))
	return data, nil
}

// Online 对象存储当前是否可达，供就绪探针使用
func (m *MinIO) Online() bool {
	return m.client.IsOnline()
}

// Close 停止后台健康探测
func (m *MinIO) Close() {
	if m.cancelHealth != nil {
		m.cancelHealth()
	}
}
