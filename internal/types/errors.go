package types

import (
	"errors"
	"fmt"
)

// ErrorKind 解析失败的统一分类
type ErrorKind string

const (
	// ErrKindUnsupportedFormat 文件类型不在支持集合内
	ErrKindUnsupportedFormat ErrorKind = "UnsupportedFormat"
	// ErrKindCorruptDocument 文件类型声明合法但内容无法解码
	ErrKindCorruptDocument ErrorKind = "CorruptDocument"
	// ErrKindSourceUnavailable 对象不存在或无访问权限
	ErrKindSourceUnavailable ErrorKind = "SourceUnavailable"
	// ErrKindIncompleteConfiguration 缺少凭证等必要配置
	ErrKindIncompleteConfiguration ErrorKind = "IncompleteConfiguration"
	// ErrKindServiceUnavailable 外部服务超时、网络错误或 5xx
	ErrKindServiceUnavailable ErrorKind = "ServiceUnavailable"
	// ErrKindRateLimited 外部服务限流 (HTTP 429)
	ErrKindRateLimited ErrorKind = "RateLimited"
	// ErrKindMalformedResponse 外部服务返回无法解析为档案的内容
	ErrKindMalformedResponse ErrorKind = "MalformedResponse"
	// ErrKindEmptyExtraction 主路径产出空档案，仅内部流转用于触发回退，不对外暴露
	ErrKindEmptyExtraction ErrorKind = "EmptyExtraction"
	// ErrKindInternal 未分类的内部错误
	ErrKindInternal ErrorKind = "InternalError"
)

// ParseError 携带分类的解析错误，支持 errors.As 匹配与 %w 链式展开
type ParseError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError 构造不含底层错误的分类错误
func NewParseError(kind ErrorKind, message string) *ParseError {
	return &ParseError{Kind: kind, Message: message}
}

// WrapParseError 包装底层错误并附加分类
func WrapParseError(kind ErrorKind, message string, err error) *ParseError {
	return &ParseError{Kind: kind, Message: message, Err: err}
}

// KindOf 从错误链中提取分类，未分类错误归为 InternalError
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrKindInternal
}

// MessageOf 提取面向调用方的简短描述，绝不携带堆栈
func MessageOf(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return "internal error"
}
