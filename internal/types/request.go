package types

import (
	"fmt"
	"strings"
)

// FileType 简历文件类型
type FileType string

const (
	// FileTypePDF PDF 文档
	FileTypePDF FileType = "pdf"
	// FileTypeDOCX Word 文档 (OOXML)
	FileTypeDOCX FileType = "docx"
	// FileTypeTXT 纯文本文件
	FileTypeTXT FileType = "txt"
)

// SupportedFileTypes 当前支持解析的文件类型集合
var SupportedFileTypes = map[FileType]bool{
	FileTypePDF:  true,
	FileTypeDOCX: true,
	FileTypeTXT:  true,
}

// ParseRequest 一次简历解析请求
// s3PresignedUrl 存在时优先通过预签名地址下载，否则按 bucket/key 从对象存储拉取
type ParseRequest struct {
	UserID         string   `json:"userId"`
	ResumeID       string   `json:"resumeId"`
	S3Bucket       string   `json:"s3Bucket"`
	S3Key          string   `json:"s3Key"`
	FileType       FileType `json:"fileType"`
	S3PresignedURL string   `json:"s3PresignedUrl,omitempty"`
}

// Normalize 规范化请求字段（文件类型统一小写、去除首尾空白）
func (r *ParseRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.ResumeID = strings.TrimSpace(r.ResumeID)
	r.S3Bucket = strings.TrimSpace(r.S3Bucket)
	r.S3Key = strings.TrimSpace(r.S3Key)
	r.FileType = FileType(strings.ToLower(strings.TrimSpace(string(r.FileType))))
}

// Validate 校验请求完整性，文件类型不支持时立即拒绝，不触发任何提取
func (r *ParseRequest) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("userId is required")
	}
	if r.ResumeID == "" {
		return fmt.Errorf("resumeId is required")
	}
	if r.S3PresignedURL == "" {
		if r.S3Bucket == "" {
			return fmt.Errorf("s3Bucket is required")
		}
		if r.S3Key == "" {
			return fmt.Errorf("s3Key is required")
		}
	}
	if !SupportedFileTypes[r.FileType] {
		return fmt.Errorf("unsupported fileType %q, expected one of pdf/docx/txt", r.FileType)
	}
	return nil
}

// Fingerprint 请求去重指纹原文，调用方对其取 MD5 作为幂等标记
func (r *ParseRequest) Fingerprint() string {
	return strings.Join([]string{r.UserID, r.ResumeID, r.S3Bucket, r.S3Key}, "|")
}
