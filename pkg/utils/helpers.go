package utils

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
)

// CalculateMD5 computes the MD5 hash of a byte slice.
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// CalculateMD5FromString computes the MD5 hash of a string.
func CalculateMD5FromString(s string) string {
	return CalculateMD5([]byte(s))
}

// CalculateSHA256 computes the SHA-256 hash of a byte slice.
// 用于结果诊断中的文件内容指纹
func CalculateSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
