package processor

import (
	"github.com/rs/zerolog"
)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// WithDebug 设置调试模式
func WithDebug(debug bool) SettingOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}

// WithPipelineLogger 设置日志记录器
func WithPipelineLogger(logger *zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		} else {
			// 传入nil时退回静默logger，防止空指针
			nop := zerolog.Nop()
			s.Logger = &nop
		}
	}
}
