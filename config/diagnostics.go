package config

import (
	"errors"
	"net"
)

// DefaultIntrospectAddr 自省服务默认监听地址
const DefaultIntrospectAddr = "127.0.0.1:6060"

// DiagnosticsConfig 指标与自省配置
type DiagnosticsConfig struct {
	// EnableMetrics 是否收集实体指标（Prometheus）
	EnableMetrics bool `json:"enable_metrics"`

	// MetricsNamespace 指标名前缀
	MetricsNamespace string `json:"metrics_namespace"`

	// MetricsBuffer 指标收集器的事件订阅缓冲区
	//
	// 缓冲区满时事件被丢弃，计数随之偏低。
	MetricsBuffer int `json:"metrics_buffer"`

	// EnableIntrospect 是否启动本地自省 HTTP 服务
	EnableIntrospect bool `json:"enable_introspect"`

	// IntrospectAddr 自省服务监听地址
	IntrospectAddr string `json:"introspect_addr"`
}

// DefaultDiagnosticsConfig 返回默认配置
func DefaultDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{
		EnableMetrics:    true,
		MetricsNamespace: "dds",
		MetricsBuffer:    1024,
		EnableIntrospect: false,
		IntrospectAddr:   DefaultIntrospectAddr,
	}
}

// Validate 验证配置
func (c DiagnosticsConfig) Validate() error {
	if c.MetricsBuffer < 0 {
		return errors.New("metrics buffer must be non-negative")
	}
	if c.EnableIntrospect && c.IntrospectAddr != "" {
		if _, _, err := net.SplitHostPort(c.IntrospectAddr); err != nil {
			return errors.New("invalid introspect address: " + c.IntrospectAddr)
		}
	}
	return nil
}
