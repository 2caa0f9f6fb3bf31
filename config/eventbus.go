package config

import "errors"

// EventBusConfig 生命周期事件总线配置
type EventBusConfig struct {
	// EmitLifecycleEvents 是否发布实体创建/删除事件
	EmitLifecycleEvents bool `json:"emit_lifecycle_events"`

	// SubscriberBuffer 订阅通道默认缓冲区大小
	SubscriberBuffer int `json:"subscriber_buffer"`
}

// DefaultEventBusConfig 返回默认事件总线配置
func DefaultEventBusConfig() EventBusConfig {
	return EventBusConfig{
		EmitLifecycleEvents: true,
		SubscriberBuffer:    16,
	}
}

// Validate 验证事件总线配置
func (c EventBusConfig) Validate() error {
	if c.SubscriberBuffer < 0 {
		return errors.New("subscriber buffer must be non-negative")
	}
	return nil
}
