package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "handles": {"max_handles": 4096},
//	  "entity": {"drain_log_interval": "500ms"},
//	  "log": {"level": "debug", "format": "json"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为带缩进的 JSON
func ToJSON(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "default": 默认值
//   - "debug": Debug 日志，缩短排空日志间隔
//   - "constrained": 小容量句柄表，关闭生命周期事件与指标
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case "", "default":
		return nil
	case "debug":
		cfg.Log.Level = "debug"
		cfg.Entity.DrainLogInterval = Duration(100 * time.Millisecond)
		return nil
	case "constrained":
		cfg.Handles.MaxHandles = 1024
		cfg.EventBus.EmitLifecycleEvents = false
		cfg.EventBus.SubscriberBuffer = 4
		cfg.Diagnostics.EnableMetrics = false
		return nil
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
}
