package dds

import (
	"encoding/json"
	"fmt"
)

// UserConfig 用户配置结构
//
// 面向用户的简化配置，可以从 JSON 文件加载。内部转换为选项列表。
// 文件读取由应用层负责：
//
//	data, _ := os.ReadFile("dds.json")
//	uc, _ := dds.ParseUserConfig(data)
//	rt, _ := dds.New(uc.ToOptions()...)
type UserConfig struct {
	// Preset 预设名称：default, debug, constrained
	// 之后的配置项覆盖预设中的值
	Preset string `json:"preset,omitempty"`

	// MaxHandles 句柄表容量
	MaxHandles int `json:"max_handles,omitempty"`

	// LifecycleEvents 是否发布实体创建/删除事件，缺省沿用预设
	LifecycleEvents *bool `json:"lifecycle_events,omitempty"`

	// EventBuffer 事件订阅通道缓冲区大小
	EventBuffer int `json:"event_buffer,omitempty"`

	// Log 日志配置
	Log *LogUserConfig `json:"log,omitempty"`

	// Diagnostics 诊断配置
	Diagnostics *DiagnosticsUserConfig `json:"diagnostics,omitempty"`
}

// LogUserConfig 日志配置
type LogUserConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// DiagnosticsUserConfig 诊断配置
type DiagnosticsUserConfig struct {
	// Metrics 是否启用实体指标，缺省沿用预设
	Metrics *bool `json:"metrics,omitempty"`

	// Introspect 自省服务监听地址，为空时不启用
	Introspect string `json:"introspect,omitempty"`
}

// ParseUserConfig 从 JSON 数据解析用户配置
func ParseUserConfig(data []byte) (*UserConfig, error) {
	var uc UserConfig
	if err := json.Unmarshal(data, &uc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user config: %w", err)
	}
	return &uc, nil
}

// ToOptions 转换为选项列表
func (c *UserConfig) ToOptions() []Option {
	var opts []Option
	if c.Preset != "" {
		opts = append(opts, WithPreset(Preset(c.Preset)))
	}
	if c.MaxHandles > 0 {
		opts = append(opts, WithMaxHandles(c.MaxHandles))
	}
	if c.LifecycleEvents != nil {
		opts = append(opts, WithLifecycleEvents(*c.LifecycleEvents))
	}
	if c.EventBuffer > 0 {
		opts = append(opts, WithEventBuffer(c.EventBuffer))
	}
	if c.Log != nil {
		if c.Log.Level != "" {
			opts = append(opts, WithLogLevel(c.Log.Level))
		}
		if c.Log.Format != "" {
			opts = append(opts, WithLogFormat(c.Log.Format))
		}
	}
	if d := c.Diagnostics; d != nil {
		if d.Metrics != nil {
			opts = append(opts, WithMetrics(*d.Metrics))
		}
		if d.Introspect != "" {
			opts = append(opts, WithIntrospect(d.Introspect))
		}
	}
	return opts
}
