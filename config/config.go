// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 支持预设配置（default/debug/constrained）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Handles.MaxHandles = 4096
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

// Config 是 go-dds 运行时的完整配置结构
//
// 配置按照功能模块组织：
//   - Handles: 句柄表容量
//   - Entity: 实体生命周期协议参数
//   - EventBus: 生命周期事件总线
//   - Log: 日志级别与格式
//   - Diagnostics: 指标与自省服务
type Config struct {
	// Handles 句柄表配置
	Handles HandlesConfig `json:"handles"`

	// Entity 实体配置
	Entity EntityConfig `json:"entity"`

	// EventBus 事件总线配置
	EventBus EventBusConfig `json:"event_bus"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Diagnostics 指标与自省配置
	Diagnostics DiagnosticsConfig `json:"diagnostics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Handles:     DefaultHandlesConfig(),
		Entity:      DefaultEntityConfig(),
		EventBus:    DefaultEventBusConfig(),
		Log:         DefaultLogConfig(),
		Diagnostics: DefaultDiagnosticsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.Handles.Validate(); err != nil {
		return err
	}
	if err := c.Entity.Validate(); err != nil {
		return err
	}
	if err := c.EventBus.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Diagnostics.Validate(); err != nil {
		return err
	}
	return nil
}
