package dds

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-dds/config"
)

// ════════════════════════════════════════════════════════════════════════════
//                              配置选项
// ════════════════════════════════════════════════════════════════════════════

// Option 运行时配置选项
type Option func(*options) error

// options 运行时创建参数
type options struct {
	// base 基础配置，nil 表示使用默认配置
	base *config.Config

	// preset 预设名称，在 base 之上、覆盖项之前应用
	preset Preset

	// overrides 按设置顺序应用的配置覆盖
	overrides []func(*config.Config)

	// logOutput 日志输出目标，nil 沿用当前目标
	logOutput io.Writer

	// startTimeout Fx 应用启动/停止超时
	startTimeout time.Duration

	// userFxOptions 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

const defaultStartTimeout = 15 * time.Second

// newOptions 创建默认选项
func newOptions() *options {
	return &options{
		startTimeout: defaultStartTimeout,
	}
}

// toInternalConfig 转换为内部配置
//
// 顺序：基础配置 → 预设 → 覆盖项，最后统一验证。
func (o *options) toInternalConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if o.base != nil {
		c := *o.base
		cfg = &c
	}

	if err := config.ApplyPreset(cfg, string(o.preset)); err != nil {
		return nil, err
	}

	for _, fn := range o.overrides {
		fn(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (o *options) override(fn func(*config.Config)) {
	o.overrides = append(o.overrides, fn)
}

// ════════════════════════════════════════════════════════════════════════════
//                              基础配置
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置作为基础
//
// 预设与其余选项在其之上应用。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.base = cfg
		return nil
	}
}

// WithJSONConfig 从 JSON 数据加载基础配置
func WithJSONConfig(data []byte) Option {
	return func(o *options) error {
		cfg, err := config.FromJSON(data)
		if err != nil {
			return err
		}
		o.base = cfg
		return nil
	}
}

// WithPreset 使用预设配置
//
// 示例：
//
//	rt, err := dds.New(dds.WithPreset(dds.PresetDebug))
func WithPreset(p Preset) Option {
	return func(o *options) error {
		if !p.valid() {
			return fmt.Errorf("unknown preset: %s", p)
		}
		o.preset = p
		return nil
	}
}

// WithUserConfig 应用用户配置
func WithUserConfig(uc *UserConfig) Option {
	return func(o *options) error {
		if uc == nil {
			return nil
		}
		for _, opt := range uc.ToOptions() {
			if err := opt(o); err != nil {
				return err
			}
		}
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              句柄与实体
// ════════════════════════════════════════════════════════════════════════════

// WithMaxHandles 设置句柄表容量
func WithMaxHandles(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("max handles must be positive: %d", n)
		}
		o.override(func(c *config.Config) {
			c.Handles = c.Handles.WithMaxHandles(n)
		})
		return nil
	}
}

// WithDrainLogInterval 设置删除时等待 pin 排空的日志间隔
func WithDrainLogInterval(d time.Duration) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Entity = c.Entity.WithDrainLogInterval(d)
		})
		return nil
	}
}

// WithDefaultStatusMask 设置新建实体的初始状态使能掩码
func WithDefaultStatusMask(mask StatusMask) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Entity.DefaultStatusMask = uint32(mask)
		})
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              事件总线
// ════════════════════════════════════════════════════════════════════════════

// WithLifecycleEvents 开启或关闭实体创建/删除事件
func WithLifecycleEvents(enable bool) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.EventBus.EmitLifecycleEvents = enable
		})
		return nil
	}
}

// WithEventBuffer 设置事件订阅通道的默认缓冲区大小
func WithEventBuffer(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("event buffer must be non-negative: %d", n)
		}
		o.override(func(c *config.Config) {
			c.EventBus.SubscriberBuffer = n
		})
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              诊断
// ════════════════════════════════════════════════════════════════════════════

// WithMetrics 开启或关闭 Prometheus 实体指标
func WithMetrics(enable bool) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Diagnostics.EnableMetrics = enable
		})
		return nil
	}
}

// WithIntrospect 在 addr 上启用本地自省 HTTP 服务
//
// addr 为空时使用 127.0.0.1:6060，"127.0.0.1:0" 使用随机端口。
func WithIntrospect(addr string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Diagnostics.EnableIntrospect = true
			if addr != "" {
				c.Diagnostics.IntrospectAddr = addr
			}
		})
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              日志
// ════════════════════════════════════════════════════════════════════════════

// WithLogLevel 设置日志级别：debug/info/warn/error
func WithLogLevel(level string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Log.Level = level
		})
		return nil
	}
}

// WithLogFormat 设置日志格式：text/json
func WithLogFormat(format string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Log.Format = format
		})
		return nil
	}
}

// WithLogOutput 设置日志输出目标
func WithLogOutput(w io.Writer) Option {
	return func(o *options) error {
		o.logOutput = w
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              高级选项
// ════════════════════════════════════════════════════════════════════════════

// WithStartTimeout 设置 Fx 应用启动与停止的超时
func WithStartTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("start timeout must be positive: %s", d)
		}
		o.startTimeout = d
		return nil
	}
}

// WithFxOption 追加自定义 Fx 选项
//
// 可用于向运行时注入额外组件，或通过 fx.Populate 取出内部组件。
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
