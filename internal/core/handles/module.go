package handles

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-dds/config"
)

// Config 句柄表配置
type Config struct {
	MaxHandles       int
	DrainLogInterval time.Duration

	// Clock 为 nil 时使用系统时钟
	Clock clock.Clock
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxHandles:       config.MaxHandleSlots,
		DrainLogInterval: time.Second,
	}
}

// ConfigFromUnified 从统一配置创建句柄表配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		MaxHandles:       cfg.Handles.MaxHandles,
		DrainLogInterval: cfg.Entity.DrainLogInterval.Duration(),
	}
}

// Params Table 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 handles 的 Fx 模块
var Module = fx.Module("handles",
	fx.Provide(ProvideTable),
	fx.Invoke(registerLifecycle),
)

// ProvideTable 提供 Table 实例
func ProvideTable(p Params) *Table {
	return NewTable(ConfigFromUnified(p.UnifiedCfg))
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, t *Table) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if n := t.Count(); n > 0 {
				logger.Warn("handle table stopped with live handles", "count", n)
			}
			return nil
		},
	})
}
