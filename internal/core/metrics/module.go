package metrics

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-dds/config"
	"github.com/dep2p/go-dds/internal/core/handles"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
)

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Diagnostics.MetricsNamespace != "" {
		c.Namespace = cfg.Diagnostics.MetricsNamespace
	}
	c.Buffer = cfg.Diagnostics.MetricsBuffer
	return c
}

// Params Collector 依赖参数
type Params struct {
	fx.In

	EventBus   pkgif.EventBus
	Table      *handles.Table `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 metrics 的 Fx 模块
//
// 必须在 entity 模块之前加载：收集器在构造时订阅事件，
// 以便计入根实体的创建。
var Module = fx.Module("metrics",
	fx.Provide(ProvideCollector),
	fx.Invoke(registerLifecycle),
)

// ProvideCollector 提供 Collector 实例并立即订阅事件
func ProvideCollector(p Params) (*Collector, error) {
	c, err := NewCollector(ConfigFromUnified(p.UnifiedCfg), p.EventBus, p.Table)
	if err != nil {
		return nil, err
	}
	if err := c.Start(); err != nil {
		return nil, err
	}
	return c, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, c *Collector) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return c.Stop()
		},
	})
}
