package entity

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-dds/config"
	"github.com/dep2p/go-dds/internal/core/handles"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/types"
)

// ConfigFromUnified 从统一配置创建实体管理器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		DefaultStatusMask:   types.StatusMask(cfg.Entity.DefaultStatusMask),
		EmitLifecycleEvents: cfg.EventBus.EmitLifecycleEvents,
	}
}

// Params Manager 依赖参数
type Params struct {
	fx.In

	Table      *handles.Table
	EventBus   pkgif.EventBus `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 entity 的 Fx 模块
var Module = fx.Module("entity",
	fx.Provide(ProvideManager),
	fx.Invoke(registerLifecycle),
)

// ProvideManager 提供 Manager 实例
func ProvideManager(p Params) (*Manager, error) {
	return NewManager(p.Table, p.EventBus, ConfigFromUnified(p.UnifiedCfg))
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return m.Close()
		},
	})
}
