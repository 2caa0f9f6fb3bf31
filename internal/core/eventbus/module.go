package eventbus

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-dds/config"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params 事件总线依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Bus      *Bus
	EventBus pkgif.EventBus
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus(p Params) Result {
	buffer := config.DefaultEventBusConfig().SubscriberBuffer
	if p.UnifiedCfg != nil {
		buffer = p.UnifiedCfg.EventBus.SubscriberBuffer
	}
	bus := NewBus(buffer)
	return Result{Bus: bus, EventBus: bus}
}

// registerLifecycle 停止时关闭总线
func registerLifecycle(lc fx.Lifecycle, bus *Bus) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return bus.Close()
		},
	})
}
