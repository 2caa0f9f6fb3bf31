package dds

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-dds/config"
	"github.com/dep2p/go-dds/internal/core/dcps"
	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/internal/core/eventbus"
	"github.com/dep2p/go-dds/internal/core/handles"
	"github.com/dep2p/go-dds/internal/core/lifecycle"
	"github.com/dep2p/go-dds/internal/core/metrics"
	"github.com/dep2p/go-dds/internal/debug/introspect"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//
//	lifecycle → eventbus → handles → [metrics] → entity → dcps → [introspect]
//
// metrics 必须先于根实体订阅生命周期事件。停止顺序相反：introspect
// 先关闭，dcps 删除根实体（级联删除整棵实体树），随后 entity 关闭事件
// 发射器，metrics 排空剩余事件，最后 eventbus 关闭。
func buildFxApp(cfg *config.Config, o *options, rt *Runtime) *fx.App {
	modules := []fx.Option{
		// 配置注入
		fx.Supply(cfg),

		// 生命周期协调器
		lifecycle.Module(),

		// 基础组件
		eventbus.Module(),
		handles.Module,
	}

	// 指标（可选）
	if cfg.Diagnostics.EnableMetrics {
		modules = append(modules, metrics.Module)
	}

	// 实体核心与具体类型
	modules = append(modules,
		entity.Module,
		dcps.Module,
	)

	// 自省服务（可选）
	if cfg.Diagnostics.EnableIntrospect {
		modules = append(modules, introspect.Module())
	}

	// 用户自定义选项
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// Runtime 组件注入
	modules = append(modules, fx.Invoke(injectRuntimeComponents(rt)))

	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	return fx.New(modules...)
}

// runtimeInjectParams Runtime 注入参数
type runtimeInjectParams struct {
	fx.In

	Coordinator *lifecycle.Coordinator
	EventBus    pkgif.EventBus
	Manager     *entity.Manager
	Service     *dcps.Service
	Collector   *metrics.Collector `optional:"true"`
	Introspect  *introspect.Server `optional:"true"`
}

// injectRuntimeComponents 将 Fx 构造的组件注入 Runtime
func injectRuntimeComponents(rt *Runtime) interface{} {
	return func(p runtimeInjectParams) {
		rt.coord = p.Coordinator
		rt.bus = p.EventBus
		rt.m = p.Manager
		rt.svc = p.Service
		rt.metrics = p.Collector
		rt.introspect = p.Introspect
	}
}
