package introspect

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/fx"

	"github.com/dep2p/go-dds/config"
	"github.com/dep2p/go-dds/internal/core/dcps"
	"github.com/dep2p/go-dds/internal/core/lifecycle"
	"github.com/dep2p/go-dds/internal/core/metrics"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
)

// Module 返回自省服务 Fx 模块
func Module() fx.Option {
	return fx.Module("introspect",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

// IntrospectParams 自省服务依赖参数
type IntrospectParams struct {
	fx.In

	UnifiedCfg  *config.Config         `optional:"true"`
	Service     *dcps.Service          `optional:"true"`
	Collector   *metrics.Collector     `optional:"true"`
	Coordinator *lifecycle.Coordinator `optional:"true"`
	EventBus    pkgif.EventBus         `optional:"true"`
}

// IntrospectOutput 自省服务输出
type IntrospectOutput struct {
	fx.Out

	Server *Server
}

// ConfigFromUnified 从统一配置创建自省服务配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Diagnostics.EnableIntrospect {
		return nil // 禁用时返回 nil
	}
	addr := cfg.Diagnostics.IntrospectAddr
	if addr == "" {
		addr = DefaultAddr
	}
	return &Config{
		Addr: addr,
	}
}

// NewFromParams 从参数创建自省服务
func NewFromParams(params IntrospectParams) IntrospectOutput {
	cfg := ConfigFromUnified(params.UnifiedCfg)
	if cfg == nil {
		return IntrospectOutput{} // 禁用时返回空输出
	}

	if params.Service != nil {
		cfg.Entities = params.Service.Manager()
		cfg.Root = params.Service.RootHandle()
	}
	// 接口字段不能持有类型化的 nil
	if params.Collector != nil {
		cfg.Metrics = params.Collector
	}
	if coord := params.Coordinator; coord != nil {
		cfg.Phase = func() string { return coord.Phase().String() }
	}
	if params.EventBus != nil {
		cfg.EventTypes = eventTypeNames(params.EventBus)
	}

	return IntrospectOutput{
		Server: New(*cfg),
	}
}

// eventTypeNames 返回按名称排序的已注册事件类型查询
func eventTypeNames(bus pkgif.EventBus) func() []string {
	return func() []string {
		evts := bus.GetAllEventTypes()
		names := make([]string, 0, len(evts))
		for _, t := range evts {
			names = append(names, fmt.Sprintf("%T", t))
		}
		sort.Strings(names)
		return names
	}
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, server *Server) {
	if server == nil {
		return // 禁用时跳过
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return server.Stop()
		},
	})
}
