package dds

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-dds/config"
	"github.com/dep2p/go-dds/internal/core/dcps"
	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/internal/core/lifecycle"
	"github.com/dep2p/go-dds/internal/core/metrics"
	"github.com/dep2p/go-dds/internal/debug/introspect"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/lib/log"
)

var logger = log.Logger("dds")

// ════════════════════════════════════════════════════════════════════════════
//                              Runtime
// ════════════════════════════════════════════════════════════════════════════

// Runtime 实体核心运行时
//
// 每个 Runtime 拥有独立的句柄表和实体树，根实体的句柄固定为 1。
// 所有方法可并发调用；Close 之后的调用返回 ErrRuntimeClosed。
type Runtime struct {
	cfg     *config.Config
	app     *fx.App
	timeout time.Duration

	// 由 Fx 注入
	coord *lifecycle.Coordinator
	bus   pkgif.EventBus
	m     *entity.Manager
	svc   *dcps.Service

	// 可选诊断组件
	metrics    *metrics.Collector
	introspect *introspect.Server

	closeOnce sync.Once
	closeErr  error
}

// New 创建并启动运行时
//
// 示例：
//
//	rt, err := dds.New(
//	    dds.WithPreset(dds.PresetDebug),
//	    dds.WithMaxHandles(4096),
//	)
func New(opts ...Option) (*Runtime, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.toInternalConfig()
	if err != nil {
		return nil, err
	}

	// 日志配置必须最先应用
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log.Configure(level, cfg.Log.Format, o.logOutput)

	rt := &Runtime{
		cfg:     cfg,
		timeout: o.startTimeout,
	}
	rt.app = buildFxApp(cfg, o, rt)
	if err := rt.app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), rt.timeout)
	defer cancel()
	if err := rt.app.Start(ctx); err != nil {
		logger.Error("运行时启动失败", "error", err)
		return nil, fmt.Errorf("start runtime: %w", err)
	}

	logger.Info("运行时已启动",
		"version", Version,
		"maxHandles", cfg.Handles.MaxHandles,
		"lifecycleEvents", cfg.EventBus.EmitLifecycleEvents)
	return rt, nil
}

// Close 关闭运行时
//
// 删除根实体（级联删除整棵实体树，唤醒所有阻塞的等待集），
// 随后停止全部组件。重复调用返回第一次的结果。
func (rt *Runtime) Close() error {
	rt.closeOnce.Do(func() {
		rt.coord.BeginShutdown()
		logger.Info("正在关闭运行时")

		ctx, cancel := context.WithTimeout(context.Background(), rt.timeout)
		defer cancel()

		var errs error
		if err := rt.app.Stop(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("stop runtime: %w", err))
		}
		if n := rt.m.Count(); n > 0 {
			errs = multierr.Append(errs, fmt.Errorf("%d handles still live after shutdown", n))
		}
		rt.closeErr = errs

		if errs != nil {
			logger.Warn("运行时关闭出错", "error", errs)
		} else {
			logger.Info("运行时已关闭")
		}
	})
	return rt.closeErr
}

// WaitClosed 阻塞直到运行时完全关闭或 ctx 结束
//
// 供不负责关闭运行时的 goroutine 等待退出。
func (rt *Runtime) WaitClosed(ctx context.Context) error {
	return rt.coord.WaitFor(ctx, lifecycle.PhaseStopped)
}

// Config 返回生效的配置（只读）
func (rt *Runtime) Config() config.Config {
	return *rt.cfg
}

// RootHandle 返回根实体句柄
func (rt *Runtime) RootHandle() Handle {
	return rt.svc.RootHandle()
}

// HandleCount 返回当前存活的句柄数量（含根实体）
func (rt *Runtime) HandleCount() int {
	return rt.m.Count()
}

// enter 检查运行时是否接受操作
func (rt *Runtime) enter() error {
	if !rt.coord.Accepting() {
		return ErrRuntimeClosed
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              诊断
// ════════════════════════════════════════════════════════════════════════════

// Stats 按实体类型统计的计数快照
type Stats = metrics.Snapshot

// Stats 返回实体计数快照
//
// 指标未启用时 ok 为 false。
func (rt *Runtime) Stats() (stats Stats, ok bool) {
	if rt.metrics == nil {
		return Stats{}, false
	}
	return rt.metrics.Snapshot(), true
}

// IntrospectAddr 返回自省服务的实际监听地址，未启用时返回空串
func (rt *Runtime) IntrospectAddr() string {
	if rt.introspect == nil {
		return ""
	}
	return rt.introspect.Addr()
}
