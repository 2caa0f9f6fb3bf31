package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/types"
)

// Module 返回 Fx 模块
//
// 提供生命周期协调器作为运行时内单例。装配了事件总线时，阶段变更以
// types.EvtRuntimePhase 发布。
func Module() fx.Option {
	return fx.Module("lifecycle",
		fx.Provide(NewCoordinator),
		fx.Invoke(registerLifecycleHooks),
		fx.Invoke(registerPhaseEvents),
	)
}

// lifecycleHooksParams 生命周期钩子参数
type lifecycleHooksParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Coordinator *Coordinator
}

// registerLifecycleHooks 注册生命周期钩子
func registerLifecycleHooks(params lifecycleHooksParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return params.Coordinator.AdvanceTo(PhaseRunning)
		},
		OnStop: func(_ context.Context) error {
			err := params.Coordinator.AdvanceTo(PhaseStopped)
			params.Coordinator.Stop()
			return err
		},
	})
}

// phaseEventsParams 阶段事件参数
type phaseEventsParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Coordinator *Coordinator
	EventBus    pkgif.EventBus `optional:"true"`
}

// registerPhaseEvents 以有状态发射器发布阶段变更
//
// 订阅者在订阅时立即收到最近一次阶段事件，无需与启动过程竞争。
func registerPhaseEvents(params phaseEventsParams) error {
	if params.EventBus == nil {
		return nil
	}
	em, err := params.EventBus.Emitter(new(types.EvtRuntimePhase), pkgif.Stateful())
	if err != nil {
		return fmt.Errorf("create phase emitter: %w", err)
	}
	params.Coordinator.OnPhaseChange(func(old, cur Phase) {
		_ = em.Emit(types.EvtRuntimePhase{
			From: old.String(),
			To:   cur.String(),
			Time: time.Now(),
		})
	})
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return em.Close()
		},
	})
	return nil
}
