package dds

import (
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
)

// Subscription 事件订阅
type Subscription = pkgif.Subscription

// SubscribeEvents 订阅运行时事件
//
// eventType 为 new(EvtEntityCreated)、new(EvtEntityDeleted) 或
// new(EvtRuntimePhase)。配置关闭实体生命周期事件时订阅仍然成功，但不会
// 收到实体事件。阶段事件是有状态的，订阅后立即收到当前阶段。
//
// 示例：
//
//	sub, _ := rt.SubscribeEvents(new(dds.EvtEntityDeleted))
//	defer sub.Close()
//	for e := range sub.Out() {
//	    evt := e.(dds.EvtEntityDeleted)
//	    ...
//	}
func (rt *Runtime) SubscribeEvents(eventType interface{}, opts ...pkgif.SubscriptionOpt) (Subscription, error) {
	if err := rt.enter(); err != nil {
		return nil, err
	}
	return rt.bus.Subscribe(eventType, opts...)
}
