package eventbus

import (
	"sync"
	"sync/atomic"
)

// ============================================================================
// Subscription 实现
// ============================================================================

// Subscription 订阅
type Subscription struct {
	bus       *Bus
	node      *node
	out       chan any
	closeOnce sync.Once
}

// Out 返回事件通道
func (s *Subscription) Out() <-chan any {
	return s.out
}

// Close 取消订阅，可重复调用
//
// 先从节点摘除再关闭通道；发射在节点锁内进行，摘除后不会再向通道写入。
func (s *Subscription) Close() error {
	s.bus.removeSub(s)
	s.closeChannel()
	return nil
}

func (s *Subscription) closeChannel() {
	s.closeOnce.Do(func() {
		close(s.out)
	})
}

// ============================================================================
// Emitter 实现
// ============================================================================

// Emitter 事件发射器
type Emitter struct {
	bus       *Bus
	node      *node
	closed    atomic.Bool
	closeOnce sync.Once
}

// Emit 发射事件
func (e *Emitter) Emit(event any) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	e.node.emit(event)
	return nil
}

// Close 关闭发射器，最后一个发射器关闭且无订阅者时删除节点
func (e *Emitter) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		if e.node.emitters.Add(-1) == 0 {
			e.bus.tryDropNode(e.node)
		}
	})
	return nil
}
