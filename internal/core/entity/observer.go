package entity

import (
	"fmt"

	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/types"
)

// ============================================================================
//                              观察者
// ============================================================================

// RegisterObserver 注册观察者
//
// 重复注册返回 ErrPreconditionNotMet；OnAttach 拒绝时返回 ErrBadParameter。
// OnAttach 在观察者锁内调用。
func (e *Entity) RegisterObserver(obs pkgif.Observer, arg any) error {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	if e.findObserverLocked(obs.ObserverHandle()) >= 0 {
		return fmt.Errorf("%w: %v already observes %v", types.ErrPreconditionNotMet, obs.ObserverHandle(), e.Handle())
	}
	if !obs.OnAttach(e.Handle(), arg) {
		return fmt.Errorf("%w: attach of %v to %v rejected", types.ErrBadParameter, e.Handle(), obs.ObserverHandle())
	}
	e.observers = append(e.observers, obs)
	return nil
}

// UnregisterObserver 注销观察者
//
// 未注册返回 ErrPreconditionNotMet。notifyDelete 为 true 时同步调用 OnDelete。
func (e *Entity) UnregisterObserver(observer types.Handle, notifyDelete bool) error {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	i := e.findObserverLocked(observer)
	if i < 0 {
		return fmt.Errorf("%w: %v does not observe %v", types.ErrPreconditionNotMet, observer, e.Handle())
	}
	obs := e.observers[i]
	e.observers = append(e.observers[:i], e.observers[i+1:]...)
	if notifyDelete {
		obs.OnDelete(e.Handle())
	}
	return nil
}

// HasObserver 报告是否已注册指定观察者
func (e *Entity) HasObserver(observer types.Handle) bool {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	return e.findObserverLocked(observer) >= 0
}

func (e *Entity) findObserverLocked(observer types.Handle) int {
	for i, o := range e.observers {
		if o.ObserverHandle() == observer {
			return i
		}
	}
	return -1
}

// signalLocked 通知所有观察者状态变化，调用方持有观察者锁
func (e *Entity) signalLocked(status types.StatusMask) {
	h := e.Handle()
	for _, o := range e.observers {
		o.OnStatus(h, status)
	}
}

// signalDelete 通知并移除所有观察者，每个注册恰好收到一次删除通知
func (e *Entity) signalDelete() {
	e.obsMu.Lock()
	obs := e.observers
	e.observers = nil
	h := e.Handle()
	for _, o := range obs {
		o.OnDelete(h)
	}
	e.obsMu.Unlock()
}
