package entity

import (
	"github.com/dep2p/go-dds/pkg/types"
)

// ============================================================================
//                              Listener
// ============================================================================

// GetListener 返回实体当前生效的 listener 副本
func (m *Manager) GetListener(h types.Handle) (*types.Listener, error) {
	e, err := m.Pin(h)
	if err != nil {
		return nil, err
	}
	defer e.Unpin()
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	return e.listener.Clone(), nil
}

// SetListener 替换实体的 listener 并下推到后代
//
// 新 listener 为 l 与各祖先 listener 的合并；l 为 nil 时只保留继承部分。
// 已有 listener 的状态位被清除。
func (m *Manager) SetListener(h types.Handle, l *types.Listener) error {
	e, err := m.Pin(h)
	if err != nil {
		return err
	}
	defer e.Unpin()

	e.obsMu.Lock()
	for e.cbPending > 0 {
		e.obsCond.Wait()
	}
	e.listener.Reset()
	e.listener.Merge(l)
	for x := e.parent; x != nil; x = x.parent {
		x.obsMu.Lock()
		e.listener.Inherit(x.listener)
		x.obsMu.Unlock()
	}
	e.clearStatusWithListener()
	e.obsMu.Unlock()

	m.pushdownListener(e)
	return nil
}

// clearStatusWithListener 清除已有 listener 接管的状态位，调用方持有观察者锁
func (e *Entity) clearStatusWithListener() {
	e.andStatus(^uint32(e.listener.Mask()))
}

// pushdownListener 深度优先下推 listener，e 已 pin 且未持锁
func (m *Manager) pushdownListener(e *Entity) {
	var last types.InstanceID
	e.mu.Lock()
	for {
		c := e.children.succ(last)
		if c == nil {
			break
		}
		last = c.iid
		if _, err := m.table.Pin(c.Handle(), true); err != nil {
			continue
		}
		e.mu.Unlock()

		c.obsMu.Lock()
		for c.cbPending > 0 {
			c.obsCond.Wait()
		}
		e.obsMu.Lock()
		c.listener.OverrideInherited(e.listener)
		e.obsMu.Unlock()
		c.clearStatusWithListener()
		c.obsMu.Unlock()

		m.pushdownListener(c)

		e.mu.Lock()
		c.Unpin()
	}
	e.mu.Unlock()
}

// ============================================================================
//                              状态上报
// ============================================================================

// RaiseStatus 由协议层报告状态变化
//
// 状态已使能且存在对应 listener 时调用 listener 并清除该位；否则置位并通知
// 观察者。同一实体上的 listener 调用串行执行，并计入 cbPending。
// 返回是否调用了 listener。
func (e *Entity) RaiseStatus(id types.StatusID) bool {
	return e.dispatchStatus(id, true)
}

// CallListener 状态已使能且存在对应 listener 时调用之，返回是否调用
//
// 未调用时不改变状态位。
func (e *Entity) CallListener(id types.StatusID) bool {
	return e.dispatchStatus(id, false)
}

// HasListener 报告实体是否设置了（含继承的）对应 listener
func (e *Entity) HasListener(id types.StatusID) bool {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	return e.listener.Get(id) != nil
}

func (e *Entity) dispatchStatus(id types.StatusID, setOtherwise bool) bool {
	bit := id.Mask()
	invoked := false
	e.obsMu.Lock()
	for e.cbRunning {
		e.obsCond.Wait()
	}
	e.cbPending++
	if fn := e.listener.Get(id); fn != nil && e.StatusEnabled(bit) {
		e.cbRunning = true
		e.obsMu.Unlock()
		fn(e.Handle(), id)
		e.obsMu.Lock()
		e.cbRunning = false
		e.StatusReset(bit)
		invoked = true
	} else if setOtherwise {
		e.statusSetLocked(bit)
	}
	e.cbPending--
	e.obsCond.Broadcast()
	e.obsMu.Unlock()
	return invoked
}
