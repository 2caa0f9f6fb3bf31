package entity

import (
	"fmt"

	"github.com/dep2p/go-dds/pkg/types"
)

// ============================================================================
//                              状态字原子操作
// ============================================================================

func (e *Entity) andStatus(v uint32) uint32 {
	for {
		old := e.status.Load()
		if e.status.CompareAndSwap(old, old&v) {
			return old
		}
	}
}

// StatusSet 置位状态
//
// 仅当这些位当前已使能且此前至少有一位未置位时置位并通知观察者，返回 true。
// 冗余置位或被屏蔽的置位返回 false。
func (e *Entity) StatusSet(bits types.StatusMask) bool {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	return e.statusSetLocked(bits)
}

func (e *Entity) statusSetLocked(bits types.StatusMask) bool {
	for {
		old := e.status.Load()
		delta := uint32(bits) & (old >> types.EnabledShift)
		if delta == 0 || old&delta != 0 {
			return false
		}
		if e.status.CompareAndSwap(old, old|delta) {
			e.signalLocked(types.StatusMask(delta))
			return true
		}
	}
}

// StatusReset 清除状态位
func (e *Entity) StatusReset(bits types.StatusMask) {
	e.andStatus(^uint32(bits & types.StatusWordMask))
}

// StatusEnabled 报告状态位是否已使能
func (e *Entity) StatusEnabled(bits types.StatusMask) bool {
	return (e.status.Load()>>types.EnabledShift)&uint32(bits) != 0
}

// StatusChanges 返回已触发的状态位
func (e *Entity) StatusChanges() types.StatusMask {
	return types.StatusMask(e.status.Load()) & types.StatusWordMask
}

// ============================================================================
//                              触发值（条件与等待集）
// ============================================================================

// SetTrigger 设置触发值，从 0 变为非 0 时通知观察者
func (e *Entity) SetTrigger(v uint32) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	old := e.trigger
	e.trigger = v
	if old == 0 && v != 0 {
		e.signalLocked(types.StatusMask(v))
	}
}

// AddTrigger 调整触发计数（读条件按匹配样本计数），返回新值
func (e *Entity) AddTrigger(delta int32) uint32 {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	old := e.trigger
	nv := int64(old) + int64(delta)
	if nv < 0 {
		nv = 0
	}
	e.trigger = uint32(nv)
	if old == 0 && e.trigger != 0 {
		e.signalLocked(types.StatusMask(e.trigger))
	}
	return e.trigger
}

// Trigger 返回当前触发值
func (e *Entity) Trigger() uint32 {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	return e.trigger
}

// TakeTrigger 读取并清零触发值
func (e *Entity) TakeTrigger() uint32 {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	v := e.trigger
	e.trigger = 0
	return v
}

// Triggered 报告实体是否处于触发状态
//
// 条件与等待集看触发值，其余类型看已触发的状态位。
func (e *Entity) Triggered() bool {
	switch e.kind {
	case types.KindReadCondition, types.KindQueryCondition, types.KindGuardCondition, types.KindWaitSet:
		return e.Trigger() != 0
	default:
		return e.StatusChanges() != 0
	}
}

// ============================================================================
//                              状态 API
// ============================================================================

// GetStatusChanges 返回已触发的状态位
func (m *Manager) GetStatusChanges(h types.Handle) (types.StatusMask, error) {
	e, err := m.Lock(h, types.KindDontCare)
	if err != nil {
		return 0, err
	}
	defer e.Unlock()
	if !e.kind.HasStatus() {
		return 0, fmt.Errorf("%w: %s has no status", types.ErrIllegalOperation, e.kind)
	}
	return e.StatusChanges(), nil
}

// GetStatusMask 返回状态使能掩码
func (m *Manager) GetStatusMask(h types.Handle) (types.StatusMask, error) {
	e, err := m.Pin(h)
	if err != nil {
		return 0, err
	}
	defer e.Unpin()
	if !e.kind.HasStatus() {
		return 0, fmt.Errorf("%w: %s has no status", types.ErrIllegalOperation, e.kind)
	}
	return types.StatusMask(e.status.Load() >> types.EnabledShift), nil
}

// SetStatusMask 设置状态使能掩码，同时清除不再使能的已触发位
//
// 在主锁内检查关闭状态，与删除流程关闭使能掩码的步骤互斥。
func (m *Manager) SetStatusMask(h types.Handle, mask types.StatusMask) error {
	if mask&^types.StatusWordMask != 0 {
		return fmt.Errorf("%w: status mask %#x out of range", types.ErrBadParameter, uint32(mask))
	}
	e, err := m.Lock(h, types.KindDontCare)
	if err != nil {
		return err
	}
	defer e.Unlock()
	if !e.kind.HasStatus() {
		return fmt.Errorf("%w: %s has no status", types.ErrIllegalOperation, e.kind)
	}
	if e.link.IsClosed() {
		return fmt.Errorf("%w: %v is being deleted", types.ErrPreconditionNotMet, h)
	}
	if err := e.deriver.ValidateStatus(mask); err != nil {
		return err
	}

	e.obsMu.Lock()
	for e.cbPending > 0 {
		e.obsCond.Wait()
	}
	for {
		old := e.status.Load()
		nv := uint32(mask)<<types.EnabledShift | old&uint32(mask)
		if e.status.CompareAndSwap(old, nv) {
			break
		}
	}
	e.obsMu.Unlock()
	return nil
}

// ReadStatus 读取状态位
func (m *Manager) ReadStatus(h types.Handle, mask types.StatusMask) (types.StatusMask, error) {
	return m.readTakeStatus(h, mask, false)
}

// TakeStatus 读取并清除状态位
func (m *Manager) TakeStatus(h types.Handle, mask types.StatusMask) (types.StatusMask, error) {
	return m.readTakeStatus(h, mask, true)
}

func (m *Manager) readTakeStatus(h types.Handle, mask types.StatusMask, reset bool) (types.StatusMask, error) {
	if mask&^types.StatusWordMask != 0 {
		return 0, fmt.Errorf("%w: status mask %#x out of range", types.ErrBadParameter, uint32(mask))
	}
	e, err := m.Lock(h, types.KindDontCare)
	if err != nil {
		return 0, err
	}
	defer e.Unlock()
	if !e.kind.HasStatus() {
		return 0, fmt.Errorf("%w: %s has no status", types.ErrIllegalOperation, e.kind)
	}
	if err := e.deriver.ValidateStatus(mask); err != nil {
		return 0, err
	}

	var s types.StatusMask
	if reset {
		s = types.StatusMask(e.andStatus(^uint32(mask))) & mask
	} else {
		s = types.StatusMask(e.status.Load()) & mask
	}

	// 读者自身不保存 DataOnReaders，由父订阅者决定
	if e.kind == types.KindReader && mask&types.DataOnReadersStatus != 0 {
		if p := e.parent; p != nil && p.kind == types.KindSubscriber {
			s |= p.StatusChanges() & types.DataOnReadersStatus
		}
	}
	return s, nil
}

// Triggered 报告句柄对应实体是否处于触发状态
func (m *Manager) Triggered(h types.Handle) (bool, error) {
	e, err := m.Pin(h)
	if err != nil {
		return false, err
	}
	defer e.Unpin()
	return e.Triggered(), nil
}
