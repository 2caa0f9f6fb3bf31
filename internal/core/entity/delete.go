package entity

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/dep2p/go-dds/pkg/types"
)

// ============================================================================
//                              删除入口
// ============================================================================

// Delete 用户删除实体
//
// 与其他删除并发时只有一个调用者执行拆除，其余调用者立即返回成功。
// 仍被读写者引用的主题推迟删除：句柄对用户立即失效，最后一个引用释放时完成拆除。
func (m *Manager) Delete(h types.Handle) error {
	return m.deleteHandle(h, types.OriginExplicit)
}

// DeleteImplicit 内部触发的删除（推迟删除的主题在最后一个引用释放后调用）
//
// 实体已不存在时视为成功。
func (m *Manager) DeleteImplicit(h types.Handle) error {
	return m.deleteHandle(h, types.OriginImplicit)
}

func (m *Manager) deleteHandle(h types.Handle, origin types.DeleteOrigin) error {
	l, err := m.table.PinForDelete(h, origin != types.OriginImplicit, origin == types.OriginExplicit)
	switch {
	case err == nil:
		return m.deletePinned(l.Owner().(*Entity), origin)
	case errors.Is(err, types.ErrTryAgain):
		return nil
	case origin != types.OriginExplicit && errors.Is(err, types.ErrNotFound):
		return nil
	default:
		return err
	}
}

// ============================================================================
//                              拆除
// ============================================================================

// deletePinned 拆除已由 PinForDelete 关闭并 pin 的实体
func (m *Manager) deletePinned(e *Entity, origin types.DeleteOrigin) error {
	h, kind := e.Handle(), e.kind

	// 屏障：此前已持有主锁的线程都已完成
	e.mu.Lock()
	if !e.link.IsClosed() {
		e.mu.Unlock()
		panic(fmt.Sprintf("entity: deleting %v without closing flag", h))
	}
	logger.Debug("删除实体", "handle", h, "kind", kind, "origin", origin)

	// 关闭状态使能掩码，此后不再调度新的 listener
	e.obsMu.Lock()
	if kind.HasStatus() {
		e.andStatus(uint32(types.StatusWordMask))
	}
	e.obsMu.Unlock()
	e.mu.Unlock()

	// 唤醒阻塞在该实体上的调用者，钩子内可以自由加锁
	e.deriver.Interrupt()

	e.obsMu.Lock()
	for e.cbPending > 0 {
		e.obsCond.Wait()
	}
	e.listener.Reset()
	e.obsMu.Unlock()

	m.table.CloseWait(e.link)

	e.deriver.Close()
	e.signalDelete()

	errs := m.deleteChildren(e)

	if err := m.table.Delete(e.link); err != nil {
		panic(fmt.Sprintf("entity: handle delete of %v: %v", h, err))
	}

	var parentToDelete *Entity
	if p := e.parent; p != nil {
		p.mu.Lock()
		if !p.children.remove(e) {
			p.mu.Unlock()
			panic(fmt.Sprintf("entity: %v missing from parent %v", h, p.Handle()))
		}
		if m.table.DropChildRefAndPin(p.link, origin != types.OriginFromParent) {
			parentToDelete = p
		}
		p.cond.Broadcast()
		p.mu.Unlock()
	}

	if err := e.deriver.Delete(); err != nil && !errors.Is(err, types.ErrNoData) {
		errs = multierr.Append(errs, fmt.Errorf("delete %s %v: %w", kind, h, err))
	}
	m.emitDeleted(h, kind, origin)

	if parentToDelete != nil {
		logger.Debug("级联删除隐式父实体", "handle", parentToDelete.Handle(), "kind", parentToDelete.kind)
		errs = multierr.Append(errs, m.deletePinned(parentToDelete, types.OriginImplicit))
	}
	return errs
}

// deleteChildren 删除所有子实体：先非主题，后主题
//
// 读写者的删除可能释放主题的最后一个引用并删除主题，因此主题放在第二轮。
// 已被其他线程删除中的子实体，等待其离开子集合。
func (m *Manager) deleteChildren(e *Entity) error {
	var errs error
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		c := e.children.firstNotKind(types.KindTopic)
		if c == nil {
			break
		}
		errs = multierr.Append(errs, m.deleteChildLocked(e, c))
	}
	for {
		c := e.children.first()
		if c == nil {
			break
		}
		errs = multierr.Append(errs, m.deleteChildLocked(e, c))
	}
	return errs
}

// deleteChildLocked 删除单个子实体，调用方持有父实体主锁，返回时仍持有
func (m *Manager) deleteChildLocked(e, c *Entity) error {
	l, err := m.table.PinForDelete(c.Handle(), true, false)
	if err != nil {
		for e.children.contains(c) {
			e.cond.Wait()
		}
		return nil
	}
	e.mu.Unlock()
	err = m.deletePinned(l.Owner().(*Entity), types.OriginFromParent)
	e.mu.Lock()
	return err
}
