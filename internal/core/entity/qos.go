package entity

import (
	"fmt"

	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/types"
)

// ============================================================================
//                              QoS 读取
// ============================================================================

// GetQoS 返回实体配置副本
func (m *Manager) GetQoS(h types.Handle) (*types.QoS, error) {
	e, err := m.Lock(h, types.KindDontCare)
	if err != nil {
		return nil, err
	}
	defer e.Unlock()
	if !e.kind.HasQoS() {
		return nil, fmt.Errorf("%w: %s has no qos", types.ErrIllegalOperation, e.kind)
	}
	return e.QoSLocked().Clone(), nil
}

// ============================================================================
//                              QoS 修改
// ============================================================================

// SetQoS 修改实体配置
//
// q 中属于该类型的策略覆盖当前值，其余策略保持不变。已使能实体只允许
// 修改可变策略；影响匹配的策略返回 ErrUnsupported。成功后下推到依赖方。
func (m *Manager) SetQoS(h types.Handle, q *types.QoS) error {
	if q == nil {
		return fmt.Errorf("%w: nil qos", types.ErrBadParameter)
	}
	e, err := m.Pin(h)
	if err != nil {
		return err
	}
	defer e.Unpin()
	if !e.kind.HasQoS() {
		return fmt.Errorf("%w: %s has no qos", types.ErrIllegalOperation, e.kind)
	}

	if holder, ok := e.deriver.(pkgif.SharedQoSHolder); ok {
		return m.setSharedQoS(e, holder, q)
	}

	e.mu.Lock()
	changed, err := e.setQoSLocked(e.qos, q, e.kind.QoSMask())
	if err == nil && changed != nil {
		e.qos = changed
	}
	e.mu.Unlock()
	if err != nil || changed == nil {
		return err
	}

	switch e.kind {
	case types.KindPublisher, types.KindSubscriber:
		m.pushdownGroupQoS(e)
	}
	return nil
}

// setSharedQoS 修改由共享对象持有的配置（主题）
//
// BeginQoSUpdate 等待同一共享对象上的其他修改完成，保证修改串行。
func (m *Manager) setSharedQoS(e *Entity, holder pkgif.SharedQoSHolder, q *types.QoS) error {
	key := holder.BeginQoSUpdate()
	e.mu.Lock()
	changed, err := e.setQoSLocked(holder.SharedQoS(), q, e.kind.QoSMask())
	e.mu.Unlock()
	holder.EndQoSUpdate(changed)
	if err != nil || changed == nil {
		return err
	}

	pp := e.parent
	if pp == nil || pp.PinSelf() != nil {
		return nil
	}
	m.pushdownTopicQoS(pp, holder, key)
	pp.Unpin()
	return nil
}

// setQoSLocked 计算并校验新配置，调用方持有主锁
//
// 返回 nil, nil 表示没有变化。
func (e *Entity) setQoSLocked(cur, proposed *types.QoS, mask types.PolicyMask) (*types.QoS, error) {
	nq := types.NewQoS()
	nq.MergeInMissing(proposed, mask)
	nq.MergeInMissing(cur, types.AllPolicies)
	if err := nq.Validate(); err != nil {
		return nil, err
	}
	if e.enabled {
		delta := types.Delta(cur, nq, types.AllPolicies)
		switch {
		case delta == 0:
			return nil, nil
		case delta&^types.ChangeableMask != 0:
			return nil, fmt.Errorf("%w: %s", types.ErrImmutablePolicy, delta&^types.ChangeableMask)
		case delta&types.MatchingMask != 0:
			return nil, fmt.Errorf("%w: changing %s affects matching", types.ErrUnsupported, delta&types.MatchingMask)
		}
	} else if nq.Equal(cur) {
		return nil, nil
	}
	if err := e.deriver.SetQoS(nq, e.enabled); err != nil {
		return nil, err
	}
	return nq, nil
}

// ============================================================================
//                              下推
// ============================================================================

// pushdownGroupQoS 发布者/订阅者将 GroupData 与 Partition 下推到读写者
//
// 按实例 ID 游标遍历：解父锁、锁子、再锁父，避免持父锁获取子锁。
func (m *Manager) pushdownGroupQoS(e *Entity) {
	var last types.InstanceID
	e.mu.Lock()
	for {
		c := e.children.succ(last)
		if c == nil {
			break
		}
		last = c.iid
		if c.PinSelf() != nil {
			continue
		}
		e.mu.Unlock()

		c.mu.Lock()
		e.mu.Lock()
		if nq, err := c.setQoSLocked(c.qos, e.qos, types.PolicyGroupData|types.PolicyPartition); err != nil {
			logger.Debug("下推组配置被拒绝", "child", c.Handle(), "err", err)
		} else if nq != nil {
			c.qos = nq
		}
		c.mu.Unlock()
		c.Unpin()
	}
	e.mu.Unlock()
}

// pushdownTopicQoS 将 TopicData 下推到基于同一共享主题对象创建的读写者
//
// e 已 pin 且未持锁。读写者以外的子实体递归下行。共享配置在读写者加锁后
// 读取，并发修改的下推无论完成先后，读写者最终都持有最新的 TopicData。
func (m *Manager) pushdownTopicQoS(e *Entity, holder pkgif.SharedQoSHolder, key any) {
	if u, ok := e.deriver.(pkgif.TopicUser); ok {
		if !u.UsesTopicObject(key) {
			return
		}
		e.mu.Lock()
		if nq, err := e.setQoSLocked(e.qos, holder.SharedQoS(), types.PolicyTopicData); err != nil {
			logger.Debug("下推主题配置被拒绝", "entity", e.Handle(), "err", err)
		} else if nq != nil {
			e.qos = nq
		}
		e.mu.Unlock()
		return
	}

	var last types.InstanceID
	e.mu.Lock()
	for {
		c := e.children.succ(last)
		if c == nil {
			break
		}
		last = c.iid
		if c.PinSelf() != nil {
			continue
		}
		e.mu.Unlock()
		m.pushdownTopicQoS(c, holder, key)
		e.mu.Lock()
		c.Unpin()
	}
	e.mu.Unlock()
}
