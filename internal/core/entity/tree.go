package entity

import (
	"github.com/dep2p/go-dds/pkg/types"
)

// GetParent 返回父实体句柄，根实体返回 0
func (m *Manager) GetParent(h types.Handle) (types.Handle, error) {
	e, err := m.Pin(h)
	if err != nil {
		return 0, err
	}
	defer e.Unpin()
	if e.parent == nil {
		return 0, nil
	}
	return e.parent.Handle(), nil
}

// GetKind 返回实体类型
func (m *Manager) GetKind(h types.Handle) (types.EntityKind, error) {
	e, err := m.Pin(h)
	if err != nil {
		return types.KindDontCare, err
	}
	defer e.Unpin()
	return e.kind, nil
}

// GetParticipant 返回所属参与者句柄，不在参与者之下时返回 0
func (m *Manager) GetParticipant(h types.Handle) (types.Handle, error) {
	e, err := m.Pin(h)
	if err != nil {
		return 0, err
	}
	defer e.Unpin()
	if p := e.Participant(); p != nil {
		return p.Handle(), nil
	}
	return 0, nil
}

// GetChildren 返回用户可见的子实体句柄（按实例 ID 排序）
//
// 挂起或推迟删除的子实体不出现在结果中。
func (m *Manager) GetChildren(h types.Handle) ([]types.Handle, error) {
	e, err := m.Pin(h)
	if err != nil {
		return nil, err
	}
	defer e.Unpin()

	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.Handle, 0, e.children.len())
	for _, c := range e.children.list {
		if _, err := m.table.Pin(c.Handle(), true); err != nil {
			continue
		}
		out = append(out, c.Handle())
		c.Unpin()
	}
	return out, nil
}

// GetInstanceHandle 返回实例 ID
func (m *Manager) GetInstanceHandle(h types.Handle) (types.InstanceID, error) {
	e, err := m.Pin(h)
	if err != nil {
		return 0, err
	}
	defer e.Unpin()
	return e.iid, nil
}

// GetGUID 返回实体 GUID
func (m *Manager) GetGUID(h types.Handle) (types.GUID, error) {
	e, err := m.Pin(h)
	if err != nil {
		return types.NilGUID, err
	}
	defer e.Unpin()
	return e.guid, nil
}

// GetDomainID 返回实体所属域
func (m *Manager) GetDomainID(h types.Handle) (types.DomainID, error) {
	e, err := m.Pin(h)
	if err != nil {
		return 0, err
	}
	defer e.Unpin()
	return e.domain, nil
}

// Enable 使能实体
func (m *Manager) Enable(h types.Handle) error {
	e, err := m.Lock(h, types.KindDontCare)
	if err != nil {
		return err
	}
	defer e.Unlock()
	if !e.enabled {
		e.enabled = true
		logger.Debug("实体已使能", "handle", h, "kind", e.kind)
	}
	return nil
}

// IsEnabled 报告实体是否已使能
func (m *Manager) IsEnabled(h types.Handle) (bool, error) {
	e, err := m.Lock(h, types.KindDontCare)
	if err != nil {
		return false, err
	}
	defer e.Unlock()
	return e.enabled, nil
}
