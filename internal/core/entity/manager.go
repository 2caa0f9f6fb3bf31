package entity

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-dds/internal/core/handles"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/lib/log"
	"github.com/dep2p/go-dds/pkg/types"
)

var logger = log.Logger("core/entity")

// Config 实体管理器配置
type Config struct {
	// DefaultStatusMask 新建实体的状态使能掩码，与类型允许的掩码求交
	DefaultStatusMask types.StatusMask

	// EmitLifecycleEvents 是否在事件总线上发布创建/删除事件
	EmitLifecycleEvents bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		DefaultStatusMask:   types.StatusWordMask,
		EmitLifecycleEvents: true,
	}
}

// Manager 实体管理器
//
// 持有句柄表与实例 ID 计数器，提供 pin/lock、删除、QoS、listener 与状态操作。
type Manager struct {
	table *handles.Table

	iid atomic.Uint64

	defaultStatusMask types.StatusMask

	createdEm pkgif.Emitter
	deletedEm pkgif.Emitter
}

// NewManager 创建实体管理器
//
// bus 为 nil 或配置关闭生命周期事件时不发布事件。
func NewManager(table *handles.Table, bus pkgif.EventBus, cfg Config) (*Manager, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil handle table", types.ErrBadParameter)
	}
	m := &Manager{
		table:             table,
		defaultStatusMask: cfg.DefaultStatusMask & types.StatusWordMask,
	}
	if bus != nil && cfg.EmitLifecycleEvents {
		var err error
		if m.createdEm, err = bus.Emitter(new(types.EvtEntityCreated)); err != nil {
			return nil, fmt.Errorf("create emitter: %w", err)
		}
		if m.deletedEm, err = bus.Emitter(new(types.EvtEntityDeleted)); err != nil {
			m.createdEm.Close()
			return nil, fmt.Errorf("create emitter: %w", err)
		}
	}
	return m, nil
}

// Close 关闭事件发射器
func (m *Manager) Close() error {
	if m.createdEm != nil {
		m.createdEm.Close()
	}
	if m.deletedEm != nil {
		m.deletedEm.Close()
	}
	return nil
}

// Table 返回句柄表
func (m *Manager) Table() *handles.Table {
	return m.table
}

func (m *Manager) nextInstanceID() types.InstanceID {
	return types.InstanceID(m.iid.Add(1))
}

func (m *Manager) emitCreated(e *Entity, parent types.Handle) {
	if m.createdEm == nil {
		return
	}
	_ = m.createdEm.Emit(types.EvtEntityCreated{
		Handle:   e.Handle(),
		Kind:     e.kind,
		Parent:   parent,
		Implicit: e.link.IsImplicit(),
		Time:     time.Now(),
	})
}

func (m *Manager) emitDeleted(h types.Handle, kind types.EntityKind, origin types.DeleteOrigin) {
	if m.deletedEm == nil {
		return
	}
	_ = m.deletedEm.Emit(types.EvtEntityDeleted{
		Handle: h,
		Kind:   kind,
		Origin: origin,
		Time:   time.Now(),
	})
}

// ============================================================================
//                              Pin / Lock
// ============================================================================

// Pin 以用户身份解析句柄
//
// 挂起或禁止用户访问的句柄返回 ErrBadParameter，不存在、关闭中或已推迟删除
// 的句柄返回 ErrNotFound。
func (m *Manager) Pin(h types.Handle) (*Entity, error) {
	l, err := m.table.Pin(h, true)
	if err != nil {
		return nil, err
	}
	return l.Owner().(*Entity), nil
}

// PinInternal 以内部身份解析句柄，挂起的句柄同样可见
func (m *Manager) PinInternal(h types.Handle) (*Entity, error) {
	l, err := m.table.Pin(h, false)
	if err != nil {
		return nil, err
	}
	return l.Owner().(*Entity), nil
}

// Lock pin 后获取实体主锁
//
// kind 不是 KindDontCare 且与实体类型不符时，在加锁前释放 pin 并返回
// ErrIllegalOperation。
func (m *Manager) Lock(h types.Handle, kind types.EntityKind) (*Entity, error) {
	e, err := m.Pin(h)
	if err != nil {
		return nil, err
	}
	if kind != types.KindDontCare && e.kind != kind {
		e.Unpin()
		return nil, fmt.Errorf("%w: %v is a %s, not a %s", types.ErrIllegalOperation, h, e.kind, kind)
	}
	e.mu.Lock()
	return e, nil
}

// PinKind 以用户身份解析句柄并检查类型
func (m *Manager) PinKind(h types.Handle, kind types.EntityKind) (*Entity, error) {
	e, err := m.Pin(h)
	if err != nil {
		return nil, err
	}
	if kind != types.KindDontCare && e.kind != kind {
		e.Unpin()
		return nil, fmt.Errorf("%w: %v is a %s, not a %s", types.ErrIllegalOperation, h, e.kind, kind)
	}
	return e, nil
}

// Count 返回存活实体数
func (m *Manager) Count() int {
	return m.table.Count()
}
