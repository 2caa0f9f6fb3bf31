package entity

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-dds/internal/core/handles"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/types"
)

// Entity 实体节点
//
// 由具体实体类型嵌入，不得复制。kind、parent、iid 在构造后不可变。
type Entity struct {
	m       *Manager
	link    *handles.Link
	kind    types.EntityKind
	iid     types.InstanceID
	guid    types.GUID
	domain  types.DomainID
	parent  *Entity
	deriver pkgif.Deriver

	// mu 保护以下字段
	mu       sync.Mutex
	cond     *sync.Cond
	children children
	qos      *types.QoS
	enabled  bool

	// obsMu 保护以下字段
	obsMu     sync.Mutex
	obsCond   *sync.Cond
	listener  *types.Listener
	observers []pkgif.Observer
	cbPending int
	cbRunning bool
	trigger   uint32

	// status 打包状态字，低 16 位已触发，高 16 位使能掩码
	status atomic.Uint32
}

// Handle 返回实体句柄
func (e *Entity) Handle() types.Handle {
	return e.link.Handle()
}

// Kind 返回实体类型
func (e *Entity) Kind() types.EntityKind {
	return e.kind
}

// InstanceID 返回进程内唯一的实例 ID
func (e *Entity) InstanceID() types.InstanceID {
	return e.iid
}

// GUID 返回实体 GUID
func (e *Entity) GUID() types.GUID {
	return e.guid
}

// DomainID 返回实体所属域
func (e *Entity) DomainID() types.DomainID {
	return e.domain
}

// Parent 返回父实体，根实体返回 nil
func (e *Entity) Parent() *Entity {
	return e.parent
}

// Deriver 返回具体实体类型
func (e *Entity) Deriver() pkgif.Deriver {
	return e.deriver
}

// Manager 返回实体所属的管理器
func (e *Entity) Manager() *Manager {
	return e.m
}

// IsImplicit 报告实体是否为隐式创建
func (e *Entity) IsImplicit() bool {
	return e.link.IsImplicit()
}

// IsClosed 报告实体是否已进入关闭状态
func (e *Entity) IsClosed() bool {
	return e.link.IsClosed()
}

// Participant 沿父链查找所属参与者
func (e *Entity) Participant() *Entity {
	for x := e; x != nil; x = x.parent {
		if x.kind == types.KindParticipant {
			return x
		}
	}
	return nil
}

// Ancestor 沿父链查找指定类型的祖先（包括自身）
func (e *Entity) Ancestor(kind types.EntityKind) *Entity {
	for x := e; x != nil; x = x.parent {
		if x.kind == kind {
			return x
		}
	}
	return nil
}

// ============================================================================
//                              Pin / Lock
// ============================================================================

// Unpin 释放一次 pin
func (e *Entity) Unpin() {
	e.m.table.Unpin(e.link)
}

// Unlock 释放主锁，然后释放 pin
func (e *Entity) Unlock() {
	e.mu.Unlock()
	e.Unpin()
}

// MutexLock 获取主锁，调用方必须已持有 pin
func (e *Entity) MutexLock() {
	e.mu.Lock()
}

// MutexUnlock 释放主锁
func (e *Entity) MutexUnlock() {
	e.mu.Unlock()
}

// Wait 在主锁上等待条件变量，调用方持有主锁
func (e *Entity) Wait() {
	e.cond.Wait()
}

// Broadcast 唤醒在主锁条件变量上等待的线程
func (e *Entity) Broadcast() {
	e.cond.Broadcast()
}

// ============================================================================
//                              加锁访问（调用方持有主锁）
// ============================================================================

// QoSLocked 返回当前 QoS，调用方持有主锁且不得修改返回值
func (e *Entity) QoSLocked() *types.QoS {
	if h, ok := e.deriver.(pkgif.SharedQoSHolder); ok {
		return h.SharedQoS()
	}
	return e.qos
}

// EnabledLocked 报告实体是否已使能
func (e *Entity) EnabledLocked() bool {
	return e.enabled
}

// ChildCountLocked 返回子实体数量
func (e *Entity) ChildCountLocked() int {
	return e.children.len()
}

// ForEachChildLocked 按实例 ID 顺序遍历子实体，fn 返回 false 停止
//
// fn 在父实体主锁内执行，不得获取子实体主锁。
func (e *Entity) ForEachChildLocked(fn func(c *Entity) bool) {
	for _, c := range e.children.list {
		if !fn(c) {
			return
		}
	}
}

// PinSelf 为已持有引用的实体再增加一次内部 pin
func (e *Entity) PinSelf() error {
	_, err := e.m.table.Pin(e.Handle(), false)
	return err
}

// AddRef 为跨树引用（读写者引用主题）增加一份引用
//
// 实体关闭中或已被推迟删除时返回 ErrPreconditionNotMet。
func (e *Entity) AddRef() error {
	return e.m.table.AddRef(e.link)
}

// DropRef 释放 AddRef 取得的引用
//
// 返回 true 表示实体的删除曾被推迟且这是最后一份引用，调用方必须随后
// 调用 Manager.DeleteImplicit 完成删除。
func (e *Entity) DropRef() bool {
	return e.m.table.DropRef(e.link)
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s(%v)", e.kind, e.Handle())
}

// ============================================================================
//                              构造
// ============================================================================

// Options 实体构造参数
type Options struct {
	// Kind 实体类型
	Kind types.EntityKind

	// Deriver 具体实体类型钩子，nil 时使用 NopDeriver
	Deriver pkgif.Deriver

	// QoS 已合并好的配置（用户策略已按类型掩码过滤，可含继承自父实体与主题的
	// 策略）；实体类型带配置时补齐默认值并校验
	QoS *types.QoS

	// Listener 用户提供的 listener，与父实体的 listener 合并
	Listener *types.Listener

	// Implicit 隐式创建（最后一个子实体离开后级联删除）
	Implicit bool

	// NoUserAccess 用户不可通过句柄访问
	NoUserAccess bool

	// Domain 所属域，父实体存在时默认继承
	Domain *types.DomainID
}

// Init 初始化实体并注册到句柄表与父实体
//
// parent 为 nil 时注册为根实体（句柄 types.RootHandle）。parent 非 nil 时
// 调用方必须持有父实体的 pin 与主锁，并在释放父实体主锁之前调用 InitComplete。
// 返回时实体处于挂起状态：内部查找可见，用户查找返回 ErrBadParameter。
func (m *Manager) Init(e *Entity, parent *Entity, o Options) (types.Handle, error) {
	if e.link != nil {
		return 0, fmt.Errorf("%w: entity already initialised", types.ErrPreconditionNotMet)
	}
	if (parent == nil) != (o.Kind == types.KindRoot) {
		return 0, fmt.Errorf("%w: %s requires a parent iff it is not the root", types.ErrBadParameter, o.Kind)
	}
	if parent != nil && !parent.kind.AllowsChildren() {
		return 0, fmt.Errorf("%w: %s cannot have children", types.ErrIllegalOperation, parent.kind)
	}

	e.m = m
	e.kind = o.Kind
	e.parent = parent
	e.deriver = o.Deriver
	if e.deriver == nil {
		e.deriver = NopDeriver{}
	}
	e.cond = sync.NewCond(&e.mu)
	e.obsCond = sync.NewCond(&e.obsMu)
	e.iid = m.nextInstanceID()
	e.guid = types.NewGUID()
	switch {
	case o.Domain != nil:
		e.domain = *o.Domain
	case parent != nil:
		e.domain = parent.domain
	default:
		e.domain = types.DefaultDomainID
	}

	if o.Kind.HasQoS() {
		if _, shared := e.deriver.(pkgif.SharedQoSHolder); !shared {
			q := types.NewQoS()
			q.MergeInMissing(o.QoS, types.AllPolicies)
			q.MergeInMissing(types.DefaultQoS(o.Kind), types.AllPolicies)
			if err := q.Validate(); err != nil {
				return 0, err
			}
			e.qos = q
		}
	}

	e.enabled = true
	if parent != nil {
		if pq := parent.QoSLocked(); pq.Has(types.PolicyEntityFactory) && !pq.EntityFactory.AutoEnable {
			e.enabled = false
		}
	}

	if o.Kind.HasStatus() {
		mask := m.defaultStatusMask & types.StatusMaskFor(o.Kind)
		e.status.Store(uint32(mask) << types.EnabledShift)
	}

	e.listener = types.NewListener()
	e.listener.Merge(o.Listener)
	if parent != nil {
		parent.obsMu.Lock()
		e.listener.Inherit(parent.listener)
		parent.obsMu.Unlock()
	}

	e.link = handles.NewLink(e)
	if parent == nil {
		if _, err := m.table.RegisterSpecial(e.link, o.Implicit, true); err != nil {
			e.link = nil
			return 0, err
		}
		return e.link.Handle(), nil
	}

	if parent.link.IsClosed() {
		e.link = nil
		return 0, fmt.Errorf("%w: parent %v is being deleted", types.ErrPreconditionNotMet, parent.Handle())
	}
	if _, err := m.table.Register(e.link, o.Implicit, o.Kind.AllowsChildren(), !o.NoUserAccess); err != nil {
		e.link = nil
		return 0, err
	}
	if err := m.table.AddRef(parent.link); err != nil {
		_ = m.table.Delete(e.link)
		e.link = nil
		return 0, err
	}
	parent.children.insert(e)
	return e.link.Handle(), nil
}

// InitComplete 构造完成，解除挂起并释放注册时的 pin
func (m *Manager) InitComplete(e *Entity) {
	m.table.Unpend(e.link)
	var parent types.Handle
	if e.parent != nil {
		parent = e.parent.Handle()
	}
	logger.Debug("实体已创建", "handle", e.Handle(), "kind", e.kind, "parent", parent)
	m.emitCreated(e, parent)
}

// InitAbort 撤销尚未 InitComplete 的 Init
//
// 调用方仍持有父实体主锁。
func (m *Manager) InitAbort(e *Entity) {
	if p := e.parent; p != nil {
		p.children.remove(e)
		m.table.DropChildRefAndPin(p.link, false)
	}
	if err := m.table.Delete(e.link); err != nil {
		logger.Warn("撤销实体注册失败", "handle", e.Handle(), "err", err)
	}
}
