package eventbus

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrClosed 事件总线已关闭
	ErrClosed = errors.New("eventbus closed")
	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("invalid event type")
	// ErrNonPointerType 非指针类型
	ErrNonPointerType = errors.New("event type must be a pointer")
	// ErrEmitterClosed 发射器已关闭
	ErrEmitterClosed = errors.New("emitter closed")
)

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 事件总线
type Bus struct {
	mu     sync.RWMutex
	nodes  map[reflect.Type]*node
	closed bool

	defaultBuffer int
}

// node 单个事件类型的订阅者集合
type node struct {
	mu        sync.Mutex
	typ       reflect.Type
	sinks     []*Subscription
	emitters  atomic.Int32
	keepLast  bool
	last      any
	dropCount atomic.Int64
}

// NewBus 创建新的事件总线
//
// defaultBuffer 为未指定 BufSize 时的订阅缓冲区大小，<= 0 时使用 16。
func NewBus(defaultBuffer int) *Bus {
	if defaultBuffer <= 0 {
		defaultBuffer = 16
	}
	return &Bus{
		nodes:         make(map[reflect.Type]*node),
		defaultBuffer: defaultBuffer,
	}
}

// eventElem 取出指针事件类型的元素类型
func eventElem(eventType any) (reflect.Type, error) {
	if eventType == nil {
		return nil, ErrInvalidEventType
	}
	typ := reflect.TypeOf(eventType)
	if typ.Kind() != reflect.Ptr {
		return nil, ErrNonPointerType
	}
	return typ.Elem(), nil
}

// getNode 返回（必要时创建）类型节点，调用方持有 b.mu 写锁
func (b *Bus) getNode(typ reflect.Type) *node {
	n, ok := b.nodes[typ]
	if !ok {
		n = &node{typ: typ}
		b.nodes[typ] = n
	}
	return n
}

// Subscribe 订阅事件
func (b *Bus) Subscribe(eventType any, opts ...pkgif.SubscriptionOpt) (pkgif.Subscription, error) {
	typ, err := eventElem(eventType)
	if err != nil {
		return nil, err
	}
	settings := pkgif.SubscriptionSettings{Buffer: b.defaultBuffer}
	for _, opt := range opts {
		opt(&settings)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	n := b.getNode(typ)
	sub := &Subscription{bus: b, node: n, out: make(chan any, settings.Buffer)}

	n.mu.Lock()
	n.sinks = append(n.sinks, sub)
	if n.keepLast && n.last != nil {
		select {
		case sub.out <- n.last:
		default:
		}
	}
	n.mu.Unlock()
	return sub, nil
}

// Emitter 获取发射器
func (b *Bus) Emitter(eventType any, opts ...pkgif.EmitterOpt) (pkgif.Emitter, error) {
	typ, err := eventElem(eventType)
	if err != nil {
		return nil, err
	}
	var settings pkgif.EmitterSettings
	for _, opt := range opts {
		opt(&settings)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	n := b.getNode(typ)
	n.emitters.Add(1)
	if settings.Stateful {
		n.mu.Lock()
		n.keepLast = true
		n.mu.Unlock()
	}
	return &Emitter{bus: b, node: n}, nil
}

// GetAllEventTypes 返回所有已注册的事件类型（零值实例）
func (b *Bus) GetAllEventTypes() []any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]any, 0, len(b.nodes))
	for typ := range b.nodes {
		out = append(out, reflect.Zero(typ).Interface())
	}
	return out
}

// Close 关闭总线，关闭所有订阅通道
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	nodes := b.nodes
	b.nodes = make(map[reflect.Type]*node)
	b.mu.Unlock()

	for _, n := range nodes {
		n.mu.Lock()
		sinks := n.sinks
		n.sinks = nil
		n.mu.Unlock()
		for _, s := range sinks {
			s.closeChannel()
		}
	}
	return nil
}

// ============================================================================
// 内部方法
// ============================================================================

// removeSub 从节点移除订阅，节点无订阅者和发射器时删除
func (b *Bus) removeSub(sub *Subscription) {
	n := sub.node
	n.mu.Lock()
	for i, s := range n.sinks {
		if s == sub {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			break
		}
	}
	n.mu.Unlock()
	b.tryDropNode(n)
}

// tryDropNode 没有订阅者和发射器时删除节点
func (b *Bus) tryDropNode(n *node) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n.mu.Lock()
	idle := len(n.sinks) == 0 && n.emitters.Load() == 0
	n.mu.Unlock()
	if idle && b.nodes[n.typ] == n {
		delete(b.nodes, n.typ)
	}
}

// emit 非阻塞地投递到所有订阅者
func (n *node) emit(event any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.keepLast {
		n.last = event
	}
	for _, sub := range n.sinks {
		select {
		case sub.out <- event:
		default:
			dropped := n.dropCount.Add(1)
			if dropped%100 == 1 {
				logger.Warn("slow subscriber, dropping events",
					"type", n.typ,
					"dropped", dropped)
			}
		}
	}
}
