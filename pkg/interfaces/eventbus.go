// Package interfaces 定义 go-dds 公共接口
//
// 本文件定义运行时事件总线：实体创建/删除与运行时阶段变更都经由它发布。
package interfaces

// ============================================================================
//                              EventBus - 事件总线
// ============================================================================

// EventBus 按事件类型分发的进程内总线
//
// 事件类型以指针零值标识，例如 new(types.EvtEntityDeleted)；通道上收到的
// 是值类型。投递不阻塞发布方：订阅缓冲区满时丢弃该订阅者的事件。
type EventBus interface {
	// Subscribe 订阅一种事件类型
	Subscribe(eventType any, opts ...SubscriptionOpt) (Subscription, error)

	// Emitter 为一种事件类型创建发射器
	Emitter(eventType any, opts ...EmitterOpt) (Emitter, error)

	// GetAllEventTypes 返回当前存在订阅者或发射器的事件类型（零值实例）
	GetAllEventTypes() []any
}

// Subscription 事件订阅
type Subscription interface {
	// Out 返回事件通道；总线关闭或取消订阅后通道关闭
	Out() <-chan any

	// Close 取消订阅，可重复调用
	Close() error
}

// Emitter 事件发射器
type Emitter interface {
	// Emit 非阻塞地投递到所有订阅者
	Emit(event any) error

	// Close 关闭发射器，之后 Emit 返回错误
	Close() error
}

// ============================================================================
//                              选项
// ============================================================================

// SubscriptionOpt 订阅选项
type SubscriptionOpt func(*SubscriptionSettings)

// EmitterOpt 发射器选项
type EmitterOpt func(*EmitterSettings)

// SubscriptionSettings 订阅设置，由总线实现读取
type SubscriptionSettings struct {
	// Buffer 通道缓冲区大小，未设置时使用总线默认值
	Buffer int
}

// EmitterSettings 发射器设置，由总线实现读取
type EmitterSettings struct {
	// Stateful 保留最近一次事件并在订阅时补发（运行时阶段事件使用）
	Stateful bool
}

// BufSize 设置订阅缓冲区大小
func BufSize(size int) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.Buffer = size
	}
}

// Stateful 新订阅者立即收到该类型最近一次发布的事件
func Stateful() EmitterOpt {
	return func(s *EmitterSettings) {
		s.Stateful = true
	}
}
