// Package interfaces 定义 go-dds 公共接口
//
// 本文件定义实体核心回调到具体实体类型的接口。
package interfaces

import "github.com/dep2p/go-dds/pkg/types"

// ============================================================================
//                              Deriver - 类型钩子
// ============================================================================

// Deriver 具体实体类型提供给通用生命周期协议的钩子
//
// 调用约定：
//   - Interrupt 在实体未加锁时调用，不得阻塞
//   - Close 在所有外部 pin 排空后调用，之后不得再接受新工作
//   - Delete 在子实体删除并从父实体摘除后调用；返回 types.ErrNoData 表示
//     已完成全部清理，通用代码不得再触碰该实体
//   - SetQoS 在实体加锁时调用，enabled 表示实体是否已使能
//   - ValidateStatus 检查状态掩码是否适用于该类型
type Deriver interface {
	Interrupt()
	Close()
	Delete() error
	SetQoS(qos *types.QoS, enabled bool) error
	ValidateStatus(mask types.StatusMask) error
}

// SharedQoSHolder 配置由共享对象持有的实体（同名主题的多个本地句柄共用一份配置）
type SharedQoSHolder interface {
	// SharedQoS 返回共享对象当前的配置
	SharedQoS() *types.QoS

	// BeginQoSUpdate 等待共享对象上没有进行中的修改后占用之，返回共享对象标识
	BeginQoSUpdate() any

	// EndQoSUpdate 释放占用；q 非 nil 时先替换共享配置
	EndQoSUpdate(q *types.QoS)
}

// TopicUser 引用主题的实体（读者、写者）
type TopicUser interface {
	// UsesTopicObject 报告该实体是否基于给定共享主题对象创建
	UsesTopicObject(key any) bool
}

// ============================================================================
//                              Observer - 观察者
// ============================================================================

// Observer 实体状态与删除的观察者（等待集）
//
// OnStatus 在被观察实体的观察者锁内调用，不得重入被观察实体的注册或删除。
type Observer interface {
	// ObserverHandle 观察者标识
	ObserverHandle() types.Handle

	// OnAttach 注册时调用，返回 false 拒绝注册
	OnAttach(observed types.Handle, arg any) bool

	// OnStatus 被观察实体状态或触发值变化
	OnStatus(observed types.Handle, status types.StatusMask)

	// OnDelete 被观察实体已删除，或注销时要求通知
	OnDelete(observed types.Handle)
}
