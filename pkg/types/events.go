// Package types 定义 go-dds 公共类型
//
// 本文件定义事件相关类型。
package types

import (
	"time"
)

// ============================================================================
//                              实体生命周期事件
// ============================================================================

// EvtEntityCreated 实体创建完成（已解除挂起，对外可见）
type EvtEntityCreated struct {
	Handle   Handle
	Kind     EntityKind
	Parent   Handle
	Implicit bool
	Time     time.Time
}

// EvtEntityDeleted 实体已删除并释放
type EvtEntityDeleted struct {
	Handle Handle
	Kind   EntityKind
	Origin DeleteOrigin
	Time   time.Time
}

// ============================================================================
//                              运行时阶段事件
// ============================================================================

// EvtRuntimePhase 运行时阶段变更
//
// 以有状态模式发布：新订阅者立即收到最近一次阶段事件。
type EvtRuntimePhase struct {
	From string
	To   string
	Time time.Time
}
