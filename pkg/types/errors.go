// Package types 定义 go-dds 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              句柄与实体错误
// ============================================================================

var (
	// ErrNotFound 句柄未知或实体已删除
	ErrNotFound = errors.New("entity not found")

	// ErrIllegalOperation 类型不匹配或操作不适用于该类型
	ErrIllegalOperation = errors.New("illegal operation")

	// ErrBadParameter 参数无效（空参数、越界掩码、挂起句柄）
	ErrBadParameter = errors.New("bad parameter")

	// ErrPreconditionNotMet 实体状态不满足操作前提
	ErrPreconditionNotMet = errors.New("precondition not met")

	// ErrOutOfResources 句柄表耗尽
	ErrOutOfResources = errors.New("out of resources")
)

// ============================================================================
//                              QoS 错误
// ============================================================================

var (
	// ErrImmutablePolicy 已使能实体修改了不可变策略
	ErrImmutablePolicy = errors.New("immutable policy")

	// ErrUnsupported 修改影响远端匹配的策略
	ErrUnsupported = errors.New("unsupported")

	// ErrInconsistentPolicy QoS 结构或策略组合无效
	ErrInconsistentPolicy = errors.New("inconsistent policy")
)

// ============================================================================
//                              内部信号
// ============================================================================

var (
	// ErrTryAgain 另一个线程正在删除该实体（删除入口总是将其转换为成功）
	ErrTryAgain = errors.New("try again")

	// ErrNoData 类型析构已完成全部通用清理，通用逻辑不得再触碰该实体
	ErrNoData = errors.New("no data")

	// ErrTimeout 等待超时
	ErrTimeout = errors.New("timeout")
)
