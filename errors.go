package dds

import (
	"errors"

	"github.com/dep2p/go-dds/pkg/types"
)

// 公共错误定义
//
// 实体操作返回的错误均可用 errors.Is 与下列哨兵比较。
var (
	// ────────────────────────────────────────────────────────────────────────
	// 运行时生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrRuntimeClosed 运行时已关闭或正在关闭
	ErrRuntimeClosed = errors.New("runtime closed")

	// ────────────────────────────────────────────────────────────────────────
	// 句柄与实体错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotFound 句柄未知或实体已删除
	ErrNotFound = types.ErrNotFound

	// ErrIllegalOperation 操作不适用于该实体类型
	ErrIllegalOperation = types.ErrIllegalOperation

	// ErrBadParameter 参数无效
	ErrBadParameter = types.ErrBadParameter

	// ErrPreconditionNotMet 实体状态不满足操作前提
	ErrPreconditionNotMet = types.ErrPreconditionNotMet

	// ErrOutOfResources 句柄表耗尽
	ErrOutOfResources = types.ErrOutOfResources

	// ────────────────────────────────────────────────────────────────────────
	// QoS 错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrImmutablePolicy 已使能实体修改了不可变策略
	ErrImmutablePolicy = types.ErrImmutablePolicy

	// ErrUnsupported 修改影响远端匹配的策略
	ErrUnsupported = types.ErrUnsupported

	// ErrInconsistentPolicy 策略组合无效
	ErrInconsistentPolicy = types.ErrInconsistentPolicy
)
