package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ============================================================================
//                              Handle - 实体句柄
// ============================================================================

// Handle 实体句柄
//
// 进程内唯一的正整数，仅在实体存活期间有效，从不序列化。
type Handle int32

// RootHandle 进程根实体的保留句柄
const RootHandle Handle = 1

// IsValid 检查句柄是否为正数
func (h Handle) IsValid() bool {
	return h > 0
}

// String 返回句柄的字符串表示
func (h Handle) String() string {
	return fmt.Sprintf("hdl:%d", int32(h))
}

// ============================================================================
//                              InstanceID - 实例标识
// ============================================================================

// InstanceID 实例标识
//
// 进程内单调递增分配，永不复用；用于子实体排序以及并发遍历时的游标。
type InstanceID uint64

// ============================================================================
//                              GUID - 协议标识
// ============================================================================

// GUID 实体的协议标识（不参与生命周期协议）
type GUID [16]byte

// NilGUID 空 GUID
var NilGUID GUID

// NewGUID 生成新的随机 GUID
func NewGUID() GUID {
	return GUID(uuid.New())
}

// IsNil 检查 GUID 是否为空
func (g GUID) IsNil() bool {
	return g == NilGUID
}

// String 返回 GUID 的字符串表示
func (g GUID) String() string {
	return uuid.UUID(g).String()
}

// ============================================================================
//                              DomainID - 域标识
// ============================================================================

// DomainID 域标识
type DomainID uint32

// DefaultDomainID 默认域
const DefaultDomainID DomainID = 0
