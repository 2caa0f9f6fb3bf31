package entity

import (
	"fmt"

	"github.com/dep2p/go-dds/pkg/types"
)

// NopDeriver 默认类型钩子
//
// 具体实体类型嵌入它，只覆盖需要的方法。
type NopDeriver struct{}

// Interrupt 无操作
func (NopDeriver) Interrupt() {}

// Close 无操作
func (NopDeriver) Close() {}

// Delete 无操作
func (NopDeriver) Delete() error { return nil }

// SetQoS 接受任何配置
func (NopDeriver) SetQoS(*types.QoS, bool) error { return nil }

// ValidateStatus 不带状态的类型拒绝所有状态操作
func (NopDeriver) ValidateStatus(types.StatusMask) error {
	return fmt.Errorf("%w: entity has no status", types.ErrIllegalOperation)
}

// ValidateStatusFor 校验掩码是否在类型允许范围内
func ValidateStatusFor(kind types.EntityKind, allowed, mask types.StatusMask) error {
	if mask&^allowed != 0 {
		return fmt.Errorf("%w: status %s not applicable to %s", types.ErrBadParameter, mask&^allowed, kind)
	}
	return nil
}
