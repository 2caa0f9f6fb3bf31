package handles

import (
	"sync/atomic"

	"github.com/dep2p/go-dds/pkg/types"
)

// 计数字布局
const (
	pinMask      uint32 = 0x00000fff
	refcUnit     uint32 = 0x00001000
	refcMask     uint32 = 0x07fff000
	flagChildren uint32 = 0x08000000
	flagImplicit uint32 = 0x10000000
	flagPending  uint32 = 0x20000000
	flagDeferred uint32 = 0x40000000
	flagClosing  uint32 = 0x80000000
)

// Link 句柄表中的一项，由实体持有
type Link struct {
	hdl          types.Handle
	cnt          atomic.Uint32
	noUserAccess bool
	owner        any
}

// NewLink 创建属于 owner 的 Link
func NewLink(owner any) *Link {
	return &Link{owner: owner}
}

// Handle 返回注册后分配的句柄
func (l *Link) Handle() types.Handle {
	return l.hdl
}

// Owner 返回持有该 Link 的对象
func (l *Link) Owner() any {
	return l.owner
}

// IsClosed 报告是否已进入关闭状态
func (l *Link) IsClosed() bool {
	return l.cnt.Load()&flagClosing != 0
}

// IsPending 报告是否仍处于创建中
func (l *Link) IsPending() bool {
	return l.cnt.Load()&flagPending != 0
}

// IsImplicit 报告是否为隐式创建
func (l *Link) IsImplicit() bool {
	return l.cnt.Load()&flagImplicit != 0
}

// IsDeleteDeferred 报告显式删除是否因引用尚存而被推迟
func (l *Link) IsDeleteDeferred() bool {
	return l.cnt.Load()&flagDeferred != 0
}

// Pins 返回当前 pin 计数
func (l *Link) Pins() uint32 {
	return l.cnt.Load() & pinMask
}

// Refs 返回当前引用计数
func (l *Link) Refs() uint32 {
	return (l.cnt.Load() & refcMask) / refcUnit
}
