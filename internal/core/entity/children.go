package entity

import (
	"sort"

	"github.com/dep2p/go-dds/pkg/types"
)

// children 按实例 ID 有序的子实体集合
//
// 所有操作都在父实体主锁内进行。
type children struct {
	list []*Entity
}

func (c *children) search(iid types.InstanceID) int {
	return sort.Search(len(c.list), func(i int) bool {
		return c.list[i].iid >= iid
	})
}

func (c *children) insert(e *Entity) {
	i := c.search(e.iid)
	c.list = append(c.list, nil)
	copy(c.list[i+1:], c.list[i:])
	c.list[i] = e
}

func (c *children) remove(e *Entity) bool {
	i := c.search(e.iid)
	if i >= len(c.list) || c.list[i] != e {
		return false
	}
	copy(c.list[i:], c.list[i+1:])
	c.list[len(c.list)-1] = nil
	c.list = c.list[:len(c.list)-1]
	return true
}

func (c *children) contains(e *Entity) bool {
	i := c.search(e.iid)
	return i < len(c.list) && c.list[i] == e
}

// succ 返回实例 ID 大于 iid 的第一个子实体，用作可恢复的遍历游标
func (c *children) succ(iid types.InstanceID) *Entity {
	i := c.search(iid + 1)
	if i >= len(c.list) {
		return nil
	}
	return c.list[i]
}

func (c *children) first() *Entity {
	if len(c.list) == 0 {
		return nil
	}
	return c.list[0]
}

// firstNotKind 返回第一个类型不是 k 的子实体
func (c *children) firstNotKind(k types.EntityKind) *Entity {
	for _, e := range c.list {
		if e.kind != k {
			return e
		}
	}
	return nil
}

func (c *children) len() int {
	return len(c.list)
}

func (c *children) empty() bool {
	return len(c.list) == 0
}
