package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-dds/pkg/types"
)

func TestChildren_Ordering(t *testing.T) {
	mk := func(iid types.InstanceID, k types.EntityKind) *Entity {
		return &Entity{iid: iid, kind: k}
	}
	a := mk(5, types.KindTopic)
	b := mk(2, types.KindPublisher)
	c := mk(9, types.KindSubscriber)

	var cs children
	cs.insert(a)
	cs.insert(b)
	cs.insert(c)

	assert.Equal(t, 3, cs.len())
	assert.Same(t, b, cs.first())
	assert.Same(t, a, cs.succ(2))
	assert.Same(t, c, cs.succ(5))
	assert.Nil(t, cs.succ(9))
	assert.Same(t, b, cs.succ(0))

	assert.Same(t, b, cs.firstNotKind(types.KindTopic))
	assert.True(t, cs.remove(b))
	assert.False(t, cs.remove(b))
	assert.False(t, cs.contains(b))
	assert.Same(t, c, cs.firstNotKind(types.KindTopic))

	// 游标在被删除的元素之后仍可恢复
	assert.Same(t, a, cs.succ(b.iid))

	assert.True(t, cs.remove(a))
	assert.True(t, cs.remove(c))
	assert.True(t, cs.empty())
	assert.Nil(t, cs.first())
}
