package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListener_SetGet(t *testing.T) {
	called := 0
	l := NewListener().Set(StatusDataAvailable, func(Handle, StatusID) { called++ })

	fn := l.Get(StatusDataAvailable)
	assert.NotNil(t, fn)
	fn(1, StatusDataAvailable)
	assert.Equal(t, 1, called)

	assert.Nil(t, l.Get(StatusSampleLost))
	assert.Nil(t, l.Get(StatusID(NumStatus)))
	assert.Equal(t, DataAvailableStatus, l.Mask())

	l.Reset()
	assert.Zero(t, l.Mask())
}

func TestListener_InheritMarksEmptySlots(t *testing.T) {
	parent := NewListener().Set(StatusDataAvailable, func(Handle, StatusID) {})
	own := NewListener().Set(StatusSampleLost, func(Handle, StatusID) {})

	own.Inherit(parent)

	assert.NotNil(t, own.Get(StatusDataAvailable))
	assert.True(t, own.Inherited().Has(DataAvailableStatus))
	assert.True(t, own.Inherited().Has(SubscriptionMatchedStatus), "empty slots are inherited as well")
	assert.False(t, own.Inherited().Has(SampleLostStatus))
}

func TestListener_MergeKeepsInheritedMask(t *testing.T) {
	l := NewListener()
	l.Merge(NewListener().Set(StatusDataAvailable, func(Handle, StatusID) {}))
	assert.NotNil(t, l.Get(StatusDataAvailable))
	assert.Zero(t, l.Inherited())
}

func TestListener_OverrideInherited(t *testing.T) {
	var got string
	x := func(Handle, StatusID) { got = "x" }
	y := func(Handle, StatusID) { got = "y" }
	z := func(Handle, StatusID) { got = "z" }

	parent := NewListener().Set(StatusDataAvailable, x).Set(StatusSampleLost, x)
	child := NewListener().Set(StatusSampleLost, y)
	child.Inherit(parent)

	newParent := NewListener().Set(StatusDataAvailable, z).Set(StatusSampleLost, z)
	child.OverrideInherited(newParent)

	child.Get(StatusDataAvailable)(1, StatusDataAvailable)
	assert.Equal(t, "z", got)
	child.Get(StatusSampleLost)(1, StatusSampleLost)
	assert.Equal(t, "y", got, "explicit slot survives parent change")
}

func TestListener_Clone(t *testing.T) {
	var l *Listener
	assert.NotNil(t, l.Clone())

	orig := NewListener().Set(StatusDataAvailable, func(Handle, StatusID) {})
	c := orig.Clone()
	c.Set(StatusDataAvailable, nil)
	assert.NotNil(t, orig.Get(StatusDataAvailable))
}
