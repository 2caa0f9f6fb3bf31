package entity

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dds/pkg/types"
)

func countingListener(id types.StatusID, n *atomic.Int32) *types.Listener {
	return types.NewListener().Set(id, func(types.Handle, types.StatusID) { n.Add(1) })
}

// TestListener_Inheritance 测试 listener 继承与下推
func TestListener_Inheritance(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{})
	sub := newTestChild(t, m, pp.Handle(), types.KindSubscriber, Options{})
	rd := newTestChild(t, m, sub.Handle(), types.KindReader, Options{})

	var x, y, z atomic.Int32
	require.NoError(t, m.SetListener(pp.Handle(), countingListener(types.StatusDataAvailable, &x)))

	l, err := m.GetListener(rd.Handle())
	require.NoError(t, err)
	require.NotNil(t, l.Get(types.StatusDataAvailable))
	l.Get(types.StatusDataAvailable)(rd.Handle(), types.StatusDataAvailable)
	assert.Equal(t, int32(1), x.Load(), "reader inherits the participant listener")

	require.NoError(t, m.SetListener(rd.Handle(), countingListener(types.StatusDataAvailable, &y)))
	require.NoError(t, m.SetListener(pp.Handle(), countingListener(types.StatusDataAvailable, &z)))

	rd.RaiseStatus(types.StatusDataAvailable)
	assert.Equal(t, int32(1), y.Load(), "explicit reader listener wins")
	assert.Equal(t, int32(0), z.Load())

	l, err = m.GetListener(sub.Handle())
	require.NoError(t, err)
	l.Get(types.StatusDataAvailable)(sub.Handle(), types.StatusDataAvailable)
	assert.Equal(t, int32(1), z.Load(), "subscriber follows the new participant listener")

	// 清除参与者 listener 后继承槽被清空
	require.NoError(t, m.SetListener(pp.Handle(), nil))
	l, err = m.GetListener(sub.Handle())
	require.NoError(t, err)
	assert.Nil(t, l.Get(types.StatusDataAvailable))
}

// TestListener_NewChildInherits 测试新建子实体继承父 listener
func TestListener_NewChildInherits(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	var n atomic.Int32
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{
		Listener: countingListener(types.StatusPublicationMatched, &n),
	})
	pub := newTestChild(t, m, pp.Handle(), types.KindPublisher, Options{})
	wr := newTestChild(t, m, pub.Handle(), types.KindWriter, Options{})

	wr.RaiseStatus(types.StatusPublicationMatched)
	assert.Equal(t, int32(1), n.Load())
	assert.Zero(t, wr.StatusChanges(), "bit consumed by the listener")
}

// TestRaiseStatus_WithoutListener 测试无 listener 时置位
func TestRaiseStatus_WithoutListener(t *testing.T) {
	m := newTestManager(t)
	_, rd := newReader(t, m)
	obs := &testObserver{hdl: 3}
	require.NoError(t, rd.RegisterObserver(obs, nil))

	rd.RaiseStatus(types.StatusSampleLost)
	assert.Equal(t, types.SampleLostStatus, rd.StatusChanges())
	st, _ := obs.counts()
	assert.Equal(t, 1, st)

	// 设置 listener 会清除其接管的已触发位
	var n atomic.Int32
	require.NoError(t, m.SetListener(rd.Handle(), countingListener(types.StatusSampleLost, &n)))
	assert.Zero(t, rd.StatusChanges())
}

// TestRaiseStatus_AfterDelete 测试删除后不再调用 listener
func TestRaiseStatus_AfterDelete(t *testing.T) {
	m := newTestManager(t)
	_, rd := newReader(t, m)
	var n atomic.Int32
	require.NoError(t, m.SetListener(rd.Handle(), countingListener(types.StatusDataAvailable, &n)))
	require.NoError(t, m.Delete(rd.Handle()))

	rd.RaiseStatus(types.StatusDataAvailable)
	assert.Equal(t, int32(0), n.Load())
}
