package entity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dds/pkg/types"
)

// testObserver 记录通知的观察者
type testObserver struct {
	hdl    types.Handle
	reject bool

	mu      sync.Mutex
	status  []types.StatusMask
	deletes []types.Handle
}

func (o *testObserver) ObserverHandle() types.Handle { return o.hdl }

func (o *testObserver) OnAttach(types.Handle, any) bool { return !o.reject }

func (o *testObserver) OnStatus(_ types.Handle, s types.StatusMask) {
	o.mu.Lock()
	o.status = append(o.status, s)
	o.mu.Unlock()
}

func (o *testObserver) OnDelete(h types.Handle) {
	o.mu.Lock()
	o.deletes = append(o.deletes, h)
	o.mu.Unlock()
}

func (o *testObserver) counts() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.status), len(o.deletes)
}

func newReader(t *testing.T, m *Manager) (*testNode, *testNode) {
	t.Helper()
	root := newTestRoot(t, m)
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{})
	sub := newTestChild(t, m, pp.Handle(), types.KindSubscriber, Options{})
	rd := newTestChild(t, m, sub.Handle(), types.KindReader, Options{})
	return sub, rd
}

// TestStatusSet_Edges 测试状态置位只在边沿返回 true
func TestStatusSet_Edges(t *testing.T) {
	m := newTestManager(t)
	_, rd := newReader(t, m)

	assert.True(t, rd.StatusSet(types.DataAvailableStatus))
	assert.False(t, rd.StatusSet(types.DataAvailableStatus), "redundant set")

	require.NoError(t, m.SetStatusMask(rd.Handle(), types.SampleLostStatus))
	assert.False(t, rd.StatusSet(types.DataAvailableStatus|types.SubscriptionMatchedStatus), "masked out")
	assert.True(t, rd.StatusSet(types.SampleLostStatus))

	mask, err := m.GetStatusMask(rd.Handle())
	require.NoError(t, err)
	assert.Equal(t, types.SampleLostStatus, mask)

	changes, err := m.GetStatusChanges(rd.Handle())
	require.NoError(t, err)
	assert.Equal(t, types.SampleLostStatus, changes, "disabled bits are cleared by SetStatusMask")
}

// TestReadTakeStatus 测试读取与清除状态
func TestReadTakeStatus(t *testing.T) {
	m := newTestManager(t)
	_, rd := newReader(t, m)
	rd.StatusSet(types.DataAvailableStatus | types.SampleLostStatus)

	s, err := m.ReadStatus(rd.Handle(), types.DataAvailableStatus)
	require.NoError(t, err)
	assert.Equal(t, types.DataAvailableStatus, s)

	s, err = m.TakeStatus(rd.Handle(), types.DataAvailableStatus|types.SampleLostStatus)
	require.NoError(t, err)
	assert.Equal(t, types.DataAvailableStatus|types.SampleLostStatus, s)

	s, err = m.ReadStatus(rd.Handle(), types.DataAvailableStatus)
	require.NoError(t, err)
	assert.Zero(t, s)

	_, err = m.ReadStatus(rd.Handle(), types.PublicationMatchedStatus)
	assert.ErrorIs(t, err, types.ErrBadParameter)
	_, err = m.ReadStatus(rd.Handle(), types.StatusMask(1<<20))
	assert.ErrorIs(t, err, types.ErrBadParameter)
	assert.ErrorIs(t, m.SetStatusMask(rd.Handle(), types.StatusMask(1<<20)), types.ErrBadParameter)
}

// TestReadStatus_DataOnReaders 测试读者从订阅者折叠 DataOnReaders
func TestReadStatus_DataOnReaders(t *testing.T) {
	m := newTestManager(t)
	sub, rd := newReader(t, m)

	s, err := m.ReadStatus(rd.Handle(), types.DataOnReadersStatus)
	require.NoError(t, err)
	assert.Zero(t, s)

	assert.True(t, sub.StatusSet(types.DataOnReadersStatus))
	s, err = m.ReadStatus(rd.Handle(), types.DataOnReadersStatus)
	require.NoError(t, err)
	assert.Equal(t, types.DataOnReadersStatus, s)
	assert.Zero(t, rd.StatusChanges(), "reader never stores data-on-readers itself")
}

// TestStatus_NoStatusKind 测试不带状态的类型
func TestStatus_NoStatusKind(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	gc := newTestChild(t, m, root.Handle(), types.KindGuardCondition, Options{})

	_, err := m.GetStatusChanges(gc.Handle())
	assert.ErrorIs(t, err, types.ErrIllegalOperation)
	_, err = m.GetStatusMask(gc.Handle())
	assert.ErrorIs(t, err, types.ErrIllegalOperation)
	assert.ErrorIs(t, m.SetStatusMask(gc.Handle(), 0), types.ErrIllegalOperation)
}

// TestObservers 测试观察者注册、通知与删除
func TestObservers(t *testing.T) {
	m := newTestManager(t)
	_, rd := newReader(t, m)
	obs := &testObserver{hdl: 99}

	require.NoError(t, rd.RegisterObserver(obs, nil))
	assert.ErrorIs(t, rd.RegisterObserver(obs, nil), types.ErrPreconditionNotMet)
	assert.ErrorIs(t, rd.RegisterObserver(&testObserver{hdl: 100, reject: true}, nil), types.ErrBadParameter)
	assert.True(t, rd.HasObserver(99))
	assert.False(t, rd.HasObserver(100))

	rd.StatusSet(types.DataAvailableStatus)
	rd.StatusSet(types.DataAvailableStatus)
	st, del := obs.counts()
	assert.Equal(t, 1, st)
	assert.Equal(t, 0, del)

	other := &testObserver{hdl: 7}
	require.NoError(t, rd.RegisterObserver(other, nil))
	require.NoError(t, rd.UnregisterObserver(7, true))
	assert.ErrorIs(t, rd.UnregisterObserver(7, false), types.ErrPreconditionNotMet)
	_, del = other.counts()
	assert.Equal(t, 1, del)

	require.NoError(t, m.Delete(rd.Handle()))
	_, del = obs.counts()
	assert.Equal(t, 1, del, "delete notified exactly once")
}

// TestTrigger 测试触发值
func TestTrigger(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	gc := newTestChild(t, m, root.Handle(), types.KindGuardCondition, Options{})
	obs := &testObserver{hdl: 5}
	require.NoError(t, gc.RegisterObserver(obs, nil))

	gc.SetTrigger(1)
	gc.SetTrigger(1)
	st, _ := obs.counts()
	assert.Equal(t, 1, st)

	trig, err := m.Triggered(gc.Handle())
	require.NoError(t, err)
	assert.True(t, trig)

	gc.SetTrigger(0)
	assert.False(t, gc.Triggered())

	assert.Equal(t, uint32(2), gc.AddTrigger(2))
	assert.Equal(t, uint32(0), gc.AddTrigger(-5))
	st, _ = obs.counts()
	assert.Equal(t, 2, st)
}
