package dcps

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dds/pkg/types"
)

func newReaderOn(t *testing.T, s *Service) (pp, sub, rd types.Handle) {
	t.Helper()
	pp = newParticipant(t, s, 0)
	tp := newTopic(t, s, pp, "a")
	sub, err := s.CreateSubscriber(pp, nil, nil)
	require.NoError(t, err)
	rd, err = s.CreateReader(sub, tp, nil, nil)
	require.NoError(t, err)
	return pp, sub, rd
}

// TestReadConditions 测试读条件与查询条件的触发计数
func TestReadConditions(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	_, _, rd := newReaderOn(t, s)

	rc, err := s.CreateReadCondition(rd, 0x7)
	require.NoError(t, err)
	qc, err := s.CreateQueryCondition(rd, 0x1, func(sample any) bool {
		return sample.(int)%2 == 0
	})
	require.NoError(t, err)
	_, err = s.CreateQueryCondition(rd, 0x1, nil)
	assert.ErrorIs(t, err, types.ErrBadParameter)

	mask, err := s.GetConditionMask(qc)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1), mask)
	_, err = s.GetConditionMask(rd)
	assert.ErrorIs(t, err, types.ErrIllegalOperation)

	got, err := s.GetTopic(qc)
	require.NoError(t, err)
	want, err := s.GetTopic(rd)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.DeliverData(rd, 1))
	trig, err := m.Triggered(rc)
	require.NoError(t, err)
	assert.True(t, trig)
	trig, err = m.Triggered(qc)
	require.NoError(t, err)
	assert.False(t, trig, "odd sample does not match the query")

	require.NoError(t, s.DeliverData(rd, 2))
	trig, err = m.Triggered(qc)
	require.NoError(t, err)
	assert.True(t, trig)

	require.NoError(t, s.ConsumeData(rd))
	for _, h := range []types.Handle{rc, qc, rd} {
		trig, err = m.Triggered(h)
		require.NoError(t, err)
		assert.False(t, trig, "%v", h)
	}

	// 条件没有状态与配置
	_, err = m.GetStatusChanges(rc)
	assert.ErrorIs(t, err, types.ErrIllegalOperation)
	_, err = m.GetQoS(rc)
	assert.ErrorIs(t, err, types.ErrIllegalOperation)

	require.NoError(t, m.Delete(rd))
	_, err = m.Triggered(rc)
	assert.ErrorIs(t, err, types.ErrNotFound, "conditions are deleted with their reader")
}

// TestDataOnReaders 测试订阅者 DataOnReaders 与读者 DataAvailable 的关系
func TestDataOnReaders(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	_, sub, rd := newReaderOn(t, s)

	require.NoError(t, s.DeliverData(rd, 0))
	st, err := m.ReadStatus(rd, types.DataAvailableStatus|types.DataOnReadersStatus)
	require.NoError(t, err)
	assert.Equal(t, types.DataAvailableStatus|types.DataOnReadersStatus, st)
	require.NoError(t, s.ConsumeData(rd))

	var onReaders, available atomic.Int32
	l := types.NewListener().
		Set(types.StatusDataOnReaders, func(types.Handle, types.StatusID) { onReaders.Add(1) }).
		Set(types.StatusDataAvailable, func(types.Handle, types.StatusID) { available.Add(1) })
	require.NoError(t, m.SetListener(sub, l))

	require.NoError(t, s.DeliverData(rd, 0))
	assert.Equal(t, int32(1), onReaders.Load())
	assert.Equal(t, int32(0), available.Load(), "data-on-readers listener takes precedence")
	st, err = m.ReadStatus(rd, types.DataAvailableStatus|types.DataOnReadersStatus)
	require.NoError(t, err)
	assert.Zero(t, st, "listener consumed the notification")

	// 订阅者只监听 DataAvailable 时由读者继承并调用
	require.NoError(t, m.SetListener(sub, types.NewListener().
		Set(types.StatusDataAvailable, func(types.Handle, types.StatusID) { available.Add(1) })))
	require.NoError(t, s.ConsumeData(rd))
	require.NoError(t, s.DeliverData(rd, 0))
	assert.Equal(t, int32(1), available.Load())
	st, err = m.ReadStatus(rd, types.DataAvailableStatus)
	require.NoError(t, err)
	assert.Zero(t, st)
	st, err = m.ReadStatus(sub, types.DataOnReadersStatus)
	require.NoError(t, err)
	assert.Zero(t, st, "reader listener leaves the subscriber untouched")
}

// TestDataArrived_DataAvailableDisabled 测试读者未使能 DataAvailable 时
// 不调用任何 listener 也不置位，读条件照常计数
func TestDataArrived_DataAvailableDisabled(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	_, sub, rd := newReaderOn(t, s)

	rc, err := s.CreateReadCondition(rd, 0x7)
	require.NoError(t, err)

	var onReaders atomic.Int32
	require.NoError(t, m.SetListener(sub, types.NewListener().
		Set(types.StatusDataOnReaders, func(types.Handle, types.StatusID) { onReaders.Add(1) })))
	require.NoError(t, m.SetStatusMask(rd, 0))

	require.NoError(t, s.DeliverData(rd, 0))
	assert.Equal(t, int32(0), onReaders.Load())
	st, err := m.ReadStatus(sub, types.DataOnReadersStatus)
	require.NoError(t, err)
	assert.Zero(t, st)

	trig, err := m.Triggered(rc)
	require.NoError(t, err)
	assert.True(t, trig)
}

// TestReportStatus 测试协议层上报通信状态
func TestReportStatus(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	pp := newParticipant(t, s, 0)
	tp := newTopic(t, s, pp, "a")

	var matched atomic.Int32
	wl := types.NewListener().
		Set(types.StatusPublicationMatched, func(types.Handle, types.StatusID) { matched.Add(1) })
	heard, err := s.CreateWriter(pp, tp, nil, wl)
	require.NoError(t, err)
	quiet, err := s.CreateWriter(pp, tp, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.ReportStatus(heard, types.StatusPublicationMatched))
	assert.Equal(t, int32(1), matched.Load())
	st, err := m.GetStatusChanges(heard)
	require.NoError(t, err)
	assert.Zero(t, st, "listener consumed the change")

	require.NoError(t, s.ReportStatus(quiet, types.StatusPublicationMatched))
	st, err = m.GetStatusChanges(quiet)
	require.NoError(t, err)
	assert.Equal(t, types.PublicationMatchedStatus, st)

	assert.ErrorIs(t, s.ReportStatus(quiet, types.StatusSampleLost), types.ErrIllegalOperation)
	assert.ErrorIs(t, s.ReportStatus(quiet, types.StatusDataAvailable), types.ErrBadParameter)
	assert.ErrorIs(t, s.ReportStatus(quiet, types.StatusID(99)), types.ErrBadParameter)
	assert.ErrorIs(t, s.ReportStatus(pp, types.StatusPublicationMatched), types.ErrIllegalOperation)
}

// TestGuardCondition 测试守卫条件
func TestGuardCondition(t *testing.T) {
	s := newTestService(t)
	pp := newParticipant(t, s, 0)

	gc, err := s.CreateGuardCondition(pp)
	require.NoError(t, err)

	v, err := s.ReadGuardCondition(gc)
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, s.SetGuardCondition(gc, true))
	v, err = s.ReadGuardCondition(gc)
	require.NoError(t, err)
	assert.True(t, v)
	v, err = s.TakeGuardCondition(gc)
	require.NoError(t, err)
	assert.True(t, v)
	v, err = s.ReadGuardCondition(gc)
	require.NoError(t, err)
	assert.False(t, v)

	_, err = s.ReadGuardCondition(pp)
	assert.ErrorIs(t, err, types.ErrIllegalOperation)

	tp := newTopic(t, s, pp, "a")
	_, err = s.CreateGuardCondition(tp)
	assert.ErrorIs(t, err, types.ErrIllegalOperation)

	_, err = s.CreateGuardCondition(s.RootHandle())
	assert.NoError(t, err)
}
