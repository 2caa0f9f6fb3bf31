package dcps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dds/pkg/types"
)

func waitAsync(s *Service, ws types.Handle, timeout time.Duration) <-chan []any {
	out := make(chan []any, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		xs, _ := s.WaitSetWait(ctx, ws)
		out <- xs
	}()
	return out
}

// TestWaitSet_GuardCondition 测试等待守卫条件触发
func TestWaitSet_GuardCondition(t *testing.T) {
	s := newTestService(t)
	pp := newParticipant(t, s, 0)
	ws, err := s.CreateWaitSet(pp)
	require.NoError(t, err)
	gc, err := s.CreateGuardCondition(pp)
	require.NoError(t, err)

	require.NoError(t, s.WaitSetAttach(ws, gc, "gc"))
	assert.ErrorIs(t, s.WaitSetAttach(ws, gc, "again"), types.ErrPreconditionNotMet)

	res := waitAsync(s, ws, 5*time.Second)
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.SetGuardCondition(gc, true))

	select {
	case xs := <-res:
		assert.Equal(t, []any{"gc"}, xs)
	case <-time.After(5 * time.Second):
		t.Fatal("wait did not return")
	}

	entities, err := s.WaitSetEntities(ws)
	require.NoError(t, err)
	assert.Equal(t, []types.Handle{gc}, entities)

	require.NoError(t, s.WaitSetDetach(ws, gc))
	assert.ErrorIs(t, s.WaitSetDetach(ws, gc), types.ErrPreconditionNotMet)
	entities, err = s.WaitSetEntities(ws)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

// TestWaitSet_Timeout 测试等待超时
func TestWaitSet_Timeout(t *testing.T) {
	s := newTestService(t)
	ws, err := s.CreateWaitSet(s.RootHandle())
	require.NoError(t, err)
	gc, err := s.CreateGuardCondition(s.RootHandle())
	require.NoError(t, err)
	require.NoError(t, s.WaitSetAttach(ws, gc, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	xs, err := s.WaitSetWait(ctx, ws)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Empty(t, xs)
}

// TestWaitSet_ReaderStatus 测试挂载读者的状态触发
func TestWaitSet_ReaderStatus(t *testing.T) {
	s := newTestService(t)
	pp, _, rd := newReaderOn(t, s)
	ws, err := s.CreateWaitSet(pp)
	require.NoError(t, err)
	require.NoError(t, s.WaitSetAttach(ws, rd, "reader"))

	res := waitAsync(s, ws, 5*time.Second)
	require.NoError(t, s.DeliverData(rd, 0))
	assert.Equal(t, []any{"reader"}, <-res)
}

// TestWaitSet_SelfAttach 测试等待集挂载自身
func TestWaitSet_SelfAttach(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	ws, err := s.CreateWaitSet(s.RootHandle())
	require.NoError(t, err)
	require.NoError(t, s.WaitSetAttach(ws, ws, "self"))

	res := waitAsync(s, ws, 5*time.Second)
	require.NoError(t, s.WaitSetSetTrigger(ws, true))
	assert.Equal(t, []any{"self"}, <-res)

	before := m.Count()
	require.NoError(t, m.Delete(ws))
	assert.Equal(t, before-1, m.Count())
}

// TestWaitSet_DeleteAttached 测试被挂载实体删除后自动分离
func TestWaitSet_DeleteAttached(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	pp := newParticipant(t, s, 0)
	ws, err := s.CreateWaitSet(s.RootHandle())
	require.NoError(t, err)
	gc, err := s.CreateGuardCondition(pp)
	require.NoError(t, err)
	require.NoError(t, s.WaitSetAttach(ws, gc, nil))
	require.NoError(t, s.WaitSetAttach(ws, pp, nil))

	require.NoError(t, m.Delete(pp))
	entities, err := s.WaitSetEntities(ws)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

// TestWaitSet_DeleteWakesWaiter 测试删除等待集唤醒等待者
func TestWaitSet_DeleteWakesWaiter(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	ws, err := s.CreateWaitSet(s.RootHandle())
	require.NoError(t, err)
	gc, err := s.CreateGuardCondition(s.RootHandle())
	require.NoError(t, err)
	require.NoError(t, s.WaitSetAttach(ws, gc, nil))

	errc := make(chan error, 1)
	go func() {
		_, err := s.WaitSetWait(context.Background(), ws)
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, m.Delete(ws))
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, types.ErrNotFound)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter not woken by delete")
	}

	// 等待集删除后守卫条件不再有观察者
	require.NoError(t, s.SetGuardCondition(gc, true))
}

// TestWaitSet_Scope 测试只能挂载等待集父实体之下的实体
func TestWaitSet_Scope(t *testing.T) {
	s := newTestService(t)
	p1 := newParticipant(t, s, 0)
	p2 := newParticipant(t, s, 0)
	ws, err := s.CreateWaitSet(p1)
	require.NoError(t, err)
	gc, err := s.CreateGuardCondition(p2)
	require.NoError(t, err)

	assert.ErrorIs(t, s.WaitSetAttach(ws, gc, nil), types.ErrBadParameter)
	assert.ErrorIs(t, s.WaitSetAttach(ws, 12345, nil), types.ErrNotFound)
	assert.ErrorIs(t, s.WaitSetAttach(gc, gc, nil), types.ErrIllegalOperation)
}
