package entity

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dds/internal/core/handles"
	"github.com/dep2p/go-dds/pkg/types"
)

// testNode 测试用实体，记录钩子调用
type testNode struct {
	Entity
	NopDeriver

	interrupted atomic.Int32
	closed      atomic.Int32
	deleted     atomic.Int32

	deleteErr   error
	onInterrupt func()
	onDelete    func()
	onSetQoS    func(q *types.QoS, enabled bool) error
}

func (n *testNode) Interrupt() {
	n.interrupted.Add(1)
	if n.onInterrupt != nil {
		n.onInterrupt()
	}
}

func (n *testNode) Close() { n.closed.Add(1) }

func (n *testNode) Delete() error {
	n.deleted.Add(1)
	if n.onDelete != nil {
		n.onDelete()
	}
	return n.deleteErr
}

func (n *testNode) SetQoS(q *types.QoS, enabled bool) error {
	if n.onSetQoS != nil {
		return n.onSetQoS(q, enabled)
	}
	return nil
}

func (n *testNode) ValidateStatus(mask types.StatusMask) error {
	allowed := types.StatusMaskFor(n.Kind())
	if n.Kind() == types.KindReader {
		allowed |= types.DataOnReadersStatus
	}
	return ValidateStatusFor(n.Kind(), allowed, mask)
}

// deleteOrder 记录删除顺序
type deleteOrder struct {
	mu    sync.Mutex
	kinds []types.EntityKind
}

func (o *deleteOrder) record(n *testNode) {
	prev := n.onDelete
	n.onDelete = func() {
		o.mu.Lock()
		o.kinds = append(o.kinds, n.Kind())
		o.mu.Unlock()
		if prev != nil {
			prev()
		}
	}
}

func (o *deleteOrder) get() []types.EntityKind {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]types.EntityKind(nil), o.kinds...)
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(handles.NewTable(handles.DefaultConfig()), nil, DefaultConfig())
	require.NoError(t, err)
	return m
}

func newTestRoot(t *testing.T, m *Manager) *testNode {
	t.Helper()
	r := &testNode{deleteErr: types.ErrNoData}
	h, err := m.Init(&r.Entity, nil, Options{Kind: types.KindRoot, Deriver: r})
	require.NoError(t, err)
	require.Equal(t, types.RootHandle, h)
	m.InitComplete(&r.Entity)
	return r
}

func newTestChild(t *testing.T, m *Manager, parent types.Handle, kind types.EntityKind, o Options) *testNode {
	t.Helper()
	p, err := m.Lock(parent, types.KindDontCare)
	require.NoError(t, err)
	defer p.Unlock()

	n := &testNode{}
	o.Kind = kind
	o.Deriver = n
	_, err = m.Init(&n.Entity, p, o)
	require.NoError(t, err)
	m.InitComplete(&n.Entity)
	return n
}
