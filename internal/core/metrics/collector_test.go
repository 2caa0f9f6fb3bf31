package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dds/internal/core/dcps"
	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/internal/core/eventbus"
	"github.com/dep2p/go-dds/internal/core/handles"
	"github.com/dep2p/go-dds/pkg/types"
)

type testStack struct {
	table *handles.Table
	bus   *eventbus.Bus
	c     *Collector
	svc   *dcps.Service
}

// newTestStack 先启动收集器，再创建根实体
func newTestStack(t *testing.T, cfg Config) *testStack {
	t.Helper()
	s := &testStack{
		table: handles.NewTable(handles.DefaultConfig()),
		bus:   eventbus.NewBus(16),
	}
	var err error
	s.c, err = NewCollector(cfg, s.bus, s.table)
	require.NoError(t, err)
	require.NoError(t, s.c.Start())

	m, err := entity.NewManager(s.table, s.bus, entity.DefaultConfig())
	require.NoError(t, err)
	s.svc, err = dcps.NewService(m)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.svc.Close()
		_ = m.Close()
		_ = s.c.Stop()
		_ = s.bus.Close()
	})
	return s
}

// TestCollector_CountsLifecycle 测试按类型统计创建、删除与存活实体
func TestCollector_CountsLifecycle(t *testing.T) {
	s := newTestStack(t, Config{RuntimeCollectors: false})

	pp, err := s.svc.CreateParticipant(0, nil, nil)
	require.NoError(t, err)
	tp, err := s.svc.CreateTopic(pp, "a", "Msg", nil, nil)
	require.NoError(t, err)
	_, err = s.svc.CreateWriter(pp, tp, nil, nil)
	require.NoError(t, err)

	live := func(kind types.EntityKind) float64 {
		return testutil.ToFloat64(s.c.live.WithLabelValues(kind.String()))
	}
	require.Eventually(t, func() bool {
		return live(types.KindWriter) == 1 && live(types.KindPublisher) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, float64(1), live(types.KindRoot))
	assert.Equal(t, float64(1), live(types.KindDomain))
	assert.Equal(t, float64(1), live(types.KindTopic))
	assert.Equal(t, float64(s.table.Count()), float64(s.c.Snapshot().TotalLive()))

	require.NoError(t, s.svc.Manager().Delete(pp))
	require.Eventually(t, func() bool {
		return live(types.KindParticipant) == 0 && live(types.KindDomain) == 0
	}, time.Second, 5*time.Millisecond)

	deleted := testutil.ToFloat64(s.c.deleted.WithLabelValues(types.KindParticipant.String(), types.OriginExplicit.String()))
	assert.Equal(t, float64(1), deleted)

	snap := s.c.Snapshot()
	assert.Equal(t, int64(1), snap.Created["writer"])
	assert.Equal(t, int64(1), snap.Deleted["writer"])
	assert.Equal(t, int64(1), snap.TotalLive(), "only the root remains")
}

// TestCollector_Handler 测试 Prometheus 文本输出
func TestCollector_Handler(t *testing.T) {
	s := newTestStack(t, Config{Namespace: "test", RuntimeCollectors: true})
	_, err := s.svc.CreateParticipant(0, nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "test_handles_live 3")
	assert.Contains(t, body, "go_goroutines")
}

// TestCollector_StopIdempotent 测试重复停止与未启动停止
func TestCollector_StopIdempotent(t *testing.T) {
	c, err := NewCollector(DefaultConfig(), eventbus.NewBus(0), nil)
	require.NoError(t, err)
	assert.NoError(t, c.Stop())
	assert.NoError(t, c.Stop())

	_, err = NewCollector(DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrNoEventBus)
}
