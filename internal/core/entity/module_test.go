package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-dds/internal/core/eventbus"
	"github.com/dep2p/go-dds/internal/core/handles"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/types"
)

// TestModule_LifecycleEvents 测试 Fx 装配与生命周期事件
func TestModule_LifecycleEvents(t *testing.T) {
	var (
		m   *Manager
		bus pkgif.EventBus
	)
	app := fxtest.New(t,
		handles.Module,
		eventbus.Module(),
		Module,
		fx.Populate(&m, &bus),
	)
	app.RequireStart()
	defer app.RequireStop()

	created, err := bus.Subscribe(new(types.EvtEntityCreated))
	require.NoError(t, err)
	defer created.Close()
	deleted, err := bus.Subscribe(new(types.EvtEntityDeleted))
	require.NoError(t, err)
	defer deleted.Close()

	root := newTestRoot(t, m)
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{})

	recv := func(sub pkgif.Subscription) any {
		select {
		case evt := <-sub.Out():
			return evt
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
			return nil
		}
	}

	evt := recv(created).(types.EvtEntityCreated)
	assert.Equal(t, types.KindRoot, evt.Kind)
	evt = recv(created).(types.EvtEntityCreated)
	assert.Equal(t, pp.Handle(), evt.Handle)
	assert.Equal(t, root.Handle(), evt.Parent)

	require.NoError(t, m.Delete(pp.Handle()))
	del := recv(deleted).(types.EvtEntityDeleted)
	assert.Equal(t, pp.Handle(), del.Handle)
	assert.Equal(t, types.OriginExplicit, del.Origin)

	require.NoError(t, m.Delete(root.Handle()))
}
