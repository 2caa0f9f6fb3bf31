package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-dds/config"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Load 测试 Fx 模块加载
func TestModule_Load(t *testing.T) {
	var bus pkgif.EventBus

	app := fxtest.New(t,
		Module(),
		fx.Populate(&bus),
	)
	app.RequireStart()
	require.NotNil(t, bus)
	assert.Equal(t, 16, bus.(*Bus).defaultBuffer)

	sub, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)

	app.RequireStop()

	// 停止后订阅通道被关闭
	_, ok := <-sub.Out()
	assert.False(t, ok)
}

// TestModule_UnifiedConfig 测试从统一配置读取缓冲区大小
func TestModule_UnifiedConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.EventBus.SubscriberBuffer = 3

	var bus *Bus
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&bus),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, 3, bus.defaultBuffer)
}
