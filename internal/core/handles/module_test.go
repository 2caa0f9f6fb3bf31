package handles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-dds/config"
)

// TestModule_Load 测试 Fx 模块加载
func TestModule_Load(t *testing.T) {
	var tbl *Table

	app := fxtest.New(t,
		Module,
		fx.Populate(&tbl),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.NotNil(t, tbl)
	assert.Equal(t, config.MaxHandleSlots, tbl.max)
}

// TestModule_UnifiedConfig 测试从统一配置读取容量
func TestModule_UnifiedConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Handles.MaxHandles = 8
	cfg.Entity.DrainLogInterval = config.Duration(0)

	var tbl *Table
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&tbl),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, 8, tbl.max)
	assert.Nil(t, tbl.limiter)
}

// TestConfigFromUnified 测试配置转换
func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.Entity.DrainLogInterval = config.Duration(3 * time.Second)
	got := ConfigFromUnified(cfg)
	assert.Equal(t, 3*time.Second, got.DrainLogInterval)
}
