package dcps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/internal/core/eventbus"
	"github.com/dep2p/go-dds/internal/core/handles"
)

// TestModule 测试 Fx 装配：停止时删除整棵实体树
func TestModule(t *testing.T) {
	var (
		s *Service
		m *entity.Manager
	)
	app := fxtest.New(t,
		handles.Module,
		eventbus.Module(),
		entity.Module,
		Module,
		fx.Populate(&s, &m),
	)
	app.RequireStart()

	pp, err := s.CreateParticipant(0, nil, nil)
	require.NoError(t, err)
	tp, err := s.CreateTopic(pp, "a", "Msg", nil, nil)
	require.NoError(t, err)
	_, err = s.CreateReader(pp, tp, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, m.Count())

	app.RequireStop()
	assert.Equal(t, 0, m.Count())
}
