package dcps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dds/pkg/types"
)

// TestCreateTopic_SharedObject 测试同名主题共享主题对象
func TestCreateTopic_SharedObject(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	pp := newParticipant(t, s, 0)

	t1 := newTopic(t, s, pp, "chatter")
	t2 := newTopic(t, s, pp, "chatter")
	assert.NotEqual(t, t1, t2)

	require.NoError(t, m.SetQoS(t1, types.NewQoS().WithTopicData([]byte("v1"))))
	q, err := m.GetQoS(t2)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), q.TopicData)

	name, typeName, err := s.TopicName(t2)
	require.NoError(t, err)
	assert.Equal(t, "chatter", name)
	assert.Equal(t, "Msg", typeName)

	_, err = s.CreateTopic(pp, "chatter", "Other", nil, nil)
	assert.ErrorIs(t, err, types.ErrPreconditionNotMet)

	_, err = s.CreateTopic(pp, "chatter", "Msg", types.NewQoS().WithDurability(types.DurabilityTransientLocal), nil)
	assert.ErrorIs(t, err, types.ErrInconsistentPolicy)

	found, err := s.FindTopic(pp, "chatter")
	require.NoError(t, err)
	assert.NotZero(t, found)
	assert.NotEqual(t, t1, found)

	missing, err := s.FindTopic(pp, "nope")
	require.NoError(t, err)
	assert.Zero(t, missing)

	// 删除所有句柄后主题对象随之释放，可以用新类型重建
	for _, h := range []types.Handle{t1, t2, found} {
		require.NoError(t, m.Delete(h))
	}
	_, err = s.CreateTopic(pp, "chatter", "Other", nil, nil)
	assert.NoError(t, err)
}

// TestCreateTopic_Validation 测试主题参数校验
func TestCreateTopic_Validation(t *testing.T) {
	s := newTestService(t)
	pp := newParticipant(t, s, 0)

	_, err := s.CreateTopic(pp, "", "Msg", nil, nil)
	assert.ErrorIs(t, err, types.ErrBadParameter)

	_, err = s.CreateTopic(pp, "a", "Msg", types.NewQoS().WithDeadline(-1), nil)
	assert.ErrorIs(t, err, types.ErrBadParameter)

	_, err = s.CreateTopic(s.RootHandle(), "a", "Msg", nil, nil)
	assert.ErrorIs(t, err, types.ErrIllegalOperation)

	children, err := s.Manager().GetChildren(pp)
	require.NoError(t, err)
	assert.Empty(t, children)
}

// TestTopic_DataPushdown 测试主题数据下推到基于同一主题对象的读写者
func TestTopic_DataPushdown(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	pp := newParticipant(t, s, 0)

	t1 := newTopic(t, s, pp, "a")
	t2 := newTopic(t, s, pp, "a")
	other := newTopic(t, s, pp, "b")

	wr, err := s.CreateWriter(pp, t1, nil, nil)
	require.NoError(t, err)
	rd, err := s.CreateReader(pp, t2, nil, nil)
	require.NoError(t, err)
	rdOther, err := s.CreateReader(pp, other, nil, nil)
	require.NoError(t, err)

	require.NoError(t, m.SetQoS(t1, types.NewQoS().WithTopicData([]byte("td"))))

	for _, h := range []types.Handle{wr, rd} {
		q, err := m.GetQoS(h)
		require.NoError(t, err)
		assert.Equal(t, []byte("td"), q.TopicData, "endpoint %v", h)
	}
	q, err := m.GetQoS(rdOther)
	require.NoError(t, err)
	assert.Empty(t, q.TopicData)

	// 匹配相关策略不可在使能后修改
	err = m.SetQoS(t1, types.NewQoS().WithDeadline(time.Second))
	assert.ErrorIs(t, err, types.ErrUnsupported)
	err = m.SetQoS(t1, types.NewQoS().WithDurability(types.DurabilityTransientLocal))
	assert.ErrorIs(t, err, types.ErrImmutablePolicy)
}

// TestTopic_DeferredDelete 测试被写者引用的主题推迟删除
//
// 创建参与者、主题与写者；删除主题后写者仍引用主题，删除写者后主题随最后
// 一个引用释放，隐式发布者随最后一个子实体级联删除。
func TestTopic_DeferredDelete(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	pp := newParticipant(t, s, 0)
	tp := newTopic(t, s, pp, "a")

	wr, err := s.CreateWriter(pp, tp, nil, nil)
	require.NoError(t, err)
	pub, err := m.GetParent(wr)
	require.NoError(t, err)

	require.NoError(t, m.Delete(tp))
	_, err = m.GetQoS(tp)
	assert.ErrorIs(t, err, types.ErrNotFound, "deleted topic is gone for users")

	got, err := s.GetTopic(wr)
	require.NoError(t, err)
	assert.Equal(t, tp, got, "writer keeps its topic")
	_, err = s.CreateWriter(pp, tp, nil, nil)
	assert.ErrorIs(t, err, types.ErrNotFound)

	before := m.Count()
	require.NoError(t, m.Delete(wr))
	assert.Equal(t, before-3, m.Count(), "writer, topic and implicit publisher are released")
	_, err = m.GetParent(pub)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// 主题对象已释放，可以用新类型重建
	_, err = s.CreateTopic(pp, "a", "Other", nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Delete(pp))
}

// TestDeleteParticipant_Ordering 测试删除参与者时读写者先于主题删除
func TestDeleteParticipant_Ordering(t *testing.T) {
	s := newTestService(t)
	m := s.Manager()
	pp := newParticipant(t, s, 0)
	tp := newTopic(t, s, pp, "a")
	for i := 0; i < 3; i++ {
		_, err := s.CreateWriter(pp, tp, nil, nil)
		require.NoError(t, err)
		_, err = s.CreateReader(pp, tp, nil, nil)
		require.NoError(t, err)
	}
	require.NoError(t, m.Delete(tp))

	require.NoError(t, m.Delete(pp))
	assert.Equal(t, 1, m.Count(), "only the root remains")
}
