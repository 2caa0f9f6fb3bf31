package entity

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/types"
)

// TestSetQoS_RoundTrip 测试修改后未指定的策略保持不变
func TestSetQoS_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{
		QoS: types.NewQoS().WithEntityName("alpha"),
	})

	before, err := m.GetQoS(pp.Handle())
	require.NoError(t, err)

	require.NoError(t, m.SetQoS(pp.Handle(), types.NewQoS().WithUserData([]byte("hello"))))

	after, err := m.GetQoS(pp.Handle())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), after.UserData)
	assert.Equal(t, "alpha", after.EntityName)
	assert.Equal(t, types.PolicyUserData, types.Delta(before, after, types.AllPolicies))

	// 返回副本，修改不影响实体
	after.EntityName = "mutated"
	again, err := m.GetQoS(pp.Handle())
	require.NoError(t, err)
	assert.Equal(t, "alpha", again.EntityName)
}

// TestSetQoS_MutabilityRules 测试已使能实体的可变性规则
func TestSetQoS_MutabilityRules(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{})
	pub := newTestChild(t, m, pp.Handle(), types.KindPublisher, Options{})
	wr := newTestChild(t, m, pub.Handle(), types.KindWriter, Options{})

	tests := []struct {
		name   string
		handle types.Handle
		qos    *types.QoS
		want   error
	}{
		{"immutable durability", wr.Handle(), types.NewQoS().WithDurability(types.DurabilityTransientLocal), types.ErrImmutablePolicy},
		{"matching deadline", wr.Handle(), types.NewQoS().WithDeadline(time.Second), types.ErrUnsupported},
		{"matching partition", pub.Handle(), types.NewQoS().WithPartition("a"), types.ErrUnsupported},
		{"invalid value", wr.Handle(), types.NewQoS().WithHistory(types.HistoryKeepLast, 0), types.ErrBadParameter},
		{"changeable lifespan", wr.Handle(), types.NewQoS().WithLifespan(time.Minute), nil},
		{"no change", wr.Handle(), types.NewQoS().WithLifespan(time.Minute), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := m.GetQoS(tt.handle)
			require.NoError(t, err)
			err = m.SetQoS(tt.handle, tt.qos)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			after, err := m.GetQoS(tt.handle)
			require.NoError(t, err)
			assert.True(t, before.Equal(after), "qos unchanged after rejection")
		})
	}

	t.Run("no qos", func(t *testing.T) {
		rd := newTestChild(t, m, pp.Handle(), types.KindSubscriber, Options{})
		rc := newTestChild(t, m, rd.Handle(), types.KindReader, Options{})
		cond := newTestChild(t, m, rc.Handle(), types.KindReadCondition, Options{})
		assert.ErrorIs(t, m.SetQoS(cond.Handle(), types.NewQoS()), types.ErrIllegalOperation)
		_, err := m.GetQoS(cond.Handle())
		assert.ErrorIs(t, err, types.ErrIllegalOperation)
		assert.ErrorIs(t, m.SetQoS(rc.Handle(), nil), types.ErrBadParameter)
	})
}

// TestSetQoS_Disabled 测试未使能实体可修改任何策略
func TestSetQoS_Disabled(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{
		QoS: types.NewQoS().WithEntityFactory(false),
	})
	pub := newTestChild(t, m, pp.Handle(), types.KindPublisher, Options{})

	enabled, err := m.IsEnabled(pub.Handle())
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, m.SetQoS(pub.Handle(), types.NewQoS().WithPartition("x")))

	require.NoError(t, m.Enable(pub.Handle()))
	assert.ErrorIs(t, m.SetQoS(pub.Handle(), types.NewQoS().WithPartition("y")), types.ErrUnsupported)
}

// TestSetQoS_HookRejects 测试类型钩子拒绝时不修改
func TestSetQoS_HookRejects(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{})
	denied := errors.New("denied")
	pp.onSetQoS = func(*types.QoS, bool) error { return denied }

	assert.ErrorIs(t, m.SetQoS(pp.Handle(), types.NewQoS().WithUserData([]byte("x"))), denied)
	q, err := m.GetQoS(pp.Handle())
	require.NoError(t, err)
	assert.Empty(t, q.UserData)
}

// TestSetQoS_GroupPushdown 测试发布者 GroupData 下推到写者
func TestSetQoS_GroupPushdown(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{})
	pub := newTestChild(t, m, pp.Handle(), types.KindPublisher, Options{})
	// 写者创建时已合并发布者的组策略
	group := types.NewQoS().WithPartition().WithGroupData(nil)
	w1 := newTestChild(t, m, pub.Handle(), types.KindWriter, Options{QoS: group})
	w2 := newTestChild(t, m, pub.Handle(), types.KindWriter, Options{QoS: group})

	require.NoError(t, m.SetQoS(pub.Handle(), types.NewQoS().WithGroupData([]byte("grp"))))

	for _, w := range []*testNode{w1, w2} {
		q, err := m.GetQoS(w.Handle())
		require.NoError(t, err)
		assert.Equal(t, []byte("grp"), q.GroupData)
	}
}

// sharedTopicNode 测试用主题，配置由共享对象持有
type sharedTopicNode struct {
	testNode

	sharedMu sync.Mutex
	qos      *types.QoS
	afterEnd func()
}

func (n *sharedTopicNode) SharedQoS() *types.QoS {
	n.sharedMu.Lock()
	defer n.sharedMu.Unlock()
	return n.qos
}

func (n *sharedTopicNode) BeginQoSUpdate() any { return n }

func (n *sharedTopicNode) EndQoSUpdate(q *types.QoS) {
	n.sharedMu.Lock()
	if q != nil {
		n.qos = q
	}
	hook := n.afterEnd
	n.afterEnd = nil
	n.sharedMu.Unlock()
	if hook != nil {
		hook()
	}
}

// topicUserNode 测试用读写者，基于给定共享主题对象创建
type topicUserNode struct {
	testNode
	key any
}

func (n *topicUserNode) UsesTopicObject(key any) bool { return key == n.key }

// initTestChild 以自定义钩子初始化子实体
func initTestChild(t *testing.T, m *Manager, parent types.Handle, e *Entity, d pkgif.Deriver, o Options) {
	t.Helper()
	p, err := m.Lock(parent, types.KindDontCare)
	require.NoError(t, err)
	defer p.Unlock()
	o.Deriver = d
	_, err = m.Init(e, p, o)
	require.NoError(t, err)
	m.InitComplete(e)
}

// TestSetQoS_TopicPushdownLatestWins 测试并发修改主题配置时，较早修改的
// 下推晚于较新修改完成也不会把读写者回退到旧的 TopicData
func TestSetQoS_TopicPushdownLatestWins(t *testing.T) {
	m := newTestManager(t)
	root := newTestRoot(t, m)
	pp := newTestChild(t, m, root.Handle(), types.KindParticipant, Options{})
	pub := newTestChild(t, m, pp.Handle(), types.KindPublisher, Options{})

	topic := &sharedTopicNode{qos: types.DefaultQoS(types.KindTopic)}
	initTestChild(t, m, pp.Handle(), &topic.Entity, topic, Options{Kind: types.KindTopic})

	wr := &topicUserNode{key: topic}
	initTestChild(t, m, pub.Handle(), &wr.Entity, wr, Options{
		Kind: types.KindWriter,
		QoS:  types.NewQoS().WithTopicData(nil),
	})
	other := &topicUserNode{key: "another topic"}
	initTestChild(t, m, pub.Handle(), &other.Entity, other, Options{
		Kind: types.KindWriter,
		QoS:  types.NewQoS().WithTopicData([]byte("untouched")),
	})

	// 第一次修改释放共享对象后、下推之前，第二次修改完整执行
	topic.sharedMu.Lock()
	topic.afterEnd = func() {
		require.NoError(t, m.SetQoS(topic.Handle(), types.NewQoS().WithTopicData([]byte("newer"))))
	}
	topic.sharedMu.Unlock()
	require.NoError(t, m.SetQoS(topic.Handle(), types.NewQoS().WithTopicData([]byte("older"))))

	tq, err := m.GetQoS(topic.Handle())
	require.NoError(t, err)
	assert.Equal(t, []byte("newer"), tq.TopicData)

	wq, err := m.GetQoS(wr.Handle())
	require.NoError(t, err)
	assert.Equal(t, []byte("newer"), wq.TopicData)

	oq, err := m.GetQoS(other.Handle())
	require.NoError(t, err)
	assert.Equal(t, []byte("untouched"), oq.TopicData)
}
