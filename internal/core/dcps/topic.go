package dcps

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/pkg/types"
)

// ============================================================================
//                              ktopic - 共享主题对象
// ============================================================================

// ktopic 同一参与者下同名主题共享的对象
//
// 持有类型名与主题配置。updating 为协作式延迟标志：配置修改期间置位，
// 其他修改等待其清除。
type ktopic struct {
	name     string
	typeName string

	mu       sync.Mutex
	cond     *sync.Cond
	qos      *types.QoS
	updating bool

	// refc 受参与者 topicsMu 保护
	refc int
}

func newKTopic(name, typeName string, q *types.QoS) *ktopic {
	kt := &ktopic{name: name, typeName: typeName, qos: q, refc: 1}
	kt.cond = sync.NewCond(&kt.mu)
	return kt
}

func (kt *ktopic) getQoS() *types.QoS {
	kt.mu.Lock()
	defer kt.mu.Unlock()
	return kt.qos
}

func (kt *ktopic) beginUpdate() {
	kt.mu.Lock()
	for kt.updating {
		kt.cond.Wait()
	}
	kt.updating = true
	kt.mu.Unlock()
}

func (kt *ktopic) endUpdate(q *types.QoS) {
	kt.mu.Lock()
	if q != nil {
		kt.qos = q
	}
	kt.updating = false
	kt.cond.Broadcast()
	kt.mu.Unlock()
}

// acquireTopic 查找或创建共享主题对象并增加一份引用
//
// 同名主题必须使用相同类型名；q 非 nil 时必须与现有配置一致。
func (p *Participant) acquireTopic(name, typeName string, q *types.QoS) (*ktopic, error) {
	p.topicsMu.Lock()
	defer p.topicsMu.Unlock()

	kt := p.topics[name]
	if kt == nil {
		if q == nil {
			q, _ = kindQoS(types.KindTopic, nil)
		}
		kt = newKTopic(name, typeName, q)
		p.topics[name] = kt
		return kt, nil
	}
	if kt.typeName != typeName {
		return nil, fmt.Errorf("%w: topic %q exists with type %q", types.ErrPreconditionNotMet, name, kt.typeName)
	}
	if q != nil && !q.Equal(kt.getQoS()) {
		return nil, fmt.Errorf("%w: topic %q exists with different qos", types.ErrInconsistentPolicy, name)
	}
	kt.refc++
	return kt, nil
}

// releaseTopic 释放共享主题对象的一份引用
func (p *Participant) releaseTopic(kt *ktopic) {
	p.topicsMu.Lock()
	defer p.topicsMu.Unlock()
	kt.refc--
	if kt.refc == 0 && p.topics[kt.name] == kt {
		delete(p.topics, kt.name)
	}
}

// lookupTopic 按名称查找共享主题对象并增加一份引用
func (p *Participant) lookupTopic(name string) *ktopic {
	p.topicsMu.Lock()
	defer p.topicsMu.Unlock()
	kt := p.topics[name]
	if kt != nil {
		kt.refc++
	}
	return kt
}

// ============================================================================
//                              Topic - 主题
// ============================================================================

// Topic 主题实体，参与者的子实体
//
// 配置由共享主题对象持有；读写者通过 AddRef 持有主题的引用。
type Topic struct {
	entity.Entity
	entity.NopDeriver

	pp *Participant
	kt *ktopic
}

// Name 返回主题名
func (t *Topic) Name() string {
	return t.kt.name
}

// TypeName 返回类型名
func (t *Topic) TypeName() string {
	return t.kt.typeName
}

// SharedQoS 返回共享主题对象的配置
func (t *Topic) SharedQoS() *types.QoS {
	return t.kt.getQoS()
}

// BeginQoSUpdate 等待共享主题对象上的其他配置修改完成
func (t *Topic) BeginQoSUpdate() any {
	t.kt.beginUpdate()
	return t.kt
}

// EndQoSUpdate 结束配置修改
func (t *Topic) EndQoSUpdate(q *types.QoS) {
	t.kt.endUpdate(q)
}

// ValidateStatus 校验主题状态掩码
func (t *Topic) ValidateStatus(mask types.StatusMask) error {
	return entity.ValidateStatusFor(types.KindTopic, types.TopicStatusMask, mask)
}

// Delete 释放共享主题对象
func (t *Topic) Delete() error {
	t.pp.releaseTopic(t.kt)
	return nil
}

// CreateTopic 在参与者下创建主题
//
// 同名主题已存在时返回共享同一主题对象的新句柄。qos 为 nil 时沿用已有配置。
func (s *Service) CreateTopic(participant types.Handle, name, typeName string, qos *types.QoS, l *types.Listener) (types.Handle, error) {
	if name == "" || typeName == "" {
		return 0, fmt.Errorf("%w: topic and type name are required", types.ErrBadParameter)
	}
	var q *types.QoS
	if qos != nil {
		var err error
		if q, err = kindQoS(types.KindTopic, qos); err != nil {
			return 0, err
		}
	}

	pp, err := s.lockParticipant(participant)
	if err != nil {
		return 0, err
	}
	defer pp.Unlock()

	kt, err := pp.acquireTopic(name, typeName, q)
	if err != nil {
		return 0, err
	}
	return s.newTopicLocked(pp, kt, l)
}

// FindTopic 查找参与者下的同名主题，找到时返回共享同一主题对象的新句柄
//
// 未找到返回 0 与 nil。
func (s *Service) FindTopic(participant types.Handle, name string) (types.Handle, error) {
	pp, err := s.lockParticipant(participant)
	if err != nil {
		return 0, err
	}
	defer pp.Unlock()
	kt := pp.lookupTopic(name)
	if kt == nil {
		return 0, nil
	}
	return s.newTopicLocked(pp, kt, nil)
}

// newTopicLocked 为已取得引用的共享主题对象创建主题实体，调用方持有参与者主锁
func (s *Service) newTopicLocked(pp *Participant, kt *ktopic, l *types.Listener) (types.Handle, error) {
	t := &Topic{pp: pp, kt: kt}
	h, err := s.m.Init(&t.Entity, &pp.Entity, entity.Options{
		Kind:     types.KindTopic,
		Deriver:  t,
		Listener: l,
	})
	if err != nil {
		pp.releaseTopic(kt)
		return 0, err
	}
	s.m.InitComplete(&t.Entity)
	return h, nil
}

// TopicName 返回主题名与类型名
func (s *Service) TopicName(h types.Handle) (string, string, error) {
	t, err := s.pinTopic(h)
	if err != nil {
		return "", "", err
	}
	defer t.Unpin()
	return t.Name(), t.TypeName(), nil
}
