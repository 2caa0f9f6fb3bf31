package dcps

import (
	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/pkg/types"
)

// Publisher 发布者
type Publisher struct {
	entity.Entity
	entity.NopDeriver
}

// ValidateStatus 校验发布者状态掩码
func (p *Publisher) ValidateStatus(mask types.StatusMask) error {
	return entity.ValidateStatusFor(types.KindPublisher, types.PublisherStatusMask, mask)
}

// Subscriber 订阅者
type Subscriber struct {
	entity.Entity
	entity.NopDeriver
}

// ValidateStatus 校验订阅者状态掩码
func (s *Subscriber) ValidateStatus(mask types.StatusMask) error {
	return entity.ValidateStatusFor(types.KindSubscriber, types.SubscriberStatusMask, mask)
}

// CreatePublisher 在参与者下创建发布者
func (s *Service) CreatePublisher(participant types.Handle, qos *types.QoS, l *types.Listener) (types.Handle, error) {
	return s.createGroup(participant, types.KindPublisher, qos, l)
}

// CreateSubscriber 在参与者下创建订阅者
func (s *Service) CreateSubscriber(participant types.Handle, qos *types.QoS, l *types.Listener) (types.Handle, error) {
	return s.createGroup(participant, types.KindSubscriber, qos, l)
}

func (s *Service) createGroup(participant types.Handle, kind types.EntityKind, qos *types.QoS, l *types.Listener) (types.Handle, error) {
	q, err := kindQoS(kind, qos)
	if err != nil {
		return 0, err
	}
	pp, err := s.lockParticipant(participant)
	if err != nil {
		return 0, err
	}
	defer pp.Unlock()
	g, err := s.newGroupLocked(pp, kind, q, l, false)
	if err != nil {
		return 0, err
	}
	return g.Handle(), nil
}

// newGroupLocked 创建发布者或订阅者，调用方持有参与者主锁
func (s *Service) newGroupLocked(pp *Participant, kind types.EntityKind, q *types.QoS, l *types.Listener, implicit bool) (*entity.Entity, error) {
	var (
		e *entity.Entity
		o = entity.Options{Kind: kind, QoS: q, Listener: l, Implicit: implicit}
	)
	if kind == types.KindPublisher {
		p := &Publisher{}
		e, o.Deriver = &p.Entity, p
	} else {
		sub := &Subscriber{}
		e, o.Deriver = &sub.Entity, sub
	}
	if _, err := s.m.Init(e, &pp.Entity, o); err != nil {
		return nil, err
	}
	s.m.InitComplete(e)
	return e, nil
}

// lockGroup 锁定读写者的父实体
//
// h 为参与者时隐式创建发布者/订阅者；返回的 implicit 为 true 表示该实体
// 是本次新建的隐式实体，创建读写者失败时调用方应将其删除。
func (s *Service) lockGroup(h types.Handle, kind types.EntityKind) (g *entity.Entity, implicit bool, err error) {
	e, err := s.m.Pin(h)
	if err != nil {
		return nil, false, err
	}
	switch e.Kind() {
	case kind:
		e.MutexLock()
		return e, false, nil
	case types.KindParticipant:
	default:
		e.Unpin()
		return nil, false, errIllegalParent(h, e.Kind(), kind)
	}

	pp := e.Deriver().(*Participant)
	pp.MutexLock()
	q, _ := kindQoS(kind, nil)
	g, err = s.newGroupLocked(pp, kind, q, nil, true)
	if err == nil {
		err = g.PinSelf()
	}
	pp.Unlock()
	if err != nil {
		return nil, false, err
	}
	g.MutexLock()
	return g, true, nil
}

// abandonImplicitGroup 删除为失败的读写者创建而隐式创建的发布者/订阅者
func (s *Service) abandonImplicitGroup(g *entity.Entity) {
	if err := s.m.DeleteImplicit(g.Handle()); err != nil {
		logger.Warn("删除隐式实体失败", "handle", g.Handle(), "err", err)
	}
}
