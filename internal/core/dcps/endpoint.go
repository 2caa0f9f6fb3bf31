package dcps

import (
	"fmt"

	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/pkg/types"
)

func errIllegalParent(h types.Handle, got, want types.EntityKind) error {
	return fmt.Errorf("%w: %v is a %s, expected a participant or %s", types.ErrIllegalOperation, h, got, want)
}

// endpoint 读写者共有部分：对主题的引用
type endpoint struct {
	topic *Topic
}

// UsesTopicObject 报告是否基于给定共享主题对象创建
func (ep *endpoint) UsesTopicObject(key any) bool {
	kt, ok := key.(*ktopic)
	return ok && kt == ep.topic.kt
}

// releaseTopic 释放主题引用，被推迟删除的主题随最后一个引用一起删除
func (ep *endpoint) releaseTopic(m *entity.Manager) error {
	if ep.topic.DropRef() {
		return m.DeleteImplicit(ep.topic.Handle())
	}
	return nil
}

// ============================================================================
//                              Writer - 写者
// ============================================================================

// Writer 数据写者，发布者的子实体
type Writer struct {
	entity.Entity
	entity.NopDeriver
	endpoint
}

// ValidateStatus 校验写者状态掩码
func (w *Writer) ValidateStatus(mask types.StatusMask) error {
	return entity.ValidateStatusFor(types.KindWriter, types.WriterStatusMask, mask)
}

// Delete 释放主题引用
func (w *Writer) Delete() error {
	return w.releaseTopic(w.Manager())
}

// ============================================================================
//                              Reader - 读者
// ============================================================================

// Reader 数据读者，订阅者的子实体，可拥有读条件与查询条件
type Reader struct {
	entity.Entity
	entity.NopDeriver
	endpoint
}

// ValidateStatus 读者额外接受 DataOnReaders（读取时由父订阅者决定）
func (r *Reader) ValidateStatus(mask types.StatusMask) error {
	return entity.ValidateStatusFor(types.KindReader, types.ReaderStatusMask|types.DataOnReadersStatus, mask)
}

// Delete 释放主题引用
func (r *Reader) Delete() error {
	return r.releaseTopic(r.Manager())
}

// DataArrived 协议层在读者收到样本后调用
//
// 匹配的读条件触发计数加一。读者未使能 DataAvailable 时不做其他通知；
// 否则依次尝试订阅者的 DataOnReaders listener、读者的 DataAvailable
// listener，两者都没有时才置位读者 DataAvailable 与订阅者 DataOnReaders。
func (r *Reader) DataArrived(sample any) {
	r.notifyDataAvailable()

	r.MutexLock()
	r.ForEachChildLocked(func(c *entity.Entity) bool {
		if rc, ok := c.Deriver().(*ReadCondition); ok && rc.matches(sample) {
			c.AddTrigger(1)
		}
		return true
	})
	r.MutexUnlock()
}

func (r *Reader) notifyDataAvailable() {
	if !r.StatusEnabled(types.DataAvailableStatus) {
		return
	}
	sub := r.Parent()
	switch {
	case sub != nil && sub.HasListener(types.StatusDataOnReaders):
		sub.CallListener(types.StatusDataOnReaders)
	case r.CallListener(types.StatusDataAvailable):
	default:
		r.StatusSet(types.DataAvailableStatus)
		if sub != nil {
			sub.StatusSet(types.DataOnReadersStatus)
		}
	}
}

// DataConsumed 协议层在读者的样本被全部取走后调用
func (r *Reader) DataConsumed() {
	r.StatusReset(types.DataAvailableStatus)
	if sub := r.Parent(); sub != nil {
		sub.StatusReset(types.DataOnReadersStatus)
	}
	r.MutexLock()
	r.ForEachChildLocked(func(c *entity.Entity) bool {
		c.SetTrigger(0)
		return true
	})
	r.MutexUnlock()
}

// ============================================================================
//                              创建
// ============================================================================

// CreateWriter 创建写者
//
// parent 为参与者时隐式创建发布者。主题必须属于同一参与者。
func (s *Service) CreateWriter(parent, topic types.Handle, qos *types.QoS, l *types.Listener) (types.Handle, error) {
	return s.createEndpoint(parent, topic, types.KindWriter, qos, l)
}

// CreateReader 创建读者
//
// parent 为参与者时隐式创建订阅者。主题必须属于同一参与者。
func (s *Service) CreateReader(parent, topic types.Handle, qos *types.QoS, l *types.Listener) (types.Handle, error) {
	return s.createEndpoint(parent, topic, types.KindReader, qos, l)
}

func (s *Service) createEndpoint(parent, topic types.Handle, kind types.EntityKind, qos *types.QoS, l *types.Listener) (types.Handle, error) {
	groupKind := types.KindPublisher
	if kind == types.KindReader {
		groupKind = types.KindSubscriber
	}

	t, err := s.pinTopic(topic)
	if err != nil {
		return 0, err
	}
	defer t.Unpin()

	g, implicit, err := s.lockGroup(parent, groupKind)
	if err != nil {
		return 0, err
	}
	h, err := s.newEndpointLocked(g, t, kind, qos, l)
	g.Unlock()
	if err != nil && implicit {
		s.abandonImplicitGroup(g)
	}
	return h, err
}

// newEndpointLocked 调用方持有发布者/订阅者主锁
func (s *Service) newEndpointLocked(g *entity.Entity, t *Topic, kind types.EntityKind, qos *types.QoS, l *types.Listener) (types.Handle, error) {
	if g.Participant() != &t.pp.Entity {
		return 0, fmt.Errorf("%w: topic %v belongs to another participant", types.ErrBadParameter, t.Handle())
	}

	// 用户配置 + 组配置（GroupData、Partition）+ 主题配置
	q := types.NewQoS()
	q.MergeInMissing(qos, kind.QoSMask())
	q.MergeInMissing(g.QoSLocked(), types.PolicyGroupData|types.PolicyPartition)
	q.MergeInMissing(t.SharedQoS(), types.TopicQoSMask&^types.PolicyEntityName)

	var (
		e *entity.Entity
		o = entity.Options{Kind: kind, QoS: q, Listener: l}
	)
	if kind == types.KindWriter {
		w := &Writer{endpoint: endpoint{topic: t}}
		e, o.Deriver = &w.Entity, w
	} else {
		r := &Reader{endpoint: endpoint{topic: t}}
		e, o.Deriver = &r.Entity, r
	}

	if err := t.AddRef(); err != nil {
		return 0, err
	}
	h, err := s.m.Init(e, g, o)
	if err != nil {
		if t.DropRef() {
			_ = s.m.DeleteImplicit(t.Handle())
		}
		return 0, err
	}
	s.m.InitComplete(e)
	return h, nil
}

// GetTopic 返回读写者创建时使用的主题句柄
func (s *Service) GetTopic(h types.Handle) (types.Handle, error) {
	e, err := s.m.Pin(h)
	if err != nil {
		return 0, err
	}
	defer e.Unpin()
	switch d := e.Deriver().(type) {
	case *Writer:
		return d.topic.Handle(), nil
	case *Reader:
		return d.topic.Handle(), nil
	case *ReadCondition:
		return d.reader.topic.Handle(), nil
	default:
		return 0, fmt.Errorf("%w: %s has no topic", types.ErrIllegalOperation, e.Kind())
	}
}

// pinReader pin 读者，返回值需 Unpin
func (s *Service) pinReader(h types.Handle) (*Reader, error) {
	e, err := s.m.PinKind(h, types.KindReader)
	if err != nil {
		return nil, err
	}
	return e.Deriver().(*Reader), nil
}
