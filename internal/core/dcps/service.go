package dcps

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/pkg/lib/log"
	"github.com/dep2p/go-dds/pkg/types"
)

var logger = log.Logger("core/dcps")

// Service 具体实体类型的创建与类型专属操作入口
type Service struct {
	m      *entity.Manager
	root   *Root
	closed atomic.Bool
}

// NewService 创建服务并注册进程根实体
func NewService(m *entity.Manager) (*Service, error) {
	s := &Service{m: m}
	r := &Root{svc: s, domains: make(map[types.DomainID]*Domain)}
	if _, err := m.Init(&r.Entity, nil, entity.Options{Kind: types.KindRoot, Deriver: r}); err != nil {
		return nil, fmt.Errorf("init root: %w", err)
	}
	m.InitComplete(&r.Entity)
	s.root = r
	return s, nil
}

// Manager 返回实体管理器
func (s *Service) Manager() *entity.Manager {
	return s.m
}

// RootHandle 返回根实体句柄
func (s *Service) RootHandle() types.Handle {
	return s.root.Handle()
}

// Close 删除根实体及其下所有实体
//
// 重复调用返回 nil。
func (s *Service) Close() error {
	if s.closed.Load() {
		return nil
	}
	err := s.m.Delete(s.root.Handle())
	if errors.Is(err, types.ErrNotFound) && s.closed.Load() {
		return nil
	}
	return err
}

// ============================================================================
//                              内部辅助
// ============================================================================

// kindQoS 按类型掩码过滤用户配置，补齐默认值并校验
func kindQoS(kind types.EntityKind, q *types.QoS) (*types.QoS, error) {
	nq := types.NewQoS()
	nq.MergeInMissing(q, kind.QoSMask())
	nq.MergeInMissing(types.DefaultQoS(kind), types.AllPolicies)
	if err := nq.Validate(); err != nil {
		return nil, err
	}
	return nq, nil
}

// lockParticipant 锁定参与者
func (s *Service) lockParticipant(h types.Handle) (*Participant, error) {
	e, err := s.m.Lock(h, types.KindParticipant)
	if err != nil {
		return nil, err
	}
	return e.Deriver().(*Participant), nil
}

// pinTopic pin 主题，返回值需 Unpin
func (s *Service) pinTopic(h types.Handle) (*Topic, error) {
	e, err := s.m.PinKind(h, types.KindTopic)
	if err != nil {
		return nil, err
	}
	return e.Deriver().(*Topic), nil
}

// pinOwner pin 守卫条件或等待集的父实体（根、域或参与者）
func (s *Service) pinOwner(h types.Handle) (*entity.Entity, error) {
	e, err := s.m.Pin(h)
	if err != nil {
		return nil, err
	}
	switch e.Kind() {
	case types.KindRoot, types.KindDomain, types.KindParticipant:
		return e, nil
	default:
		e.Unpin()
		return nil, fmt.Errorf("%w: %s cannot own conditions or wait-sets", types.ErrIllegalOperation, e.Kind())
	}
}
