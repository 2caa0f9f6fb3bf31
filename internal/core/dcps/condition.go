package dcps

import (
	"fmt"

	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/pkg/types"
)

// QueryFilter 查询条件的样本过滤函数
type QueryFilter func(sample any) bool

// ============================================================================
//                              ReadCondition - 读条件 / 查询条件
// ============================================================================

// ReadCondition 读者的子实体，触发值为自上次取走后匹配的样本数
//
// 带过滤函数时为查询条件。
type ReadCondition struct {
	entity.Entity
	entity.NopDeriver

	reader *Reader
	mask   uint32
	filter QueryFilter
}

// Mask 返回创建时指定的样本状态掩码
func (rc *ReadCondition) Mask() uint32 {
	return rc.mask
}

func (rc *ReadCondition) matches(sample any) bool {
	return rc.filter == nil || rc.filter(sample)
}

// CreateReadCondition 在读者下创建读条件
func (s *Service) CreateReadCondition(reader types.Handle, mask uint32) (types.Handle, error) {
	return s.createReadCondition(reader, types.KindReadCondition, mask, nil)
}

// CreateQueryCondition 在读者下创建查询条件
func (s *Service) CreateQueryCondition(reader types.Handle, mask uint32, filter QueryFilter) (types.Handle, error) {
	if filter == nil {
		return 0, fmt.Errorf("%w: query condition requires a filter", types.ErrBadParameter)
	}
	return s.createReadCondition(reader, types.KindQueryCondition, mask, filter)
}

func (s *Service) createReadCondition(reader types.Handle, kind types.EntityKind, mask uint32, filter QueryFilter) (types.Handle, error) {
	e, err := s.m.Lock(reader, types.KindReader)
	if err != nil {
		return 0, err
	}
	defer e.Unlock()

	rc := &ReadCondition{reader: e.Deriver().(*Reader), mask: mask, filter: filter}
	h, err := s.m.Init(&rc.Entity, e, entity.Options{Kind: kind, Deriver: rc})
	if err != nil {
		return 0, err
	}
	s.m.InitComplete(&rc.Entity)
	return h, nil
}

// GetConditionMask 返回读条件或查询条件的样本状态掩码
func (s *Service) GetConditionMask(h types.Handle) (uint32, error) {
	e, err := s.m.Pin(h)
	if err != nil {
		return 0, err
	}
	defer e.Unpin()
	rc, ok := e.Deriver().(*ReadCondition)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a read condition", types.ErrIllegalOperation, e.Kind())
	}
	return rc.mask, nil
}

// DeliverData 报告读者收到样本
func (s *Service) DeliverData(reader types.Handle, sample any) error {
	r, err := s.pinReader(reader)
	if err != nil {
		return err
	}
	defer r.Unpin()
	r.DataArrived(sample)
	return nil
}

// ConsumeData 报告读者的样本已被全部取走
func (s *Service) ConsumeData(reader types.Handle) error {
	r, err := s.pinReader(reader)
	if err != nil {
		return err
	}
	defer r.Unpin()
	r.DataConsumed()
	return nil
}

// ReportStatus 报告实体的通信状态变化（匹配、丢样本、期限错过等）
//
// 存在对应 listener 时调用之，否则置位并通知观察者。数据到达走 DeliverData。
func (s *Service) ReportStatus(h types.Handle, id types.StatusID) error {
	switch {
	case id < 0 || int(id) >= types.NumStatus:
		return fmt.Errorf("%w: unknown status %d", types.ErrBadParameter, int(id))
	case id == types.StatusDataAvailable || id == types.StatusDataOnReaders:
		return fmt.Errorf("%w: %s is reported through data delivery", types.ErrBadParameter, id)
	}
	e, err := s.m.Pin(h)
	if err != nil {
		return err
	}
	defer e.Unpin()
	if !types.StatusMaskFor(e.Kind()).Has(id.Mask()) {
		return fmt.Errorf("%w: %s has no %s status", types.ErrIllegalOperation, e.Kind(), id)
	}
	e.RaiseStatus(id)
	return nil
}

// ============================================================================
//                              GuardCondition - 守卫条件
// ============================================================================

// GuardCondition 由应用直接设置触发值的条件
type GuardCondition struct {
	entity.Entity
	entity.NopDeriver
}

// CreateGuardCondition 在根、域或参与者下创建守卫条件
func (s *Service) CreateGuardCondition(owner types.Handle) (types.Handle, error) {
	p, err := s.pinOwner(owner)
	if err != nil {
		return 0, err
	}
	p.MutexLock()
	defer p.Unlock()

	gc := &GuardCondition{}
	h, err := s.m.Init(&gc.Entity, p, entity.Options{Kind: types.KindGuardCondition, Deriver: gc})
	if err != nil {
		return 0, err
	}
	s.m.InitComplete(&gc.Entity)
	return h, nil
}

// SetGuardCondition 设置或清除守卫条件
func (s *Service) SetGuardCondition(h types.Handle, triggered bool) error {
	e, err := s.m.PinKind(h, types.KindGuardCondition)
	if err != nil {
		return err
	}
	defer e.Unpin()
	var v uint32
	if triggered {
		v = 1
	}
	e.SetTrigger(v)
	return nil
}

// ReadGuardCondition 读取守卫条件
func (s *Service) ReadGuardCondition(h types.Handle) (bool, error) {
	e, err := s.m.PinKind(h, types.KindGuardCondition)
	if err != nil {
		return false, err
	}
	defer e.Unpin()
	return e.Trigger() != 0, nil
}

// TakeGuardCondition 读取并清除守卫条件
func (s *Service) TakeGuardCondition(h types.Handle) (bool, error) {
	e, err := s.m.PinKind(h, types.KindGuardCondition)
	if err != nil {
		return false, err
	}
	defer e.Unpin()
	return e.TakeTrigger() != 0, nil
}
