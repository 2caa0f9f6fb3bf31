package dcps

import (
	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/pkg/types"
)

// ============================================================================
//                              Root - 进程根
// ============================================================================

// Root 进程根实体，每个 Service 一个
type Root struct {
	entity.Entity
	entity.NopDeriver

	svc *Service

	// domains 受根实体主锁保护
	domains map[types.DomainID]*Domain
}

// Delete 根实体删除后服务不可再用
func (r *Root) Delete() error {
	r.svc.closed.Store(true)
	logger.Debug("根实体已删除")
	return types.ErrNoData
}

// domain 返回已 pin 的域实体，不存在或正在删除时创建新的隐式域
func (r *Root) domain(id types.DomainID) (*Domain, error) {
	if err := r.PinSelf(); err != nil {
		return nil, err
	}
	r.MutexLock()
	defer r.Unlock()

	if d := r.domains[id]; d != nil && d.PinSelf() == nil {
		return d, nil
	}
	d := &Domain{root: r, id: id}
	if _, err := r.Manager().Init(&d.Entity, &r.Entity, entity.Options{
		Kind:     types.KindDomain,
		Deriver:  d,
		Implicit: true,
		Domain:   &id,
	}); err != nil {
		return nil, err
	}
	r.Manager().InitComplete(&d.Entity)
	if err := d.PinSelf(); err != nil {
		return nil, err
	}
	r.domains[id] = d
	return d, nil
}

// ============================================================================
//                              Domain - 域
// ============================================================================

// Domain 域实体，根的隐式子实体
type Domain struct {
	entity.Entity
	entity.NopDeriver

	root *Root
	id   types.DomainID
}

// ID 返回域 ID
func (d *Domain) ID() types.DomainID {
	return d.id
}

// Delete 从根实体的域表中移除
func (d *Domain) Delete() error {
	d.root.MutexLock()
	if d.root.domains[d.id] == d {
		delete(d.root.domains, d.id)
	}
	d.root.MutexUnlock()
	return nil
}
