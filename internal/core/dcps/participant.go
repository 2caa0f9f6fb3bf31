package dcps

import (
	"errors"
	"sync"

	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/pkg/types"
)

// Participant 域参与者
type Participant struct {
	entity.Entity
	entity.NopDeriver

	// topicsMu 保护 topics；可在持有参与者主锁时获取
	topicsMu sync.Mutex
	topics   map[string]*ktopic
}

// ValidateStatus 参与者不定义自身状态
func (p *Participant) ValidateStatus(mask types.StatusMask) error {
	return entity.ValidateStatusFor(types.KindParticipant, types.ParticipantStatusMask, mask)
}

// CreateParticipant 在指定域中创建参与者
//
// 域不存在时隐式创建；域恰好随其最后一个参与者删除时重试。
func (s *Service) CreateParticipant(id types.DomainID, qos *types.QoS, l *types.Listener) (types.Handle, error) {
	q, err := kindQoS(types.KindParticipant, qos)
	if err != nil {
		return 0, err
	}
	for {
		d, err := s.root.domain(id)
		if err != nil {
			return 0, err
		}
		d.MutexLock()
		p := &Participant{topics: make(map[string]*ktopic)}
		h, err := s.m.Init(&p.Entity, &d.Entity, entity.Options{
			Kind:     types.KindParticipant,
			Deriver:  p,
			QoS:      q,
			Listener: l,
		})
		if err == nil {
			s.m.InitComplete(&p.Entity)
		}
		d.Unlock()

		if errors.Is(err, types.ErrPreconditionNotMet) && d.IsClosed() {
			logger.Debug("域正在删除，重试创建参与者", "domain", id)
			continue
		}
		return h, err
	}
}
