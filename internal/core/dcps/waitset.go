package dcps

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-dds/internal/core/entity"
	"github.com/dep2p/go-dds/pkg/types"
)

// ============================================================================
//                              WaitSet - 等待集
// ============================================================================

type attachment struct {
	h   types.Handle
	arg any
}

// WaitSet 等待集
//
// 作为观察者注册到被挂载的实体上。OnAttach/OnStatus/OnDelete 在被观察实体的
// 观察者锁内调用，因此 mu 必须在任何实体锁之后获取，持有 mu 时不得 pin 或
// 锁定实体。
type WaitSet struct {
	entity.Entity
	entity.NopDeriver

	mu       sync.Mutex
	cond     *sync.Cond
	attached []attachment
	gen      uint64
	closing  bool
}

// ObserverHandle 观察者标识
func (ws *WaitSet) ObserverHandle() types.Handle {
	return ws.Handle()
}

// OnAttach 记录挂载参数
func (ws *WaitSet) OnAttach(observed types.Handle, arg any) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.attached = append(ws.attached, attachment{h: observed, arg: arg})
	ws.kickLocked()
	return true
}

// OnStatus 唤醒等待者重新检查
func (ws *WaitSet) OnStatus(types.Handle, types.StatusMask) {
	ws.mu.Lock()
	ws.kickLocked()
	ws.mu.Unlock()
}

// OnDelete 被观察实体已删除或已分离
func (ws *WaitSet) OnDelete(observed types.Handle) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for i, a := range ws.attached {
		if a.h == observed {
			ws.attached = append(ws.attached[:i], ws.attached[i+1:]...)
			break
		}
	}
	ws.kickLocked()
}

func (ws *WaitSet) kickLocked() {
	ws.gen++
	ws.cond.Broadcast()
}

// Interrupt 唤醒所有等待者，等待返回错误
func (ws *WaitSet) Interrupt() {
	ws.mu.Lock()
	ws.closing = true
	ws.kickLocked()
	ws.mu.Unlock()
}

// Close 从所有被挂载实体分离；挂载自身的记录由删除通知移除
func (ws *WaitSet) Close() {
	self := ws.Handle()
	for _, a := range ws.snapshot() {
		if a.h == self {
			continue
		}
		e, err := ws.Manager().PinInternal(a.h)
		if err != nil {
			continue
		}
		if err := e.UnregisterObserver(self, true); err != nil {
			logger.Debug("等待集分离失败", "waitset", self, "entity", a.h, "err", err)
		}
		e.Unpin()
	}
}

func (ws *WaitSet) snapshot() []attachment {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return append([]attachment(nil), ws.attached...)
}

// wait 等待至少一个被挂载实体处于触发状态，返回它们的挂载参数
func (ws *WaitSet) wait(ctx context.Context) ([]any, error) {
	stop := context.AfterFunc(ctx, func() {
		ws.mu.Lock()
		ws.cond.Broadcast()
		ws.mu.Unlock()
	})
	defer stop()

	m := ws.Manager()
	for {
		ws.mu.Lock()
		gen, closing := ws.gen, ws.closing
		list := append([]attachment(nil), ws.attached...)
		ws.mu.Unlock()
		if closing {
			return nil, fmt.Errorf("%w: wait-set %v is being deleted", types.ErrNotFound, ws.Handle())
		}

		var out []any
		for _, a := range list {
			e, err := m.PinInternal(a.h)
			if err != nil {
				continue
			}
			if e.Triggered() {
				out = append(out, a.arg)
			}
			e.Unpin()
		}
		if len(out) > 0 {
			return out, nil
		}

		ws.mu.Lock()
		for ws.gen == gen && !ws.closing && ctx.Err() == nil {
			ws.cond.Wait()
		}
		ws.mu.Unlock()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// ============================================================================
//                              操作
// ============================================================================

// CreateWaitSet 在根、域或参与者下创建等待集
func (s *Service) CreateWaitSet(owner types.Handle) (types.Handle, error) {
	p, err := s.pinOwner(owner)
	if err != nil {
		return 0, err
	}
	p.MutexLock()
	defer p.Unlock()

	ws := &WaitSet{}
	ws.cond = sync.NewCond(&ws.mu)
	h, err := s.m.Init(&ws.Entity, p, entity.Options{Kind: types.KindWaitSet, Deriver: ws})
	if err != nil {
		return 0, err
	}
	s.m.InitComplete(&ws.Entity)
	return h, nil
}

func (s *Service) pinWaitSet(h types.Handle) (*WaitSet, error) {
	e, err := s.m.PinKind(h, types.KindWaitSet)
	if err != nil {
		return nil, err
	}
	return e.Deriver().(*WaitSet), nil
}

// inScope 报告 e 是否位于 owner 之下（含 owner 自身）
func inScope(e, owner *entity.Entity) bool {
	for x := e; x != nil; x = x.Parent() {
		if x == owner {
			return true
		}
	}
	return false
}

// WaitSetAttach 将实体挂载到等待集，arg 在该实体触发时由 Wait 返回
//
// 实体必须位于等待集的父实体之下；等待集可以挂载自身。
func (s *Service) WaitSetAttach(waitset, h types.Handle, arg any) error {
	ws, err := s.pinWaitSet(waitset)
	if err != nil {
		return err
	}
	defer ws.Unpin()

	e := &ws.Entity
	if h != waitset {
		if e, err = s.m.Pin(h); err != nil {
			return err
		}
		defer e.Unpin()
	}
	if !inScope(e, ws.Parent()) {
		return fmt.Errorf("%w: %v is outside the scope of wait-set %v", types.ErrBadParameter, h, waitset)
	}
	return e.RegisterObserver(ws, arg)
}

// WaitSetDetach 将实体从等待集分离
func (s *Service) WaitSetDetach(waitset, h types.Handle) error {
	ws, err := s.pinWaitSet(waitset)
	if err != nil {
		return err
	}
	defer ws.Unpin()

	e := &ws.Entity
	if h != waitset {
		if e, err = s.m.Pin(h); err != nil {
			return err
		}
		defer e.Unpin()
	}
	return e.UnregisterObserver(waitset, true)
}

// WaitSetEntities 返回已挂载的实体句柄（按挂载顺序）
func (s *Service) WaitSetEntities(waitset types.Handle) ([]types.Handle, error) {
	ws, err := s.pinWaitSet(waitset)
	if err != nil {
		return nil, err
	}
	defer ws.Unpin()
	list := ws.snapshot()
	out := make([]types.Handle, len(list))
	for i, a := range list {
		out[i] = a.h
	}
	return out, nil
}

// WaitSetSetTrigger 设置等待集自身的触发值
func (s *Service) WaitSetSetTrigger(waitset types.Handle, triggered bool) error {
	ws, err := s.pinWaitSet(waitset)
	if err != nil {
		return err
	}
	defer ws.Unpin()
	var v uint32
	if triggered {
		v = 1
	}
	ws.SetTrigger(v)
	return nil
}

// WaitSetWait 阻塞直到至少一个挂载实体触发，返回它们的挂载参数
//
// ctx 结束时返回 ctx.Err()；等待集被删除时返回 ErrNotFound。
func (s *Service) WaitSetWait(ctx context.Context, waitset types.Handle) ([]any, error) {
	ws, err := s.pinWaitSet(waitset)
	if err != nil {
		return nil, err
	}
	defer ws.Unpin()
	return ws.wait(ctx)
}
