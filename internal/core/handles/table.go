package handles

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-dds/pkg/lib/log"
	"github.com/dep2p/go-dds/pkg/types"
)

var logger = log.Logger("core/handles")

const (
	slotBits = 17
	slotMask = 1<<slotBits - 1
	genMask  = 1<<14 - 1

	// retiredGen 代数用尽的槽位不再复用，旧句柄永远无法解析到新实体
	retiredGen = genMask

	// rootSlot 根实体的保留槽位（代数 0，句柄即 types.RootHandle）
	rootSlot = 1
)

// slot 槽位
type slot struct {
	gen  uint32
	link *Link
}

// Table 句柄表
//
// 槽位数组由 mu 保护；计数字为原子操作。等待 pin 排空使用独立的
// waitMu/waitCond，避免阻塞查找路径。
type Table struct {
	mu      sync.RWMutex
	slots   []slot
	free    []uint32
	count   int
	max     int
	retired int

	waitMu   sync.Mutex
	waitCond *sync.Cond

	clock    clock.Clock
	drainLog time.Duration
	limiter  *rate.Limiter
}

// NewTable 创建句柄表
func NewTable(cfg Config) *Table {
	if cfg.MaxHandles < 2 || cfg.MaxHandles > slotMask {
		cfg.MaxHandles = slotMask
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	t := &Table{
		slots:    make([]slot, rootSlot+1, 64),
		max:      cfg.MaxHandles,
		clock:    cfg.Clock,
		drainLog: cfg.DrainLogInterval,
	}
	t.waitCond = sync.NewCond(&t.waitMu)
	if cfg.DrainLogInterval > 0 {
		t.limiter = rate.NewLimiter(rate.Every(cfg.DrainLogInterval), 1)
	}
	return t
}

// ============================================================================
//                              注册
// ============================================================================

func initialCount(implicit, allowChildren bool) uint32 {
	cf := flagPending | 1
	if implicit {
		cf |= flagImplicit
	} else {
		cf += refcUnit
	}
	if allowChildren {
		cf |= flagChildren
	}
	return cf
}

// Register 为 link 分配新句柄
//
// 返回时句柄处于 Pending 状态并带有调用方的一次 pin，构造完成后调用 Unpend。
// 显式实体初始持有一份引用（创建者的），隐式实体没有。
func (t *Table) Register(l *Link, implicit, allowChildren, userAccess bool) (types.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count >= t.max {
		return 0, fmt.Errorf("%w: handle table full (%d)", types.ErrOutOfResources, t.max)
	}

	var idx uint32
	switch {
	case len(t.free) > 0:
		idx = t.free[0]
		t.free = t.free[1:]
	case len(t.slots) <= slotMask:
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{})
	default:
		return 0, fmt.Errorf("%w: no free handle slot", types.ErrOutOfResources)
	}

	s := &t.slots[idx]
	s.gen++
	l.hdl = types.Handle(s.gen<<slotBits | idx)
	l.noUserAccess = !userAccess
	l.cnt.Store(initialCount(implicit, allowChildren))
	s.link = l
	t.count++
	return l.hdl, nil
}

// RegisterSpecial 以保留句柄 types.RootHandle 注册根实体
func (t *Table) RegisterSpecial(l *Link, implicit, allowChildren bool) (types.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.slots[rootSlot]
	if s.link != nil {
		return 0, fmt.Errorf("%w: root handle already registered", types.ErrPreconditionNotMet)
	}
	if t.count >= t.max {
		return 0, fmt.Errorf("%w: handle table full (%d)", types.ErrOutOfResources, t.max)
	}
	l.hdl = types.RootHandle
	l.noUserAccess = false
	l.cnt.Store(initialCount(implicit, allowChildren))
	s.link = l
	t.count++
	return l.hdl, nil
}

// Unpend 使句柄对用户可见，并释放注册时的 pin
func (t *Table) Unpend(l *Link) {
	cf := l.cnt.Load()
	if cf&flagPending == 0 || cf&pinMask == 0 {
		panic(fmt.Sprintf("handles: unpend of %v in state %#x", l.hdl, cf))
	}
	update(l, func(cf uint32) (uint32, error) {
		return cf &^ flagPending, nil
	})
	t.Unpin(l)
}

// ============================================================================
//                              Pin / Unpin
// ============================================================================

// update 以 CAS 循环更新计数字，fn 返回错误时放弃更新
func update(l *Link, fn func(cf uint32) (uint32, error)) (uint32, error) {
	for {
		old := l.cnt.Load()
		nv, err := fn(old)
		if err != nil {
			return old, err
		}
		if l.cnt.CompareAndSwap(old, nv) {
			return nv, nil
		}
	}
}

// lookupLocked 解析句柄，调用方持有 mu
func (t *Table) lookupLocked(h types.Handle) *Link {
	if h <= 0 {
		return nil
	}
	idx := uint32(h) & slotMask
	gen := uint32(h) >> slotBits
	if idx == 0 || int(idx) >= len(t.slots) {
		return nil
	}
	s := t.slots[idx]
	if s.link == nil || s.gen != gen {
		return nil
	}
	return s.link
}

// Pin 解析句柄并增加 pin 计数
//
// 未知、已关闭的句柄返回 ErrNotFound；fromUser 时推迟删除的句柄同样返回
// ErrNotFound，挂起或禁止用户访问的句柄返回 ErrBadParameter。
func (t *Table) Pin(h types.Handle, fromUser bool) (*Link, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	l := t.lookupLocked(h)
	if l == nil {
		return nil, fmt.Errorf("%w: %v", types.ErrNotFound, h)
	}
	if fromUser && l.noUserAccess {
		return nil, fmt.Errorf("%w: %v is not accessible", types.ErrBadParameter, h)
	}
	_, err := update(l, func(cf uint32) (uint32, error) {
		switch {
		case cf&flagClosing != 0:
			return 0, fmt.Errorf("%w: %v is closing", types.ErrNotFound, h)
		case fromUser && cf&flagDeferred != 0:
			return 0, fmt.Errorf("%w: %v was deleted", types.ErrNotFound, h)
		case fromUser && cf&flagPending != 0:
			return 0, fmt.Errorf("%w: %v is pending", types.ErrBadParameter, h)
		case cf&pinMask == pinMask:
			return 0, fmt.Errorf("%w: pin count of %v saturated", types.ErrOutOfResources, h)
		}
		return cf + 1, nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// PinForDelete 为删除而 pin，同时原子地设置 Closing
//
// explicit 为 false 表示隐式级联删除（只允许作用于隐式实体）。返回 ErrTryAgain
// 表示删除已由其他线程进行，或因仍有引用而被推迟；两种情况下都未持有 pin。
func (t *Table) PinForDelete(h types.Handle, explicit, fromUser bool) (*Link, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	l := t.lookupLocked(h)
	if l == nil {
		return nil, fmt.Errorf("%w: %v", types.ErrNotFound, h)
	}
	if fromUser && l.noUserAccess {
		return nil, fmt.Errorf("%w: %v is not accessible", types.ErrBadParameter, h)
	}

	pinned := false
	_, err := update(l, func(cf uint32) (uint32, error) {
		refc := cf & refcMask
		switch {
		case cf&flagClosing != 0:
			return 0, types.ErrTryAgain
		case fromUser && cf&flagPending != 0:
			return 0, fmt.Errorf("%w: %v is pending", types.ErrBadParameter, h)
		case cf&flagDeferred != 0:
			if refc != 0 {
				if fromUser {
					return 0, fmt.Errorf("%w: %v was deleted", types.ErrNotFound, h)
				}
				return 0, types.ErrTryAgain
			}
			pinned = true
			return (cf + 1) | flagClosing, nil
		case explicit && cf&flagImplicit != 0:
			pinned = true
			return (cf + 1) | flagClosing, nil
		case explicit:
			if refc == 0 {
				panic(fmt.Sprintf("handles: explicit %v without creator reference (%#x)", h, cf))
			}
			if refc != refcUnit && cf&flagChildren == 0 {
				pinned = false
				return (cf - refcUnit) | flagDeferred, nil
			}
			pinned = true
			return (cf - refcUnit + 1) | flagClosing, nil
		case cf&flagImplicit == 0:
			return 0, fmt.Errorf("%w: cascade delete of explicit %v", types.ErrIllegalOperation, h)
		case refc <= refcUnit:
			pinned = true
			return (cf &^ refcMask) + 1 | flagClosing, nil
		default:
			pinned = false
			return cf - refcUnit, nil
		}
	})
	if err != nil {
		return nil, err
	}
	if !pinned {
		return nil, types.ErrTryAgain
	}
	return l, nil
}

// Unpin 释放一次 pin
//
// 关闭中的实体 pin 计数降到 1 时唤醒 CloseWait。
func (t *Table) Unpin(l *Link) {
	if l.cnt.Load()&pinMask == 0 {
		panic(fmt.Sprintf("handles: unpin of unpinned %v", l.hdl))
	}
	nv := l.cnt.Add(^uint32(0))
	if nv&(flagClosing|pinMask) == flagClosing|1 {
		t.wake()
	}
}

func (t *Table) wake() {
	t.waitMu.Lock()
	t.waitCond.Broadcast()
	t.waitMu.Unlock()
}

// ============================================================================
//                              关闭与删除
// ============================================================================

// Close 设置 Closing 标志，返回是否由本次调用设置
//
// 调用方必须持有实体锁，使并发操作在检查到"未关闭"之后不会越过关闭点。
func (t *Table) Close(l *Link) bool {
	_, err := update(l, func(cf uint32) (uint32, error) {
		if cf&flagClosing != 0 {
			return 0, types.ErrTryAgain
		}
		return cf | flagClosing, nil
	})
	return err == nil
}

// IsClosed 报告句柄是否已关闭
func (t *Table) IsClosed(l *Link) bool {
	return l.IsClosed()
}

// CloseWait 阻塞直到除调用方外的所有 pin 都已释放
//
// 只能由持有删除 pin 的线程调用一次。
func (t *Table) CloseWait(l *Link) {
	cf := l.cnt.Load()
	if cf&flagClosing == 0 || cf&pinMask == 0 {
		panic(fmt.Sprintf("handles: close wait on %v in state %#x", l.hdl, cf))
	}

	t.waitMu.Lock()
	defer t.waitMu.Unlock()
	if l.Pins() == 1 {
		return
	}

	start := t.clock.Now()
	stop := t.startDrainTicker()
	defer stop()
	for l.Pins() != 1 {
		t.waitCond.Wait()
		now := t.clock.Now()
		if t.limiter != nil && now.Sub(start) >= t.drainLog && t.limiter.AllowN(now, 1) {
			logger.Debug("waiting for pins to drain",
				"handle", l.hdl,
				"pins", l.Pins()-1,
				"elapsed", now.Sub(start))
		}
	}
}

// startDrainTicker 周期性唤醒 CloseWait 以输出慢排空日志
func (t *Table) startDrainTicker() func() {
	if t.limiter == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := t.clock.Ticker(t.drainLog)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				t.waitCond.Broadcast()
			}
		}
	}()
	return func() { close(done) }
}

// AddRef 增加一份引用（子实体或主题引用者）
//
// 关闭中或已推迟删除的实体不再接受新引用，返回 ErrPreconditionNotMet。
func (t *Table) AddRef(l *Link) error {
	_, err := update(l, func(cf uint32) (uint32, error) {
		if cf&(flagClosing|flagDeferred) != 0 {
			return 0, fmt.Errorf("%w: %v is being deleted", types.ErrPreconditionNotMet, l.hdl)
		}
		if cf&refcMask == refcMask {
			return 0, fmt.Errorf("%w: reference count of %v saturated", types.ErrOutOfResources, l.hdl)
		}
		return cf + refcUnit, nil
	})
	return err
}

// DropRef 释放一份引用
//
// 返回 true 表示实体的显式删除曾被推迟且这是最后一份引用，调用方应完成删除。
func (t *Table) DropRef(l *Link) bool {
	nv, _ := update(l, func(cf uint32) (uint32, error) {
		if cf&refcMask == 0 {
			panic(fmt.Sprintf("handles: drop ref of unreferenced %v", l.hdl))
		}
		return cf - refcUnit, nil
	})
	if nv&(flagClosing|pinMask) == flagClosing|1 {
		t.wake()
	}
	return nv&refcMask == 0 && nv&flagDeferred != 0
}

// DropChildRefAndPin 子实体离开时释放父实体的一份引用
//
// 若父实体是隐式的、这是最后一个子实体且 mayDelete 为 true，则在同一次原子
// 更新中 pin 并关闭父实体，返回 true；调用方随后负责删除父实体。
// 调用方持有父实体锁。
func (t *Table) DropChildRefAndPin(l *Link, mayDelete bool) bool {
	del := false
	update(l, func(cf uint32) (uint32, error) {
		if cf&refcMask == 0 {
			panic(fmt.Sprintf("handles: drop child ref of unreferenced %v", l.hdl))
		}
		del = false
		switch {
		case cf&(flagClosing|flagPending) != 0,
			cf&refcMask != refcUnit,
			cf&flagImplicit == 0,
			!mayDelete:
			return cf - refcUnit, nil
		}
		del = true
		return (cf - refcUnit + 1) | flagClosing, nil
	})
	return del
}

// Delete 从句柄表移除已关闭且只剩调用方 pin 的句柄
func (t *Table) Delete(l *Link) error {
	cf := l.cnt.Load()
	if cf&flagPending == 0 && (cf&flagClosing == 0 || cf&pinMask != 1) {
		panic(fmt.Sprintf("handles: delete of %v in state %#x", l.hdl, cf))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := uint32(l.hdl) & slotMask
	if idx == 0 || int(idx) >= len(t.slots) || t.slots[idx].link != l {
		return fmt.Errorf("%w: %v", types.ErrNotFound, l.hdl)
	}
	t.slots[idx].link = nil
	switch {
	case idx == rootSlot:
	case t.slots[idx].gen >= retiredGen:
		t.retired++
		logger.Debug("handle slot retired", "slot", idx)
	default:
		t.free = append(t.free, idx)
	}
	t.count--
	return nil
}

// Retired 返回因代数用尽而停用的槽位数
func (t *Table) Retired() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.retired
}

// Count 返回已注册句柄数
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}
