// Package lifecycle 提供运行时生命周期协调器
//
// 运行时阶段：
//   - created:       Runtime 已构造，根实体尚未建立
//   - running:       根实体就绪，接受公共操作
//   - shutting_down: 正在级联删除实体树，拒绝新的创建操作
//   - stopped:       实体树已拆除
//
// 阶段只能向前推进。每个阶段都有一个完成信号，
// 可以通过 WaitFor 阻塞等待。
package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-dds/pkg/lib/log"
)

var logger = log.Logger("core/lifecycle")

// ============================================================================
//                              阶段定义
// ============================================================================

// Phase 生命周期阶段
type Phase int

const (
	// PhaseCreated 运行时已创建，未启动
	PhaseCreated Phase = iota

	// PhaseRunning 根实体就绪，正常运行
	PhaseRunning

	// PhaseShuttingDown 正在关闭，实体树级联删除中
	PhaseShuttingDown

	// PhaseStopped 关闭完成
	PhaseStopped
)

// String 返回阶段字符串表示
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseRunning:
		return "running"
	case PhaseShuttingDown:
		return "shutting_down"
	case PhaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// ============================================================================
//                              生命周期协调器
// ============================================================================

// Coordinator 生命周期协调器
//
// 核心职责：
//  1. 追踪当前生命周期阶段
//  2. 提供阶段 gate（等待特定阶段完成）
//  3. 通知阶段变更
type Coordinator struct {
	mu sync.RWMutex

	// 当前阶段
	phase Phase

	// 阶段完成信号，已关闭的 channel 表示该阶段已到达
	phaseSignals map[Phase]chan struct{}

	// 阶段变更回调
	onPhaseChange []func(old, new Phase)

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCoordinator 创建生命周期协调器
func NewCoordinator() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		phase:        PhaseCreated,
		phaseSignals: make(map[Phase]chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
	for p := PhaseCreated; p <= PhaseStopped; p++ {
		c.phaseSignals[p] = make(chan struct{})
	}
	close(c.phaseSignals[PhaseCreated])
	return c
}

// Phase 返回当前阶段
func (c *Coordinator) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// AdvanceTo 推进到指定阶段
//
// 规则：
//   - 只能向前推进，不能后退
//   - 会自动完成中间所有阶段的信号
func (c *Coordinator) AdvanceTo(target Phase) error {
	if target < PhaseCreated || target > PhaseStopped {
		return fmt.Errorf("invalid phase: %d", target)
	}

	c.mu.Lock()
	if target < c.phase {
		cur := c.phase
		c.mu.Unlock()
		return fmt.Errorf("cannot advance backwards: current=%s target=%s", cur, target)
	}
	if target == c.phase {
		c.mu.Unlock()
		return nil
	}
	old, callbacks := c.advanceLocked(target)
	c.mu.Unlock()

	c.notify(old, target, callbacks)
	return nil
}

// BeginShutdown 进入关闭阶段
//
// 仅第一个调用者返回 true，用于保证拆除流程只执行一次。
func (c *Coordinator) BeginShutdown() bool {
	c.mu.Lock()
	if c.phase >= PhaseShuttingDown {
		c.mu.Unlock()
		return false
	}
	old, callbacks := c.advanceLocked(PhaseShuttingDown)
	c.mu.Unlock()

	c.notify(old, PhaseShuttingDown, callbacks)
	return true
}

func (c *Coordinator) advanceLocked(target Phase) (Phase, []func(old, new Phase)) {
	old := c.phase
	for p := c.phase; p <= target; p++ {
		ch := c.phaseSignals[p]
		select {
		case <-ch:
		default:
			close(ch)
		}
	}
	c.phase = target

	callbacks := make([]func(old, new Phase), len(c.onPhaseChange))
	copy(callbacks, c.onPhaseChange)
	return old, callbacks
}

// notify 在锁外同步调用回调，回调可以安全地查询 Phase
func (c *Coordinator) notify(old, target Phase, callbacks []func(old, new Phase)) {
	logger.Debug("运行时阶段推进", "from", old.String(), "to", target.String())
	for _, cb := range callbacks {
		cb(old, target)
	}
}

// Accepting 报告运行时是否接受新的操作
func (c *Coordinator) Accepting() bool {
	return c.Phase() == PhaseRunning
}

// WaitFor 等待指定阶段完成
//
// 阻塞直到目标阶段到达或上下文取消。
func (c *Coordinator) WaitFor(ctx context.Context, phase Phase) error {
	c.mu.RLock()
	ch := c.phaseSignals[phase]
	c.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("invalid phase: %d", phase)
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		// 协调器停止后仍可能已到达目标阶段
		select {
		case <-ch:
			return nil
		default:
			return c.ctx.Err()
		}
	}
}

// OnPhaseChange 注册阶段变更回调
//
// 回调在推进阶段的 goroutine 上、协调器锁外同步执行。
func (c *Coordinator) OnPhaseChange(callback func(old, new Phase)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPhaseChange = append(c.onPhaseChange, callback)
}

// Stop 停止协调器，解除所有等待者
func (c *Coordinator) Stop() {
	c.cancel()
}
