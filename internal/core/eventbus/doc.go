// Package eventbus 实现进程内事件总线
//
// 按事件的具体类型分发，实体核心通过它发布生命周期事件：
//
//	sub, _ := bus.Subscribe(new(types.EvtEntityDeleted))
//	defer sub.Close()
//	for evt := range sub.Out() {
//	    e := evt.(types.EvtEntityDeleted)
//	    ...
//	}
//
// 发射是非阻塞的：订阅者缓冲区满时事件被丢弃并计数，慢消费者不会拖住
// 实体删除路径。有状态发射器（Stateful）会把最后一个事件补发给新订阅者。
//
// 总线关闭后所有订阅通道被关闭，新的订阅与发射返回 ErrClosed。
package eventbus
