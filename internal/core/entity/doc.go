// Package entity 实现实体节点与其生命周期协议
//
// 每个参与者、主题、读写者、条件与等待集都嵌入一个 Entity。Entity 持有：
//   - 主锁 mu 与条件变量 cond（子集合、QoS、使能标志）
//   - 观察者锁 obsMu 与条件变量 obsCond（listener、观察者、回调计数、触发值）
//   - 打包状态字：低 16 位为已触发状态，高 16 位为使能掩码
//
// # 访问协议
//
// 外部代码只能通过 Manager.Pin / Manager.Lock 访问实体，操作完成后
// Unpin / Unlock，不得在调用之外保留引用。
//
// # 锁顺序
//
//   - 子实体主锁先于父实体主锁（下推时先解父锁、锁子、再锁父）
//   - 主锁先于观察者锁
//   - 删除流程等待 pin 与回调排空时不持有主锁
//
// # 删除
//
// Manager.Delete 以 PinForDelete 原子地 pin 并关闭实体，然后：中断、
// 排空回调、排空 pin、关闭并通知观察者、两轮删除子实体（先非主题后主题）、
// 从句柄表与父实体摘除、执行类型析构，最后在需要时级联删除隐式父实体。
package entity
