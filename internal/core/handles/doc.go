// Package handles 实现实体句柄表
//
// 句柄表把一个小的正整数句柄映射到存活实体的 Link，并在 Link 上用一个
// 32 位原子字同时记录 pin 计数、引用计数和状态标志：
//
//	bit  0..11  pin 计数
//	bit 12..26  引用计数（子实体数 / 主题引用数 / 创建者持有的一份）
//	bit 27      AllowChildren
//	bit 28      Implicit
//	bit 29      Pending
//	bit 30      DeleteDeferred
//	bit 31      Closing
//
// 句柄由槽位号和代数组成（handle = gen<<17 | slot）。槽位释放后只会以新的代数
// 复用，过期句柄因代数不匹配而解析失败。
//
// # 可见性
//
// 新注册的句柄处于 Pending 状态并带有创建者的一次 pin；Unpend 后对用户可见。
// 用户调用方 pin 一个 Pending 或 NoUserAccess 的句柄得到 ErrBadParameter，
// 内部调用方可以 pin。
//
// # 删除
//
//	PinForDelete -> CloseWait -> (删除子实体) -> Delete
//
// PinForDelete 原子地 pin 并设置 Closing，只有一个线程能赢得该竞争，其余线程
// 得到 ErrTryAgain。对不允许子实体且仍有引用的实体（主题），显式删除只会设置
// DeleteDeferred 并返回 ErrTryAgain；最后一次 DropRef 返回 true，由调用方完成删除。
package handles
