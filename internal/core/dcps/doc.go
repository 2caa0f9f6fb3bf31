// Package dcps 实现具体实体类型
//
// 在 entity 包提供的通用生命周期协议之上，定义根、域、参与者、主题、
// 发布者、订阅者、写者、读者、条件与等待集，以及它们之间的创建约束：
//
//   - 域是根的隐式子实体，每个域 ID 一个，最后一个参与者删除后随之删除
//   - 同一参与者下同名主题共享一个主题对象（类型名与配置）
//   - 直接在参与者上创建读写者时隐式创建订阅者/发布者
//   - 读写者持有主题的一份引用，删除主题会推迟到最后一个引用释放
//   - 等待集通过观察者接口接收被挂载实体的状态变化与删除通知
//
// 样本的存储与投递不在本包范围内；协议层通过 Reader.DataArrived 与
// Reader.DataConsumed 报告数据到达与取走。
package dcps
