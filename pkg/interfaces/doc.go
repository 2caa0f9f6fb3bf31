// Package interfaces 定义 go-dds 的公共接口
//
// 实体核心与具体实体类型之间、实体与等待集之间通过这里的接口解耦：
//   - entity.go    - Deriver（按类型分派的钩子）、观察者、共享配置持有者
//   - eventbus.go  - 事件总线
//
// 本包只依赖 pkg/types。
package interfaces
