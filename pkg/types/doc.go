// Package types 定义 go-dds 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 go-dds 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go       - Handle, InstanceID, GUID, DomainID
//   - enums.go     - EntityKind, DeleteOrigin
//   - status.go    - StatusID 状态位与掩码
//   - qos.go       - QoS 配置值、策略掩码、合并/差异/校验
//   - listener.go  - Listener 回调集合及继承规则
//   - errors.go    - 公共错误定义
//   - events.go    - 实体生命周期事件
package types
