// Package dds 提供进程内 DDS 实体核心运行时
//
// go-dds 维护 DDS 实体树（域、参与者、主题、发布者、订阅者、写者、读者、
// 条件与等待集），负责句柄分配、实体生命周期、QoS 继承与修改、
// listener 传播以及状态通知。网络传输与数据缓存不在本库范围内。
//
// # 快速开始
//
//	import "github.com/dep2p/go-dds"
//
//	rt, err := dds.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	pp, _ := rt.CreateParticipant(dds.DefaultDomainID, nil, nil)
//	tp, _ := rt.CreateTopic(pp, "Square", "ShapeType", nil, nil)
//	rd, _ := rt.CreateReader(pp, tp, nil, nil)
//
//	ws, _ := rt.CreateWaitSet(pp)
//	_ = rt.WaitSetAttach(ws, rd, "square")
//	_ = rt.SetStatusMask(rd, dds.DataAvailableStatus)
//
//	fired, err := rt.WaitSetWait(ctx, ws)
//
// # 实体树
//
//	Root (句柄 1)
//	 └── Domain (隐式)
//	      └── Participant
//	           ├── Topic
//	           ├── Publisher ── Writer
//	           ├── Subscriber ── Reader ── ReadCondition / QueryCondition
//	           ├── GuardCondition
//	           └── WaitSet
//
// 删除任一实体会先删除其全部子实体；删除最后一个隐式子实体时，
// 隐式父实体（如按需创建的发布者）随之删除。
//
// # 诊断
//
// 默认启用 Prometheus 实体指标，Runtime.Stats 返回按类型统计的计数。
// WithIntrospect 在本地地址上启动自省 HTTP 服务（实体树、/metrics、pprof）。
//
// # 文件组织
//
//   - dds.go: 版本信息
//   - runtime.go: Runtime 创建与关闭
//   - options.go: 配置选项
//   - presets.go: 预设配置
//   - config.go: 用户配置
//   - fx.go: Fx 模块组装
//   - api_*.go: 实体操作
//   - events.go: 生命周期事件订阅
//   - errors.go: 错误定义
//   - types.go: 类型重导出
package dds
