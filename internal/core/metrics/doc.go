// Package metrics 提供实体指标收集
//
// Collector 订阅实体生命周期事件，维护 Prometheus 指标：
//   - <ns>_entities_created_total{kind}
//   - <ns>_entities_deleted_total{kind,origin}
//   - <ns>_entities_live{kind}
//   - <ns>_handles_live（直接读取句柄表）
//
// 指标注册在独立的 prometheus.Registry 上，不污染全局注册表。
// 通过 Handler() 暴露给自省服务的 /metrics 端点。
//
// # 快速开始
//
//	c, _ := metrics.NewCollector(metrics.DefaultConfig(), bus, table)
//	_ = c.Start() // 在创建实体之前
//	defer c.Stop()
//
//	snap := c.Snapshot()
//	fmt.Println(snap.Live["participant"])
//
// 生命周期事件关闭时，实体计数保持为零，只有句柄数有效。
package metrics
