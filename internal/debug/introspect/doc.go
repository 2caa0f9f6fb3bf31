// Package introspect 提供本地自省 HTTP 服务
//
// 该服务运行在本地端口，提供 JSON 格式的诊断信息，用于调试和监控。
// 默认绑定到 127.0.0.1，不暴露到网络。
//
// # 端点
//
//	GET /debug/introspect          - 完整诊断报告 (JSON)
//	GET /debug/introspect/entities - 实体树
//	GET /debug/introspect/stats    - 实体计数
//	GET /debug/introspect/runtime  - Go 运行时信息
//	GET /metrics                   - Prometheus 指标
//	GET /debug/pprof/*             - Go pprof 端点
//	GET /health                    - 健康检查
//
// # 使用示例
//
//	server := introspect.New(introspect.Config{
//	    Addr:     "127.0.0.1:6060",
//	    Entities: manager,
//	    Root:     types.RootHandle,
//	})
//	server.Start(ctx)
//	defer server.Stop()
//
// # 安全
//
// 默认只监听本地地址。如果需要远程访问，请确保配置适当的访问控制。
package introspect
