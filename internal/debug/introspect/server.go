package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sync"
	"time"

	"github.com/dep2p/go-dds/config"
	"github.com/dep2p/go-dds/internal/core/metrics"
	"github.com/dep2p/go-dds/pkg/lib/log"
	"github.com/dep2p/go-dds/pkg/types"
)

var logger = log.Logger("debug/introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = config.DefaultIntrospectAddr

// maxTreeDepth 实体树遍历深度上限
const maxTreeDepth = 16

// ============================================================================
//                              配置
// ============================================================================

// EntitySource 实体树数据源，由实体管理器实现
type EntitySource interface {
	GetKind(h types.Handle) (types.EntityKind, error)
	GetChildren(h types.Handle) ([]types.Handle, error)
	GetInstanceHandle(h types.Handle) (types.InstanceID, error)
	GetGUID(h types.Handle) (types.GUID, error)
	IsEnabled(h types.Handle) (bool, error)
	GetStatusChanges(h types.Handle) (types.StatusMask, error)
	Count() int
}

// MetricsSource 指标数据源
type MetricsSource interface {
	Handler() http.Handler
	Snapshot() metrics.Snapshot
}

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:6060"
	Addr string

	// Entities 可选的实体数据源
	Entities EntitySource

	// Root 实体树的根句柄
	Root types.Handle

	// Metrics 可选的指标数据源
	Metrics MetricsSource

	// Phase 可选的运行时阶段查询
	Phase func() string

	// EventTypes 可选的事件类型查询，返回总线上已注册的事件类型名
	EventTypes func() []string

	// CustomHandlers 自定义处理器
	CustomHandlers map[string]http.HandlerFunc
}

// ============================================================================
//                              Server
// ============================================================================

// Server 本地自省 HTTP 服务
type Server struct {
	config Config

	// HTTP 服务器
	server   *http.Server
	listener net.Listener

	// 状态
	running   bool
	startTime time.Time

	mu sync.Mutex
}

// New 创建自省服务
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Root == 0 {
		cfg.Root = types.RootHandle
	}

	return &Server{
		config:    cfg,
		startTime: time.Now(),
	}
}

// Handler 返回路由，不启动监听
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// 自省端点
	mux.HandleFunc("/debug/introspect", s.handleIntrospect)
	mux.HandleFunc("/debug/introspect/entities", s.handleEntities)
	mux.HandleFunc("/debug/introspect/stats", s.handleStats)
	mux.HandleFunc("/debug/introspect/runtime", s.handleRuntime)

	// 指标
	if s.config.Metrics != nil {
		mux.Handle("/metrics", s.config.Metrics.Handler())
	}

	// pprof 端点
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 健康检查
	mux.HandleFunc("/health", s.handleHealth)

	// 自定义处理器
	for path, handler := range s.config.CustomHandlers {
		mux.HandleFunc(path, handler)
	}
	return mux
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("自省服务异常退出", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	logger.Info("自省服务已启动", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("关闭自省服务失败", "error", err)
		return err
	}

	s.running = false
	logger.Info("自省服务已停止")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// ============================================================================
//                              响应结构
// ============================================================================

// IntrospectResponse 完整诊断响应
type IntrospectResponse struct {
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Phase      string            `json:"phase,omitempty"`
	Handles    int               `json:"handles"`
	EventTypes []string          `json:"event_types,omitempty"`
	Entities   *EntityNode       `json:"entities,omitempty"`
	Stats      *metrics.Snapshot `json:"stats,omitempty"`
	Runtime    *RuntimeInfo      `json:"runtime,omitempty"`
}

// EntityNode 实体树节点
type EntityNode struct {
	Handle   types.Handle     `json:"handle"`
	Kind     string           `json:"kind"`
	Instance types.InstanceID `json:"instance"`
	GUID     string           `json:"guid"`
	Enabled  bool             `json:"enabled"`
	Status   types.StatusMask `json:"status,omitempty"`
	Children []*EntityNode    `json:"children,omitempty"`
}

// RuntimeInfo 运行时信息
type RuntimeInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc"`
	MemSys       uint64 `json:"mem_sys"`
	NumGC        uint32 `json:"num_gc"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

// handleIntrospect 处理完整诊断请求
func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := IntrospectResponse{
		Timestamp: time.Now(),
		Uptime:    time.Since(s.startTime).String(),
		Entities:  s.collectEntities(),
		Stats:     s.collectStats(),
		Runtime:   s.collectRuntimeInfo(),
	}
	if s.config.Phase != nil {
		response.Phase = s.config.Phase()
	}
	if s.config.EventTypes != nil {
		response.EventTypes = s.config.EventTypes()
	}
	if s.config.Entities != nil {
		response.Handles = s.config.Entities.Count()
	}

	s.writeJSON(w, response)
}

// handleEntities 处理实体树请求
func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tree := s.collectEntities()
	if tree == nil {
		http.Error(w, "Entity tree not available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, tree)
}

// handleStats 处理实体计数请求
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := s.collectStats()
	if stats == nil {
		http.Error(w, "Metrics not enabled", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, stats)
}

// handleRuntime 处理运行时信息请求
func (s *Server) handleRuntime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, s.collectRuntimeInfo())
}

// handleHealth 处理健康检查请求
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    time.Since(s.startTime).String(),
	}

	// 根实体不可访问时运行时已关闭或未装配
	if s.config.Entities == nil {
		health.Status = "degraded"
	} else if _, err := s.config.Entities.GetKind(s.config.Root); err != nil {
		health.Status = "closed"
	}

	s.writeJSON(w, health)
}

// ============================================================================
//                              数据收集
// ============================================================================

// collectEntities 从根实体遍历实体树
//
// 遍历期间被删除的实体直接跳过。
func (s *Server) collectEntities() *EntityNode {
	if s.config.Entities == nil {
		return nil
	}
	return s.entityNode(s.config.Root, 0)
}

func (s *Server) entityNode(h types.Handle, depth int) *EntityNode {
	src := s.config.Entities
	kind, err := src.GetKind(h)
	if err != nil {
		return nil
	}
	n := &EntityNode{Handle: h, Kind: kind.String()}
	n.Instance, _ = src.GetInstanceHandle(h)
	if guid, err := src.GetGUID(h); err == nil {
		n.GUID = guid.String()
	}
	n.Enabled, _ = src.IsEnabled(h)
	n.Status, _ = src.GetStatusChanges(h)

	if depth >= maxTreeDepth {
		return n
	}
	children, err := src.GetChildren(h)
	if err != nil {
		return n
	}
	for _, c := range children {
		if cn := s.entityNode(c, depth+1); cn != nil {
			n.Children = append(n.Children, cn)
		}
	}
	return n
}

// collectStats 收集实体计数
func (s *Server) collectStats() *metrics.Snapshot {
	if s.config.Metrics == nil {
		return nil
	}
	snap := s.config.Metrics.Snapshot()
	return &snap
}

// collectRuntimeInfo 收集运行时信息
func (s *Server) collectRuntimeInfo() *RuntimeInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &RuntimeInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

// ============================================================================
//                              辅助方法
// ============================================================================

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		logger.Error("JSON 编码失败", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
