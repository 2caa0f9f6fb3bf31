package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-dds/internal/core/handles"
	pkgif "github.com/dep2p/go-dds/pkg/interfaces"
	"github.com/dep2p/go-dds/pkg/lib/log"
	"github.com/dep2p/go-dds/pkg/types"
)

var logger = log.Logger("core/metrics")

// ErrNoEventBus 缺少事件总线
var ErrNoEventBus = errors.New("metrics: event bus required")

// Config 指标配置
type Config struct {
	// Namespace 指标名前缀
	Namespace string

	// Buffer 事件订阅缓冲区
	Buffer int

	// RuntimeCollectors 是否注册 Go 运行时与进程指标
	RuntimeCollectors bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace:         "dds",
		Buffer:            1024,
		RuntimeCollectors: true,
	}
}

// ============================================================================
//                              Collector
// ============================================================================

// Collector 实体指标收集器
type Collector struct {
	cfg Config
	bus pkgif.EventBus
	reg *prometheus.Registry

	created *prometheus.CounterVec
	deleted *prometheus.CounterVec
	live    *prometheus.GaugeVec

	// 快照计数，受 mu 保护
	mu    sync.Mutex
	stats Snapshot

	createdSub pkgif.Subscription
	deletedSub pkgif.Subscription
	done       chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once
}

// NewCollector 创建收集器并注册指标
//
// table 可以为 nil，此时不注册句柄数指标。
func NewCollector(cfg Config, bus pkgif.EventBus, table *handles.Table) (*Collector, error) {
	if bus == nil {
		return nil, ErrNoEventBus
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultConfig().Namespace
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultConfig().Buffer
	}

	c := &Collector{
		cfg:   cfg,
		bus:   bus,
		reg:   prometheus.NewRegistry(),
		stats: newSnapshot(),
		done:  make(chan struct{}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "entities_created_total",
			Help:      "Number of entities created, by kind.",
		}, []string{"kind"}),
		deleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "entities_deleted_total",
			Help:      "Number of entities deleted, by kind and delete origin.",
		}, []string{"kind", "origin"}),
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "entities_live",
			Help:      "Number of live entities, by kind.",
		}, []string{"kind"}),
	}

	cs := []prometheus.Collector{c.created, c.deleted, c.live}
	if table != nil {
		cs = append(cs, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "handles_live",
			Help:      "Number of occupied handle table slots.",
		}, func() float64 { return float64(table.Count()) }))
	}
	if cfg.RuntimeCollectors {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}),
		)
	}
	for _, col := range cs {
		if err := c.reg.Register(col); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return c, nil
}

// Start 订阅生命周期事件
//
// 必须在第一个实体创建之前调用，否则存活计数偏低。
func (c *Collector) Start() error {
	var err error
	c.startOnce.Do(func() {
		opt := pkgif.BufSize(c.cfg.Buffer)
		if c.createdSub, err = c.bus.Subscribe(new(types.EvtEntityCreated), opt); err != nil {
			err = fmt.Errorf("subscribe created events: %w", err)
			return
		}
		if c.deletedSub, err = c.bus.Subscribe(new(types.EvtEntityDeleted), opt); err != nil {
			c.createdSub.Close()
			err = fmt.Errorf("subscribe deleted events: %w", err)
			return
		}
		go c.loop()
	})
	return err
}

// Stop 取消订阅并等待事件循环退出
func (c *Collector) Stop() error {
	c.stopOnce.Do(func() {
		if c.createdSub == nil {
			close(c.done)
			return
		}
		c.createdSub.Close()
		c.deletedSub.Close()
		<-c.done
	})
	return nil
}

func (c *Collector) loop() {
	defer close(c.done)
	created, deleted := c.createdSub.Out(), c.deletedSub.Out()
	for created != nil || deleted != nil {
		select {
		case e, ok := <-created:
			if !ok {
				created = nil
				continue
			}
			if evt, ok := e.(types.EvtEntityCreated); ok {
				c.onCreated(evt)
			}
		case e, ok := <-deleted:
			if !ok {
				deleted = nil
				continue
			}
			if evt, ok := e.(types.EvtEntityDeleted); ok {
				c.onDeleted(evt)
			}
		}
	}
	logger.Debug("指标事件循环退出")
}

func (c *Collector) onCreated(evt types.EvtEntityCreated) {
	kind := evt.Kind.String()
	c.created.WithLabelValues(kind).Inc()
	c.live.WithLabelValues(kind).Inc()

	c.mu.Lock()
	c.stats.Created[kind]++
	c.stats.Live[kind]++
	c.mu.Unlock()
}

func (c *Collector) onDeleted(evt types.EvtEntityDeleted) {
	kind := evt.Kind.String()
	c.deleted.WithLabelValues(kind, evt.Origin.String()).Inc()
	c.live.WithLabelValues(kind).Dec()

	c.mu.Lock()
	c.stats.Deleted[kind]++
	c.stats.Live[kind]--
	c.mu.Unlock()
}

// Registry 返回指标注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

// Handler 返回 Prometheus 文本格式的 HTTP 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Snapshot 返回当前计数的副本
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.clone()
}
