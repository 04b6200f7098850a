package filter

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opInsert   = "insert"
	opIncludes = "includes"
	opDelete   = "delete"
	opClear    = "clear"

	resultHit  = "hit"
	resultMiss = "miss"
)

// Metrics 用于 Prometheus 监控过滤器的调用、命中、失败等指标。
type Metrics struct {
	Calls     *prometheus.CounterVec // 按操作统计调用次数
	Errors    *prometheus.CounterVec // 按操作统计存储失败次数
	Lookups   *prometheus.CounterVec // includes 结果，hit/miss
	RoundTrip prometheus.Counter     // 发往存储的请求次数（一个批量算一次）
}

// NewMetrics 创建指标，reg 不为空时注册进去
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bloom",
			Name:      "calls_total",
			Help:      "Bloom filter operations by kind.",
		}, []string{"op"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bloom",
			Name:      "errors_total",
			Help:      "Bloom filter operations that failed at the store.",
		}, []string{"op"}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bloom",
			Name:      "lookups_total",
			Help:      "Per-key membership results.",
		}, []string{"result"}),
		RoundTrip: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bloom",
			Name:      "store_round_trips_total",
			Help:      "Requests sent to the bit store, a pipeline counts once.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Calls, m.Errors, m.Lookups, m.RoundTrip} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) call(op string) {
	if m != nil {
		m.Calls.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) fail(op string, err error) {
	if m != nil && err != nil {
		m.Errors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) lookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.Lookups.WithLabelValues(resultHit).Inc()
		return
	}
	m.Lookups.WithLabelValues(resultMiss).Inc()
}

func (m *Metrics) roundTrip() {
	if m != nil {
		m.RoundTrip.Inc()
	}
}
