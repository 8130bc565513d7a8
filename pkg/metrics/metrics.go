// Package metrics 定义服务的 Prometheus 指标。
// 所有记录方法在接收者为 nil 时为空操作，便于单元测试省略指标。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "academy"

// Metrics 服务指标集合
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	checkIns        *prometheus.CounterVec
	sweepFlips      *prometheus.CounterVec
	dedupRemoved    prometheus.Counter
	maintenanceRuns *prometheus.CounterVec
}

// New 创建并注册全部指标（独立 Registry，附带 Go 运行时与进程指标）
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP 请求数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_ins_total",
			Help:      "签到尝试次数（按结果）",
		}, []string{"outcome"}),
		sweepFlips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_flips_total",
			Help:      "状态巡检变更的学员数",
		}, []string{"direction"}),
		dedupRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_removed_total",
			Help:      "去重删除的签到记录数",
		}),
		maintenanceRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_runs_total",
			Help:      "维护任务执行次数",
		}, []string{"job", "result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.checkIns,
		m.sweepFlips,
		m.dedupRemoved,
		m.maintenanceRuns,
	)
	return m
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 底层 Registry（测试使用）
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CheckIn 记录签到结果：allowed 或拒绝原因
func (m *Metrics) CheckIn(outcome string) {
	if m == nil {
		return
	}
	m.checkIns.WithLabelValues(outcome).Inc()
}

// SweepFlips 记录巡检变更数
func (m *Metrics) SweepFlips(toInactive, toActive int) {
	if m == nil {
		return
	}
	m.sweepFlips.WithLabelValues("inactive").Add(float64(toInactive))
	m.sweepFlips.WithLabelValues("active").Add(float64(toActive))
}

// DedupRemoved 记录去重删除数
func (m *Metrics) DedupRemoved(n int) {
	if m == nil {
		return
	}
	m.dedupRemoved.Add(float64(n))
}

// MaintenanceRun 记录维护任务执行结果（ok | error | skipped）
func (m *Metrics) MaintenanceRun(job, result string) {
	if m == nil {
		return
	}
	m.maintenanceRuns.WithLabelValues(job, result).Inc()
}
