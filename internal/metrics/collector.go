package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/BaSui01/policyswarm/agent/conversation"
	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// 指标名为 <namespace>_<subsystem>_<name>，例如 policyswarm_run_turns_total
const (
	subsystemHTTP = "http"
	subsystemLLM  = "llm"
	subsystemRun  = "run"
	subsystemDB   = "db"
)

var frameworkMetricNames = [...]string{"economy", "fairness", "equality", "technological_progress"}

type httpMetrics struct {
	requests *prometheus.CounterVec   // method, path, status class
	duration *prometheus.HistogramVec // method, path
}

type llmMetrics struct {
	requests *prometheus.CounterVec   // provider, model, phase, outcome
	duration *prometheus.HistogramVec // provider, phase
	tokens   *prometheus.CounterVec   // provider, model, kind
}

type runMetrics struct {
	turns       prometheus.Counter
	turnSeconds prometheus.Histogram
	handoffs    *prometheus.CounterVec // from, to, status
	evaluations *prometheus.CounterVec // status
	summaries   *prometheus.CounterVec // level, outcome
	leaning     prometheus.Gauge
	framework   *prometheus.GaugeVec // metric
}

type dbMetrics struct {
	open *prometheus.GaugeVec
	idle *prometheus.GaugeVec
}

// Collector 持有独立的 Registry，同一进程内可以创建多个。
// 它同时是 llm.CompletionObserver、conversation.Observer、
// server.HTTPRecorder 与 database.StatsRecorder。
type Collector struct {
	registry *prometheus.Registry
	http     httpMetrics
	llm      llmMetrics
	run      runMetrics
	db       dbMetrics
}

var (
	_ llm.CompletionObserver = (*Collector)(nil)
	_ conversation.Observer  = (*Collector)(nil)
)

func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	counter := func(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
	}
	histogram := func(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
		}, labels)
	}
	gauge := func(subsystem, name, help string, labels ...string) *prometheus.GaugeVec {
		return f.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
	}

	c := &Collector{registry: reg}
	c.http = httpMetrics{
		requests: counter(subsystemHTTP, "requests_total", "Monitor HTTP requests.", "method", "path", "status"),
		duration: histogram(subsystemHTTP, "request_duration_seconds", "Monitor HTTP request latency.",
			prometheus.DefBuckets, "method", "path"),
	}
	c.llm = llmMetrics{
		requests: counter(subsystemLLM, "requests_total", "Completion requests by phase and outcome.",
			"provider", "model", "phase", "outcome"),
		duration: histogram(subsystemLLM, "request_duration_seconds", "Completion latency including retries.",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}, "provider", "phase"),
		tokens: counter(subsystemLLM, "tokens_total", "Tokens reported by the completion service.",
			"provider", "model", "kind"),
	}
	c.run = runMetrics{
		turns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemRun, Name: "turns_total", Help: "Completed turns.",
		}),
		turnSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystemRun, Name: "turn_duration_seconds", Help: "Wall time per turn.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		handoffs:    counter(subsystemRun, "handoffs_total", "Intra-turn transfers.", "from", "to", "status"),
		evaluations: counter(subsystemRun, "evaluations_total", "Per-turn evaluations by status.", "status"),
		summaries:   counter(subsystemRun, "summaries_total", "Summaries by level and outcome.", "level", "outcome"),
		leaning: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystemRun, Name: "political_leaning", Help: "Current leaning in [-1, 1].",
		}),
		framework: gauge(subsystemRun, "framework_metric", "Current framework metric in [0, 1].", "metric"),
	}
	c.db = dbMetrics{
		open: gauge(subsystemDB, "connections_open", "Open connections.", "database"),
		idle: gauge(subsystemDB, "connections_idle", "Idle connections.", "database"),
	}

	logger.Debug("metrics collector ready",
		zap.String("component", "metrics"),
		zap.String("namespace", namespace))
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.http.requests.WithLabelValues(method, path, statusClass(status)).Inc()
	c.http.duration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveCompletion 按 ctx 上的调用阶段（persona/evaluation/summary）分组
func (c *Collector) ObserveCompletion(ctx context.Context, provider, model string, latency time.Duration, usage llm.ChatUsage, err error) {
	phase := types.Phase(ctx)
	if phase == "" {
		phase = "unknown"
	}
	c.llm.requests.WithLabelValues(provider, model, phase, outcome(err == nil)).Inc()
	c.llm.duration.WithLabelValues(provider, phase).Observe(latency.Seconds())
	c.llm.tokens.WithLabelValues(provider, model, "prompt").Add(float64(usage.PromptTokens))
	c.llm.tokens.WithLabelValues(provider, model, "completion").Add(float64(usage.CompletionTokens))
}

func (c *Collector) OnTurn(ev conversation.TurnEvent) {
	c.run.turns.Inc()
	c.run.turnSeconds.Observe(ev.Duration.Seconds())
	c.run.evaluations.WithLabelValues(string(ev.Evaluation)).Inc()
	for _, h := range ev.Handoffs {
		c.run.handoffs.WithLabelValues(h.From, h.To, string(h.Status)).Inc()
	}
	// 摘要失败时文本为空
	for _, s := range ev.Summaries {
		c.run.summaries.WithLabelValues(string(s.Level), outcome(s.Text != "")).Inc()
	}

	c.run.leaning.Set(ev.Snapshot.Leaning)
	m := ev.Snapshot.Metrics
	for i, v := range [...]float64{m.Economy, m.Fairness, m.Equality, m.TechnologicalProgress} {
		c.run.framework.WithLabelValues(frameworkMetricNames[i]).Set(v)
	}
}

func (c *Collector) RecordDBConnections(database string, open, idle int) {
	c.db.open.WithLabelValues(database).Set(float64(open))
	c.db.idle.WithLabelValues(database).Set(float64(idle))
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// statusClass 把状态码折叠为 2xx/3xx/4xx/5xx
func statusClass(code int) string {
	if code < 200 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
