// Package metrics 提供Prometheus文本格式的监控指标
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Registry 指标注册表
type Registry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *Registry {
	once.Do(func() {
		registry = &Registry{
			counters:   make(map[string]*Counter),
			gauges:     make(map[string]*Gauge),
			histograms: make(map[string]*Histogram),
		}
		initDefaultMetrics()
	})
	return registry
}

// initDefaultMetrics 初始化默认指标
func initDefaultMetrics() {
	registry.NewCounter("paixian_http_requests_total", "HTTP请求总数", []string{"method", "path", "status"})

	registry.NewHistogram("paixian_http_request_duration_seconds", "HTTP请求延迟",
		[]string{"method", "path"},
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0})

	// 排线生成
	registry.NewCounter("paixian_plan_generation_total", "排线生成次数", []string{"status"})
	registry.NewHistogram("paixian_plan_generation_duration_seconds", "排线生成延迟",
		[]string{},
		[]float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0})

	// 最近一次成功排线的规模
	registry.NewGauge("paixian_plan_routes", "最近一次排线的路线数", []string{})
	registry.NewGauge("paixian_plan_employees", "最近一次排线的业务员数", []string{})
	registry.NewGauge("paixian_plan_points", "最近一次排线的拜访点数", []string{})

	// 统计分析结果
	registry.NewGauge("paixian_workload_balance_score", "负载均衡评分", []string{})
	registry.NewGauge("paixian_calendar_coverage_rate", "日历覆盖率", []string{})

	registry.NewGauge("paixian_active_requests", "当前处理中的请求数", []string{})
	registry.NewGauge("paixian_db_connections", "数据库连接数", []string{"state"})
}

// NewCounter 创建计数器
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	counter := &Counter{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.counters[name] = counter
	return counter
}

// NewGauge 创建仪表盘
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	gauge := &Gauge{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.gauges[name] = gauge
	return gauge
}

// NewHistogram 创建直方图
func (r *Registry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	histogram := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = histogram
	return histogram
}

// GetCounter 获取计数器
func (r *Registry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *Registry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *Registry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Inc 增加
func (g *Gauge) Inc(labelValues ...string) {
	g.Add(1, labelValues...)
}

// Dec 减少
func (g *Gauge) Dec(labelValues ...string) {
	g.Add(-1, labelValues...)
}

// Add 增加指定值
func (g *Gauge) Add(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] += value
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}

	for i, bucket := range h.Buckets {
		if value <= bucket {
			h.counts[key][i]++
		}
	}
	h.counts[key][len(h.Buckets)]++ // +Inf bucket

	h.sums[key] += value
}

// labelKey 生成标签键
func labelKey(labels []string) string {
	return strings.Join(labels, ",")
}

// Handler 返回Prometheus文本格式的指标HTTP处理器
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		reg := GetRegistry()
		reg.mu.RLock()
		defer reg.mu.RUnlock()

		for _, name := range sortedKeys(reg.counters) {
			counter := reg.counters[name]
			fmt.Fprintf(w, "# HELP %s %s\n", counter.Name, counter.Help)
			fmt.Fprintf(w, "# TYPE %s counter\n", counter.Name)

			counter.mu.RLock()
			for key, value := range counter.values {
				if key == "" {
					fmt.Fprintf(w, "%s %f\n", counter.Name, value)
				} else {
					fmt.Fprintf(w, "%s{%s} %f\n", counter.Name, formatLabels(counter.Labels, key), value)
				}
			}
			counter.mu.RUnlock()
		}

		for _, name := range sortedKeys(reg.gauges) {
			gauge := reg.gauges[name]
			fmt.Fprintf(w, "# HELP %s %s\n", gauge.Name, gauge.Help)
			fmt.Fprintf(w, "# TYPE %s gauge\n", gauge.Name)

			gauge.mu.RLock()
			for key, value := range gauge.values {
				if key == "" {
					fmt.Fprintf(w, "%s %f\n", gauge.Name, value)
				} else {
					fmt.Fprintf(w, "%s{%s} %f\n", gauge.Name, formatLabels(gauge.Labels, key), value)
				}
			}
			gauge.mu.RUnlock()
		}

		for _, name := range sortedKeys(reg.histograms) {
			histogram := reg.histograms[name]
			fmt.Fprintf(w, "# HELP %s %s\n", histogram.Name, histogram.Help)
			fmt.Fprintf(w, "# TYPE %s histogram\n", histogram.Name)

			histogram.mu.RLock()
			for key, counts := range histogram.counts {
				cumulative := 0
				for i, bucket := range histogram.Buckets {
					cumulative += counts[i]
					if key == "" {
						fmt.Fprintf(w, "%s_bucket{le=\"%f\"} %d\n", histogram.Name, bucket, cumulative)
					} else {
						fmt.Fprintf(w, "%s_bucket{%s,le=\"%f\"} %d\n", histogram.Name, formatLabels(histogram.Labels, key), bucket, cumulative)
					}
				}
				cumulative += counts[len(histogram.Buckets)]
				if key == "" {
					fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", histogram.Name, cumulative)
					fmt.Fprintf(w, "%s_sum %f\n", histogram.Name, histogram.sums[key])
					fmt.Fprintf(w, "%s_count %d\n", histogram.Name, cumulative)
				} else {
					fmt.Fprintf(w, "%s_bucket{%s,le=\"+Inf\"} %d\n", histogram.Name, formatLabels(histogram.Labels, key), cumulative)
					fmt.Fprintf(w, "%s_sum{%s} %f\n", histogram.Name, formatLabels(histogram.Labels, key), histogram.sums[key])
					fmt.Fprintf(w, "%s_count{%s} %d\n", histogram.Name, formatLabels(histogram.Labels, key), cumulative)
				}
			}
			histogram.mu.RUnlock()
		}
	})
}

// sortedKeys 返回升序的指标名，保证输出顺序稳定
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatLabels 格式化标签
func formatLabels(names []string, values string) string {
	vals := strings.Split(values, ",")
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
		}
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		fmt.Fprintf(&b, "%s=%q", name, val)
	}
	return b.String()
}

// RecordRequestMetrics 记录请求指标
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	reg := GetRegistry()

	if counter := reg.GetCounter("paixian_http_requests_total"); counter != nil {
		counter.Inc(method, path, fmt.Sprintf("%d", status))
	}
	if histogram := reg.GetHistogram("paixian_http_request_duration_seconds"); histogram != nil {
		histogram.Observe(duration.Seconds(), method, path)
	}
}

// RecordPlanGeneration 记录排线生成指标
func RecordPlanGeneration(success bool, duration time.Duration) {
	reg := GetRegistry()

	status := "success"
	if !success {
		status = "failure"
	}

	if counter := reg.GetCounter("paixian_plan_generation_total"); counter != nil {
		counter.Inc(status)
	}
	if histogram := reg.GetHistogram("paixian_plan_generation_duration_seconds"); histogram != nil {
		histogram.Observe(duration.Seconds())
	}
}

// SetPlanSize 记录最近一次成功排线的规模
func SetPlanSize(routes, employees, points int) {
	reg := GetRegistry()

	if g := reg.GetGauge("paixian_plan_routes"); g != nil {
		g.Set(float64(routes))
	}
	if g := reg.GetGauge("paixian_plan_employees"); g != nil {
		g.Set(float64(employees))
	}
	if g := reg.GetGauge("paixian_plan_points"); g != nil {
		g.Set(float64(points))
	}
}

// SetBalanceScore 设置负载均衡评分
func SetBalanceScore(score float64) {
	if g := GetRegistry().GetGauge("paixian_workload_balance_score"); g != nil {
		g.Set(score)
	}
}

// SetCoverageRate 设置日历覆盖率
func SetCoverageRate(rate float64) {
	if g := GetRegistry().GetGauge("paixian_calendar_coverage_rate"); g != nil {
		g.Set(rate)
	}
}
