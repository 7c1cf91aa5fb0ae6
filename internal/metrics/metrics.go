// Package metrics 提供Prometheus文本格式的监控指标
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricsRegistry 指标注册表
type MetricsRegistry struct {
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
	registry *MetricsRegistry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *MetricsRegistry {
	once.Do(func() {
		registry = &MetricsRegistry{
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
	// 求解计数器
	registry.NewCounter("zhiban_solve_total", "排班求解次数", []string{"model", "status"})

	// 求解延迟直方图
	registry.NewHistogram("zhiban_solve_duration_seconds", "排班求解延迟",
		[]string{"model"},
		[]float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0})

	// 模型规模
	registry.NewGauge("zhiban_model_variables", "最近一次构建的模型变量数", []string{"model"})
	registry.NewGauge("zhiban_model_constraints", "最近一次构建的模型约束数", []string{"model"})

	// 最近一次求解的目标值
	registry.NewGauge("zhiban_objective_value", "最近一次求解的目标值", []string{"model"})

	// 排班质量
	registry.NewGauge("zhiban_coverage_rate", "班次覆盖率", []string{"model"})
	registry.NewGauge("zhiban_workload_gini", "工作量基尼系数", []string{"model"})

	// 可用性查询计数器
	registry.NewCounter("zhiban_availability_checks_total", "可用性查询次数", []string{})
}

// NewCounter 创建计数器
func (r *MetricsRegistry) NewCounter(name, help string, labels []string) *Counter {
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
func (r *MetricsRegistry) NewGauge(name, help string, labels []string) *Gauge {
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
func (r *MetricsRegistry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
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
func (r *MetricsRegistry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *MetricsRegistry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *MetricsRegistry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Counter methods

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := labelKey(labelValues)
	c.values[key] += value
}

// Gauge methods

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := labelKey(labelValues)
	g.values[key] = value
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
	key := labelKey(labelValues)
	g.values[key] += value
}

// Histogram methods

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)

	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}

	// 找到对应的bucket
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
	if len(labels) == 0 {
		return ""
	}
	return strings.Join(labels, ",")
}

// Write 以Prometheus文本格式输出全部指标
//
// 指标和标签组合都按名称排序，输出是确定性的。
func Write(w io.Writer) error {
	r := GetRegistry()
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.counters) {
		counter := r.counters[name]
		fmt.Fprintf(w, "# HELP %s %s\n", counter.Name, counter.Help)
		fmt.Fprintf(w, "# TYPE %s counter\n", counter.Name)

		counter.mu.RLock()
		for _, key := range sortedKeys(counter.values) {
			value := counter.values[key]
			if key == "" {
				fmt.Fprintf(w, "%s %g\n", counter.Name, value)
			} else {
				fmt.Fprintf(w, "%s{%s} %g\n", counter.Name, formatLabels(counter.Labels, key), value)
			}
		}
		counter.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.gauges) {
		gauge := r.gauges[name]
		fmt.Fprintf(w, "# HELP %s %s\n", gauge.Name, gauge.Help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", gauge.Name)

		gauge.mu.RLock()
		for _, key := range sortedKeys(gauge.values) {
			value := gauge.values[key]
			if key == "" {
				fmt.Fprintf(w, "%s %g\n", gauge.Name, value)
			} else {
				fmt.Fprintf(w, "%s{%s} %g\n", gauge.Name, formatLabels(gauge.Labels, key), value)
			}
		}
		gauge.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.histograms) {
		histogram := r.histograms[name]
		fmt.Fprintf(w, "# HELP %s %s\n", histogram.Name, histogram.Help)
		fmt.Fprintf(w, "# TYPE %s histogram\n", histogram.Name)

		histogram.mu.RLock()
		for _, key := range sortedKeys(histogram.counts) {
			counts := histogram.counts[key]
			cumulative := 0
			for i, bucket := range histogram.Buckets {
				cumulative += counts[i]
				if key == "" {
					fmt.Fprintf(w, "%s_bucket{le=\"%g\"} %d\n", histogram.Name, bucket, cumulative)
				} else {
					fmt.Fprintf(w, "%s_bucket{%s,le=\"%g\"} %d\n", histogram.Name, formatLabels(histogram.Labels, key), bucket, cumulative)
				}
			}
			cumulative += counts[len(histogram.Buckets)]
			if key == "" {
				fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", histogram.Name, cumulative)
				fmt.Fprintf(w, "%s_sum %g\n", histogram.Name, histogram.sums[key])
				fmt.Fprintf(w, "%s_count %d\n", histogram.Name, cumulative)
			} else {
				fmt.Fprintf(w, "%s_bucket{%s,le=\"+Inf\"} %d\n", histogram.Name, formatLabels(histogram.Labels, key), cumulative)
				fmt.Fprintf(w, "%s_sum{%s} %g\n", histogram.Name, formatLabels(histogram.Labels, key), histogram.sums[key])
				fmt.Fprintf(w, "%s_count{%s} %d\n", histogram.Name, formatLabels(histogram.Labels, key), cumulative)
			}
		}
		histogram.mu.RUnlock()
	}

	return nil
}

// Dump 返回Prometheus文本格式的指标快照
func Dump() string {
	var sb strings.Builder
	Write(&sb)
	return sb.String()
}

// sortedKeys 返回排序后的map键
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatLabels 格式化标签
func formatLabels(names []string, values string) string {
	vals := splitLabelKey(values)
	parts := make([]string, 0, len(names))
	for i, name := range names {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		parts = append(parts, fmt.Sprintf("%s=%q", name, val))
	}
	return strings.Join(parts, ",")
}

// splitLabelKey 分割标签键
func splitLabelKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, ",")
}

// RecordSolve 记录一次求解
func RecordSolve(rosterType, status string, duration time.Duration) {
	r := GetRegistry()

	if counter := r.GetCounter("zhiban_solve_total"); counter != nil {
		counter.Inc(rosterType, status)
	}
	if histogram := r.GetHistogram("zhiban_solve_duration_seconds"); histogram != nil {
		histogram.Observe(duration.Seconds(), rosterType)
	}
}

// SetModelSize 记录模型规模
func SetModelSize(rosterType string, variables, constraints int) {
	r := GetRegistry()

	if gauge := r.GetGauge("zhiban_model_variables"); gauge != nil {
		gauge.Set(float64(variables), rosterType)
	}
	if gauge := r.GetGauge("zhiban_model_constraints"); gauge != nil {
		gauge.Set(float64(constraints), rosterType)
	}
}

// SetObjectiveValue 记录目标值
func SetObjectiveValue(rosterType string, objective float64) {
	r := GetRegistry()
	if gauge := r.GetGauge("zhiban_objective_value"); gauge != nil {
		gauge.Set(objective, rosterType)
	}
}

// SetCoverageRate 记录覆盖率
func SetCoverageRate(rosterType string, rate float64) {
	r := GetRegistry()
	if gauge := r.GetGauge("zhiban_coverage_rate"); gauge != nil {
		gauge.Set(rate, rosterType)
	}
}

// SetWorkloadGini 记录工作量基尼系数
func SetWorkloadGini(rosterType string, gini float64) {
	r := GetRegistry()
	if gauge := r.GetGauge("zhiban_workload_gini"); gauge != nil {
		gauge.Set(gini, rosterType)
	}
}

// RecordAvailabilityChecks 记录可用性查询
func RecordAvailabilityChecks(n int) {
	r := GetRegistry()
	if counter := r.GetCounter("zhiban_availability_checks_total"); counter != nil {
		counter.Add(float64(n))
	}
}
