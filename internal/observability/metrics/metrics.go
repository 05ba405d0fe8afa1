// Package metrics 收集 HTTP 请求与工具调用指标，并以 Prometheus 文本格式输出。
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"hedera-agent-kit/pkg/toolkit"
)

type requestKey struct {
	handler string
	method  string
	code    string
}

type labelKey struct {
	first  string
	second string
}

type histogram struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type collector struct {
	mu sync.Mutex
	// HTTP 请求
	requests    map[requestKey]uint64
	httpErrors  map[labelKey]uint64
	httpLatency map[labelKey]*histogram
	// 工具调用，延迟按 {方法, 模式} 分组
	invocations map[toolKey]uint64
	toolLatency map[labelKey]*histogram
}

type toolKey struct {
	method  string
	mode    string
	outcome string
}

var defaultCollector = newCollector()

func newCollector() *collector {
	return &collector{
		requests:    make(map[requestKey]uint64),
		httpErrors:  make(map[labelKey]uint64),
		httpLatency: make(map[labelKey]*histogram),
		invocations: make(map[toolKey]uint64),
		toolLatency: make(map[labelKey]*histogram),
	}
}

// Reset 清空所有指标，仅供测试使用。
func Reset() {
	defaultCollector = newCollector()
}

// ObserveHTTPRequest 记录一次 HTTP 请求。
func ObserveHTTPRequest(handler, method string, status int, duration time.Duration) {
	defaultCollector.observeHTTP(handler, method, status, duration)
}

// ObserveToolInvocation 记录一次工具调用。
func ObserveToolInvocation(method, mode string, success bool, duration time.Duration) {
	defaultCollector.observeTool(method, mode, success, duration)
}

// Recorder 把工具调用写入默认收集器，实现 toolkit.Recorder。
type Recorder struct{}

// RecordInvocation 实现 toolkit.Recorder。
func (Recorder) RecordInvocation(_ context.Context, inv toolkit.Invocation) error {
	ObserveToolInvocation(inv.Method, string(inv.Mode), inv.Success, inv.Duration)
	return nil
}

var _ toolkit.Recorder = Recorder{}

func (c *collector) observeHTTP(handler, method string, status int, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests[requestKey{handler: handler, method: method, code: strconv.Itoa(status)}]++
	key := labelKey{first: handler, second: method}
	if status >= 500 {
		c.httpErrors[key]++
	}
	hist := c.httpLatency[key]
	if hist == nil {
		hist = newHistogram()
		c.httpLatency[key] = hist
	}
	hist.observe(duration.Seconds())
}

func (c *collector) observeTool(method, mode string, success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcome := "success"
	if !success {
		outcome = "error"
	}
	c.invocations[toolKey{method: method, mode: mode, outcome: outcome}]++
	key := labelKey{first: method, second: mode}
	hist := c.toolLatency[key]
	if hist == nil {
		hist = newHistogram()
		c.toolLatency[key] = hist
	}
	hist.observe(duration.Seconds())
}

func newHistogram() *histogram {
	buckets := []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// observe 累计落入各桶的次数；超出最后一个桶的值只计入 +Inf（即 count）。
func (h *histogram) observe(value float64) {
	h.count++
	h.sum += value
	for idx, bound := range h.buckets {
		if value <= bound {
			for i := idx; i < len(h.counts); i++ {
				h.counts[i]++
			}
			return
		}
	}
}

// Handler 以 Prometheus 文本格式输出指标。
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = fmt.Fprint(w, defaultCollector.render())
	})
}

func (c *collector) render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.Grow(2048)

	reqKeys := make([]requestKey, 0, len(c.requests))
	for key := range c.requests {
		reqKeys = append(reqKeys, key)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		a, z := reqKeys[i], reqKeys[j]
		if a.handler != z.handler {
			return a.handler < z.handler
		}
		if a.method != z.method {
			return a.method < z.method
		}
		return a.code < z.code
	})
	b.WriteString("# HELP agentkit_http_requests_total Total number of HTTP requests processed.\n")
	b.WriteString("# TYPE agentkit_http_requests_total counter\n")
	for _, key := range reqKeys {
		fmt.Fprintf(&b, "agentkit_http_requests_total{handler=\"%s\",method=\"%s\",code=\"%s\"} %d\n",
			escape(key.handler), escape(key.method), escape(key.code), c.requests[key])
	}

	b.WriteString("# HELP agentkit_http_request_errors_total Total number of HTTP requests that resulted in a server error.\n")
	b.WriteString("# TYPE agentkit_http_request_errors_total counter\n")
	for _, key := range sortedLabels(c.httpErrors) {
		fmt.Fprintf(&b, "agentkit_http_request_errors_total{handler=\"%s\",method=\"%s\"} %d\n",
			escape(key.first), escape(key.second), c.httpErrors[key])
	}

	writeHistograms(&b, "agentkit_http_request_duration_seconds", "HTTP request duration in seconds.", "handler", "method", c.httpLatency)

	toolKeys := make([]toolKey, 0, len(c.invocations))
	for key := range c.invocations {
		toolKeys = append(toolKeys, key)
	}
	sort.Slice(toolKeys, func(i, j int) bool {
		a, z := toolKeys[i], toolKeys[j]
		if a.method != z.method {
			return a.method < z.method
		}
		if a.mode != z.mode {
			return a.mode < z.mode
		}
		return a.outcome < z.outcome
	})
	b.WriteString("# HELP agentkit_tool_invocations_total Total number of tool invocations.\n")
	b.WriteString("# TYPE agentkit_tool_invocations_total counter\n")
	for _, key := range toolKeys {
		fmt.Fprintf(&b, "agentkit_tool_invocations_total{tool=\"%s\",mode=\"%s\",outcome=\"%s\"} %d\n",
			escape(key.method), escape(key.mode), escape(key.outcome), c.invocations[key])
	}

	writeHistograms(&b, "agentkit_tool_invocation_duration_seconds", "Tool invocation duration in seconds.", "tool", "mode", c.toolLatency)

	return b.String()
}

func sortedLabels[V any](m map[labelKey]V) []labelKey {
	keys := make([]labelKey, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].first != keys[j].first {
			return keys[i].first < keys[j].first
		}
		return keys[i].second < keys[j].second
	})
	return keys
}

func writeHistograms(b *strings.Builder, name, help, firstLabel, secondLabel string, hists map[labelKey]*histogram) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s histogram\n", name)
	for _, key := range sortedLabels(hists) {
		hist := hists[key]
		labels := fmt.Sprintf("%s=\"%s\",%s=\"%s\"", firstLabel, escape(key.first), secondLabel, escape(key.second))
		for idx, bound := range hist.buckets {
			fmt.Fprintf(b, "%s_bucket{%s,le=\"%s\"} %d\n", name, labels, formatFloat(bound), hist.counts[idx])
		}
		fmt.Fprintf(b, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, labels, hist.count)
		fmt.Fprintf(b, "%s_sum{%s} %s\n", name, labels, formatFloat(hist.sum))
		fmt.Fprintf(b, "%s_count{%s} %d\n", name, labels, hist.count)
	}
}

func escape(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "\n", "")
	return value
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// StartServer 启动独立的 /metrics 服务，直到上下文取消。
func StartServer(ctx context.Context, addr string) error {
	if addr == "" {
		return errors.New("metrics address is empty")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}
