package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hedera-agent-kit/internal/observability/metrics"
	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/toolkit"
)

// maxBodyBytes 限制单次调用的参数体大小。
const maxBodyBytes = 1 << 20

// Server 负责暴露 REST 接口，供外部宿主调用工具。
type Server struct {
	addr string
	kit  *toolkit.Toolkit
}

// NewServer 构造 API 服务实例。
func NewServer(addr string, kit *toolkit.Toolkit) *Server {
	return &Server{addr: addr, kit: kit}
}

// Handler 返回带指标采集的路由。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/tools", instrument("tools", http.HandlerFunc(s.handleListTools)))
	mux.Handle("/api/v1/tools/", instrument("invoke", http.HandlerFunc(s.handleInvoke)))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           withContext(ctx, s.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Named("api").Info("HTTP 服务已启动", slog.String("addr", s.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持 GET", http.StatusMethodNotAllowed)
		return
	}
	if s.kit == nil {
		http.Error(w, "工具集未初始化", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.kit.Definitions()})
}

// handleInvoke 处理 POST /api/v1/tools/{method}。
// 工具失败同样返回 200，错误信息位于结果的 error 字段，与其他宿主一致。
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持 POST", http.StatusMethodNotAllowed)
		return
	}
	if s.kit == nil {
		http.Error(w, "工具集未初始化", http.StatusServiceUnavailable)
		return
	}
	method := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/tools/"), "/")
	if method == "" {
		http.Error(w, "缺少工具名称", http.StatusBadRequest)
		return
	}
	if _, ok := s.kit.Tool(method); !ok {
		http.Error(w, "工具不存在", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		http.Error(w, "请求体读取失败", http.StatusBadRequest)
		return
	}
	if len(body) > maxBodyBytes {
		http.Error(w, "请求体过大", http.StatusRequestEntityTooLarge)
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 && !json.Valid(body) {
		http.Error(w, "请求体解析失败", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.kit.Invoke(r.Context(), method, json.RawMessage(body)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument 记录请求耗时与状态码。
func instrument(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.ObserveHTTPRequest(name, r.Method, rec.status, time.Since(started))
	})
}

// withContext 确保请求处理能够感知根上下文取消。
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			http.Error(w, "服务已关闭", http.StatusServiceUnavailable)
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
