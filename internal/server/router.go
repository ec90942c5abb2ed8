package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BaSui01/policyswarm/agent/conversation"
	"github.com/BaSui01/policyswarm/agent/framework"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// StateSource 是监控服务读取的引擎状态
type StateSource interface {
	Status() conversation.Status
	Snapshot() framework.Snapshot
	LeaningHistory() []float64
}

// HTTPRecorder 记录 HTTP 请求指标
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// StateResponse 是 /state 的响应体
type StateResponse struct {
	Status         conversation.Status `json:"status"`
	Framework      framework.Snapshot  `json:"framework"`
	LeaningHistory []float64           `json:"leaning_history"`
}

// RouterConfig 路由依赖，除 Source 外均可为空
type RouterConfig struct {
	Source   StateSource
	Hub      *Hub
	Metrics  http.Handler
	Recorder HTTPRecorder
	Logger   *zap.Logger
}

const wsWriteTimeout = 5 * time.Second

// NewRouter 构建监控路由：/health、/metrics、/state、/ws
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "monitor_router"))

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	if cfg.Recorder != nil {
		r.Use(recordRequests(cfg.Recorder))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"state":  cfg.Source.Status().State,
		})
	})

	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, StateResponse{
			Status:         cfg.Source.Status(),
			Framework:      cfg.Source.Snapshot(),
			LeaningHistory: cfg.Source.LeaningHistory(),
		})
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	if cfg.Hub != nil {
		r.Get("/ws", streamTurns(cfg.Hub, logger))
	}

	return r
}

// streamTurns 把回合事件以 JSON 文本帧推送给客户端，连接建立时先补发最近一次事件
func streamTurns(hub *Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 长连接不受服务器级读写超时限制
		rc := http.NewResponseController(w)
		_ = rc.SetReadDeadline(time.Time{})
		_ = rc.SetWriteDeadline(time.Time{})

		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer ws.Close(websocket.StatusNormalClosure, "stream ended")

		sub := hub.Subscribe()
		defer hub.Unsubscribe(sub)

		// 客户端只读；CloseRead 在对端关闭时取消 ctx
		ctx := ws.CloseRead(r.Context())

		if last, ok := hub.Last(); ok {
			if err := writeEvent(ctx, ws, last); err != nil {
				return
			}
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if err := writeEvent(ctx, ws, ev); err != nil {
					logger.Debug("websocket write failed", zap.Error(err))
					return
				}
			}
		}
	}
}

func writeEvent(ctx context.Context, ws *websocket.Conn, ev conversation.TurnEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// recordRequests 按路由模板记录请求，避免高基数 path 标签
func recordRequests(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rec.RecordHTTPRequest(r.Method, path, status, time.Since(start))
		})
	}
}
