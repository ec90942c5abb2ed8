package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/policyswarm/config"
)

// Monitor 在运行期间提供 /health、/state、/metrics 与 /ws。
// 启动与关闭各只生效一次；关闭后不能再启动。
type Monitor struct {
	config config.ServerConfig
	server *http.Server
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
	done     chan struct{}
	serveErr error
}

// NewMonitor 按服务配置与路由配置创建监控服务
func NewMonitor(cfg config.ServerConfig, routes RouterConfig, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if routes.Logger == nil {
		routes.Logger = logger
	}
	return &Monitor{
		config: cfg,
		server: &http.Server{
			Handler:           NewRouter(routes),
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		logger: logger.With(zap.String("component", "monitor")),
		done:   make(chan struct{}),
	}
}

// Start 监听配置端口并在后台提供服务；端口为 0 时由系统分配
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.stopped:
		return errors.New("monitor is stopped")
	case m.listener != nil:
		return errors.New("monitor already started")
	}

	addr := net.JoinHostPort("", strconv.Itoa(m.config.HTTPPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor listen on %s: %w", addr, err)
	}
	m.listener = ln
	m.logger.Info("monitor listening", zap.String("addr", ln.Addr().String()))

	go func() {
		defer close(m.done)
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitor stopped serving", zap.Error(err))
			m.mu.Lock()
			m.serveErr = err
			m.mu.Unlock()
		}
	}()
	return nil
}

// Addr 返回实际监听地址，未启动时为空
func (m *Monitor) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Shutdown 等待进行中的请求结束，最长 ShutdownTimeout；
// 返回关闭错误与后台服务期间的错误。
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	started := m.listener != nil
	m.mu.Unlock()

	if !started {
		return nil
	}

	if m.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.ShutdownTimeout)
		defer cancel()
	}

	err := m.server.Shutdown(ctx)
	if err != nil {
		// /ws 连接被劫持，Shutdown 不等待它们
		_ = m.server.Close()
	}
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger.Info("monitor stopped")
	return errors.Join(err, m.serveErr)
}
