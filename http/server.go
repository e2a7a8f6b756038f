// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"goldpredict/app"
	"goldpredict/config"
	"goldpredict/monitoring"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	config config.HTTPConfig
	logger *zap.Logger
}

// NewServer 创建HTTP服务器. It serves startup whether it is ready or halted.
func NewServer(cfg config.HTTPConfig, startup app.Init, metrics *monitoring.Metrics, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer, err := NewPageRenderer()
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	mux := http.NewServeMux()
	NewHandlers(startup, renderer, metrics, logger).Register(mux)

	return &Server{
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           NewHandler(mux, cfg, logger),
			ReadHeaderTimeout: cfg.Timeout,
			IdleTimeout:       120 * time.Second,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// NewHandler 创建中间件链
func NewHandler(mux http.Handler, cfg config.HTTPConfig, logger *zap.Logger) http.Handler {
	chain := Chain(
		RecoveryMiddleware(logger),          // 1. 恢复中间件（最先执行，捕获panic）
		LoggerMiddleware(logger),            // 2. 日志中间件
		SecurityHeadersMiddleware,           // 3. 安全头中间件
		CORSMiddleware(cfg.AllowedOrigins),  // 4. CORS中间件
		RequestSizeMiddleware(maxBodyBytes), // 5. 请求大小限制
		TimeoutMiddleware(cfg.Timeout),      // 6. 超时中间件
	)
	return chain(mux)
}

// Start 启动服务器
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	return s.Serve(l)
}

// Serve 在已有的 listener 上服务
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", l.Addr().String()))

	if err := s.server.Serve(l); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
