// Package webui 是浏览器端的宿主：把 HTTP 请求翻译为 session 操作，
// 再把返回的 State 渲染为 HTML（或 JSON）。它本身不包含任何表格/导出规则。
package webui

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/John-Robertt/vmeta/internal/app/session"
	"github.com/John-Robertt/vmeta/internal/config"
)

// maxUploadBytes 限制配置文件上传大小。
const maxUploadBytes = 1 << 20

// Server 是 HTTP 服务及其依赖。
type Server struct {
	cfg     config.ServerConfig
	env     session.Env
	logger  *zap.Logger
	store   *store
	tmpl    *template.Template
	handler http.Handler
}

// New 创建服务；logger 为 nil 时使用 nop logger。
func New(cfg config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = config.DefaultPageSize
	}
	s := &Server{
		cfg:    cfg,
		env:    session.Env{BaseDir: cfg.BaseDir},
		logger: logger,
		store:  newStore(),
		tmpl:   template.Must(template.New("").Parse(keepTemplate + indexTemplate)),
	}
	s.setupRoutes()
	return s
}

// Handler 返回带中间件的根 handler（测试中配合 httptest 使用）。
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)

	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/rows/add", s.action(func(ctx context.Context, st session.State, r *http.Request, p viewParams) (session.State, error) {
		return session.AddRowManually(st), nil
	}))
	mux.HandleFunc("/rows/missing", s.action(func(ctx context.Context, st session.State, r *http.Request, p viewParams) (session.State, error) {
		return session.AddRowsForMissing(ctx, s.env, st), nil
	}))
	mux.HandleFunc("/rows/select", s.action(s.selectRow))
	mux.HandleFunc("/rows/select-all", s.action(func(ctx context.Context, st session.State, r *http.Request, p viewParams) (session.State, error) {
		if !st.HasTable() {
			return st, nil
		}
		return session.ToggleSelectAll(st, visibleRows(st.Table, &p, s.cfg.PageSize)), nil
	}))
	mux.HandleFunc("/rows/edit", s.action(s.editCell))
	mux.HandleFunc("/rows/export", s.action(func(ctx context.Context, st session.State, r *http.Request, p viewParams) (session.State, error) {
		next, _ := session.ExportSelected(ctx, s.env, st)
		return next, nil
	}))
	mux.HandleFunc("/alert/dismiss", s.action(func(ctx context.Context, st session.State, r *http.Request, p viewParams) (session.State, error) {
		return session.DismissAlert(st), nil
	}))

	mux.HandleFunc("/api/state", s.handleAPIState)
	mux.HandleFunc("/api/table", s.handleAPITable)
	mux.HandleFunc("/api/export", s.handleAPIExport)

	s.handler = loggingMiddleware(s.logger)(securityHeadersMiddleware(mux))
}

// Run 监听并服务，直到 ctx 取消；取消后优雅关闭。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web ui ready",
			zap.String("addr", "http://"+s.cfg.Addr),
			zap.String("base_dir", s.cfg.BaseDir),
			zap.Int("page_size", s.cfg.PageSize))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("web ui shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
