package restserver

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/chrissnell/bikedash/internal/analysis"
	"github.com/chrissnell/bikedash/internal/charts"
	"github.com/chrissnell/bikedash/internal/dataset"
	"github.com/chrissnell/bikedash/internal/log"
	"github.com/chrissnell/bikedash/pkg/config"
)

// Controller represents the dashboard HTTP server
type Controller struct {
	ctx          context.Context
	wg           *sync.WaitGroup
	serverConfig config.ServerData
	dashConfig   config.DashboardData
	Server       http.Server
	FS           fs.FS
	static       fs.FS
	table        *dataset.Table
	pipeline     *analysis.Pipeline
	chartOptions charts.Options
	metrics      *Metrics
	index        *htmltemplate.Template
	logger       *zap.SugaredLogger
	handlers     *Handlers
}

// NewController creates the dashboard controller over an already loaded table
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, table *dataset.Table, logger *zap.SugaredLogger) (*Controller, error) {
	if table == nil {
		return nil, fmt.Errorf("dashboard controller needs a loaded dataset")
	}

	ctrl := &Controller{
		ctx:          ctx,
		wg:           wg,
		serverConfig: cfg.Server,
		dashConfig:   cfg.Dashboard,
		table:        table,
		pipeline:     analysis.NewPipeline(table, cfg.Dashboard.PreviewRows),
		chartOptions: charts.Options{
			Width:  vg.Length(cfg.Dashboard.ChartWidth) * vg.Inch,
			Height: vg.Length(cfg.Dashboard.ChartHeight) * vg.Inch,
			Format: cfg.Dashboard.ChartFormat,
		},
		metrics: NewMetrics(),
		logger:  logger,
		FS:      GetAssets(),
	}

	// If a listen address was not provided, listen on all interfaces
	if ctrl.serverConfig.ListenAddr == "" {
		logger.Info("server.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.serverConfig.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if ctrl.serverConfig.Port == 0 {
		logger.Info("server.port not provided; defaulting to 8080")
		ctrl.serverConfig.Port = config.DefaultPort
	}

	index, err := htmltemplate.New("index.html.tmpl").Funcs(templateFuncs).ParseFS(ctrl.FS, "index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("error parsing dashboard template: %w", err)
	}
	ctrl.index = index

	static, err := fs.Sub(ctrl.FS, "static")
	if err != nil {
		return nil, fmt.Errorf("error opening static assets: %w", err)
	}
	ctrl.static = static

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = ctrl.serverConfig.Addr()
	ctrl.Server.Handler = ctrl.Handler()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// Handler returns the complete HTTP handler, middleware included
func (c *Controller) Handler() http.Handler {
	return wrapHandler(c.setupRouter())
}

// StartController starts the HTTP server
func (c *Controller) StartController() error {
	log.Infof("Starting dashboard server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.serverConfig.Cert != "" && c.serverConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.serverConfig.Cert, c.serverConfig.Key); err != http.ErrServerClosed {
				log.Errorf("dashboard server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("dashboard server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the dashboard server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.requestIDMiddleware, c.accessLogMiddleware)

	// Page and chart images
	router.HandleFunc("/", c.handlers.ServeDashboard).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/charts/{chart:[a-z-]+}.{format:[a-z]+}", c.handlers.ServeChart).Methods(http.MethodGet, http.MethodHead)

	// API endpoints
	router.HandleFunc("/api/dashboard", c.handlers.GetDashboard).Methods(http.MethodGet)
	router.HandleFunc("/api/dataset", c.handlers.GetDataset).Methods(http.MethodGet)
	router.HandleFunc("/export/view.xlsx", c.handlers.ExportView).Methods(http.MethodGet)

	// Operations
	router.HandleFunc("/healthz", c.handlers.Healthz).Methods(http.MethodGet)
	router.Handle("/metrics", c.metrics.Handler()).Methods(http.MethodGet)

	// Static file serving
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(c.static))))

	return router
}
