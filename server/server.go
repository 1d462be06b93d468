// Package server serves the trading dashboard over HTTP.
//
// Every request takes its own snapshot of the ledger and derives an
// independent read model, handlers share no mutable state.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/config"
	"github.com/etnz/tradestats/date"
	"github.com/etnz/tradestats/renderer"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server is the HTTP dashboard.
type Server struct {
	addr            string
	title           string
	theme           string
	opts            tradestats.Options
	shutdownTimeout time.Duration
	source          Source
	logger          *zap.Logger
	echo            *echo.Echo
}

// New creates a server reading its ledger from source.
func New(cfg *config.Config, source Source, logger *zap.Logger) *Server {
	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	s := &Server{
		addr:            cfg.Addr(),
		theme:           cfg.Theme,
		opts:            cfg.Options(),
		shutdownTimeout: timeout,
		source:          source,
		logger:          logger.With(zap.String("module", "httpServer")),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				s.logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			s.logger.Debug("request", fields...)
			return nil
		},
	}))

	e.GET("/", s.getPage)
	e.GET("/healthz", s.getHealth)
	api := e.Group("/api")
	api.GET("/dashboard", s.getDashboard)
	api.GET("/summary", s.getSummary)
	api.GET("/metrics", s.getMetrics)
	api.GET("/charts/winloss", s.getWinLoss)
	api.GET("/charts/cumulative", s.getCumulative)

	s.echo = e
	return s
}

// WithTitle sets the title of the HTML page.
func (s *Server) WithTitle(title string) *Server {
	s.title = title
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.echo }

// Addr returns the address the server is listening on, empty until Run listens.
func (s *Server) Addr() string {
	if a := s.echo.ListenerAddr(); a != nil {
		return a.String()
	}
	return ""
}

// Run serves until ctx is done, then shuts down gracefully, waiting at most
// the configured shutdown timeout for pending requests.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.echo.Start(s.addr) }()
	s.logger.Info("dashboard server starting", zap.String("addr", s.addr))

	select {
	case err := <-errc:
		return fmt.Errorf("cannot start server on %s: %w", s.addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", zap.Duration("timeout", s.shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server exited")
	return nil
}

// window parses the optional from and to query parameters.
func window(c echo.Context) (date.Range, error) {
	w, err := date.ParseRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return date.Range{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return w, nil
}

// derive computes the read model of the request.
func (s *Server) derive(c echo.Context) (*tradestats.Dashboard, error) {
	w, err := window(c)
	if err != nil {
		return nil, err
	}
	trades, state, err := s.source.Snapshot(c.Request().Context(), w)
	if err != nil {
		s.logger.Error("cannot load ledger snapshot", zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "cannot load ledger").SetInternal(err)
	}
	opts := s.opts
	opts.Window = w
	d := tradestats.DeriveDashboard(trades, state, opts)
	s.logger.Debug("dashboard derived",
		zap.Int("trades", d.Values.TotalTrades),
		zap.Stringer("window", w),
	)
	return d, nil
}

func (s *Server) getHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getPage(c echo.Context) error {
	name := c.QueryParam("theme")
	if name == "" {
		name = s.theme
	}
	theme, err := renderer.ThemeByName(name)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := s.derive(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := (renderer.HTML{Theme: theme, Title: s.title}).Render(&buf, d); err != nil {
		return fmt.Errorf("cannot render page: %w", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) getDashboard(c echo.Context) error {
	d, err := s.derive(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) getSummary(c echo.Context) error {
	d, err := s.derive(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d.Summary)
}

func (s *Server) getMetrics(c echo.Context) error {
	d, err := s.derive(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d.Metrics)
}

func (s *Server) getWinLoss(c echo.Context) error {
	d, err := s.derive(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d.WinLoss)
}

func (s *Server) getCumulative(c echo.Context) error {
	d, err := s.derive(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d.Cumulative)
}
