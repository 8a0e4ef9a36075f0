package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"station/internal/config"
	"station/internal/logging"
	"station/internal/settings"
	"station/internal/telemetry"
)

// settingsBackend is the store surface the HTTP handlers use.
type settingsBackend interface {
	Reload() (settings.Document, error)
	ApplyUpdate(settings.Partial) error
	Current() settings.Document
	Path() string
}

type apiServer struct {
	bind    string
	logger  *slog.Logger
	store   settingsBackend
	metrics *telemetry.Metrics
	echo    *echo.Echo

	listener net.Listener
	server   *http.Server
}

type updateResponse struct {
	Saved    bool              `json:"saved"`
	Path     string            `json:"path"`
	Settings settings.Document `json:"settings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newAPIServer(cfg *config.Config, store settingsBackend, metrics *telemetry.Metrics, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || store == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:    bind,
		logger:  logging.NewComponentLogger(logger, "api"),
		store:   store,
		metrics: metrics,
	}
	srv.echo = srv.routes(cfg)
	srv.server = &http.Server{
		Handler:           srv.echo,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) routes(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []logging.Attr{
				logging.String("method", v.Method),
				logging.String("uri", v.URI),
				logging.Int("status", v.Status),
				logging.Duration("latency", v.Latency),
				logging.String("remote_ip", v.RemoteIP),
				logging.String(logging.FieldRequestID, v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, logging.Error(v.Error))
			}
			s.logger.Debug("http request", logging.Args(attrs...)...)
			return nil
		},
	}))
	if s.metrics != nil {
		e.Use(s.observeRequests)
	}

	e.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	api := e.Group("/api", bearerAuth(cfg.Paths.APIToken))
	api.GET("/settings", s.handleGetSettings)
	api.PATCH("/settings", s.handleUpdateSettings, updateLimiter(cfg.API))
	return e
}

// updateLimiter throttles settings writes per client address. A non-positive
// rate disables limiting.
func updateLimiter(cfg config.API) echo.MiddlewareFunc {
	if cfg.UpdateRatePerSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.UpdateRatePerSecond),
			Burst:     cfg.UpdateBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, errorResponse{Error: "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
		},
	})
}

func (s *apiServer) observeRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		status := c.Response().Status
		if err != nil {
			status = http.StatusInternalServerError
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
		}
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		s.metrics.ObserveRequest(c.Request().Method, path, status, time.Since(start))
		return err
	}
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_serve_failed", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *apiServer) handleGetSettings(c echo.Context) error {
	doc, err := s.store.Reload()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load settings").SetInternal(err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *apiServer) handleUpdateSettings(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUpdateBody+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body").SetInternal(err)
	}
	if len(body) > maxUpdateBody {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}

	var update settings.Partial
	if err := json.Unmarshal(body, &update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid settings: %v", err))
	}
	if keys := update.InvalidKeys(); len(keys) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid settings: wrong type for "+strings.Join(keys, ", "))
	}

	if err := s.store.ApplyUpdate(update); err != nil {
		switch {
		case errors.Is(err, settings.ErrInvalidSettings):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, settings.ErrSave):
			return c.JSON(http.StatusInternalServerError, updateResponse{
				Saved:    false,
				Path:     s.store.Path(),
				Settings: s.store.Current(),
			})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update settings").SetInternal(err)
		}
	}

	return c.JSON(http.StatusOK, updateResponse{
		Saved:    true,
		Path:     s.store.Path(),
		Settings: s.store.Current(),
	})
}

const maxUpdateBody = 1 << 20

func (s *apiServer) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil {
			err = fmt.Errorf("%v: %w", err, he.Internal)
		}
	}

	if code >= http.StatusInternalServerError {
		logging.ErrorWithContext(s.logger, "api request failed", "api_request_failed",
			logging.String("path", c.Request().URL.Path),
			logging.Error(err))
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, errorResponse{Error: msg})
}
