// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dashboard serves the browser front end: spreadsheet upload, run
// progress, filtered results, summary analytics and workbook download.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/manufacturer-finder/internal/export"
	"github.com/pdiddy/manufacturer-finder/internal/finder"
	"github.com/pdiddy/manufacturer-finder/internal/loader"
	"github.com/pdiddy/manufacturer-finder/internal/logging"
	"github.com/pdiddy/manufacturer-finder/internal/metrics"
	"github.com/pdiddy/manufacturer-finder/internal/report"
	"github.com/pdiddy/manufacturer-finder/internal/secrets"
	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// Frontend is the metrics label for runs started here.
const Frontend = "dashboard"

const (
	defaultHost           = "localhost"
	defaultPort           = 8501
	defaultMaxUploadBytes = 10 << 20
	xlsxContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// ErrShuttingDown is returned for runs requested after Shutdown began.
var ErrShuttingDown = errors.New("dashboard is shutting down")

// BackendFactory builds a completion backend for one run using apiKey.
type BackendFactory func(ctx context.Context, apiKey string) (finder.Backend, error)

// Server is the dashboard HTTP server.
type Server struct {
	echo       *echo.Echo
	cfg        types.Config
	state      *State
	newBackend BackendFactory
	loader     *loader.Loader
	exporter   *export.Exporter
	logger     *zap.Logger

	// ctx bounds background runs; Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	// mu guards closing and every wg.Add so none races Shutdown's wg.Wait.
	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// NewServer builds the dashboard. newBackend is required.
func NewServer(cfg types.Config, newBackend BackendFactory, logger *zap.Logger) (*Server, error) {
	if newBackend == nil {
		return nil, fmt.Errorf("backend factory is required")
	}
	logger = logging.OrNop(logger)

	if cfg.Dashboard.Host == "" {
		cfg.Dashboard.Host = defaultHost
	}
	if cfg.Dashboard.Port == 0 {
		cfg.Dashboard.Port = defaultPort
	}
	if cfg.Dashboard.MaxUploadBytes <= 0 {
		cfg.Dashboard.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.Finder.MaxManufacturers <= 0 {
		cfg.Finder.MaxManufacturers = types.DefaultFinderConfig().MaxManufacturers
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		echo:       e,
		cfg:        cfg,
		state:      NewState(),
		newBackend: newBackend,
		loader:     loader.New(cfg.Loader, logger),
		exporter:   export.New(cfg.Export, logger),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/runs", s.handleStartRun)
	v1.GET("/runs/current", s.handleCurrentRun)
	v1.GET("/results", s.handleResults)
	v1.GET("/results/download", s.handleDownload)
	v1.GET("/summary", s.handleSummary)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Dashboard.Host, s.cfg.Dashboard.Port)
	s.logger.Info("starting dashboard", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown cancels any active run, stops the listener and waits for the
// run goroutine to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down dashboard")
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	s.cancel()
	err := s.echo.Shutdown(ctx)
	s.wg.Wait()
	return err
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

type indexData struct {
	MaxManufacturers int
	HasDefaultKey    bool
	Provider         string
	HighBandMin      float64
	MediumBandMin    float64
}

func (s *Server) handleIndex(c echo.Context) error {
	provider := string(s.cfg.AI.Provider)
	if provider == "" {
		provider = string(types.ProviderOpenAI)
	}
	var buf bytes.Buffer
	err := indexTmpl.Execute(&buf, indexData{
		MaxManufacturers: s.cfg.Finder.MaxManufacturers,
		HasDefaultKey:    s.cfg.AI.APIKey != "",
		Provider:         provider,
		HighBandMin:      types.HighBandMin,
		MediumBandMin:    types.MediumBandMin,
	})
	if err != nil {
		return fmt.Errorf("rendering index: %w", err)
	}
	return c.HTML(http.StatusOK, buf.String())
}

// handleStartRun loads the uploaded spreadsheet synchronously and analyzes
// it in the background. Load and credential errors are reported here; per
// part failures appear only in the results.
func (s *Server) handleStartRun(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.cfg.Dashboard.MaxUploadBytes)

	maxResults := s.cfg.Finder.MaxManufacturers
	if raw := strings.TrimSpace(c.FormValue("max_manufacturers")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 10 {
			return echo.NewHTTPError(http.StatusBadRequest, "max_manufacturers must be an integer between 1 and 10")
		}
		maxResults = n
	}

	apiKey := strings.TrimSpace(c.FormValue("api_key"))
	if apiKey == "" {
		apiKey = s.cfg.AI.APIKey
	}
	if apiKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, secrets.ErrMissingCredential.Error())
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file field is required")
	}
	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "reading upload")
	}
	defer file.Close()

	parts, err := s.loader.Parse(file)
	if err != nil {
		s.logger.Warn("rejected upload", zap.String("filename", fh.Filename), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	backend, err := s.newBackend(s.ctx, apiKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f, err := finder.New(backend, s.cfg.Finder, s.logger)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := s.state.Begin(filepath.Base(fh.Filename), len(parts))
	if errors.Is(err, ErrRunInProgress) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return err
	}

	if !s.track() {
		s.state.Finish(id, ErrShuttingDown)
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrShuttingDown.Error())
	}

	s.logger.Info("run started",
		zap.String("run_id", id),
		zap.String("filename", fh.Filename),
		zap.Int("parts", len(parts)),
		zap.Int("max_manufacturers", maxResults),
	)

	go s.runAnalysis(id, f, parts, maxResults)

	snap, _ := s.state.Current()
	return c.JSON(http.StatusAccepted, snap)
}

// track registers a background run with wg. It reports false once Shutdown
// has begun.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) runAnalysis(id string, f *finder.Finder, parts []types.PartRequest, maxResults int) {
	defer s.wg.Done()

	f.AnalyzeAll(s.ctx, parts, maxResults, func(_, _ int, o finder.Outcome) {
		s.state.Record(id, o.Part())
	})

	err := s.ctx.Err()
	s.state.Finish(id, err)
	metrics.RecordRun(Frontend, err)

	snap, _ := s.state.Current()
	s.logger.Info("run finished",
		zap.String("run_id", id),
		zap.String("status", string(snap.Status)),
		zap.Int("done", snap.Done),
		zap.Int("failed", snap.Failed),
	)
}

func (s *Server) handleCurrentRun(c echo.Context) error {
	snap, ok := s.state.Current()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no run yet")
	}
	return c.JSON(http.StatusOK, snap)
}

// ResultRow is one analyzed part as served to the browser.
type ResultRow struct {
	ID                  int        `json:"id"`
	MPN                 string     `json:"mpn"`
	Description         string     `json:"description"`
	Quantity            int        `json:"quantity"`
	TopManufacturer     string     `json:"top_manufacturer"`
	AllManufacturers    string     `json:"all_manufacturers"`
	AvgCredibilityScore float64    `json:"avg_credibility_score"`
	Band                types.Band `json:"band"`
	Recommendation      string     `json:"recommendation"`
	DetailedAnalysis    string     `json:"detailed_analysis"`
	AdditionalInfo      string     `json:"additional_info"`
	Error               string     `json:"error,omitempty"`
}

// ResultsResponse is the response body for GET /api/v1/results.
type ResultsResponse struct {
	RunID   string      `json:"run_id"`
	Status  RunStatus   `json:"status"`
	Total   int         `json:"total"`
	Count   int         `json:"count"`
	Results []ResultRow `json:"results"`
}

func toRow(p types.AnalyzedPart) ResultRow {
	return ResultRow{
		ID:                  p.Request.ID,
		MPN:                 p.Request.PartNumber,
		Description:         p.Request.Description,
		Quantity:            p.Request.Quantity,
		TopManufacturer:     p.Result.TopManufacturer,
		AllManufacturers:    p.Result.AllManufacturers,
		AvgCredibilityScore: p.Result.AvgCredibilityScore,
		Band:                types.BandFor(p.Result.AvgCredibilityScore),
		Recommendation:      p.Result.Recommendation,
		DetailedAnalysis:    p.Result.DetailedAnalysis,
		AdditionalInfo:      p.Result.AdditionalInfo,
		Error:               p.Result.Error,
	}
}

func parseQuery(c echo.Context) (report.Query, error) {
	q := report.Query{Search: c.QueryParam("q")}
	if raw := c.QueryParam("band"); raw != "" && raw != "all" {
		band, ok := types.ParseBand(strings.ToLower(raw))
		if !ok {
			return q, fmt.Errorf("band must be one of high, medium, low")
		}
		q.Band = band
	}
	if raw := c.QueryParam("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("min_score must be a number")
		}
		q.MinScore = v
	}
	return q, nil
}

func (s *Server) handleResults(c echo.Context) error {
	q, err := parseQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	snap, parts, ok := s.state.Results()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no run yet")
	}

	filtered := report.Filter(parts, q)
	rows := make([]ResultRow, len(filtered))
	for i, p := range filtered {
		rows[i] = toRow(p)
	}
	return c.JSON(http.StatusOK, ResultsResponse{
		RunID:   snap.ID,
		Status:  snap.Status,
		Total:   len(parts),
		Count:   len(rows),
		Results: rows,
	})
}

func (s *Server) handleSummary(c echo.Context) error {
	_, parts, ok := s.state.Results()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no run yet")
	}
	return c.JSON(http.StatusOK, report.Summarize(parts))
}

func (s *Server) handleDownload(c echo.Context) error {
	snap, parts, ok := s.state.Results()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no run yet")
	}
	if snap.Status == StatusRunning {
		return echo.NewHTTPError(http.StatusConflict, ErrRunInProgress.Error())
	}

	var buf bytes.Buffer
	if err := s.exporter.Write(&buf, parts); err != nil {
		return fmt.Errorf("exporting run %s: %w", snap.ID, err)
	}
	name := filepath.Base(s.exporter.DefaultPath())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
