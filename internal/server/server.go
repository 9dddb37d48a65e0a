// Package server exposes run listings and QC summaries over HTTP for
// dashboards that poll sequencer output.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/miseqtools/miseqinterop/internal/interop"
	"github.com/miseqtools/miseqinterop/internal/run"
	"github.com/miseqtools/miseqinterop/internal/summary"
)

// Server serves the run API for one runs directory.
type Server struct {
	runsDir     string
	readLengths *summary.ReadLengths
	echo        *echo.Echo
}

// Option customizes server construction.
type Option func(*Server)

// WithReadLengths sets the default read-length split used by summaries when
// the request does not carry its own.
func WithReadLengths(rl *summary.ReadLengths) Option {
	return func(s *Server) { s.readLengths = rl }
}

// New builds the server and its routes.
func New(runsDir string, opts ...Option) *Server {
	s := &Server{runsDir: runsDir}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/runs", s.handleListRuns)
	e.GET("/api/runs/:name", s.handleRunInfo)
	e.GET("/api/runs/:name/summary", s.handleRunSummary)

	s.echo = e
	return s
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start binds the listener and serves until Shutdown.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: start %s: %w", addr, err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// runInfo is the wire form of a discovered run.
type runInfo struct {
	Name            string       `json:"name"`
	Path            string       `json:"path"`
	NeedsProcessing bool         `json:"needs_processing"`
	QCUploaded      bool         `json:"qc_uploaded"`
	Metrics         []run.Metric `json:"metrics,omitempty"`
}

func (s *Server) handleListRuns(c echo.Context) error {
	filter := run.Filter{
		NeedsProcessing: c.QueryParam("needsProcessing") == "true",
		QCUploaded:      c.QueryParam("qcUploaded") == "true",
	}
	runs, err := run.Discover(s.runsDir, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	infos := make([]runInfo, 0, len(runs))
	for _, r := range runs {
		infos = append(infos, runInfo{
			Name:            r.Name,
			Path:            r.Dir,
			NeedsProcessing: r.NeedsProcessing,
			QCUploaded:      r.QCUploaded,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"runs": infos, "count": len(infos)})
}

// openRun resolves the :name parameter against the runs directory.
func (s *Server) openRun(c echo.Context) (*run.Run, error) {
	name := c.Param("name")
	runs, err := run.Discover(s.runsDir, run.Filter{})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, r := range runs {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("run %q not found", name))
}

func (s *Server) handleRunInfo(c echo.Context) error {
	r, err := s.openRun(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, runInfo{
		Name:            r.Name,
		Path:            r.Dir,
		NeedsProcessing: r.NeedsProcessing,
		QCUploaded:      r.QCUploaded,
		Metrics:         r.AvailableMetrics(),
	})
}

// summaryResponse carries whichever summaries the run's metric files allow.
type summaryResponse struct {
	RunName string                  `json:"run_name"`
	Tiles   *summary.TileSummary    `json:"tiles,omitempty"`
	Quality *summary.QualitySummary `json:"quality,omitempty"`
	Errors  *summary.ErrorSummary   `json:"errors,omitempty"`
	Missing []run.Metric            `json:"missing,omitempty"`
}

func (s *Server) handleRunSummary(c echo.Context) error {
	r, err := s.openRun(c)
	if err != nil {
		return err
	}

	readLengths := s.readLengths
	if spec := c.QueryParam("readLengths"); spec != "" {
		rl, err := summary.ParseReadLengths(spec)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		readLengths = &rl
	}

	resp := summaryResponse{RunName: r.Name}

	if path, err := r.MetricPath(run.MetricTile); err == nil {
		records, err := readTiles(path)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		tiles := summary.SummarizeTiles(records)
		resp.Tiles = &tiles
	} else {
		resp.Missing = append(resp.Missing, run.MetricTile)
	}

	if path, err := r.MetricPath(run.MetricQuality); err == nil {
		records, err := readQuality(path)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		quality := summary.SummarizeQuality(records, readLengths)
		resp.Quality = &quality
	} else {
		resp.Missing = append(resp.Missing, run.MetricQuality)
	}

	if path, err := r.MetricPath(run.MetricError); err == nil {
		records, err := readErrors(path)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		errs := summary.SummarizeErrors(records, readLengths)
		resp.Errors = &errs
	} else {
		resp.Missing = append(resp.Missing, run.MetricError)
	}

	return c.JSON(http.StatusOK, resp)
}

func readTiles(path string) ([]interop.TileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return interop.ReadTiles(f)
}

func readQuality(path string) ([]interop.QualityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return interop.ReadQuality(f)
}

func readErrors(path string) ([]interop.ErrorRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return interop.ReadErrors(f)
}
