// Package httpapi exposes the Evaluator Core over HTTP (§6.1), following the
// teacher's echo-based server conventions: one handler per route,
// slog-per-handler, and JSON map error responses.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"evalengine/pkg/engine"
	"evalengine/pkg/schema"
)

// Server wires the Evaluator Core into an echo HTTP server.
type Server struct {
	echo     *echo.Echo
	engine   *engine.Engine
	registry *schema.Registry
	timeout  time.Duration
}

// New builds a Server exposing /health, /schemes, and /evaluate.
func New(eng *engine.Engine, registry *schema.Registry, timeout time.Duration) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())

	s := &Server{echo: e, engine: eng, registry: registry, timeout: timeout}

	e.GET("/health", s.handleHealth)
	e.GET("/schemes", s.handleSchemes)
	e.POST("/evaluate", s.handleEvaluate)

	return s
}

// Serve blocks serving HTTP on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("httpapi: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"schemas_loaded": s.registry.Len(),
	})
}

type schemeSummary struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Kind         schema.Kind         `json:"kind"`
	Dimension    string              `json:"dimension"`
	OutputRange  schema.OutputRange  `json:"output_range"`
	Dependencies []string            `json:"dependencies,omitempty"`
}

func (s *Server) handleSchemes(c echo.Context) error {
	filter := schema.ListFilter{
		IncludeParts: c.QueryParam("include_parts") == "true",
		ContextType:  schema.Scope(c.QueryParam("context_type")),
	}

	schemas := s.registry.List(filter)
	out := make([]schemeSummary, 0, len(schemas))
	for _, sch := range schemas {
		out = append(out, schemeSummary{
			ID:           sch.ID,
			Name:         sch.Name,
			Kind:         sch.Kind,
			Dimension:    sch.Dimension,
			OutputRange:  sch.OutputRange,
			Dependencies: sch.Dependencies,
		})
	}

	return c.JSON(http.StatusOK, out)
}

type evaluateRequest struct {
	Text             string   `json:"text"`
	Schemes          []string `json:"schemes"`
	ContextType      string   `json:"context_type"`
	IncludeReasoning *bool    `json:"include_reasoning"`
}

func (s *Server) handleEvaluate(c echo.Context) error {
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	if err := validateEvaluateRequest(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	contextType := schema.Scope(req.ContextType)
	if contextType == "" {
		contextType = schema.ScopeContent
	}

	includeReasoning := true
	if req.IncludeReasoning != nil {
		includeReasoning = *req.IncludeReasoning
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	start := time.Now()
	resp := s.engine.Evaluate(ctx, req.Text, req.Schemes, contextType, includeReasoning)
	resp.Metadata.ProcessingTimeMS = int(time.Since(start).Milliseconds())

	slog.Info("evaluate completed",
		"schemes", len(req.Schemes),
		"duration_ms", resp.Metadata.ProcessingTimeMS,
		"gates_passed", resp.GatesPassed,
	)

	return c.JSON(http.StatusOK, resp)
}
