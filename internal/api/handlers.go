package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/BoxPack/internal/engine"
	"github.com/piwi3910/BoxPack/internal/export"
	"github.com/piwi3910/BoxPack/internal/model"
)

// SolveRequest is the body of /v1/solve and /v1/compare. Settings are
// merged over the configured solver defaults, so only the fields to change
// need to be sent.
type SolveRequest struct {
	Instance model.Instance  `json:"instance"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// GenerateRequest is the body of /v1/generate.
type GenerateRequest struct {
	Config json.RawMessage `json:"config,omitempty"`
	Seed   int64           `json:"seed"`
}

// ScenarioResult is one entry of the /v1/compare response.
type ScenarioResult struct {
	Name         string               `json:"name"`
	Settings     model.SolverSettings `json:"settings"`
	Stats        model.SolutionStats  `json:"stats"`
	BoxesUsed    int                  `json:"boxesUsed"`
	WastePercent float64              `json:"wastePercent"`
	Error        string               `json:"error,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, RequestID: c.GetString(requestIDKey)})
}

// statusFor maps solver errors onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrInfeasibleInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidOption), errors.Is(err, model.ErrIncompatiblePlacement), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindSolve decodes the request, merges the settings and checks the
// instance against the configured limits.
func (s *Server) bindSolve(c *gin.Context) (model.Instance, model.SolverSettings, error) {
	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return model.Instance{}, model.SolverSettings{}, decodeError(err)
	}

	settings := s.cfg.Solver
	if len(req.Settings) > 0 {
		if err := json.Unmarshal(req.Settings, &settings); err != nil {
			return model.Instance{}, model.SolverSettings{}, fmt.Errorf("%w: invalid settings: %w", errBadRequest, err)
		}
	}
	if err := settings.Validate(); err != nil {
		return model.Instance{}, model.SolverSettings{}, err
	}

	inst := req.Instance
	if n := len(inst.Rectangles); n > s.cfg.Server.MaxRectangles {
		return model.Instance{}, model.SolverSettings{}, fmt.Errorf("%w: %d rectangles exceed the limit of %d", errBadRequest, n, s.cfg.Server.MaxRectangles)
	}
	inst.Normalize()
	if inst.L <= 0 || len(inst.Rectangles) == 0 {
		return model.Instance{}, model.SolverSettings{}, fmt.Errorf("%w: instance needs a positive box length and at least one rectangle", errBadRequest)
	}
	if err := inst.CheckFeasible(); err != nil {
		return model.Instance{}, model.SolverSettings{}, err
	}
	if err := inst.Validate(); err != nil {
		return model.Instance{}, model.SolverSettings{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return inst, settings, nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func (s *Server) newSolver(c *gin.Context, settings model.SolverSettings) *engine.Solver {
	solver := engine.New(settings)
	solver.Logger = s.logger.With("request_id", c.GetString(requestIDKey))
	if s.metrics != nil {
		solver.Recorder = s.metrics
	}
	return solver
}

// solve packs the instance and returns the solution as JSON, or as a PDF
// layout report with ?format=pdf.
func (s *Server) solve(c *gin.Context) {
	inst, settings, err := s.bindSolve(c)
	if err != nil {
		abortWithError(c, statusFor(err), err.Error())
		return
	}

	res, err := s.newSolver(c, settings).Solve(inst)
	if err != nil {
		abortWithError(c, statusFor(err), err.Error())
		return
	}

	switch c.Query("format") {
	case "", "json":
		c.JSON(http.StatusOK, res)
	case "pdf":
		var buf bytes.Buffer
		if err := export.WritePDF(&buf, inst, res); err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "boxpack-"+inst.ID+".pdf"))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	default:
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("unknown format %q", c.Query("format")))
	}
}

// compare runs the default scenarios around the merged settings.
func (s *Server) compare(c *gin.Context) {
	inst, settings, err := s.bindSolve(c)
	if err != nil {
		abortWithError(c, statusFor(err), err.Error())
		return
	}

	var rec engine.Recorder
	if s.metrics != nil {
		rec = s.metrics
	}
	logger := s.logger.With("request_id", c.GetString(requestIDKey))
	results := engine.CompareScenarios(engine.BuildDefaultScenarios(settings), inst, logger, rec)

	out := make([]ScenarioResult, len(results))
	for i, r := range results {
		out[i] = ScenarioResult{
			Name:         r.Scenario.Name,
			Settings:     r.Scenario.Settings,
			Stats:        r.Result.Stats,
			BoxesUsed:    r.BoxesUsed,
			WastePercent: r.WastePercent,
		}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	c.JSON(http.StatusOK, gin.H{"instance": inst.ID, "scenarios": out})
}

// generate draws a random instance.
func (s *Server) generate(c *gin.Context) {
	var req GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			err = decodeError(err)
			abortWithError(c, statusFor(err), err.Error())
			return
		}
	}

	cfg := s.cfg.Generator
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid generator config: %v", err))
			return
		}
	}
	if cfg.NumRect > s.cfg.Server.MaxRectangles {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("%d rectangles exceed the limit of %d", cfg.NumRect, s.cfg.Server.MaxRectangles))
		return
	}

	inst, err := model.GenerateInstance(cfg, rand.New(rand.NewSource(req.Seed)))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, inst)
}
