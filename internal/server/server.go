package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/perchlabs/NIDUS/internal/config"
	"github.com/perchlabs/NIDUS/internal/logging"
	"github.com/perchlabs/NIDUS/internal/optimization"
	"github.com/perchlabs/NIDUS/internal/optimization/cuckoo"
	"github.com/perchlabs/NIDUS/internal/optimization/objectives"
	"github.com/perchlabs/NIDUS/internal/optimization/space"
)

// SearchRequest is the payload accepted by the start endpoints.
// Bounds override the objective's canonical bounds when given; zero
// tunables fall back to the configured defaults.
type SearchRequest struct {
	Objective      string      `json:"objective" validate:"required"`
	Bounds         [][]float64 `json:"bounds,omitempty" validate:"omitempty,min=1,dive,len=2"`
	PopulationSize int         `json:"population_size" validate:"gte=0"`
	AbandonCount   *int        `json:"abandon_count,omitempty"`
	Generations    int         `json:"generations" validate:"gte=0"`
	BaseStepSize   float64     `json:"base_step_size" validate:"gte=0"`
	Seed           uint64      `json:"seed"`
}

// SearchState tracks the progress, status, and result of one search
// job. Fields are protected by the server's searchesMu.
type SearchState struct {
	ID           string
	Objective    string
	Status       string // "pending", "running", "completed", "failed", "cancelled"
	StartTime    time.Time
	EndTime      *time.Time
	BestSolution *optimization.Solution
	Optimizer    optimization.Optimizer
	CancelFunc   context.CancelFunc
	LastUpdated  time.Time

	subscribers map[chan ProgressEvent]struct{}
}

// ProgressEvent is pushed to watchers once per successful replacement
// and once more when the job reaches a terminal state.
type ProgressEvent struct {
	SearchID   string    `json:"search_id"`
	Status     string    `json:"status"`
	Generation int       `json:"generation"`
	Value      float64   `json:"value"`
	Parameters []float64 `json:"parameters,omitempty"`
}

// Server implements the HTTP and JSON-RPC surface of the optimization
// service. It manages search jobs and provides endpoints to start,
// monitor, stream, and cancel them.
type Server struct {
	cfg      *config.Config
	logger   *logging.Logger
	progress *zap.Logger
	validate *validator.Validate
	metrics  *Metrics

	searches   map[string]*SearchState
	searchesMu sync.RWMutex
}

// NewServer creates a new server instance. Metrics are registered on
// reg; pass prometheus.DefaultRegisterer in production and a fresh
// registry in tests.
func NewServer(cfg *config.Config, logger *logging.Logger, reg prometheus.Registerer) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		progress: logging.NewZapLogger(logger),
		validate: validator.New(),
		metrics:  NewMetrics(reg),
		searches: make(map[string]*SearchState),
	}
}

// RegisterRoutes mounts the service endpoints on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/search/{id}", s.handleStatus)
		r.Delete("/search/{id}", s.handleCancel)
		r.Get("/search/{id}/watch", s.handleWatch)
		r.Get("/objectives", s.handleObjectives)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string            `json:"jsonrpc"`
		ID      interface{}       `json:"id"`
		Method  string            `json:"method"`
		Params  []json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", nil)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "search.start":
		var req SearchRequest
		if err = decodeParam(request.Params, &req); err == nil {
			result, err = s.startSearch(req)
		}
	case "search.status":
		var p struct {
			SearchID string `json:"search_id"`
		}
		if err = decodeParam(request.Params, &p); err == nil {
			result, err = s.searchStatus(p.SearchID)
		}
	case "search.cancel":
		var p struct {
			SearchID string `json:"search_id"`
		}
		if err = decodeParam(request.Params, &p); err == nil {
			err = s.cancelSearch(p.SearchID)
		}
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.respondWithError(w, -32000, err.Error(), request.ID)
		return
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// decodeParam unmarshals the first positional parameter into v.
func decodeParam(params []json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("missing required parameters")
	}
	if err := json.Unmarshal(params[0], v); err != nil {
		return fmt.Errorf("invalid parameter format: %v", err)
	}
	return nil
}

// startSearch validates the request, builds the optimizer, and starts
// the search in a background goroutine.
func (s *Server) startSearch(req SearchRequest) (interface{}, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request: %v", err)
	}

	bench, err := objectives.Lookup(req.Objective)
	if err != nil {
		return nil, err
	}

	pairs := bench.Bounds
	if len(req.Bounds) > 0 {
		pairs = make([][2]float64, len(req.Bounds))
		for i, b := range req.Bounds {
			pairs[i] = [2]float64{b[0], b[1]}
		}
	}
	sp, err := space.New(pairs)
	if err != nil {
		return nil, fmt.Errorf("invalid bounds: %v", err)
	}

	cfg := optimization.OptimizerConfig{
		Objective:      bench.Fn,
		Space:          sp,
		PopulationSize: req.PopulationSize,
		Generations:    req.Generations,
		BaseStepSize:   req.BaseStepSize,
		Seed:           req.Seed,
	}
	if cfg.PopulationSize == 0 {
		cfg.PopulationSize = s.cfg.Search.PopulationSize
	}
	if req.AbandonCount != nil {
		cfg.AbandonCount = *req.AbandonCount
	} else {
		cfg.AbandonCount = s.cfg.Search.AbandonCount
	}
	if cfg.Generations == 0 {
		cfg.Generations = s.cfg.Search.Generations
	}
	if cfg.BaseStepSize == 0 {
		cfg.BaseStepSize = s.cfg.Search.BaseStepSize
	}

	id := uuid.NewString()
	cfg.Progress = func(generation int, best optimization.Solution) {
		s.onProgress(id, generation, best)
	}

	opt, err := cuckoo.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create optimizer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	state := &SearchState{
		ID:          id,
		Objective:   bench.Name,
		Status:      "pending",
		StartTime:   time.Now(),
		Optimizer:   opt,
		CancelFunc:  cancel,
		LastUpdated: time.Now(),
		subscribers: make(map[chan ProgressEvent]struct{}),
	}

	s.searchesMu.Lock()
	s.searches[id] = state
	s.searchesMu.Unlock()

	s.metrics.SearchesStarted.Inc()
	s.metrics.SearchesRunning.Inc()

	go s.runSearch(ctx, state)

	return map[string]interface{}{
		"search_id": id,
		"status":    "pending",
	}, nil
}

// searchStatus returns the current status and results of a search job.
func (s *Server) searchStatus(id string) (interface{}, error) {
	if id == "" {
		return nil, fmt.Errorf("search_id is required")
	}

	s.searchesMu.RLock()
	defer s.searchesMu.RUnlock()

	state, exists := s.searches[id]
	if !exists {
		return nil, fmt.Errorf("search not found")
	}

	response := map[string]interface{}{
		"search_id":   state.ID,
		"objective":   state.Objective,
		"status":      state.Status,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
	}

	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}

	if state.BestSolution != nil {
		response["best_solution"] = map[string]interface{}{
			"parameters": state.BestSolution.Parameters,
			"value":      state.BestSolution.Value,
		}
	}

	// The optimizer owns its history while running; read it only once
	// the run goroutine has settled. A cancelled run may still be
	// unwinding, so its history stays private.
	switch state.Status {
	case "completed", "failed":
		if history := state.Optimizer.GetHistory(); len(history) > 0 {
			entries := make([]map[string]interface{}, len(history))
			for i, eval := range history {
				entries[i] = map[string]interface{}{
					"generation": eval.Generation,
					"parameters": eval.Solution.Parameters,
					"value":      eval.Solution.Value,
				}
			}
			response["history"] = entries
		}
	}

	return response, nil
}

// cancelSearch cancels a running search job.
func (s *Server) cancelSearch(id string) error {
	if id == "" {
		return fmt.Errorf("search_id is required")
	}

	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	state, exists := s.searches[id]
	if !exists {
		return fmt.Errorf("search not found")
	}

	switch state.Status {
	case "completed", "failed", "cancelled":
		return fmt.Errorf("cannot cancel search with status: %s", state.Status)
	}

	if state.CancelFunc != nil {
		state.CancelFunc()
	}

	state.Status = "cancelled"
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("Search cancelled", map[string]interface{}{
		"search_id": id,
	})

	return nil
}

// runSearch executes the search in a goroutine and records its outcome.
func (s *Server) runSearch(ctx context.Context, state *SearchState) {
	s.searchesMu.Lock()
	if state.Status == "pending" {
		state.Status = "running"
		state.LastUpdated = time.Now()
	}
	s.searchesMu.Unlock()

	result, err := state.Optimizer.Optimize(ctx)

	s.searchesMu.Lock()
	// A concurrent cancel already settled the terminal state.
	if state.Status == "running" {
		switch {
		case errors.Is(err, context.Canceled):
			// Cancelled through Close rather than the DELETE path;
			// report it the same way.
			s.logger.Info("Search cancelled", map[string]interface{}{
				"search_id": state.ID,
			})
			state.Status = "cancelled"
		case err != nil:
			s.logger.Error("Search failed", map[string]interface{}{
				"search_id": state.ID,
				"error":     err.Error(),
			})
			state.Status = "failed"
		default:
			state.Status = "completed"
			state.BestSolution = result.BestSolution
		}
		now := time.Now()
		state.EndTime = &now
		state.LastUpdated = now
	}
	status := state.Status
	best := state.BestSolution
	s.searchesMu.Unlock()

	s.metrics.SearchesRunning.Dec()
	s.metrics.SearchesCompleted.WithLabelValues(status).Inc()

	final := ProgressEvent{SearchID: state.ID, Status: status}
	if best != nil {
		final.Value = best.Value
		final.Parameters = best.Parameters
	}
	s.broadcast(state, final, true)
}

// onProgress handles one replacement event from the engine.
func (s *Server) onProgress(id string, generation int, best optimization.Solution) {
	s.metrics.Replacements.Inc()
	s.progress.Info("search improved",
		zap.String("search_id", id),
		zap.Int("generation", generation),
		zap.Float64("best_value", best.Value),
	)

	s.searchesMu.Lock()
	state, exists := s.searches[id]
	if exists {
		clone := best.Clone()
		state.BestSolution = &clone
		state.LastUpdated = time.Now()
	}
	s.searchesMu.Unlock()
	if !exists {
		return
	}

	s.broadcast(state, ProgressEvent{
		SearchID:   id,
		Status:     "running",
		Generation: generation,
		Value:      best.Value,
		Parameters: best.Parameters,
	}, false)
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Close cancels all running searches.
func (s *Server) Close() error {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	for _, state := range s.searches {
		if state.CancelFunc != nil {
			state.CancelFunc()
		}
	}
	return nil
}

// handleSearch handles POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := s.startSearch(req)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(result)
}

// handleStatus handles GET /api/v1/search/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing search ID", http.StatusBadRequest)
		return
	}

	result, err := s.searchStatus(id)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// handleCancel handles DELETE /api/v1/search/{id}.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing search ID", http.StatusBadRequest)
		return
	}

	err := s.cancelSearch(id)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "cancellation requested",
	})
}

// handleObjectives handles GET /api/v1/objectives.
func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"objectives": objectives.Names(),
	})
}
