// Package api provides the HTTP API server implementation for the task-lifecycle core.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/conclave-run/taskcore/internal/api/middleware"
	"github.com/conclave-run/taskcore/internal/function"
	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/task"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

const (
	healthCheckTimeout = 2 * time.Second
	expectedURLParts   = 2
)

type (
	// HealthStatus represents the health check response structure.
	HealthStatus struct {
		Status      string `json:"status"`
		ServiceName string `json:"serviceName"`
		Version     string `json:"version"`
		Uptime      string `json:"uptime,omitempty"`
	}

	// Route represents an HTTP route configuration with a path and handler.
	// Used for declarative route registration with middleware bypass support.
	Route struct {
		Path    string           // The URL path for this route (e.g., "/ping", "/api/v1/health")
		Handler http.HandlerFunc // The HTTP handler function for this route
	}
)

// setupRoutes sets up all HTTP routes for the API server.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Public health endpoints
	s.registerPublicRoutes(
		mux,
		Route{"GET /ping", s.handlePing},     // K8s liveness probe
		Route{"GET /ready", s.handleReady},   // K8s readiness probe
		Route{"GET /health", s.handleHealth}, // Basic health check - status, uptime, version
		Route{"/", s.handleNotFound},         // Catch-all handler for 404 responses
	)

	// Task-lifecycle endpoints
	mux.HandleFunc("POST /api/v1/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/v1/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /api/v1/tasks/{id}/inputs/{name}", s.handleAssignInput)
	mux.HandleFunc("PUT /api/v1/tasks/{id}/outputs/{name}", s.handleAssignOutput)
	mux.HandleFunc("POST /api/v1/tasks/{id}/approve", s.handleApprove)
	mux.HandleFunc("POST /api/v1/tasks/{id}/stage", s.handleStage)
	mux.HandleFunc("POST /api/v1/tasks/{id}/ack", s.handleAck)
	mux.HandleFunc("POST /api/v1/tasks/{id}/outputs/{name}/cmac", s.handleUpdateOutputCMAC)
	mux.HandleFunc("POST /api/v1/tasks/{id}/result", s.handleUpdateResult)
}

// registerPublicRoutes registers HTTP routes that bypass authentication and rate limiting.
// This is a convenience method that:
//  1. Registers the route handler with the HTTP mux
//  2. Automatically registers the path as a public endpoint (bypasses auth middleware)
//
// Public routes should only be used for health check endpoints that need to be accessible
// without authentication (e.g., K8s liveness/readiness probes, monitoring tools).
//
// Security Warning: Never register business logic endpoints as public routes.
func (s *Server) registerPublicRoutes(mux *http.ServeMux, routes ...Route) {
	validHTTPMethods := map[string]bool{
		"GET":    true,
		"POST":   true,
		"PUT":    true,
		"PATCH":  true,
		"DELETE": true,
	}

	for _, route := range routes {
		mux.Handle(route.Path, route.Handler)

		path := route.Path

		parts := strings.Fields(path)
		if len(parts) == expectedURLParts && validHTTPMethods[parts[0]] {
			path = strings.TrimSpace(parts[1])
		}

		if path == "" {
			s.logger.Warn("malformed route path detected, ignoring route", slog.String("path", path))

			continue
		}

		middleware.RegisterPublicEndpoint(path)
	}
}

// handlePing responds to ping requests for basic server validation.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.GetCorrelationID(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("pong")); err != nil {
		s.logger.Error("failed to write ping response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
	}
}

// handleReady responds to Kubernetes readiness probes with storage backend health checks.
//
// Response codes:
//   - 200 OK: the task store (and API key store, if configured) are healthy
//   - 503 Service Unavailable: a storage backend is unhealthy or unreachable
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.GetCorrelationID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := s.taskStore.HealthCheck(ctx); err != nil {
		s.logger.Error("task store health check failed",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)

		if _, writeErr := w.Write([]byte("storage unavailable")); writeErr != nil {
			s.logger.Error("failed to write unavailable response",
				slog.String("correlation_id", correlationID),
				slog.String("error", writeErr.Error()),
			)
		}

		return
	}

	if s.apiKeyStore != nil { // pragma: allowlist secret
		if err := s.apiKeyStore.HealthCheck(ctx); err != nil {
			s.logger.Error("API key store health check failed",
				slog.String("correlation_id", correlationID),
				slog.String("error", err.Error()),
			)

			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusServiceUnavailable)

			if _, writeErr := w.Write([]byte("storage unavailable")); writeErr != nil {
				s.logger.Error("failed to write unavailable response",
					slog.String("correlation_id", correlationID),
					slog.String("error", writeErr.Error()),
				)
			}

			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("ready")); err != nil {
		s.logger.Error("failed to write ready response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
	}
}

// handleHealth returns detailed health status information.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.GetCorrelationID(r.Context())

	var uptime string

	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime).Round(time.Second).String()
	}

	health := HealthStatus{
		Status:      "healthy",
		ServiceName: "taskcore",
		Version:     "v1.0.0",
		Uptime:      uptime,
	}

	data, err := json.Marshal(health)
	if err != nil {
		s.logger.Error("failed to encode health response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("failed to encode health response"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write health response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
	}
}

// handleNotFound returns RFC 7807 compliant 404 responses for unknown endpoints.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, s.logger, NotFound("The requested resource was not found"))
}

// handleCreateTask handles task creation.
// POST /api/v1/tasks
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	fn, err := s.functions.Get(r.Context(), identity.ExternalID(req.FunctionID))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	creationReq := task.CreationRequest{
		Requester:         s.authenticatedRequester(r, req.Requester),
		Executor:          req.Executor,
		FunctionArguments: req.FunctionArguments,
		InputsOwnership:   s.resolveOwnership(req.InputsOwnership),
		OutputsOwnership:  s.resolveOwnership(req.OutputsOwnership),
		Function:          fn,
	}

	if existing, err := s.taskStore.FindByIdempotencyKey(r.Context(), creationReq.IdempotencyKey()); err == nil {
		s.writeTask(w, r, http.StatusOK, existing)

		return
	} else if !errors.Is(err, task.ErrNotFound) {
		s.writeError(w, r, err)

		return
	}

	creation, err := task.New(creationReq)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	state := creation.ToState()
	if err := s.taskStore.Put(r.Context(), state); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeTask(w, r, http.StatusCreated, state)
}

// handleGetTask handles task lookup.
// GET /api/v1/tasks/{id}
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadTask(w, r)
	if !ok {
		return
	}

	s.writeTask(w, r, http.StatusOK, state)
}

// handleAssignInput binds a concrete file to a declared input parameter.
// PUT /api/v1/tasks/{id}/inputs/{name}
func (s *Server) handleAssignInput(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req AssignFileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	state, ok := s.loadTask(w, r)
	if !ok {
		return
	}

	view, err := task.RestoreAssign(state)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	file := taskfile.InputFile{
		ExternalID: identity.ExternalID(req.ExternalID),
		Owner:      s.resolveUserList(req.Owners),
	}

	if err := view.AssignInput(s.authenticatedRequester(r, req.Requester), name, file); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.persistAndRespond(w, r, view.ToState())
}

// handleAssignOutput binds a concrete file to a declared output parameter.
// PUT /api/v1/tasks/{id}/outputs/{name}
func (s *Server) handleAssignOutput(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req AssignFileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	state, ok := s.loadTask(w, r)
	if !ok {
		return
	}

	view, err := task.RestoreAssign(state)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	file := taskfile.OutputFile{
		ExternalID: identity.ExternalID(req.ExternalID),
		Owner:      s.resolveUserList(req.Owners),
	}

	if err := view.AssignOutput(s.authenticatedRequester(r, req.Requester), name, file); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.persistAndRespond(w, r, view.ToState())
}

// handleApprove records a participant's approval.
// POST /api/v1/tasks/{id}/approve
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	state, ok := s.loadTask(w, r)
	if !ok {
		return
	}

	view, err := task.RestoreApprove(state)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := view.Approve(s.authenticatedRequester(r, req.Requester)); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.persistAndRespond(w, r, view.ToState())
}

// handleStage stages an approved task for dispatch to its executor.
// POST /api/v1/tasks/{id}/stage
func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	var req StageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	state, ok := s.loadTask(w, r)
	if !ok {
		return
	}

	view, err := task.RestoreStage(state)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	fn, err := s.functions.Get(r.Context(), state.FunctionID)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	staged, err := view.StageForRunning(s.authenticatedRequester(r, req.Requester), fn)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	next := view.ToState()
	if err := s.taskStore.Put(r.Context(), next); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.dispatcher.Dispatch(r.Context(), staged); err != nil {
		s.logger.Error("failed to dispatch staged task",
			slog.String("task_id", next.TaskID.String()),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("task staged but dispatch failed"))

		return
	}

	s.writeTask(w, r, http.StatusOK, next)
}

// handleAck records that the executor has picked up a staged task,
// advancing it from Staged to Running.
// POST /api/v1/tasks/{id}/ack
func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadTask(w, r)
	if !ok {
		return
	}

	view, err := task.RestoreRun(state)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.persistAndRespond(w, r, view.ToState())
}

// handleUpdateOutputCMAC attaches an authentication tag to a finished output.
// POST /api/v1/tasks/{id}/outputs/{name}/cmac
func (s *Server) handleUpdateOutputCMAC(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req UpdateOutputCMACRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	state, ok := s.loadTask(w, r)
	if !ok {
		return
	}

	view, err := task.RestoreFinish(state)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if _, err := view.UpdateOutputCMAC(name, taskfile.FileAuthTag(req.AuthTag)); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.taskStore.Put(r.Context(), view.State); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeTask(w, r, http.StatusOK, view.State)
}

// handleUpdateResult records a task's final outcome.
// POST /api/v1/tasks/{id}/result
func (s *Server) handleUpdateResult(w http.ResponseWriter, r *http.Request) {
	var req UpdateResultRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	state, ok := s.loadTask(w, r)
	if !ok {
		return
	}

	view, err := task.RestoreFinish(state)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var result task.Result

	switch req.Kind {
	case "success":
		result = task.NewSuccessResult(req.Success)
	case "failure":
		result = task.NewFailureResult(req.Failure)
	default:
		WriteErrorResponse(w, r, s.logger, BadRequest("kind must be \"success\" or \"failure\""))

		return
	}

	view.UpdateResult(result)

	s.persistAndRespond(w, r, view.ToState())
}

// authenticatedRequester resolves the UserID an operation should act as.
// When plugin authentication is active (AuthenticatePlugin has enriched
// the request context), the caller's authenticated identity always wins
// over whatever the request body claims - an authenticated caller cannot
// assert an arbitrary requester string and act as someone else. Only when
// authentication is disabled (no APIKeyStore configured, matching
// NewServer's documented auth-optional mode) is the body-supplied value
// resolved and trusted.
func (s *Server) authenticatedRequester(r *http.Request, bodyRequester string) identity.UserID {
	if pluginCtx, ok := middleware.GetPluginContext(r.Context()); ok {
		return s.resolveUser(pluginCtx.UserID)
	}

	return s.resolveUser(bodyRequester)
}

// loadTask parses the {id} path value and loads its current TaskState,
// writing an error response and returning ok=false on failure.
func (s *Server) loadTask(w http.ResponseWriter, r *http.Request) (task.State, bool) {
	id, err := identity.ParseTaskID(r.PathValue("id"))
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("invalid task id"))

		return task.State{}, false
	}

	state, err := s.taskStore.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return task.State{}, false
	}

	return state, true
}

// persistAndRespond writes state and, on success, responds with its
// current TaskResponse view.
func (s *Server) persistAndRespond(w http.ResponseWriter, r *http.Request, state task.State) {
	if err := s.taskStore.Put(r.Context(), state); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeTask(w, r, http.StatusOK, state)
}

// decodeJSON decodes r's JSON body into dst, writing a 400 response and
// returning false on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer func() { _ = r.Body.Close() }()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("invalid request body: "+err.Error()))

		return false
	}

	return true
}

// writeTask writes state as a TaskResponse with the given status code.
func (s *Server) writeTask(w http.ResponseWriter, r *http.Request, status int, state task.State) {
	data, err := json.Marshal(newTaskResponse(state))
	if err != nil {
		s.logger.Error("failed to encode task response", slog.String("error", err.Error()))
		WriteErrorResponse(w, r, s.logger, InternalServerError("failed to encode task response"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write task response", slog.String("error", err.Error()))
	}
}

// writeError maps a domain error to its RFC 7807 Problem Detail response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound), errors.Is(err, function.ErrNotFound):
		WriteErrorResponse(w, r, s.logger, NotFound(err.Error()))
	case errors.Is(err, task.ErrFunctionArgumentsMismatch),
		errors.Is(err, task.ErrInputKeysMismatch),
		errors.Is(err, task.ErrOutputKeysMismatch),
		errors.Is(err, taskfile.ErrUnknownParameter),
		errors.Is(err, taskfile.ErrOwnerMismatch),
		errors.Is(err, taskfile.ErrAlreadyAssigned),
		errors.Is(err, taskfile.ErrNotAssigned):
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))
	case errors.Is(err, task.ErrRequesterNotOwner),
		errors.Is(err, task.ErrUnexpectedApprover),
		errors.Is(err, task.ErrNotTaskCreator):
		WriteErrorResponse(w, r, s.logger, NewProblemDetail(http.StatusForbidden, "Forbidden", err.Error()))
	case errors.Is(err, task.ErrCannotRestore), errors.Is(err, taskfile.ErrCMACAlreadySet):
		WriteErrorResponse(w, r, s.logger, NewProblemDetail(http.StatusConflict, "Conflict", err.Error()))
	default:
		s.logger.Error("unhandled domain error", slog.String("error", err.Error()))
		WriteErrorResponse(w, r, s.logger, InternalServerError(err.Error()))
	}
}
