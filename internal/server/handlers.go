package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

// propertiesBody is the optional body of requests that only carry overrides.
type propertiesBody struct {
	Properties map[string]string `json:"properties,omitempty"`
}

type savepointBody struct {
	TargetDirectory string            `json:"targetDirectory,omitempty"`
	Properties      map[string]string `json:"properties,omitempty"`
}

type submitBody struct {
	Job        api.JobSpec       `json:"job"`
	Properties map[string]string `json:"properties,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) deploySession(w http.ResponseWriter, r *http.Request) {
	var req api.DeployRequest
	if !readJSON(w, r, &req) {
		return
	}

	result, err := s.lifecycle.Deploy(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	switch result.Outcome {
	case api.DeployReattached:
		status = http.StatusOK
	case api.DeployIndeterminate:
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	props := map[string]string{}
	if ns := r.URL.Query().Get("namespace"); ns != "" {
		props[config.KeyNamespace] = ns
	}

	summaries, err := s.lifecycle.List(r.Context(), props)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) shutDownSession(w http.ResponseWriter, r *http.Request) {
	var body propertiesBody
	if !readJSON(w, r, &body) {
		return
	}

	resp, err := s.lifecycle.ShutDown(r.Context(), api.ShutDownRequest{
		ClusterID:  chi.URLParam(r, "clusterID"),
		Properties: body.Properties,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	if !readJSON(w, r, &body) {
		return
	}

	resp, err := s.lifecycle.Submit(r.Context(), api.SubmitRequest{
		ClusterID:  chi.URLParam(r, "clusterID"),
		Properties: body.Properties,
		Job:        body.Job,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	var body propertiesBody
	if !readJSON(w, r, &body) {
		return
	}

	resp, err := s.lifecycle.Cancel(r.Context(), api.CancelRequest{
		ClusterID:  chi.URLParam(r, "clusterID"),
		JobID:      chi.URLParam(r, "jobID"),
		Properties: body.Properties,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) triggerSavepoint(w http.ResponseWriter, r *http.Request) {
	var body savepointBody
	if !readJSON(w, r, &body) {
		return
	}

	resp, err := s.lifecycle.TriggerSavepoint(r.Context(), api.TriggerSavepointRequest{
		ClusterID:       chi.URLParam(r, "clusterID"),
		JobID:           chi.URLParam(r, "jobID"),
		TargetDirectory: body.TargetDirectory,
		Properties:      body.Properties,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// readJSON decodes an optional JSON body into v. An empty body leaves v
// untouched. It returns false after writing a 400 response.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "application/json") {
		writeJSON(w, http.StatusUnsupportedMediaType, errorBody{Error: "Content-Type must be application/json", Type: "validation"})
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error(), Type: "validation"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Gateway", "Failed to write response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case api.IsValidation(err):
		status, kind = http.StatusBadRequest, "validation"
	case api.IsSecurityPrecondition(err):
		status, kind = http.StatusPreconditionFailed, "security"
	case api.IsNotFound(err):
		status, kind = http.StatusNotFound, "not_found"
	case api.IsControlPlaneFailure(err):
		status, kind = http.StatusBadGateway, "control_plane"
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Type: kind})
}
