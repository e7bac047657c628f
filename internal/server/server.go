/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package server exposes the visualization pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qvcti/visualization-api/internal/chart"
	"github.com/qvcti/visualization-api/internal/config"
	"github.com/qvcti/visualization-api/internal/dataset"
	"github.com/qvcti/visualization-api/internal/viz"
)

// Server wires the HTTP routes to the visualization service.
type Server struct {
	service *viz.Service
	cfg     config.Config
	logger  *zap.Logger
}

func New(service *viz.Service, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{service: service, cfg: cfg, logger: logger}
}

// Handler builds the route table. Every route goes through the request-ID,
// logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/visualize/supported-keys", s.handleSupportedKeys)
	mux.HandleFunc("POST /api/visualize/{chart_key}", s.handleVisualize)
	return s.withRequestID(s.withLogging(s.withCORS(mux)))
}

// ListenAndServe blocks serving HTTP on the configured address.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", zap.String("addr", s.cfg.Server.Addr))
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleSupportedKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"supported_keys": chart.Keys()})
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	chartKey := r.PathValue("chart_key")

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Limits.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, r, &dataset.PayloadTooLargeError{
				Msg: fmt.Sprintf("upload exceeds %d bytes", s.cfg.Limits.MaxUploadBytes),
			})
			return
		}
		s.writeError(w, r, &dataset.SchemaError{Msg: "request is not valid multipart form data"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, &dataset.SchemaError{Msg: `missing "file" form field`})
		return
	}
	defer file.Close()
	payload, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, r, &dataset.PayloadTooLargeError{
				Msg: fmt.Sprintf("upload exceeds %d bytes", s.cfg.Limits.MaxUploadBytes),
			})
			return
		}
		s.writeError(w, r, fmt.Errorf("reading upload: %w", err))
		return
	}

	var filters []dataset.Predicate
	if raw := r.FormValue("filters"); raw != "" {
		filters, err = dataset.ParsePredicates([]byte(raw))
		if err != nil {
			s.writeError(w, r, &dataset.FilterError{Msg: "filters field is not a valid JSON predicate array"})
			return
		}
	}

	cfg := chart.Config{}
	if raw := r.FormValue("config"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			s.writeError(w, r, &dataset.SchemaError{Msg: "config field is not a valid JSON object"})
			return
		}
	}

	resp, err := s.service.Generate(r.Context(), viz.Request{
		ChartKey: chartKey,
		Filename: header.Filename,
		Payload:  payload,
		Filters:  filters,
		Config:   cfg,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// kinded is the error taxonomy surface: every pipeline error exposes a
// stable machine-readable kind.
type kinded interface {
	error
	Kind() string
}

type errorBody struct {
	ErrorKind     string   `json:"error_kind"`
	Message       string   `json:"message"`
	Detail        string   `json:"detail,omitempty"`
	SupportedKeys []string `json:"supported_keys,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ke kinded
	if !errors.As(err, &ke) {
		s.logger.Error("unexpected failure", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{
			ErrorKind: "internal_error",
			Message:   "internal server error",
		})
		return
	}

	status := http.StatusBadRequest
	body := errorBody{ErrorKind: ke.Kind(), Message: ke.Error()}
	switch ke.Kind() {
	case "unknown_chart":
		status = http.StatusNotFound
		var uc *chart.UnknownChartError
		if errors.As(err, &uc) {
			body.SupportedKeys = uc.Supported
		}
	case "payload_too_large":
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the request identifier the middleware attached, or ""
// outside a request scope.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
