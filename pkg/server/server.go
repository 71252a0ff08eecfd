// Package server exposes the crop pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/crop   {"svgs": ["<svg ...>", ...], "size": 100, "scale": 1.05}
//	                {"svg": "<svg ...>"}
//	GET  /healthz   {"status": "ok", "build": {"version": ...}}
//
// A batch request answers {"svgs": [...]} and a single-document request
// answers {"svg": "..."}. Failures answer
//
//	{"error": {"code": "NO_OPAQUE_CONTENT", "message": "...", "index": 2}}
//
// with status 400, or 502 when the renderer failed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/svgcrop/pkg/buildinfo"
	errs "github.com/matzehuels/svgcrop/pkg/errors"
	"github.com/matzehuels/svgcrop/pkg/observability"
	"github.com/matzehuels/svgcrop/pkg/pipeline"
)

// Defaults for the request limits.
const (
	DefaultMaxBodyBytes = 8 << 20
	DefaultMaxDocuments = 256
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Server handles crop requests with a shared pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
	maxDocs int
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxBodyBytes limits the request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithMaxDocuments limits the number of documents per request.
func WithMaxDocuments(n int) Option {
	return func(s *Server) { s.maxDocs = n }
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		logger:  log.Default(),
		maxBody: DefaultMaxBodyBytes,
		maxDocs: DefaultMaxDocuments,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/crop", s.handleCrop)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves h on addr until ctx is canceled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// =============================================================================
// Handlers
// =============================================================================

type cropRequest struct {
	SVGs    []string `json:"svgs"`
	SVG     *string  `json:"svg"`
	Size    int      `json:"size"`
	Scale   float64  `json:"scale"`
	Refresh bool     `json:"refresh"`
}

type cropResponse struct {
	SVGs []string `json:"svgs,omitempty"`
	SVG  *string  `json:"svg,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
	Index   *int      `json:"index,omitempty"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleCrop(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req cropRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge,
				errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, http.StatusBadRequest, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	single := req.SVG != nil
	inputs := req.SVGs
	switch {
	case single && inputs != nil:
		s.writeError(w, r, http.StatusBadRequest, errs.New(errs.ErrCodeInvalidInput, `set either "svg" or "svgs", not both`))
		return
	case single:
		inputs = []string{*req.SVG}
	case len(inputs) == 0:
		s.writeError(w, r, http.StatusBadRequest, errs.New(errs.ErrCodeInvalidInput, `"svgs" must contain at least one document`))
		return
	case len(inputs) > s.maxDocs:
		s.writeError(w, r, http.StatusBadRequest, errs.New(errs.ErrCodeInvalidInput, "too many documents: %d (max %d)", len(inputs), s.maxDocs))
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Inputs:  inputs,
		Size:    req.Size,
		Scale:   req.Scale,
		Refresh: req.Refresh,
	})
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	if single {
		writeJSON(w, http.StatusOK, cropResponse{SVG: &result.Outputs[0]})
		return
	}
	writeJSON(w, http.StatusOK, cropResponse{SVGs: result.Outputs})
}

// statusFor maps a crop error to an HTTP status.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeRenderFailure:
		return http.StatusBadGateway
	case errs.ErrCodeInternal, "":
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	detail := errorDetail{Code: code, Message: errs.UserMessage(err)}
	if i := errs.GetIndex(err); i != errs.NoIndex {
		detail.Index = &i
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("crop failed", "request_id", w.Header().Get(RequestIDHeader), "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

// requestID propagates the caller's request id or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// accessLog logs one line per request and reports it to the HTTP hooks.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, dur)
		s.logger.Info("request",
			"id", w.Header().Get(RequestIDHeader),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur)
	})
}
