// Package server exposes a Renderer over HTTP.
//
// Routes:
//
//	GET  /health                             liveness probe
//	POST /v1/equation?mode=inline|display    body is one equation, reply is image/png
//	POST /v1/document?format=latex|markdown  body is a document, reply is JSON
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gogpu/math2img"
	"github.com/gogpu/math2img/extract"
)

// DefaultMaxBody bounds request bodies.
const DefaultMaxBody = 1 << 20

// Server routes HTTP requests to a Renderer.
type Server struct {
	router   chi.Router
	renderer *math2img.Renderer
	log      *slog.Logger
	maxBody  int64
}

// New creates the server. The caller keeps ownership of renderer.
func New(renderer *math2img.Renderer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		renderer: renderer,
		log:      log,
		maxBody:  DefaultMaxBody,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/equation", s.handleEquation)
		r.Post("/document", s.handleDocument)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleEquation(w http.ResponseWriter, r *http.Request) {
	mode := extract.Inline
	switch strings.ToLower(r.URL.Query().Get("mode")) {
	case "", "inline":
	case "display":
		mode = extract.Display
	default:
		jsonError(w, "mode must be inline or display", http.StatusBadRequest)
		return
	}

	src, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(src) == "" {
		jsonError(w, "empty equation", http.StatusBadRequest)
		return
	}

	png, err := s.renderer.RenderEquation(src, mode)
	if err != nil {
		s.log.Warn("equation failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// documentResponse is the JSON reply of /v1/document.
type documentResponse struct {
	Equations []equationJSON `json:"equations"`
	Warnings  []string       `json:"warnings,omitempty"`
	TimedOut  bool           `json:"timed_out"`
	Elapsed   string         `json:"elapsed"`
}

type equationJSON struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Line  int    `json:"line"`
	Mode  string `json:"mode"`
	Text  string `json:"text"`
	PNG   string `json:"png,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	format := extract.LaTeX
	if name := r.URL.Query().Get("format"); name != "" {
		f, err := extract.ParseFormat(name)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	doc, ok := s.readBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	batch, err := s.renderer.Render(r.Context(), doc, format)
	if batch == nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	if err != nil && !batch.TimedOut {
		// Canceled by the client; nobody is listening.
		s.log.Info("document canceled", "request_id", middleware.GetReqID(r.Context()), "error", err)
		return
	}

	resp := documentResponse{
		Equations: make([]equationJSON, 0, len(batch.Results)),
		TimedOut:  batch.TimedOut,
		Elapsed:   time.Since(start).String(),
	}
	for _, res := range batch.Results {
		eq := equationJSON{
			Index: res.Index,
			Name:  math2img.FileName(res.Index),
			Line:  res.Span.Line,
			Mode:  res.Span.Mode.String(),
			Text:  res.Span.Text,
		}
		if res.Err != nil {
			eq.Error = res.Err.Error()
		} else {
			eq.PNG = base64.StdEncoding.EncodeToString(res.PNG)
		}
		resp.Equations = append(resp.Equations, eq)
	}
	for _, warn := range batch.Warnings {
		resp.Warnings = append(resp.Warnings, warn.String())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// readBody reads the request body up to the size limit. It writes the
// error reply itself and reports whether the handler should continue.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return "", false
		}
		jsonError(w, "failed to read request body", http.StatusBadRequest)
		return "", false
	}
	return string(body), true
}

// statusFor maps renderer errors to HTTP status codes.
func statusFor(err error) int {
	var ee *math2img.EquationError
	switch {
	case errors.Is(err, math2img.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, math2img.ErrBatchTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &ee):
		if ee.Stage == math2img.StageInternal {
			return http.StatusInternalServerError
		}
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
