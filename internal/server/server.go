package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/termdojo/internal/dojo"
	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/metrics"
	"github.com/abhisek/termdojo/internal/quizgen"
	"github.com/abhisek/termdojo/internal/store"
)

// QuestionGenerator generates a single question.
type QuestionGenerator interface {
	Generate(ctx context.Context, req quizgen.Request) (*quizgen.Question, error)
}

// ProficiencyUpdater applies proficiency deltas.
type ProficiencyUpdater interface {
	ApplyDelta(ctx context.Context, termID int64, delta int) (int, error)
}

// Deps are the collaborators the HTTP API serves.
type Deps struct {
	Terms       store.TermRepo
	Prompts     store.PromptRepo
	StudyLogs   store.StudyLogRepo
	Generator   QuestionGenerator
	Proficiency ProficiencyUpdater
	Engine      *dojo.Engine
	Metrics     *metrics.Metrics

	// DefaultMaxQuestions applies when a dojo start request has no cap.
	DefaultMaxQuestions int
}

// Server is the termdojo JSON API.
type Server struct {
	Deps
	upgrader websocket.Upgrader
	now      func() time.Time
}

// New creates a Server.
func New(d Deps) *Server {
	return &Server{
		Deps: d,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Terms
	mux.HandleFunc("GET /terms", s.handleListTerms)
	mux.HandleFunc("POST /terms", s.handleCreateTerm)
	mux.HandleFunc("GET /terms/tags", s.handleTags)
	mux.HandleFunc("GET /terms/{id}", s.handleGetTerm)
	mux.HandleFunc("PATCH /terms/{id}", s.handleUpdateTag)
	mux.HandleFunc("DELETE /terms/{id}", s.handleDeleteTerm)
	mux.HandleFunc("PATCH /terms/{id}/proficiency", s.handleProficiency)
	mux.HandleFunc("POST /terms/{id}/feedback", s.handleQuizFeedback)
	mux.HandleFunc("POST /terms/generate-question", s.handleGenerate)

	// Prompts
	mux.HandleFunc("GET /prompts", s.handleListPrompts)
	mux.HandleFunc("POST /prompts", s.handleCreatePrompt)
	mux.HandleFunc("GET /prompts/selected", s.handleSelectedPrompt)
	mux.HandleFunc("PATCH /prompts/select/{id}", s.handleSelectPrompt)
	mux.HandleFunc("GET /prompts/{id}", s.handleGetPrompt)
	mux.HandleFunc("GET /prompts/{id}/title", s.handlePromptTitle)
	mux.HandleFunc("PATCH /prompts/{id}", s.handleUpdatePrompt)
	mux.HandleFunc("DELETE /prompts/{id}", s.handleDeletePrompt)
	mux.HandleFunc("GET /prompts/{id}/chat", s.handleListInstructions)
	mux.HandleFunc("POST /prompts/{id}/chat", s.handleAppendInstruction)
	mux.HandleFunc("DELETE /prompts/{id}/chat/{chatId}", s.handleDeleteInstruction)

	// Stats
	mux.HandleFunc("GET /stats/overview", s.handleOverview)
	mux.HandleFunc("GET /stats/daily", s.handleDaily)
	mux.HandleFunc("GET /stats/tags", s.handleTagStats)
	mux.HandleFunc("GET /stats/proficiency-dist", s.handleDistribution)

	// Dojo
	mux.HandleFunc("GET /dojo/state", s.handleDojoState)
	mux.HandleFunc("POST /dojo/start", s.handleDojoStart)
	mux.HandleFunc("POST /dojo/draw", s.handleDojoDraw)
	mux.HandleFunc("POST /dojo/reveal", s.handleDojoReveal)
	mux.HandleFunc("POST /dojo/feedback", s.handleDojoFeedback)
	mux.HandleFunc("POST /dojo/end", s.handleDojoEnd)
	mux.HandleFunc("GET /dojo/ws", s.handleDojoWS)

	return s.instrument(mux)
}

// instrument records request counts and latency by route pattern.
func (s *Server) instrument(next *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		_, pattern := next.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		s.Metrics.RecordHTTPRequest(r.Method, pattern, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError maps err to a status code and writes it.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusFor(err), errorBody{Error: domain.Message(err), Kind: string(domain.KindOf(err))})
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConfiguration:
		return http.StatusServiceUnavailable
	case domain.KindUpstream, domain.KindSchemaValidation:
		return http.StatusBadGateway
	}
	if errors.Is(err, dojo.ErrSessionClosed) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// parseJSON decodes the request body into v.
func parseJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validation("http.decode", "invalid JSON body: %v", err)
	}
	return nil
}

// pathID parses the named int64 path value.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, domain.Validation("http.path", "invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}
