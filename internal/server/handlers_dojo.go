package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/abhisek/termdojo/internal/dojo"
	"github.com/abhisek/termdojo/internal/domain"
)

type startRequest struct {
	Tags []string `json:"tags"`
	// MaxQuestions accepts a number or a string; anything non-numeric
	// means no cap.
	MaxQuestions json.RawMessage `json:"maxQuestions"`
	APIKey       string          `json:"apiKey"`
	Model        string          `json:"model"`
}

func (s *Server) startOptions(req startRequest) dojo.StartOptions {
	opts := dojo.StartOptions{
		Tags:         req.Tags,
		MaxQuestions: s.DefaultMaxQuestions,
		Credential:   req.APIKey,
		Model:        req.Model,
	}
	raw := strings.TrimSpace(string(req.MaxQuestions))
	if raw != "" && raw != "null" {
		opts.MaxQuestions = dojo.ParseMaxQuestions(strings.Trim(raw, `"`))
	}
	return opts
}

type stepResponse struct {
	State   dojo.State    `json:"state"`
	Failure *errorBody    `json:"failure,omitempty"`
	Summary *dojo.Summary `json:"summary,omitempty"`
}

func newStepResponse(step dojo.Step) stepResponse {
	resp := stepResponse{State: step.State, Summary: step.Summary}
	if step.Failure != nil {
		resp.Failure = &errorBody{Error: domain.Message(step.Failure), Kind: string(domain.KindOf(step.Failure))}
	}
	return resp
}

func (s *Server) handleDojoState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Engine.State())
}

func (s *Server) handleDojoStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	st, err := s.Engine.Start(r.Context(), s.startOptions(req))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, st)
}

func (s *Server) handleDojoDraw(w http.ResponseWriter, r *http.Request) {
	step, err := s.Engine.DrawNext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newStepResponse(step))
}

func (s *Server) handleDojoReveal(w http.ResponseWriter, r *http.Request) {
	expl, err := s.Engine.RevealExplanation()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"explanation": expl})
}

type dojoFeedbackRequest struct {
	Correct *bool `json:"correct"`
}

func (s *Server) handleDojoFeedback(w http.ResponseWriter, r *http.Request) {
	var req dojoFeedbackRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Correct == nil {
		respondError(w, domain.Validation("dojo.feedback", "correct is required"))
		return
	}
	step, err := s.Engine.RecordFeedback(r.Context(), *req.Correct)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newStepResponse(step))
}

func (s *Server) handleDojoEnd(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Engine.End())
}

// runCommand executes a websocket command against the engine.
func (s *Server) runCommand(ctx context.Context, msgType string, payload json.RawMessage) error {
	switch msgType {
	case "start":
		var req startRequest
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return domain.Validation("dojo.ws", "invalid start payload")
			}
		}
		_, err := s.Engine.Start(ctx, s.startOptions(req))
		return err
	case "draw":
		_, err := s.Engine.DrawNext(ctx)
		return err
	case "reveal":
		_, err := s.Engine.RevealExplanation()
		return err
	case "feedback":
		var req dojoFeedbackRequest
		if err := json.Unmarshal(payload, &req); err != nil || req.Correct == nil {
			return domain.Validation("dojo.ws", "feedback needs {\"correct\": true|false}")
		}
		_, err := s.Engine.RecordFeedback(ctx, *req.Correct)
		return err
	case "end":
		s.Engine.End()
		return nil
	}
	return domain.Validation("dojo.ws", "unsupported message type %q", msgType)
}
