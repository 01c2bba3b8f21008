package server

import (
	"net/http"

	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/proficiency"
	"github.com/abhisek/termdojo/internal/quizgen"
	"github.com/abhisek/termdojo/internal/store"
)

func (s *Server) handleListTerms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort := store.TermSort(q.Get("sort"))
	switch sort {
	case "", store.SortNewest, store.SortWord, store.SortProficiency:
	default:
		respondError(w, domain.Validation("terms.list", "unknown sort %q", sort))
		return
	}

	terms, err := s.Terms.List(r.Context(), store.TermFilter{Tags: q["tag"], Sort: sort})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, terms)
}

func (s *Server) handleGetTerm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	t, err := s.Terms.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

type createTermRequest struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

func (s *Server) handleCreateTerm(w http.ResponseWriter, r *http.Request) {
	var req createTermRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	t, err := s.Terms.Create(r.Context(), req.Word, req.Tag)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.Terms.DistinctTags(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

type updateTagRequest struct {
	Tag string `json:"tag"`
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req updateTagRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := s.Terms.UpdateTag(r.Context(), id, req.Tag); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteTerm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.Terms.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type proficiencyRequest struct {
	Delta *int `json:"delta"`
}

type proficiencyResponse struct {
	Proficiency int `json:"proficiency"`
}

func (s *Server) handleProficiency(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req proficiencyRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Delta == nil {
		respondError(w, domain.Validation("terms.proficiency", "delta must be a number"))
		return
	}
	p, err := s.Proficiency.ApplyDelta(r.Context(), id, *req.Delta)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, proficiencyResponse{Proficiency: p})
}

type feedbackRequest struct {
	Level proficiency.Level `json:"level"`
}

// handleQuizFeedback applies a manual quiz result (good, partial, miss).
func (s *Server) handleQuizFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req feedbackRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	delta, err := proficiency.LevelDelta(req.Level)
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := s.Proficiency.ApplyDelta(r.Context(), id, delta)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, proficiencyResponse{Proficiency: p})
}

type generateRequest struct {
	Word   string `json:"word"`
	APIKey string `json:"apiKey"`
	Model  string `json:"model"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	q, err := s.Generator.Generate(r.Context(), quizgen.Request{Word: req.Word, Credential: req.APIKey, Model: req.Model})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}
