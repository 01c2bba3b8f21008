package server

import (
	"net/http"
)

type promptRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.Prompts.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, prompts)
}

func (s *Server) handleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	p, err := s.Prompts.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := s.Prompts.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handlePromptTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := s.Prompts.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"title": p.Title})
}

func (s *Server) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req promptRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := s.Prompts.Update(r.Context(), id, req.Title, req.Content); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.Prompts.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSelectedPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := s.Prompts.Selected(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleSelectPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.Prompts.Select(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"selected": id})
}

type instructionRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleListInstructions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	logs, err := s.Prompts.ListInstructions(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func (s *Server) handleAppendInstruction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req instructionRequest
	if err := parseJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	in, err := s.Prompts.AppendInstruction(r.Context(), id, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, in)
}

func (s *Server) handleDeleteInstruction(w http.ResponseWriter, r *http.Request) {
	promptID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	chatID, err := pathID(r, "chatId")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.Prompts.DeleteInstruction(r.Context(), promptID, chatID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
