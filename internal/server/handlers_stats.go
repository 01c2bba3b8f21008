package server

import (
	"net/http"
	"strconv"

	"github.com/abhisek/termdojo/internal/domain"
)

// dailyWindow is the default number of days reported by /stats/daily.
const dailyWindow = 14

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	o, err := s.StudyLogs.Overview(r.Context(), s.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	days := dailyWindow
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 366 {
			respondError(w, domain.Validation("stats.daily", "days must be between 1 and 366"))
			return
		}
		days = n
	}
	daily, err := s.StudyLogs.Daily(r.Context(), s.now(), days)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, daily)
}

func (s *Server) handleTagStats(w http.ResponseWriter, r *http.Request) {
	tags, err := s.StudyLogs.TagAverages(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	d, err := s.StudyLogs.ProficiencyDistribution(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}
