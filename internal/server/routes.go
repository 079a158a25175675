package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cristal-orion/Reminor/internal/journal"
)

func (s *Server) handlePutEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format(journal.DateFormat)
	}
	if !journal.ValidDate(req.Date) {
		http.Error(w, `{"error":"date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, `{"error":"text required"}`, http.StatusBadRequest)
		return
	}

	if err := s.engine.WriteEntry(r.Context(), owner(r), req.Date, req.Text); err != nil {
		s.log.Error().Err(err).Str("date", req.Date).Msg("write entry")
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "date": req.Date})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !journal.ValidDate(date) {
		http.Error(w, `{"error":"date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	text, err := s.engine.GetEntry(owner(r), date)
	if errors.Is(err, journal.ErrNotFound) {
		http.Error(w, `{"error":"no entry for date"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"date": date, "text": text})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	dates, err := s.engine.Journal.Dates(owner(r), from, to)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if dates == nil {
		dates = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"count": len(dates), "dates": dates})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, `{"error":"q parameter required"}`, http.StatusBadRequest)
		return
	}

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := s.engine.Search(r.Context(), owner(r), query, limit)
	if err != nil {
		s.log.Error().Err(err).Str("query", query).Msg("search")
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("q")
	if message == "" {
		http.Error(w, `{"error":"q parameter required"}`, http.StatusBadRequest)
		return
	}

	maxChars := 4000
	if m := r.URL.Query().Get("max_chars"); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			maxChars = n
		}
	}

	text, err := s.engine.ContextForChat(r.Context(), owner(r), message, maxChars)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"context": text, "chars": len(text)})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.Rebuild(r.Context(), owner(r))
	if err != nil {
		s.log.Error().Err(err).Msg("rebuild")
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "rebuilt", "entries": n})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dir string `json:"dir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Dir == "" {
		http.Error(w, `{"error":"dir required"}`, http.StatusBadRequest)
		return
	}

	results, err := s.engine.ImportEntries(r.Context(), owner(r), req.Dir)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	imported := 0
	for _, res := range results {
		if res.Status == "imported" {
			imported++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"imported": imported,
		"total":    len(results),
		"files":    results,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Journal.Stats(owner(r), time.Now())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	gaps, err := s.db.SemanticGaps(owner(r))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total_entries": stats.TotalEntries,
		"total_words":   stats.TotalWords,
		"average_words": stats.AverageWords,
		"streak_days":   stats.CurrentStreak,
		"first_entry":   stats.FirstEntry,
		"last_entry":    stats.LastEntry,
		"semantic_gaps": len(gaps),
	})
}
