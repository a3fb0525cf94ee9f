// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/one-vote/engine"
	"github.com/danielhkuo/one-vote/middleware"
)

type StatsHandler struct {
	eng *engine.Engine
}

func NewStatsHandler(eng *engine.Engine) *StatsHandler {
	return &StatsHandler{eng: eng}
}

// AllItemStats handles GET /items/stats
func (h *StatsHandler) AllItemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.eng.AllItemStats(r.Context())
	if err != nil {
		slog.Error("failed to load item stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}

// ItemStats handles GET /items/{id}/stats
func (h *StatsHandler) ItemStats(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	if itemID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "item id is required")
		return
	}

	stats, err := h.eng.ItemStats(r.Context(), itemID)
	if errors.Is(err, engine.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("failed to load item stats", "error", err, "item_id", itemID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}

// RecentVotes handles GET /votes/recent?limit=N
func (h *StatsHandler) RecentVotes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, err := h.eng.VoteHistory(r.Context(), limit)
	if err != nil {
		slog.Error("failed to load vote history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, history)
}

// VoterVotes handles GET /voters/{id}/votes
func (h *StatsHandler) VoterVotes(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("id")
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter id is required")
		return
	}

	votes, err := h.eng.UserVotes(r.Context(), voterID)
	if err != nil {
		slog.Error("failed to load voter votes", "error", err, "voter_id", voterID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, votes)
}
