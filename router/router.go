// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/one-vote/engine"
	"github.com/danielhkuo/one-vote/handlers"
	"github.com/danielhkuo/one-vote/middleware"
)

func NewRouter(eng *engine.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	voteHandler := handlers.NewVoteHandler(eng)
	statsHandler := handlers.NewStatsHandler(eng)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Vote submission
	mux.HandleFunc("POST /votes", middleware.WithLogging(voteHandler.SubmitVote))

	// Reads (public)
	mux.HandleFunc("GET /items/stats", middleware.WithLogging(statsHandler.AllItemStats))
	mux.HandleFunc("GET /items/{id}/stats", middleware.WithLogging(statsHandler.ItemStats))
	mux.HandleFunc("GET /votes/recent", middleware.WithLogging(statsHandler.RecentVotes))
	mux.HandleFunc("GET /voters/{id}/votes", middleware.WithLogging(statsHandler.VoterVotes))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("one-vote API v1"))
	})

	return mux
}
