// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/one-vote/engine"
	"github.com/danielhkuo/one-vote/middleware"
	"github.com/danielhkuo/one-vote/models"
	"github.com/danielhkuo/one-vote/txn"
)

type VoteHandler struct {
	eng *engine.Engine
}

func NewVoteHandler(eng *engine.Engine) *VoteHandler {
	return &VoteHandler{eng: eng}
}

// SubmitVote handles POST /votes
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	// Parse request
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.eng.SubmitVote(r.Context(), req.VoterID, req.ItemID, req.OwnerID)
	if err != nil {
		var verr *engine.ValidationError
		var terr *txn.TimeoutError
		switch {
		case errors.As(err, &verr):
			middleware.FieldErrorResponse(w, http.StatusBadRequest, verr.Reason, verr.Field)
		case errors.As(err, &terr):
			slog.Error("vote submission timed out", "voter_id", req.VoterID, "item_id", req.ItemID)
			middleware.ErrorResponse(w, http.StatusGatewayTimeout, "Vote submission timed out")
		default:
			// TransactionError after exhausted retries, or a datastore
			// failure. Details stay in the log.
			slog.Error("failed to submit vote", "error", err, "voter_id", req.VoterID, "item_id", req.ItemID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		}
		return
	}

	if result.Status == models.VoteStatusRejected {
		// A rejection is a processed submission, not a failure: success
		// stays true and status/message carry the outcome.
		slog.Info("vote rejected", "voter_id", req.VoterID, "item_id", req.ItemID, "reason", result.Reason)
		middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
			Success: true,
			Status:  models.VoteStatusRejected,
			VoteID:  result.VoteID,
			Message: result.Reason,
		})
		return
	}

	slog.Info("vote confirmed", "voter_id", req.VoterID, "item_id", req.ItemID, "vote_id", result.VoteID)
	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		Success: true,
		Status:  models.VoteStatusConfirmed,
		VoteID:  result.VoteID,
	})
}
