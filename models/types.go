// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Vote status constants
const (
	VoteStatusPending   = "pending"
	VoteStatusConfirmed = "confirmed"
	VoteStatusRejected  = "rejected"
)

// Item status constants
const (
	ItemStatusActive   = "active"
	ItemStatusInactive = "inactive"
)

// Conflict resolution types
const (
	ResolutionReject = "reject"
)

// Domain documents

// Voter is keyed by an identity key derived from the display name.
// Invariant: VoteCount == len(VotedItems) and VotedItems holds no duplicates.
type Voter struct {
	ID          string     `bson:"_id" json:"id"`
	DisplayName string     `bson:"displayName" json:"display_name"`
	VotedItems  []string   `bson:"votedItems" json:"voted_items"`
	VoteCount   int        `bson:"voteCount" json:"vote_count"`
	LastVoteAt  *time.Time `bson:"lastVoteAt,omitempty" json:"last_vote_at,omitempty"`
}

// HasVoted reports whether the voter's denormalized set already holds itemID.
func (v *Voter) HasVoted(itemID string) bool {
	for _, id := range v.VotedItems {
		if id == itemID {
			return true
		}
	}
	return false
}

// Item is the thing being voted on. The engine mutates its aggregate
// counters on confirmed votes but never creates or deletes items.
type Item struct {
	ID           string     `bson:"_id" json:"id"`
	OwnerID      string     `bson:"ownerId" json:"owner_id"`
	Status       string     `bson:"status" json:"status"`
	TotalVotes   int        `bson:"totalVotes" json:"total_votes"`
	UniqueVoters int        `bson:"uniqueVoters" json:"unique_voters"`
	LastVoteAt   *time.Time `bson:"lastVoteAt,omitempty" json:"last_vote_at,omitempty"`
}

// ConflictResolution is the audit record attached to a rejected vote.
type ConflictResolution struct {
	OriginalVoteID string    `bson:"originalVoteId,omitempty" json:"original_vote_id,omitempty"`
	ResolutionType string    `bson:"resolutionType" json:"resolution_type"`
	Reason         string    `bson:"reason,omitempty" json:"reason,omitempty"`
	ResolvedAt     time.Time `bson:"resolvedAt" json:"resolved_at"`
}

// Vote is created pending inside a transaction and transitions exactly
// once to confirmed or rejected. A corrected vote is a new record, never
// an in-place flip back.
type Vote struct {
	ID                 string              `bson:"_id" json:"id"`
	VoterID            string              `bson:"voterId" json:"voter_id"`
	ItemID             string              `bson:"itemId" json:"item_id"`
	OwnerID            string              `bson:"ownerId,omitempty" json:"owner_id,omitempty"`
	Timestamp          time.Time           `bson:"timestamp" json:"timestamp"`
	Status             string              `bson:"status" json:"status"`
	Version            int                 `bson:"version" json:"version"`
	ConflictResolution *ConflictResolution `bson:"conflictResolution,omitempty" json:"conflict_resolution,omitempty"`
}

// SubmitResult is the tagged outcome of a vote submission. A rejected
// vote is a terminal business outcome, not an error.
type SubmitResult struct {
	Status string `json:"status"` // confirmed or rejected
	VoteID string `json:"vote_id,omitempty"`
	Reason string `json:"reason,omitempty"` // set when rejected
}

// Read-path projections

type ItemStats struct {
	ItemID    string `bson:"_id" json:"item_id"`
	VoteCount int    `bson:"totalVotes" json:"vote_count"`
}

type HistoryEntry struct {
	VoterID   string    `bson:"voterId" json:"voter_id"`
	ItemID    string    `bson:"itemId" json:"item_id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type UserVote struct {
	ItemID    string    `bson:"itemId" json:"item_id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Request types

type SubmitVoteRequest struct {
	VoterID string `json:"voter_id"`
	ItemID  string `json:"item_id"`
	OwnerID string `json:"owner_id,omitempty"`
}

// Response types

type SubmitVoteResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	VoteID  string `json:"vote_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}
