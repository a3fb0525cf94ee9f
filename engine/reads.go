// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"time"

	"github.com/danielhkuo/one-vote/identity"
	"github.com/danielhkuo/one-vote/models"
)

// TTL pools: shorter TTLs for hotter, cheaper-to-recompute aggregates.
const (
	statsTTL   = 30 * time.Second
	userTTL    = 60 * time.Second
	historyTTL = 15 * time.Second
)

// maxHistory caps the recent-history feed; requests for less slice the
// cached feed instead of fracturing the cache per limit.
const maxHistory = 100

const (
	keyAllItemStats = "items:stats"
	keyHistory      = "votes:recent"
)

func keyItemStats(itemID string) string { return "item:" + itemID + ":stats" }
func keyUserVotes(voterKey string) string { return "voter:" + voterKey + ":votes" }

// AllItemStats returns the vote count for every item, cached ~30s.
func (e *Engine) AllItemStats(ctx context.Context) ([]models.ItemStats, error) {
	if v, ok := e.results.Get(keyAllItemStats); ok {
		return v.([]models.ItemStats), nil
	}
	stats, err := e.store.AllItemStats(ctx)
	if err != nil {
		return nil, err
	}
	e.results.Set(keyAllItemStats, stats, statsTTL)
	return stats, nil
}

// ItemStats returns one item's vote count, cached ~30s. ErrNotFound for
// unknown items.
func (e *Engine) ItemStats(ctx context.Context, itemID string) (models.ItemStats, error) {
	key := keyItemStats(itemID)
	if v, ok := e.results.Get(key); ok {
		return v.(models.ItemStats), nil
	}
	item, err := e.store.ItemByID(ctx, itemID)
	if err != nil {
		return models.ItemStats{}, err
	}
	stats := models.ItemStats{ItemID: item.ID, VoteCount: item.TotalVotes}
	e.results.Set(key, stats, statsTTL)
	return stats, nil
}

// VoteHistory returns up to limit confirmed votes, most recent first,
// cached ~15s.
func (e *Engine) VoteHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}
	if v, ok := e.results.Get(keyHistory); ok {
		return clipHistory(v.([]models.HistoryEntry), limit), nil
	}
	history, err := e.store.VoteHistory(ctx, maxHistory)
	if err != nil {
		return nil, err
	}
	e.results.Set(keyHistory, history, historyTTL)
	return clipHistory(history, limit), nil
}

func clipHistory(h []models.HistoryEntry, limit int) []models.HistoryEntry {
	if len(h) > limit {
		return h[:limit]
	}
	return h
}

// UserVotes returns the items a voter has confirmed votes for, cached
// ~60s. Accepts a display name or an already-derived identity key.
func (e *Engine) UserVotes(ctx context.Context, voterID string) ([]models.UserVote, error) {
	voterKey := identity.NormalizeKey(voterID)
	key := keyUserVotes(voterKey)
	if v, ok := e.results.Get(key); ok {
		return v.([]models.UserVote), nil
	}
	votes, err := e.store.UserVotes(ctx, voterKey)
	if err != nil {
		return nil, err
	}
	e.results.Set(key, votes, userTTL)
	return votes, nil
}
