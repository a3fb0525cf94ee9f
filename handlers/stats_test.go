// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/one-vote/models"
	"github.com/danielhkuo/one-vote/testutil"
)

// seedVotes casts confirmed votes through the engine so tallies and
// vote documents stay consistent.
func seedVotes(t *testing.T, handler *VoteHandler, pairs [][2]string) {
	t.Helper()
	for _, pair := range pairs {
		w := httptest.NewRecorder()
		handler.SubmitVote(w, testutil.MakeRequest("POST", "/votes", models.SubmitVoteRequest{
			VoterID: pair[0],
			ItemID:  pair[1],
		}, nil))
		testutil.AssertStatus(t, w, 201)
	}
}

func TestAllItemStats(t *testing.T) {
	eng, store := newTestEngine()
	store.AddItem(testutil.ActiveItem("1", "owner1"))
	store.AddItem(testutil.ActiveItem("2", "owner2"))
	seedVotes(t, NewVoteHandler(eng), [][2]string{
		{"Alice", "1"},
		{"Bob", "1"},
		{"Alice", "2"},
	})
	handler := NewStatsHandler(eng)

	w := httptest.NewRecorder()
	handler.AllItemStats(w, testutil.MakeRequest("GET", "/items/stats", nil, nil))

	testutil.AssertStatus(t, w, 200)

	var stats []models.ItemStats
	testutil.AssertJSON(t, w, &stats)
	if len(stats) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(stats))
	}

	counts := map[string]int{}
	for _, s := range stats {
		counts[s.ItemID] = s.VoteCount
	}
	if counts["1"] != 2 || counts["2"] != 1 {
		t.Errorf("Expected counts 2/1, got %v", counts)
	}
}

func TestItemStats(t *testing.T) {
	eng, store := newTestEngine()
	store.AddItem(testutil.ActiveItem("1", "owner1"))
	seedVotes(t, NewVoteHandler(eng), [][2]string{{"Alice", "1"}})
	handler := NewStatsHandler(eng)

	req := testutil.MakeRequest("GET", "/items/1/stats", nil, nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()

	handler.ItemStats(w, req)

	testutil.AssertStatus(t, w, 200)

	var stats models.ItemStats
	testutil.AssertJSON(t, w, &stats)
	if stats.ItemID != "1" || stats.VoteCount != 1 {
		t.Errorf("Expected item 1 with 1 vote, got %+v", stats)
	}
}

func TestItemStats_NotFound(t *testing.T) {
	eng, _ := newTestEngine()
	handler := NewStatsHandler(eng)

	req := testutil.MakeRequest("GET", "/items/missing/stats", nil, nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	handler.ItemStats(w, req)

	testutil.AssertStatus(t, w, 404)
}

func TestRecentVotes(t *testing.T) {
	eng, store := newTestEngine()
	store.AddItem(testutil.ActiveItem("1", "owner1"))
	store.AddItem(testutil.ActiveItem("2", "owner2"))
	seedVotes(t, NewVoteHandler(eng), [][2]string{
		{"Alice", "1"},
		{"Bob", "2"},
	})
	handler := NewStatsHandler(eng)

	w := httptest.NewRecorder()
	handler.RecentVotes(w, testutil.MakeRequest("GET", "/votes/recent", nil, nil))

	testutil.AssertStatus(t, w, 200)

	var history []models.HistoryEntry
	testutil.AssertJSON(t, w, &history)
	if len(history) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(history))
	}

	// Most recent first
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.After(history[i-1].Timestamp) {
			t.Error("Expected history ordered most recent first")
		}
	}
}

func TestRecentVotes_LimitApplied(t *testing.T) {
	eng, store := newTestEngine()
	store.AddItem(testutil.ActiveItem("1", "owner1"))
	store.AddItem(testutil.ActiveItem("2", "owner2"))
	store.AddItem(testutil.ActiveItem("3", "owner3"))
	seedVotes(t, NewVoteHandler(eng), [][2]string{
		{"Alice", "1"},
		{"Alice", "2"},
		{"Alice", "3"},
	})
	handler := NewStatsHandler(eng)

	w := httptest.NewRecorder()
	handler.RecentVotes(w, testutil.MakeRequest("GET", "/votes/recent?limit=2", nil, nil))

	testutil.AssertStatus(t, w, 200)

	var history []models.HistoryEntry
	testutil.AssertJSON(t, w, &history)
	if len(history) != 2 {
		t.Errorf("Expected 2 entries with limit=2, got %d", len(history))
	}
}

func TestRecentVotes_BadLimit(t *testing.T) {
	eng, _ := newTestEngine()
	handler := NewStatsHandler(eng)

	for _, raw := range []string{"0", "-1", "abc"} {
		w := httptest.NewRecorder()
		handler.RecentVotes(w, testutil.MakeRequest("GET", "/votes/recent?limit="+raw, nil, nil))
		testutil.AssertStatus(t, w, 400)
	}
}

func TestVoterVotes(t *testing.T) {
	eng, store := newTestEngine()
	store.AddItem(testutil.ActiveItem("1", "owner1"))
	store.AddItem(testutil.ActiveItem("2", "owner2"))
	seedVotes(t, NewVoteHandler(eng), [][2]string{
		{"Alice", "1"},
		{"Alice", "2"},
		{"Bob", "1"},
	})
	handler := NewStatsHandler(eng)

	// The display name resolves to the same identity key the votes were
	// recorded under.
	req := testutil.MakeRequest("GET", "/voters/ALICE/votes", nil, nil)
	req.SetPathValue("id", "ALICE")
	w := httptest.NewRecorder()

	handler.VoterVotes(w, req)

	testutil.AssertStatus(t, w, 200)

	var votes []models.UserVote
	testutil.AssertJSON(t, w, &votes)
	if len(votes) != 2 {
		t.Fatalf("Expected 2 votes for alice, got %d", len(votes))
	}
	for _, v := range votes {
		if v.Timestamp.IsZero() {
			t.Error("Expected vote timestamps to be set")
		}
		if time.Since(v.Timestamp) > time.Minute {
			t.Error("Expected recent timestamps")
		}
	}
}

func TestVoterVotes_UnknownVoterEmpty(t *testing.T) {
	eng, _ := newTestEngine()
	handler := NewStatsHandler(eng)

	req := testutil.MakeRequest("GET", "/voters/nobody/votes", nil, nil)
	req.SetPathValue("id", "nobody")
	w := httptest.NewRecorder()

	handler.VoterVotes(w, req)

	// Unknown voters read as an empty list, not an error
	testutil.AssertStatus(t, w, 200)

	var votes []models.UserVote
	testutil.AssertJSON(t, w, &votes)
	if len(votes) != 0 {
		t.Errorf("Expected no votes, got %d", len(votes))
	}
}
