// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sweep

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/one-vote/cache"
	"github.com/danielhkuo/one-vote/models"
)

// Store is the datastore surface the validator needs: full snapshots of
// the three collections plus the repair writes.
type Store interface {
	Voters(ctx context.Context) ([]models.Voter, error)
	Items(ctx context.Context) ([]models.Item, error)
	ConfirmedVotes(ctx context.Context) ([]models.Vote, error)

	RejectVote(ctx context.Context, voteID, reason string) error
	SetVoterTally(ctx context.Context, voterID string, votedItems []string, count int) error
	SetItemTally(ctx context.Context, itemID string, total, unique int) error
}

// Report summarizes one sweep pass.
type Report struct {
	VotersChecked int
	ItemsChecked  int
	VotesChecked  int

	OrphanedVotes int
	VoterRepairs  int
	ItemRepairs   int
	Errors        int

	Elapsed time.Duration
}

// Repairs is the total number of corrections applied.
func (r Report) Repairs() int {
	return r.OrphanedVotes + r.VoterRepairs + r.ItemRepairs
}

// Validator re-derives the engine's invariants from the confirmed vote
// set and repairs drift the online path could not prevent by
// construction (documents deleted out-of-band, interrupted best-effort
// updates). It runs out-of-band, never on the request path; its
// corrections are best-effort and always logged.
type Validator struct {
	store    Store
	results  *cache.Cache // optional; cleared after repairs
	interval time.Duration
}

func New(store Store, results *cache.Cache, interval time.Duration) *Validator {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Validator{store: store, results: results, interval: interval}
}

// Run sweeps on the configured interval until ctx is done.
func (v *Validator) Run(ctx context.Context) {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := v.RunOnce(ctx); err != nil {
				slog.Error("consistency sweep failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single reconciliation pass.
func (v *Validator) RunOnce(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report

	voters, err := v.store.Voters(ctx)
	if err != nil {
		return report, err
	}
	items, err := v.store.Items(ctx)
	if err != nil {
		return report, err
	}
	votes, err := v.store.ConfirmedVotes(ctx)
	if err != nil {
		return report, err
	}
	report.VotersChecked = len(voters)
	report.ItemsChecked = len(items)
	report.VotesChecked = len(votes)

	voterIDs := make(map[string]bool, len(voters))
	for _, voter := range voters {
		voterIDs[voter.ID] = true
	}
	itemIDs := make(map[string]bool, len(items))
	for _, item := range items {
		itemIDs[item.ID] = true
	}

	// Orphaned votes: the voter or item was deleted out-of-band after
	// the vote confirmed. Reject the vote and let the recount below
	// back its contribution out of the aggregates.
	live := votes[:0]
	for _, vote := range votes {
		reason := ""
		switch {
		case !voterIDs[vote.VoterID]:
			reason = "voter no longer exists"
		case !itemIDs[vote.ItemID]:
			reason = "item no longer exists"
		default:
			live = append(live, vote)
			continue
		}

		report.OrphanedVotes++
		if err := v.store.RejectVote(ctx, vote.ID, reason); err != nil {
			report.Errors++
			slog.Error("failed to reject orphaned vote", "vote_id", vote.ID, "error", err)
			continue
		}
		slog.Warn("orphaned vote rejected",
			"vote_id", vote.ID,
			"voter_id", vote.VoterID,
			"item_id", vote.ItemID,
			"reason", reason,
		)
	}

	itemsByVoter := make(map[string][]string)
	countByItem := make(map[string]int)
	for _, vote := range live {
		itemsByVoter[vote.VoterID] = append(itemsByVoter[vote.VoterID], vote.ItemID)
		countByItem[vote.ItemID]++
	}

	// Every votedItems entry must correspond to exactly one confirmed
	// vote, and the counter must match the set.
	for _, voter := range voters {
		expected := itemsByVoter[voter.ID]
		sort.Strings(expected)
		if sameSet(voter.VotedItems, expected) && voter.VoteCount == len(expected) {
			continue
		}

		report.VoterRepairs++
		if err := v.store.SetVoterTally(ctx, voter.ID, expected, len(expected)); err != nil {
			report.Errors++
			slog.Error("failed to repair voter tally", "voter_id", voter.ID, "error", err)
			continue
		}
		slog.Warn("voter tally repaired",
			"voter_id", voter.ID,
			"vote_count", len(expected),
			"was", voter.VoteCount,
		)
	}

	// totalVotes and uniqueVoters both track the confirmed-vote count
	// (one voter contributes exactly one vote per item).
	for _, item := range items {
		n := countByItem[item.ID]
		if item.TotalVotes == n && item.UniqueVoters == n {
			continue
		}

		report.ItemRepairs++
		if err := v.store.SetItemTally(ctx, item.ID, n, n); err != nil {
			report.Errors++
			slog.Error("failed to repair item tally", "item_id", item.ID, "error", err)
			continue
		}
		slog.Warn("item tally repaired",
			"item_id", item.ID,
			"total_votes", n,
			"was", item.TotalVotes,
		)
	}

	// Repaired aggregates make every cached read suspect; entries are
	// cheap to recompute, so drop them all.
	if report.Repairs() > 0 && v.results != nil {
		v.results.Clear()
	}

	report.Elapsed = time.Since(start)
	slog.Info("consistency sweep complete",
		"voters", humanize.Comma(int64(report.VotersChecked)),
		"items", humanize.Comma(int64(report.ItemsChecked)),
		"votes", humanize.Comma(int64(report.VotesChecked)),
		"orphaned", report.OrphanedVotes,
		"repaired", report.Repairs(),
		"errors", report.Errors,
		"elapsed_ms", report.Elapsed.Milliseconds(),
	)
	return report, nil
}

// sameSet compares two id lists as sets.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
