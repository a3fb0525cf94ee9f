// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danielhkuo/one-vote/engine"
	"github.com/danielhkuo/one-vote/models"
	"github.com/danielhkuo/one-vote/sweep"
	"github.com/danielhkuo/one-vote/txn"
)

// MemStore is an in-memory engine.Store (and sweep.Store) for tests.
// Transactions run through txn.Execute against a cloned state snapshot
// that is swapped in on success, so an aborted attempt never leaves
// partial writes behind. Attempt failures can be injected to exercise
// the retry path.
type MemStore struct {
	mu     sync.Mutex
	voters map[string]models.Voter
	items  map[string]models.Item
	votes  map[string]models.Vote

	txOpts      txn.Options
	attempts    int
	pendingErrs []error
}

var (
	_ engine.Store = (*MemStore)(nil)
	_ sweep.Store  = (*MemStore)(nil)
)

// NewMemStore returns an empty store with a fast retry schedule.
func NewMemStore() *MemStore {
	return &MemStore{
		voters: make(map[string]models.Voter),
		items:  make(map[string]models.Item),
		votes:  make(map[string]models.Vote),
		txOpts: txn.Options{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			MaxDelay:    4 * time.Millisecond,
			Timeout:     time.Second,
		},
	}
}

// FailNextAttempts queues errors returned by upcoming transaction
// attempts, one per attempt, before any work runs.
func (m *MemStore) FailNextAttempts(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingErrs = append(m.pendingErrs, errs...)
}

// Attempts reports how many transaction attempts have started.
func (m *MemStore) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Seeding and inspection helpers

func (m *MemStore) AddItem(item models.Item) {
	if item.Status == "" {
		item.Status = models.ItemStatusActive
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
}

func (m *MemStore) AddVoter(v models.Voter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voters[v.ID] = cloneVoter(v)
}

func (m *MemStore) AddVote(v models.Vote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votes[v.ID] = cloneVote(v)
}

func (m *MemStore) RemoveItem(itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, itemID)
}

func (m *MemStore) RemoveVoter(voterID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.voters, voterID)
}

func (m *MemStore) GetItem(itemID string) (models.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	return item, ok
}

func (m *MemStore) GetVoter(voterID string) (models.Voter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voters[voterID]
	if !ok {
		return models.Voter{}, false
	}
	return cloneVoter(v), true
}

func (m *MemStore) GetVote(voteID string) (models.Vote, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[voteID]
	if !ok {
		return models.Vote{}, false
	}
	return cloneVote(v), true
}

// VotesForPair returns every vote for (voterID, itemID), any status.
func (m *MemStore) VotesForPair(voterID, itemID string) []models.Vote {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Vote
	for _, v := range m.votes {
		if v.VoterID == voterID && v.ItemID == itemID {
			out = append(out, cloneVote(v))
		}
	}
	return out
}

// engine.Store

func (m *MemStore) RunTransaction(ctx context.Context, work func(ctx context.Context, tx engine.TxStore) error, verify func(ctx context.Context) (bool, error)) error {
	return txn.Execute(ctx, m.txOpts, func(ctx context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.attempts++
		if len(m.pendingErrs) > 0 {
			err := m.pendingErrs[0]
			m.pendingErrs = m.pendingErrs[1:]
			return err
		}

		tx := &memTx{
			voters: cloneVoters(m.voters),
			items:  cloneItems(m.items),
			votes:  cloneVotes(m.votes),
		}
		if err := work(ctx, tx); err != nil {
			return err
		}
		m.voters, m.items, m.votes = tx.voters, tx.items, tx.votes
		return nil
	}, verify)
}

func (m *MemStore) VoteByID(ctx context.Context, voteID string) (*models.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[voteID]
	if !ok {
		return nil, engine.ErrNotFound
	}
	c := cloneVote(v)
	return &c, nil
}

func (m *MemStore) ItemByID(ctx context.Context, itemID string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return &item, nil
}

func (m *MemStore) AllItemStats(ctx context.Context) ([]models.ItemStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := make([]models.ItemStats, 0, len(m.items))
	for _, item := range m.items {
		stats = append(stats, models.ItemStats{ItemID: item.ID, VoteCount: item.TotalVotes})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].VoteCount != stats[j].VoteCount {
			return stats[i].VoteCount > stats[j].VoteCount
		}
		return stats[i].ItemID < stats[j].ItemID
	})
	return stats, nil
}

func (m *MemStore) VoteHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var history []models.HistoryEntry
	for _, v := range m.votes {
		if v.Status == models.VoteStatusConfirmed {
			history = append(history, models.HistoryEntry{VoterID: v.VoterID, ItemID: v.ItemID, Timestamp: v.Timestamp})
		}
	}
	sort.Slice(history, func(i, j int) bool {
		if !history[i].Timestamp.Equal(history[j].Timestamp) {
			return history[i].Timestamp.After(history[j].Timestamp)
		}
		return history[i].ItemID < history[j].ItemID
	})
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (m *MemStore) UserVotes(ctx context.Context, voterID string) ([]models.UserVote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var votes []models.UserVote
	for _, v := range m.votes {
		if v.Status == models.VoteStatusConfirmed && v.VoterID == voterID {
			votes = append(votes, models.UserVote{ItemID: v.ItemID, Timestamp: v.Timestamp})
		}
	}
	sort.Slice(votes, func(i, j int) bool {
		if !votes[i].Timestamp.Equal(votes[j].Timestamp) {
			return votes[i].Timestamp.After(votes[j].Timestamp)
		}
		return votes[i].ItemID < votes[j].ItemID
	})
	return votes, nil
}

// sweep.Store

func (m *MemStore) Voters(ctx context.Context) ([]models.Voter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Voter, 0, len(m.voters))
	for _, v := range m.voters {
		out = append(out, cloneVoter(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) Items(ctx context.Context) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) ConfirmedVotes(ctx context.Context) ([]models.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Vote
	for _, v := range m.votes {
		if v.Status == models.VoteStatusConfirmed {
			out = append(out, cloneVote(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) RejectVote(ctx context.Context, voteID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[voteID]
	if !ok {
		return engine.ErrNotFound
	}
	v.Status = models.VoteStatusRejected
	v.Version++
	v.ConflictResolution = &models.ConflictResolution{
		ResolutionType: models.ResolutionReject,
		Reason:         reason,
		ResolvedAt:     time.Now().UTC(),
	}
	m.votes[voteID] = v
	return nil
}

func (m *MemStore) SetVoterTally(ctx context.Context, voterID string, votedItems []string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voters[voterID]
	if !ok {
		return engine.ErrNotFound
	}
	v.VotedItems = append([]string(nil), votedItems...)
	v.VoteCount = count
	m.voters[voterID] = v
	return nil
}

func (m *MemStore) SetItemTally(ctx context.Context, itemID string, total, unique int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return engine.ErrNotFound
	}
	item.TotalVotes = total
	item.UniqueVoters = unique
	m.items[itemID] = item
	return nil
}

// memTx is one attempt's state snapshot.
type memTx struct {
	voters map[string]models.Voter
	items  map[string]models.Item
	votes  map[string]models.Vote
}

var _ engine.TxStore = (*memTx)(nil)

func (t *memTx) Voter(ctx context.Context, voterID string) (*models.Voter, error) {
	v, ok := t.voters[voterID]
	if !ok {
		return nil, engine.ErrNotFound
	}
	c := cloneVoter(v)
	return &c, nil
}

func (t *memTx) CreateVoter(ctx context.Context, v *models.Voter) error {
	if _, ok := t.voters[v.ID]; ok {
		return fmt.Errorf("voter %s already exists", v.ID)
	}
	t.voters[v.ID] = cloneVoter(*v)
	return nil
}

func (t *memTx) Item(ctx context.Context, itemID string) (*models.Item, error) {
	item, ok := t.items[itemID]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return &item, nil
}

func (t *memTx) InsertVote(ctx context.Context, v *models.Vote) error {
	if _, ok := t.votes[v.ID]; ok {
		return fmt.Errorf("vote %s already exists", v.ID)
	}
	t.votes[v.ID] = cloneVote(*v)
	return nil
}

func (t *memTx) SetVoteStatus(ctx context.Context, voteID string, fromVersion int, status string, res *models.ConflictResolution) error {
	v, ok := t.votes[voteID]
	if !ok {
		return engine.ErrNotFound
	}
	if v.Version != fromVersion {
		return fmt.Errorf("vote %s version %d does not match %d", voteID, v.Version, fromVersion)
	}
	if status == models.VoteStatusConfirmed {
		// Emulates the partial unique index on confirmed votes; in the
		// real datastore this surfaces as a retryable duplicate-key error.
		for _, other := range t.votes {
			if other.ID != voteID && other.VoterID == v.VoterID && other.ItemID == v.ItemID &&
				other.Status == models.VoteStatusConfirmed {
				return txn.MarkTransient(fmt.Errorf("duplicate confirmed vote for %s/%s", v.VoterID, v.ItemID))
			}
		}
	}
	v.Status = status
	v.Version++
	if res != nil {
		cr := *res
		v.ConflictResolution = &cr
	}
	t.votes[voteID] = v
	return nil
}

func (t *memTx) ConfirmedVote(ctx context.Context, voterID, itemID, excludeVoteID string) (*models.Vote, error) {
	for _, v := range t.votes {
		if v.ID != excludeVoteID && v.VoterID == voterID && v.ItemID == itemID &&
			v.Status == models.VoteStatusConfirmed {
			c := cloneVote(v)
			return &c, nil
		}
	}
	return nil, engine.ErrNotFound
}

func (t *memTx) ApplyVoterVote(ctx context.Context, voterID, itemID string, at time.Time) error {
	v, ok := t.voters[voterID]
	if !ok {
		return engine.ErrNotFound
	}
	present := false
	for _, id := range v.VotedItems {
		if id == itemID {
			present = true
			break
		}
	}
	if !present {
		v.VotedItems = append(append([]string(nil), v.VotedItems...), itemID)
		v.VoteCount++
	}
	v.LastVoteAt = &at
	t.voters[voterID] = v
	return nil
}

func (t *memTx) ApplyItemVote(ctx context.Context, itemID string, at time.Time) error {
	item, ok := t.items[itemID]
	if !ok {
		return engine.ErrNotFound
	}
	item.TotalVotes++
	item.UniqueVoters++
	item.LastVoteAt = &at
	t.items[itemID] = item
	return nil
}

// clone helpers keep snapshot state from aliasing live state

func cloneVoter(v models.Voter) models.Voter {
	v.VotedItems = append([]string(nil), v.VotedItems...)
	if v.LastVoteAt != nil {
		at := *v.LastVoteAt
		v.LastVoteAt = &at
	}
	return v
}

func cloneVote(v models.Vote) models.Vote {
	if v.ConflictResolution != nil {
		cr := *v.ConflictResolution
		v.ConflictResolution = &cr
	}
	return v
}

func cloneVoters(in map[string]models.Voter) map[string]models.Voter {
	out := make(map[string]models.Voter, len(in))
	for k, v := range in {
		out[k] = cloneVoter(v)
	}
	return out
}

func cloneItems(in map[string]models.Item) map[string]models.Item {
	out := make(map[string]models.Item, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneVotes(in map[string]models.Vote) map[string]models.Vote {
	out := make(map[string]models.Vote, len(in))
	for k, v := range in {
		out[k] = cloneVote(v)
	}
	return out
}
