// package round runs ranking operations against storage and builds reports.
//
// Every write starts from the confirmed rank map in storage, computes the next
// map with package ranking, and ships the difference to storage as one batch.
// If storage refuses the batch, the computed map is thrown away; the caller
// can recompute from storage and retry.
//
// Reports are built from a snapshot of finalized users and cached per round.

package round

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ts4z/shortlist/dep"
	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/paytable"
	"github.com/ts4z/shortlist/ranking"
	"github.com/ts4z/shortlist/reportcache"
	"github.com/ts4z/shortlist/state"
	"github.com/ts4z/shortlist/varz"
)

var (
	batchesApplied  = varz.NewInt("batchesApplied")
	batchesRejected = varz.NewInt("batchesRejected")
	invariantErrors = varz.NewInt("invariantErrors")
	finalizations   = varz.NewInt("finalizations")
)

// Clock gets the current time.  ts.Clock implements this.
type Clock interface {
	Now() time.Time
}

// PaytableFetcher does what it says on the tin.
type PaytableFetcher interface {
	FetchPaytableByName(name string) (*paytable.Paytable, error)
}

type Manager struct {
	clock           Clock
	storage         state.Storage
	paytables       PaytableFetcher
	reports         reportcache.Cache
	defaultPaytable string
}

func NewManager(clock Clock, storage state.Storage, paytables PaytableFetcher, reports reportcache.Cache, defaultPaytable string) *Manager {
	return &Manager{
		clock:           dep.Required(clock),
		storage:         dep.Required(storage),
		paytables:       dep.Required(paytables),
		reports:         dep.Required(reports),
		defaultPaytable: defaultPaytable,
	}
}

func (m *Manager) category(ctx context.Context, scope model.RankScope) (*model.Category, error) {
	r, err := m.storage.FetchRound(ctx, scope.Round)
	if err != nil {
		return nil, err
	}
	c, err := r.Category(scope.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", state.ErrNotFound, err)
	}
	return c, nil
}

// RankMap returns the user's confirmed rank map for scope.
func (m *Manager) RankMap(ctx context.Context, user model.UserID, scope model.RankScope) (*ranking.RankMap, error) {
	c, err := m.category(ctx, scope)
	if err != nil {
		return nil, err
	}
	sels, err := m.storage.FetchSelections(ctx, user, scope)
	if err != nil {
		return nil, fmt.Errorf("can't fetch selections for %s in %s: %w", user, scope, err)
	}
	rm, err := ranking.FromSelections(scope, c, sels)
	if err != nil {
		m.logInvariant(err)
		return nil, err
	}
	return rm, nil
}

func (m *Manager) logInvariant(err error) {
	var ie *ranking.InvariantError
	if errors.As(err, &ie) {
		invariantErrors.Add(1)
		log.Printf("INVARIANT VIOLATION: %v", ie)
	}
}

// mutate loads the confirmed map, applies op and writes the difference.  The
// returned map is nil unless storage accepted the batch.
func (m *Manager) mutate(ctx context.Context, user model.UserID, scope model.RankScope, what string,
	op func(*ranking.RankMap) (*ranking.RankMap, error)) (*ranking.RankMap, error) {
	fin, err := m.storage.IsFinalized(ctx, user, scope.Round)
	if err != nil {
		return nil, err
	}
	if fin {
		return nil, fmt.Errorf("can't %s: %w", what, state.ErrFinalized)
	}

	cur, err := m.RankMap(ctx, user, scope)
	if err != nil {
		return nil, err
	}
	next, err := op(cur)
	if err != nil {
		m.logInvariant(err)
		return nil, fmt.Errorf("can't %s: %w", what, err)
	}

	upserts, deletes := cur.Diff(next)
	b := &model.RankBatch{
		ID:       uuid.NewString(),
		User:     user,
		Scope:    scope,
		Upserts:  upserts,
		Deletes:  deletes,
		StagedAt: m.clock.Now(),
	}
	if b.Empty() {
		return next, nil
	}
	if err := m.storage.ApplyRankBatch(ctx, b); err != nil {
		batchesRejected.Add(1)
		log.Printf("batch %s (%s for %s in %s) not applied: %v", b.ID, what, user, scope, err)
		return nil, fmt.Errorf("can't %s: batch not applied: %w", what, err)
	}
	batchesApplied.Add(1)
	return next, nil
}

func (m *Manager) AssignRank(ctx context.Context, user model.UserID, scope model.RankScope, cand model.CandidateID, r model.Rank) (*ranking.RankMap, error) {
	return m.mutate(ctx, user, scope, "assign rank", func(rm *ranking.RankMap) (*ranking.RankMap, error) {
		return rm.Assign(cand, r)
	})
}

func (m *Manager) ClearRank(ctx context.Context, user model.UserID, scope model.RankScope, cand model.CandidateID) (*ranking.RankMap, error) {
	return m.mutate(ctx, user, scope, "clear rank", func(rm *ranking.RankMap) (*ranking.RankMap, error) {
		return rm.Clear(cand)
	})
}

func (m *Manager) Select(ctx context.Context, user model.UserID, scope model.RankScope, cand model.CandidateID) (*ranking.RankMap, error) {
	return m.mutate(ctx, user, scope, "select", func(rm *ranking.RankMap) (*ranking.RankMap, error) {
		return rm.Select(cand)
	})
}

func (m *Manager) Deselect(ctx context.Context, user model.UserID, scope model.RankScope, cand model.CandidateID) (*ranking.RankMap, error) {
	return m.mutate(ctx, user, scope, "deselect", func(rm *ranking.RankMap) (*ranking.RankMap, error) {
		return rm.Deselect(cand)
	})
}

// Reorder applies a drag from index from to index to of order, the visual
// order the client was showing.  It returns the new visual order along with
// the confirmed map.
func (m *Manager) Reorder(ctx context.Context, user model.UserID, scope model.RankScope, order []model.CandidateID, from, to int) ([]model.CandidateID, *ranking.RankMap, error) {
	var moved []model.CandidateID
	rm, err := m.mutate(ctx, user, scope, "reorder", func(rm *ranking.RankMap) (*ranking.RankMap, error) {
		o, next, err := rm.Reorder(order, from, to)
		moved = o
		return next, err
	})
	if err != nil {
		return nil, nil, err
	}
	return moved, rm, nil
}

// Finalize freezes every selection the user has in round.
func (m *Manager) Finalize(ctx context.Context, user model.UserID, round model.RoundID) error {
	if err := m.storage.Finalize(ctx, user, round, m.clock.Now()); err != nil {
		return err
	}
	finalizations.Add(1)
	log.Printf("user %s finalized round %s", user, round)
	m.reports.CacheInvalidate(ctx, round)
	return nil
}
