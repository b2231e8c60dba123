package state

// package state manages persistence.

import (
	"context"
	"errors"
	"time"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/paytable"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrFinalized        = errors.New("selections are finalized")
	ErrAlreadyFinalized = errors.New("selections were already finalized")
	ErrConflict         = errors.New("conflicting rank")
)

type Closer interface {
	Close()
}

// RoundReader is the read model: rounds, candidate pools, answer sets and the
// selections of finalized users.
type RoundReader interface {
	FetchRound(ctx context.Context, id model.RoundID) (*model.Round, error)
	FetchRoundSlugs(ctx context.Context) ([]*model.RoundSlug, error)
	FetchCandidatePool(ctx context.Context, round model.RoundID, category model.CategoryID) ([]model.Candidate, error)
	// FetchAnswerSet returns an empty set for a category not revealed yet.
	FetchAnswerSet(ctx context.Context, round model.RoundID, category model.CategoryID) (model.AnswerSet, error)
	FetchFinalizedUsers(ctx context.Context, round model.RoundID) ([]model.UserID, error)
	FetchFinalizedSelections(ctx context.Context, round model.RoundID) ([]model.RankedSelection, error)
}

// SelectionStorage is the write model for one user's selections.
type SelectionStorage interface {
	FetchSelections(ctx context.Context, user model.UserID, scope model.RankScope) ([]model.RankedSelection, error)
	IsFinalized(ctx context.Context, user model.UserID, round model.RoundID) (bool, error)

	// ApplyRankBatch applies every upsert and delete of b or none of them.
	// It fails with ErrFinalized if the user is finalized.
	ApplyRankBatch(ctx context.Context, b *model.RankBatch) error

	// Finalize freezes the user's selections for round.  It can't be undone.
	Finalize(ctx context.Context, user model.UserID, round model.RoundID, at time.Time) error
}

// RoundAdminStorage is used by the curation side: loading rounds and
// revealing answers.
type RoundAdminStorage interface {
	SaveRound(ctx context.Context, r *model.Round) error
	SaveAnswerSet(ctx context.Context, round model.RoundID, category model.CategoryID, answers model.AnswerSet) error
}

type Storage interface {
	Closer
	RoundReader
	SelectionStorage
	RoundAdminStorage
}

type PaytableStorage interface {
	Closer

	FetchPaytableByName(name string) (*paytable.Paytable, error)
	FetchPaytableSlugs() []paytable.PaytableSlug
}
