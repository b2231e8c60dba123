package permission

import (
	"context"
	"fmt"
	"time"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/state"
)

// SelectionGate wraps storage so that users only write their own selections,
// only admins change rounds and answers, and nothing is written for a
// finalized user.  Reads pass straight through.
type SelectionGate struct {
	state.Storage
}

var _ state.Storage = &SelectionGate{}

func NewSelectionGate(next state.Storage) *SelectionGate {
	return &SelectionGate{Storage: next}
}

// ApplyRankBatch implements state.SelectionStorage.  The finalization check
// here fails fast; storage checks again inside its transaction.
func (g *SelectionGate) ApplyRankBatch(ctx context.Context, b *model.RankBatch) error {
	return requireAdminOrUserID(ctx, b.User, func() error {
		fin, err := g.Storage.IsFinalized(ctx, b.User, b.Scope.Round)
		if err != nil {
			return err
		}
		if fin {
			return fmt.Errorf("%w: user %s in round %s", state.ErrFinalized, b.User, b.Scope.Round)
		}
		return g.Storage.ApplyRankBatch(ctx, b)
	})
}

// Finalize implements state.SelectionStorage.
func (g *SelectionGate) Finalize(ctx context.Context, user model.UserID, round model.RoundID, at time.Time) error {
	return requireAdminOrUserID(ctx, user, func() error {
		return g.Storage.Finalize(ctx, user, round, at)
	})
}

// SaveRound implements state.RoundAdminStorage.
func (g *SelectionGate) SaveRound(ctx context.Context, r *model.Round) error {
	return requireAdmin(ctx, func() error {
		return g.Storage.SaveRound(ctx, r)
	})
}

// SaveAnswerSet implements state.RoundAdminStorage.
func (g *SelectionGate) SaveAnswerSet(ctx context.Context, round model.RoundID, category model.CategoryID, answers model.AnswerSet) error {
	return requireAdmin(ctx, func() error {
		return g.Storage.SaveAnswerSet(ctx, round, category, answers)
	})
}
