package round

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ts4z/shortlist/model"
)

var ErrInvalidRound = errors.New("invalid round")

func invalid(r *model.Round, f string, args ...any) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidRound, r.ID, fmt.Sprintf(f, args...))
}

// Validate checks that a round is something the ranking engine can work
// with.  Storage doesn't call this; LoadRound does.
func (m *Manager) Validate(r *model.Round) error {
	if r.ID == "" {
		return fmt.Errorf("%w: round has no id", ErrInvalidRound)
	}
	if len(r.Categories) == 0 {
		return invalid(r, "no categories")
	}
	if r.EntryFee < 0 {
		return invalid(r, "negative entry fee %d", r.EntryFee)
	}
	seen := map[model.CategoryID]bool{}
	for _, c := range r.Categories {
		if c.ID <= 0 {
			return invalid(r, "category %q has id %d", c.Slug, c.ID)
		}
		if seen[c.ID] {
			return invalid(r, "duplicate category id %d", c.ID)
		}
		seen[c.ID] = true
		if c.Slots < 1 {
			return invalid(r, "category %d has %d slots", c.ID, c.Slots)
		}
		if c.MaxSelections != 0 && c.MaxSelections < c.Slots {
			return invalid(r, "category %d allows %d selections for %d slots", c.ID, c.MaxSelections, c.Slots)
		}
		ids := map[model.CandidateID]bool{}
		for _, cand := range c.Pool {
			if ids[cand.ID] {
				return invalid(r, "category %d lists candidate %d twice", c.ID, cand.ID)
			}
			ids[cand.ID] = true
		}
	}
	if r.TopList != 0 {
		c, err := r.Category(r.TopList)
		if err != nil {
			return invalid(r, "top list: %v", err)
		}
		if c.Kind != model.KindTopList {
			return invalid(r, "top list %d is of kind %q", c.ID, c.Kind)
		}
		if _, err := r.Category(r.AnswerCategory); err != nil {
			return invalid(r, "answer category: %v", err)
		}
	}
	if len(r.ShortlistCategories()) > 0 {
		pt, err := m.paytables.FetchPaytableByName(m.paytableName(r))
		if err != nil {
			return invalid(r, "paytable: %v", err)
		}
		for _, c := range r.ShortlistCategories() {
			if c.Slots != pt.Slots {
				return invalid(r, "category %d has %d slots but paytable %q pays on %d", c.ID, c.Slots, pt.Name, pt.Slots)
			}
		}
	}
	return nil
}

// LoadRound validates and stores r, replacing any round with the same id.
func (m *Manager) LoadRound(ctx context.Context, r *model.Round) error {
	if err := m.Validate(r); err != nil {
		return err
	}
	if err := m.storage.SaveRound(ctx, r); err != nil {
		return fmt.Errorf("can't save round %s: %w", r.ID, err)
	}
	log.Printf("loaded round %s with %d categories", r.ID, len(r.Categories))
	m.reports.CacheInvalidate(ctx, r.ID)
	return nil
}

// RevealAnswers records the correct candidates of a category.
func (m *Manager) RevealAnswers(ctx context.Context, id model.RoundID, category model.CategoryID, answers model.AnswerSet) error {
	if err := m.storage.SaveAnswerSet(ctx, id, category, answers); err != nil {
		return fmt.Errorf("can't save answers for %s/%d: %w", id, category, err)
	}
	log.Printf("revealed %d answers for %s/%d", len(answers), id, category)
	m.reports.CacheInvalidate(ctx, id)
	return nil
}

func (m *Manager) ListRounds(ctx context.Context) ([]*model.RoundSlug, error) {
	return m.storage.FetchRoundSlugs(ctx)
}

func (m *Manager) Round(ctx context.Context, id model.RoundID) (*model.Round, error) {
	return m.storage.FetchRound(ctx, id)
}
