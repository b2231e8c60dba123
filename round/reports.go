package round

import (
	"context"
	"fmt"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/report"
	"github.com/ts4z/shortlist/reportcache"
)

// Snapshot reads a consistent view of round: finalized users, their
// selections, the answers revealed so far and the round's paytable.
func (m *Manager) Snapshot(ctx context.Context, id model.RoundID) (*report.Snapshot, error) {
	r, err := m.storage.FetchRound(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := m.storage.FetchFinalizedUsers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("can't fetch finalized users of %s: %w", id, err)
	}
	sels, err := m.storage.FetchFinalizedSelections(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("can't fetch finalized selections of %s: %w", id, err)
	}
	answers := map[model.CategoryID]model.AnswerSet{}
	for _, c := range r.Categories {
		as, err := m.storage.FetchAnswerSet(ctx, id, c.ID)
		if err != nil {
			return nil, fmt.Errorf("can't fetch answers of %s/%d: %w", id, c.ID, err)
		}
		answers[c.ID] = as
	}

	s := &report.Snapshot{
		Round:      r,
		Users:      users,
		Selections: sels,
		Answers:    answers,
		AsOf:       m.clock.Now(),
	}
	if len(r.ShortlistCategories()) > 0 {
		pt, err := m.paytables.FetchPaytableByName(m.paytableName(r))
		if err != nil {
			return nil, err
		}
		s.Paytable = pt
	}
	return s, nil
}

func (m *Manager) paytableName(r *model.Round) string {
	if r.Paytable != "" {
		return r.Paytable
	}
	return m.defaultPaytable
}

func build[T any](ctx context.Context, m *Manager, id model.RoundID, key string, fn func(*report.Snapshot) (*T, error)) (*T, error) {
	return reportcache.Through(ctx, m.reports, key, func() (*T, error) {
		s, err := m.Snapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		return fn(s)
	})
}

func (m *Manager) PickLeaderboard(ctx context.Context, id model.RoundID) (*report.PickLeaderboard, error) {
	return build(ctx, m, id, reportcache.Key(id, "picks"), report.BuildPickLeaderboard)
}

func (m *Manager) PrizeLeaderboard(ctx context.Context, id model.RoundID) (*report.PrizeLeaderboard, error) {
	return build(ctx, m, id, reportcache.Key(id, "prizes"), report.BuildPrizeLeaderboard)
}

func (m *Manager) Earnings(ctx context.Context, id model.RoundID, user model.UserID) (*report.UserEarnings, error) {
	return build(ctx, m, id, reportcache.Key(id, "earnings", string(user)), func(s *report.Snapshot) (*report.UserEarnings, error) {
		return report.BuildEarnings(s, user)
	})
}

func (m *Manager) Preferences(ctx context.Context, id model.RoundID) (*report.PreferenceReport, error) {
	return build(ctx, m, id, reportcache.Key(id, "preferences"), report.BuildPreferences)
}

func (m *Manager) Stats(ctx context.Context, id model.RoundID) (*report.StatsReport, error) {
	return build(ctx, m, id, reportcache.Key(id, "stats"), report.BuildStats)
}
