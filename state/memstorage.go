package state

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ts4z/shortlist/model"
)

type selectionKey struct {
	user      model.UserID
	scope     model.RankScope
	candidate model.CandidateID
}

type finalKey struct {
	user  model.UserID
	round model.RoundID
}

type answerKey struct {
	round    model.RoundID
	category model.CategoryID
}

// MemStorage keeps everything in process.  It enforces the same rules as
// DBStorage, so it serves both development and tests.
type MemStorage struct {
	lock       sync.Mutex
	rounds     map[model.RoundID]*model.Round
	answers    map[answerKey]model.AnswerSet
	selections map[selectionKey]model.Rank
	finalized  map[finalKey]time.Time
}

var _ Storage = &MemStorage{}

func NewMemStorage(rounds ...*model.Round) *MemStorage {
	s := &MemStorage{
		rounds:     map[model.RoundID]*model.Round{},
		answers:    map[answerKey]model.AnswerSet{},
		selections: map[selectionKey]model.Rank{},
		finalized:  map[finalKey]time.Time{},
	}
	for _, r := range rounds {
		s.rounds[r.ID] = r.Clone()
	}
	return s
}

func (s *MemStorage) Close() {}

func (s *MemStorage) round(id model.RoundID) (*model.Round, error) {
	r, ok := s.rounds[id]
	if !ok {
		return nil, fmt.Errorf("%w: round %s", ErrNotFound, id)
	}
	return r, nil
}

func (s *MemStorage) FetchRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, err := s.round(id)
	if err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

func (s *MemStorage) FetchRoundSlugs(ctx context.Context) ([]*model.RoundSlug, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	slugs := []*model.RoundSlug{}
	for _, r := range s.rounds {
		slugs = append(slugs, &model.RoundSlug{ID: r.ID, Name: r.Name})
	}
	slices.SortFunc(slugs, func(a, b *model.RoundSlug) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return slugs, nil
}

func (s *MemStorage) FetchCandidatePool(ctx context.Context, round model.RoundID, category model.CategoryID) ([]model.Candidate, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, err := s.round(round)
	if err != nil {
		return nil, err
	}
	c, err := r.Category(category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return slices.Clone(c.Pool), nil
}

func (s *MemStorage) FetchAnswerSet(ctx context.Context, round model.RoundID, category model.CategoryID) (model.AnswerSet, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return model.NewAnswerSet(s.answers[answerKey{round, category}].IDs()...), nil
}

func (s *MemStorage) FetchFinalizedUsers(ctx context.Context, round model.RoundID) ([]model.UserID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	users := []model.UserID{}
	for k := range s.finalized {
		if k.round == round {
			users = append(users, k.user)
		}
	}
	slices.Sort(users)
	return users, nil
}

// compareSelections orders by user, category, rank with unranked last, then
// candidate.
func compareSelections(a, b model.RankedSelection) int {
	if c := strings.Compare(string(a.User), string(b.User)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Scope.Category, b.Scope.Category); c != 0 {
		return c
	}
	if a.Rank != b.Rank {
		switch {
		case !a.Rank.IsRanked():
			return 1
		case !b.Rank.IsRanked():
			return -1
		}
		return cmp.Compare(a.Rank, b.Rank)
	}
	return cmp.Compare(a.Candidate, b.Candidate)
}

func (s *MemStorage) selectionsWhere(keep func(selectionKey) bool) []model.RankedSelection {
	out := []model.RankedSelection{}
	for k, r := range s.selections {
		if keep(k) {
			out = append(out, model.RankedSelection{User: k.user, Scope: k.scope, Candidate: k.candidate, Rank: r})
		}
	}
	slices.SortFunc(out, compareSelections)
	return out
}

func (s *MemStorage) FetchFinalizedSelections(ctx context.Context, round model.RoundID) ([]model.RankedSelection, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.selectionsWhere(func(k selectionKey) bool {
		_, fin := s.finalized[finalKey{k.user, round}]
		return fin && k.scope.Round == round
	}), nil
}

func (s *MemStorage) FetchSelections(ctx context.Context, user model.UserID, scope model.RankScope) ([]model.RankedSelection, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.selectionsWhere(func(k selectionKey) bool {
		return k.user == user && k.scope == scope
	}), nil
}

func (s *MemStorage) IsFinalized(ctx context.Context, user model.UserID, round model.RoundID) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.finalized[finalKey{user, round}]
	return ok, nil
}

// ApplyRankBatch stages the batch on a copy of the user's scope and only
// installs it if no rank ends up held twice.
func (s *MemStorage) ApplyRankBatch(ctx context.Context, b *model.RankBatch) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.finalized[finalKey{b.User, b.Scope.Round}]; ok {
		return fmt.Errorf("%w: user %s in round %s", ErrFinalized, b.User, b.Scope.Round)
	}

	staged := map[model.CandidateID]model.Rank{}
	for k, r := range s.selections {
		if k.user == b.User && k.scope == b.Scope {
			staged[k.candidate] = r
		}
	}
	for _, id := range b.Deletes {
		delete(staged, id)
	}
	for _, u := range b.Upserts {
		staged[u.Candidate] = u.Rank
	}
	held := map[model.Rank]model.CandidateID{}
	for id, r := range staged {
		if !r.IsRanked() {
			continue
		}
		if r < 1 {
			return fmt.Errorf("%w: batch %s: rank %d for candidate %d", ErrConflict, b.ID, r, id)
		}
		if other, dup := held[r]; dup {
			return fmt.Errorf("%w: batch %s: rank %d for %d and %d", ErrConflict, b.ID, r, other, id)
		}
		held[r] = id
	}

	for k := range s.selections {
		if k.user == b.User && k.scope == b.Scope {
			delete(s.selections, k)
		}
	}
	for id, r := range staged {
		s.selections[selectionKey{b.User, b.Scope, id}] = r
	}
	return nil
}

func (s *MemStorage) Finalize(ctx context.Context, user model.UserID, round model.RoundID, at time.Time) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	k := finalKey{user, round}
	if _, ok := s.finalized[k]; ok {
		return fmt.Errorf("%w: user %s in round %s", ErrAlreadyFinalized, user, round)
	}
	s.finalized[k] = at
	return nil
}

func (s *MemStorage) SaveRound(ctx context.Context, r *model.Round) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.rounds[r.ID] = r.Clone()
	return nil
}

func (s *MemStorage) SaveAnswerSet(ctx context.Context, round model.RoundID, category model.CategoryID, answers model.AnswerSet) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, err := s.round(round)
	if err != nil {
		return err
	}
	c, err := r.Category(category)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	for id := range answers {
		if _, ok := c.Candidate(id); !ok {
			return fmt.Errorf("%w: candidate %d in category %d", ErrNotFound, id, category)
		}
	}
	s.answers[answerKey{round, category}] = model.NewAnswerSet(answers.IDs()...)
	return nil
}
