package dbcache

import (
	"context"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/state"
	"github.com/ts4z/shortlist/varz"
)

// Rounds and answer sets change rarely and are read on every ranking
// operation and report.  Other instances learn about writes they didn't make
// through dbnotify, which calls CacheInvalidate.  Answer sets also expire,
// so a reveal whose notification was missed still shows up.  Unrevealed
// (empty) answer sets are never cached.

var (
	roundCacheHits    = varz.NewInt("roundCacheHits")
	roundCacheMisses  = varz.NewInt("roundCacheMisses")
	answerCacheHits   = varz.NewInt("answerCacheHits")
	answerCacheMisses = varz.NewInt("answerCacheMisses")
)

type answerKey struct {
	round    model.RoundID
	category model.CategoryID
}

// Storage is a read-through cache over state.Storage.  Everything it doesn't
// cache goes straight to the embedded storage.
type Storage struct {
	state.Storage

	rounds  *lru.Cache[model.RoundID, *model.Round]
	answers *expirable.LRU[answerKey, model.AnswerSet]
}

var _ state.Storage = (*Storage)(nil)

func NewStorage(size int, answerTTL time.Duration, next state.Storage) *Storage {
	rounds, err := lru.New[model.RoundID, *model.Round](size)
	if err != nil {
		log.Fatalf("failed to create round cache: %v", err)
	}
	answers := expirable.NewLRU[answerKey, model.AnswerSet](size*8, nil, answerTTL)
	return &Storage{
		Storage: next,
		rounds:  rounds,
		answers: answers,
	}
}

// FetchRound implements state.RoundReader.
func (s *Storage) FetchRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	if r, ok := s.rounds.Get(id); ok {
		roundCacheHits.Add(1)
		return r.Clone(), nil
	}
	roundCacheMisses.Add(1)
	r, err := s.Storage.FetchRound(ctx, id)
	if err != nil {
		return nil, err
	}
	s.rounds.Add(id, r.Clone())
	return r, nil
}

// FetchCandidatePool implements state.RoundReader from the cached round.
func (s *Storage) FetchCandidatePool(ctx context.Context, round model.RoundID, category model.CategoryID) ([]model.Candidate, error) {
	r, err := s.FetchRound(ctx, round)
	if err != nil {
		return nil, err
	}
	c, err := r.Category(category)
	if err != nil {
		return nil, err
	}
	return c.Pool, nil
}

// FetchAnswerSet implements state.RoundReader.
func (s *Storage) FetchAnswerSet(ctx context.Context, round model.RoundID, category model.CategoryID) (model.AnswerSet, error) {
	k := answerKey{round, category}
	if as, ok := s.answers.Get(k); ok {
		answerCacheHits.Add(1)
		return model.NewAnswerSet(as.IDs()...), nil
	}
	answerCacheMisses.Add(1)
	as, err := s.Storage.FetchAnswerSet(ctx, round, category)
	if err != nil {
		return nil, err
	}
	if len(as) > 0 {
		s.answers.Add(k, model.NewAnswerSet(as.IDs()...))
	}
	return as, nil
}

// SaveRound implements state.RoundAdminStorage.
func (s *Storage) SaveRound(ctx context.Context, r *model.Round) error {
	err := s.Storage.SaveRound(ctx, r)
	// Drop even on error; we don't know what made it to the database.
	s.CacheInvalidate(ctx, r.ID)
	return err
}

// SaveAnswerSet implements state.RoundAdminStorage.
func (s *Storage) SaveAnswerSet(ctx context.Context, round model.RoundID, category model.CategoryID, answers model.AnswerSet) error {
	err := s.Storage.SaveAnswerSet(ctx, round, category, answers)
	s.answers.Remove(answerKey{round, category})
	return err
}

// CacheInvalidate forgets everything cached about round.
func (s *Storage) CacheInvalidate(_ context.Context, round model.RoundID) {
	s.rounds.Remove(round)
	for _, k := range s.answers.Keys() {
		if k.round == round {
			s.answers.Remove(k)
		}
	}
}
