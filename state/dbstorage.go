package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/ts4z/shortlist/dbutil"
	"github.com/ts4z/shortlist/model"
)

const uniqueViolation = "23505"

type DBStorage struct {
	db *sql.DB
}

var _ Storage = &DBStorage{}

func NewDBStorage(ctx context.Context, url string) (*DBStorage, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	return NewDBStorageFromDB(db), nil
}

// NewDBStorageFromDB wraps a handle from dbutil.Connect.
func NewDBStorageFromDB(db *sql.DB) *DBStorage {
	return &DBStorage{db: db}
}

func (s *DBStorage) Close() {
	s.db.Close()
}

func (s *DBStorage) DB() *sql.DB {
	return s.db
}

func (s *DBStorage) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

func candidateIDs(ids []model.CandidateID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

// lockUser serializes batches and finalization for one user and round.
func lockUser(ctx context.Context, tx *dbutil.Tx, user model.UserID, round model.RoundID) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || '/' || $2))`, string(user), string(round))
	return err
}

func isFinalized(ctx context.Context, q interface {
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
}, user model.UserID, round model.RoundID) (bool, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT count(*) FROM finalizations WHERE user_id=$1 AND round_id=$2`, string(user), string(round)).Scan(&n)
	return n > 0, err
}

type dbQuerier struct {
	db *sql.DB
}

func (q dbQuerier) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, query, args...)
}

func (s *DBStorage) FetchRoundSlugs(ctx context.Context) ([]*model.RoundSlug, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT round_id, name FROM rounds ORDER BY round_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slugs := []*model.RoundSlug{}
	for rows.Next() {
		slug := &model.RoundSlug{}
		if err := rows.Scan(&slug.ID, &slug.Name); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

func (s *DBStorage) FetchRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	r := &model.Round{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT name, top_list, answer_category, entry_fee, paytable FROM rounds WHERE round_id=$1`, string(id)).
		Scan(&r.Name, &r.TopList, &r.AnswerCategory, &r.EntryFee, &r.Paytable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: round %s", ErrNotFound, id)
	} else if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category_id, slug, name, kind, slots, max_selections
		   FROM categories WHERE round_id=$1 ORDER BY position`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		c := &model.Category{}
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Kind, &c.Slots, &c.MaxSelections); err != nil {
			return nil, err
		}
		r.Categories = append(r.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range r.Categories {
		if c.Pool, err = s.FetchCandidatePool(ctx, id, c.ID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *DBStorage) FetchCandidatePool(ctx context.Context, round model.RoundID, category model.CategoryID) ([]model.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT candidate_id, name, person FROM candidates
		  WHERE round_id=$1 AND category_id=$2 ORDER BY position`, string(round), int64(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pool := []model.Candidate{}
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Person); err != nil {
			return nil, err
		}
		pool = append(pool, c)
	}
	return pool, rows.Err()
}

func (s *DBStorage) FetchAnswerSet(ctx context.Context, round model.RoundID, category model.CategoryID) (model.AnswerSet, error) {
	var ids pq.Int64Array
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(array_agg(candidate_id), '{}') FROM answers WHERE round_id=$1 AND category_id=$2`,
		string(round), int64(category)).Scan(&ids)
	if err != nil {
		return nil, err
	}
	as := model.NewAnswerSet()
	for _, id := range ids {
		as[model.CandidateID(id)] = struct{}{}
	}
	return as, nil
}

func (s *DBStorage) FetchFinalizedUsers(ctx context.Context, round model.RoundID) ([]model.UserID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM finalizations WHERE round_id=$1 ORDER BY user_id`, string(round))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.UserID{}
	for rows.Next() {
		var u model.UserID
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanSelections(rows *sql.Rows, round model.RoundID) ([]model.RankedSelection, error) {
	defer rows.Close()
	out := []model.RankedSelection{}
	for rows.Next() {
		var sel model.RankedSelection
		var rank sql.NullInt64
		if err := rows.Scan(&sel.User, &sel.Scope.Category, &sel.Candidate, &rank); err != nil {
			return nil, err
		}
		sel.Scope.Round = round
		if rank.Valid {
			sel.Rank = model.Rank(rank.Int64)
		}
		out = append(out, sel)
	}
	return out, rows.Err()
}

func (s *DBStorage) FetchFinalizedSelections(ctx context.Context, round model.RoundID) ([]model.RankedSelection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.user_id, s.category_id, s.candidate_id, s.rank
		   FROM selections s JOIN finalizations f USING (user_id, round_id)
		  WHERE s.round_id=$1
		  ORDER BY s.user_id, s.category_id, s.rank NULLS LAST, s.candidate_id`, string(round))
	if err != nil {
		return nil, err
	}
	return scanSelections(rows, round)
}

func (s *DBStorage) FetchSelections(ctx context.Context, user model.UserID, scope model.RankScope) ([]model.RankedSelection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, category_id, candidate_id, rank FROM selections
		  WHERE user_id=$1 AND round_id=$2 AND category_id=$3
		  ORDER BY rank NULLS LAST, candidate_id`, string(user), string(scope.Round), int64(scope.Category))
	if err != nil {
		return nil, err
	}
	return scanSelections(rows, scope.Round)
}

func (s *DBStorage) IsFinalized(ctx context.Context, user model.UserID, round model.RoundID) (bool, error) {
	return isFinalized(ctx, dbQuerier{s.db}, user, round)
}

func (s *DBStorage) ApplyRankBatch(ctx context.Context, b *model.RankBatch) error {
	tx, err := dbutil.NewTx(ctx, s.db, "apply rank batch", nil)
	if err != nil {
		return err
	}
	defer tx.MaybeRollback()

	if err := lockUser(ctx, tx, b.User, b.Scope.Round); err != nil {
		return err
	}
	if fin, err := isFinalized(ctx, tx, b.User, b.Scope.Round); err != nil {
		return err
	} else if fin {
		return fmt.Errorf("%w: user %s in round %s", ErrFinalized, b.User, b.Scope.Round)
	}

	if len(b.Deletes) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM selections WHERE user_id=$1 AND round_id=$2 AND category_id=$3 AND candidate_id = ANY($4)`,
			string(b.User), string(b.Scope.Round), int64(b.Scope.Category), pq.Array(candidateIDs(b.Deletes))); err != nil {
			return err
		}
	}

	for _, u := range b.Upserts {
		rank := sql.NullInt64{Int64: int64(u.Rank), Valid: u.Rank.IsRanked()}
		if _, err := tx.Exec(ctx,
			`INSERT INTO selections (user_id, round_id, category_id, candidate_id, rank, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (user_id, round_id, category_id, candidate_id)
			 DO UPDATE SET rank = EXCLUDED.rank, updated_at = EXCLUDED.updated_at`,
			string(b.User), string(b.Scope.Round), int64(b.Scope.Category), int64(u.Candidate), rank, b.StagedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: batch %s: %v", ErrConflict, b.ID, pgErr.Message)
		}
		return err
	}
	return nil
}

func (s *DBStorage) Finalize(ctx context.Context, user model.UserID, round model.RoundID, at time.Time) error {
	tx, err := dbutil.NewTx(ctx, s.db, "finalize", nil)
	if err != nil {
		return err
	}
	defer tx.MaybeRollback()

	if err := lockUser(ctx, tx, user, round); err != nil {
		return err
	}
	res, err := tx.Exec(ctx,
		`INSERT INTO finalizations (user_id, round_id, finalized_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		string(user), string(round), at)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: user %s in round %s", ErrAlreadyFinalized, user, round)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("finalized %s in round %s", user, round)
	return nil
}

func (s *DBStorage) SaveRound(ctx context.Context, r *model.Round) error {
	tx, err := dbutil.NewTx(ctx, s.db, "save round", nil)
	if err != nil {
		return err
	}
	defer tx.MaybeRollback()

	if _, err := tx.Exec(ctx,
		`INSERT INTO rounds (round_id, name, top_list, answer_category, entry_fee, paytable)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (round_id) DO UPDATE SET name = EXCLUDED.name, top_list = EXCLUDED.top_list,
		   answer_category = EXCLUDED.answer_category, entry_fee = EXCLUDED.entry_fee, paytable = EXCLUDED.paytable`,
		string(r.ID), r.Name, int64(r.TopList), int64(r.AnswerCategory), r.EntryFee, r.Paytable); err != nil {
		return err
	}

	catIDs := make([]int64, len(r.Categories))
	for i, c := range r.Categories {
		catIDs[i] = int64(c.ID)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE round_id=$1 AND category_id <> ALL($2)`,
		string(r.ID), pq.Array(catIDs)); err != nil {
		return err
	}

	for pos, c := range r.Categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO categories (round_id, category_id, position, slug, name, kind, slots, max_selections)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (round_id, category_id) DO UPDATE SET position = EXCLUDED.position, slug = EXCLUDED.slug,
			   name = EXCLUDED.name, kind = EXCLUDED.kind, slots = EXCLUDED.slots, max_selections = EXCLUDED.max_selections`,
			string(r.ID), int64(c.ID), pos, c.Slug, c.Name, string(c.Kind), c.Slots, c.MaxSelections); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM candidates WHERE round_id=$1 AND category_id=$2 AND candidate_id <> ALL($3)`,
			string(r.ID), int64(c.ID), pq.Array(candidateIDs(c.PoolIDs()))); err != nil {
			return err
		}
		for cpos, cand := range c.Pool {
			if _, err := tx.Exec(ctx,
				`INSERT INTO candidates (round_id, category_id, candidate_id, position, name, person)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (round_id, category_id, candidate_id) DO UPDATE SET position = EXCLUDED.position,
				   name = EXCLUDED.name, person = EXCLUDED.person`,
				string(r.ID), int64(c.ID), int64(cand.ID), cpos, cand.Name, cand.Person); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (s *DBStorage) SaveAnswerSet(ctx context.Context, round model.RoundID, category model.CategoryID, answers model.AnswerSet) error {
	tx, err := dbutil.NewTx(ctx, s.db, "save answers", nil)
	if err != nil {
		return err
	}
	defer tx.MaybeRollback()

	ids := pq.Array(candidateIDs(answers.IDs()))
	if _, err := tx.Exec(ctx,
		`DELETE FROM answers WHERE round_id=$1 AND category_id=$2 AND candidate_id <> ALL($3)`,
		string(round), int64(category), ids); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO answers (round_id, category_id, candidate_id)
		 SELECT $1, $2, unnest($3::bigint[])
		 ON CONFLICT DO NOTHING`,
		string(round), int64(category), ids); err != nil {
		return err
	}
	return tx.Commit()
}
