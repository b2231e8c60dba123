package state

// Schema creates every table the DB storage needs.  It is safe to run more
// than once.
//
// Unranked selections store a NULL rank, so the rank uniqueness constraint
// only binds real ranks.  It is deferred to commit so a swap inside one batch
// doesn't trip over its own intermediate state.
const Schema = `
CREATE TABLE IF NOT EXISTS rounds (
	round_id        TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	top_list        BIGINT NOT NULL DEFAULT 0,
	answer_category BIGINT NOT NULL DEFAULT 0,
	entry_fee       INTEGER NOT NULL DEFAULT 0,
	paytable        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS categories (
	round_id       TEXT NOT NULL REFERENCES rounds ON DELETE CASCADE,
	category_id    BIGINT NOT NULL,
	position       INTEGER NOT NULL,
	slug           TEXT NOT NULL,
	name           TEXT NOT NULL,
	kind           TEXT NOT NULL,
	slots          INTEGER NOT NULL CHECK (slots >= 1),
	max_selections INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (round_id, category_id)
);

CREATE TABLE IF NOT EXISTS candidates (
	round_id     TEXT NOT NULL,
	category_id  BIGINT NOT NULL,
	candidate_id BIGINT NOT NULL,
	position     INTEGER NOT NULL,
	name         TEXT NOT NULL,
	person       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (round_id, category_id, candidate_id),
	FOREIGN KEY (round_id, category_id) REFERENCES categories ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS answers (
	round_id     TEXT NOT NULL,
	category_id  BIGINT NOT NULL,
	candidate_id BIGINT NOT NULL,
	PRIMARY KEY (round_id, category_id, candidate_id),
	FOREIGN KEY (round_id, category_id, candidate_id) REFERENCES candidates ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS selections (
	user_id      TEXT NOT NULL,
	round_id     TEXT NOT NULL,
	category_id  BIGINT NOT NULL,
	candidate_id BIGINT NOT NULL,
	rank         INTEGER CHECK (rank IS NULL OR rank >= 1),
	updated_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, round_id, category_id, candidate_id),
	CONSTRAINT selections_rank_unique UNIQUE (user_id, round_id, category_id, rank)
		DEFERRABLE INITIALLY DEFERRED
);

CREATE TABLE IF NOT EXISTS finalizations (
	user_id      TEXT NOT NULL,
	round_id     TEXT NOT NULL,
	finalized_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, round_id)
);

CREATE OR REPLACE FUNCTION shortlist_notify() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify(TG_TABLE_NAME || '_changes', json_build_object(
		'Table', TG_TABLE_NAME,
		'Round', COALESCE(NEW.round_id, OLD.round_id)
	)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS rounds_notify ON rounds;
CREATE TRIGGER rounds_notify AFTER INSERT OR UPDATE OR DELETE ON rounds
	FOR EACH ROW EXECUTE FUNCTION shortlist_notify();

DROP TRIGGER IF EXISTS answers_notify ON answers;
CREATE TRIGGER answers_notify AFTER INSERT OR UPDATE OR DELETE ON answers
	FOR EACH ROW EXECUTE FUNCTION shortlist_notify();

DROP TRIGGER IF EXISTS finalizations_notify ON finalizations;
CREATE TRIGGER finalizations_notify AFTER INSERT OR UPDATE OR DELETE ON finalizations
	FOR EACH ROW EXECUTE FUNCTION shortlist_notify();
`
