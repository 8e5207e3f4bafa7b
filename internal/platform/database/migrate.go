package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is applied at startup. The unique indexes double as the
// concurrency control for gameplay writes: duplicate check-ins, duplicate
// assignment scopes and idempotency-key races are all rejected here and
// translated at the repository boundary.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              UUID PRIMARY KEY,
	email           TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	hashed_password TEXT NOT NULL,
	role            TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS games (
	id                 UUID PRIMARY KEY,
	name               TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	join_code          TEXT NOT NULL UNIQUE,
	status             TEXT NOT NULL DEFAULT 'setup',
	uniform_assignment BOOLEAN NOT NULL DEFAULT false,
	start_date         TIMESTAMPTZ,
	end_date           TIMESTAMPTZ,
	created_by_id      UUID NOT NULL REFERENCES users(id),
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bases (
	id                 UUID PRIMARY KEY,
	game_id            UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	name               TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	lat                DOUBLE PRECISION NOT NULL,
	lng                DOUBLE PRECISION NOT NULL,
	fixed_challenge_id UUID,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS challenges (
	id              UUID PRIMARY KEY,
	game_id         UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	answer_type     TEXT NOT NULL,
	auto_validate   BOOLEAN NOT NULL DEFAULT false,
	correct_answers JSONB,
	points          INTEGER NOT NULL DEFAULT 0,
	location_bound  BOOLEAN NOT NULL DEFAULT false,
	unlocks_base_id UUID REFERENCES bases(id) ON DELETE SET NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS teams (
	id         UUID PRIMARY KEY,
	game_id    UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	color      TEXT NOT NULL DEFAULT '',
	join_code  TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS players (
	id         UUID PRIMARY KEY,
	team_id    UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assignments (
	id           UUID PRIMARY KEY,
	game_id      UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	base_id      UUID NOT NULL REFERENCES bases(id) ON DELETE CASCADE,
	challenge_id UUID NOT NULL REFERENCES challenges(id) ON DELETE CASCADE,
	team_id      UUID REFERENCES teams(id) ON DELETE CASCADE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS assignments_scope_team_key
	ON assignments (game_id, base_id, team_id) WHERE team_id IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS assignments_scope_all_key
	ON assignments (game_id, base_id) WHERE team_id IS NULL;

CREATE TABLE IF NOT EXISTS check_ins (
	id            UUID PRIMARY KEY,
	game_id       UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	team_id       UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
	base_id       UUID NOT NULL REFERENCES bases(id) ON DELETE CASCADE,
	player_id     UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
	checked_in_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT check_ins_team_base_key UNIQUE (team_id, base_id)
);

CREATE TABLE IF NOT EXISTS submissions (
	id              UUID PRIMARY KEY,
	game_id         UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	team_id         UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
	challenge_id    UUID NOT NULL REFERENCES challenges(id) ON DELETE CASCADE,
	base_id         UUID NOT NULL REFERENCES bases(id) ON DELETE CASCADE,
	answer          TEXT NOT NULL DEFAULT '',
	file_url        TEXT,
	status          TEXT NOT NULL DEFAULT 'pending',
	submitted_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	reviewed_by     UUID REFERENCES users(id),
	feedback        TEXT,
	idempotency_key TEXT,
	CONSTRAINT submissions_idempotency_key_key UNIQUE (idempotency_key)
);

CREATE TABLE IF NOT EXISTS activity_events (
	id           UUID PRIMARY KEY,
	game_id      UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	type         TEXT NOT NULL,
	team_id      UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
	base_id      UUID,
	challenge_id UUID,
	message      TEXT NOT NULL,
	timestamp    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS notifications (
	id         UUID PRIMARY KEY,
	game_id    UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_by UUID NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS team_locations (
	game_id    UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	team_id    UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
	lat        DOUBLE PRECISION NOT NULL,
	lng        DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (game_id, team_id)
);
`

// Constraint names referenced when translating unique violations.
const (
	ConstraintCheckInTeamBase          = "check_ins_team_base_key"
	ConstraintSubmissionIdempotencyKey = "submissions_idempotency_key_key"
	ConstraintAssignmentScopeTeam      = "assignments_scope_team_key"
	ConstraintAssignmentScopeAll       = "assignments_scope_all_key"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
