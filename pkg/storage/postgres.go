package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
)

// Postgres is the relational Storage variant: one row per session in the
// single table named in the external interface contract,
// sessions(session_id PK, current_task, context JSONB, status). Writes
// are upserts; deletes are idempotent.
//
// This deliberately talks to pgx directly rather than through a
// code-generated ORM client: the schema is one narrow table, so a
// generated client buys nothing a handful of hand-written queries don't
// already give for less moving-parts risk (see DESIGN.md).
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an already-connected pool. Migrations are applied
// separately (see pkg/database) before the pool is handed to callers.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const upsertSessionSQL = `
INSERT INTO sessions (session_id, current_task, context, status)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id) DO UPDATE
SET current_task = EXCLUDED.current_task,
    context       = EXCLUDED.context,
    status        = EXCLUDED.status
`

func (p *Postgres) Save(ctx context.Context, s *graph.Session) error {
	snap := s.Context.Snapshot()
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: marshal context: %v", rerrors.ErrStorageError, err)
	}
	_, err = p.pool.Exec(ctx, upsertSessionSQL, s.ID, s.CurrentTaskID, blob, string(s.Status))
	if err != nil {
		return fmt.Errorf("%w: upsert session %q: %v", rerrors.ErrStorageError, s.ID, err)
	}
	return nil
}

const getSessionSQL = `
SELECT current_task, context, status FROM sessions WHERE session_id = $1
`

func (p *Postgres) Get(ctx context.Context, id string) (*graph.Session, error) {
	row := p.pool.QueryRow(ctx, getSessionSQL, id)

	var currentTask, status string
	var blob []byte
	if err := row.Scan(&currentTask, &blob, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", rerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get session %q: %v", rerrors.ErrStorageError, id, err)
	}

	var snap map[string]json.RawMessage
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("%w: unmarshal context: %v", rerrors.ErrStorageError, err)
	}

	return &graph.Session{
		ID:            id,
		CurrentTaskID: currentTask,
		Status:        graph.Status(status),
		Context:       rcontext.FromSnapshot(snap),
	}, nil
}

const deleteSessionSQL = `DELETE FROM sessions WHERE session_id = $1`

func (p *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, deleteSessionSQL, id); err != nil {
		return fmt.Errorf("%w: delete session %q: %v", rerrors.ErrStorageError, id, err)
	}
	return nil
}
