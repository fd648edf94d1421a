package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvpcad/mvpcad/internal/project"
	"github.com/mvpcad/mvpcad/internal/typeid"
)

const schema = `
CREATE TABLE IF NOT EXISTS project_snapshots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, version)
);
CREATE INDEX IF NOT EXISTS project_snapshots_name_idx ON project_snapshots (name, version DESC);
`

// Postgres is a project library of versioned snapshots.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects and pings the database.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Migrate creates the snapshot table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SaveSnapshot stores doc as the next version of name.
func (p *Postgres) SaveSnapshot(ctx context.Context, name string, doc []byte) (*project.Snapshot, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	snap := &project.Snapshot{ID: typeid.NewSnapshotID(), Name: name}
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		// Serialize writers of the same name so versions stay unique.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, name); err != nil {
			return err
		}
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM project_snapshots WHERE name = $1`,
			name,
		).Scan(&snap.Version)
		if err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO project_snapshots (id, name, version, document)
			 VALUES ($1, $2, $3, $4)
			 RETURNING created_at`,
			snap.ID, name, snap.Version, doc,
		).Scan(&snap.CreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

// LatestSnapshot returns the newest document stored under name.
func (p *Postgres) LatestSnapshot(ctx context.Context, name string) ([]byte, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx,
		`SELECT document FROM project_snapshots WHERE name = $1 ORDER BY version DESC LIMIT 1`,
		name,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return doc, nil
}

// ListProjects summarises every stored name, most recently saved first.
func (p *Postgres) ListProjects(ctx context.Context) ([]project.Summary, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT name, MAX(version), COUNT(*), MAX(created_at)
		 FROM project_snapshots
		 GROUP BY name
		 ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (project.Summary, error) {
		var s project.Summary
		err := row.Scan(&s.Name, &s.Version, &s.Snapshots, &s.UpdatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}
