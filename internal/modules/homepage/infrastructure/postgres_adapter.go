package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/domain"
)

const PostgresAdapterName = "postgres"

// PgxQuerier is the subset of *pgxpool.Pool the adapter needs.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// NewConnectionPool creates a pgx v5 pool for url. Connections are opened lazily.
func NewConnectionPool(ctx context.Context, url string, timeout time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.ConnConfig.ConnectTimeout = timeoutOrDefault(timeout)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// PostgresAdapter stores the aggregate in three tables, one per group. Every group write
// replaces the whole group inside one transaction.
type PostgresAdapter struct {
	db      PgxQuerier
	timeout time.Duration
}

func NewPostgresAdapter(db PgxQuerier, timeout time.Duration) *PostgresAdapter {
	return &PostgresAdapter{db: db, timeout: timeoutOrDefault(timeout)}
}

func (a *PostgresAdapter) Name() string { return PostgresAdapterName }

// Ping reports whether the database answers within the adapter timeout.
func (a *PostgresAdapter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.fail("ping", classifyPgError(a.db.Ping(ctx), false))
}

const selectSections = `SELECT id, type, title, visible, sort_order, custom_component
FROM homepage_sections
ORDER BY position, sort_order, id`

func (a *PostgresAdapter) ReadSections(ctx context.Context) ([]domain.Section, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rows, err := a.db.Query(ctx, selectSections)
	if err != nil {
		return nil, a.fail("read sections", classifyPgError(err, false))
	}
	defer rows.Close()

	var sections []domain.Section
	for rows.Next() {
		var (
			s         domain.Section
			kind      string
			component *string
		)
		if err := rows.Scan(&s.ID, &kind, &s.Title, &s.Visible, &s.Order, &component); err != nil {
			return nil, a.fail("read sections", classifyPgError(err, false))
		}
		s.Type = domain.NormalizeSectionType(kind)
		if !s.Type.Valid() {
			return nil, a.fail("read sections", fmt.Errorf("%w: section %q: %w %q", port.ErrMalformed, s.ID, domain.ErrUnknownSectionType, kind))
		}
		s.CustomComponent = component
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, a.fail("read sections", classifyPgError(err, false))
	}
	if len(sections) == 0 {
		return nil, a.fail("read sections", port.ErrNotFound)
	}
	slog.Debug("homepage sections loaded", slog.String("adapter", PostgresAdapterName), slog.Int("count", len(sections)))
	return sections, nil
}

func (a *PostgresAdapter) ReadSectionData(ctx context.Context) (domain.SectionDataMap, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rows, err := a.db.Query(ctx, `SELECT section_id, data FROM homepage_section_data`)
	if err != nil {
		return nil, a.fail("read section data", classifyPgError(err, false))
	}
	defer rows.Close()

	data := domain.SectionDataMap{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, a.fail("read section data", classifyPgError(err, false))
		}
		var payload domain.SectionData
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, a.fail("read section data", fmt.Errorf("%w: payload for %q: %v", port.ErrMalformed, id, err))
		}
		data[id] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, a.fail("read section data", classifyPgError(err, false))
	}
	return data, nil
}

func (a *PostgresAdapter) ReadTemplateConfig(ctx context.Context) (domain.TemplateConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var name string
	err := a.db.QueryRow(ctx, `SELECT active_template FROM homepage_template WHERE id = 1`).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TemplateConfig{}, a.fail("read template", port.ErrNotFound)
	}
	if err != nil {
		return domain.TemplateConfig{}, a.fail("read template", classifyPgError(err, false))
	}
	name = domain.NormalizeTemplateName(name)
	if !domain.KnownTemplate(name) {
		return domain.TemplateConfig{}, a.fail("read template", fmt.Errorf("%w: %w %q", port.ErrMalformed, domain.ErrUnknownTemplate, name))
	}
	return domain.TemplateConfig{ActiveTemplate: name}, nil
}

const insertSection = `INSERT INTO homepage_sections (id, type, title, visible, sort_order, custom_component, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (a *PostgresAdapter) WriteSections(ctx context.Context, sections []domain.Section) error {
	return a.inTx(ctx, "write sections", func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM homepage_sections`); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for i, s := range sections {
			batch.Queue(insertSection, s.ID, string(s.Type), s.Title, s.Visible, s.Order, s.CustomComponent, i)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (a *PostgresAdapter) WriteSectionData(ctx context.Context, data domain.SectionDataMap) error {
	encoded := make(map[string][]byte, len(data))
	for id, payload := range data {
		if payload == nil {
			payload = domain.SectionData{}
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return a.fail("write section data", fmt.Errorf("%w: payload for %q: %v", port.ErrRejected, id, err))
		}
		encoded[id] = raw
	}

	return a.inTx(ctx, "write section data", func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM homepage_section_data`); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for id, raw := range encoded {
			batch.Queue(`INSERT INTO homepage_section_data (section_id, data) VALUES ($1, $2::jsonb)`, id, string(raw))
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (a *PostgresAdapter) WriteTemplateConfig(ctx context.Context, template domain.TemplateConfig) error {
	return a.inTx(ctx, "write template", func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO homepage_template (id, active_template, updated_at)
VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE SET active_template = EXCLUDED.active_template, updated_at = now()`, template.ActiveTemplate)
		return err
	})
}

func (a *PostgresAdapter) inTx(ctx context.Context, op string, fn func(context.Context, pgx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return a.fail(op, classifyPgError(err, true))
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return a.fail(op, classifyPgError(err, true))
	}
	if err := tx.Commit(ctx); err != nil {
		return a.fail(op, classifyPgError(err, true))
	}
	return nil
}

func (a *PostgresAdapter) fail(op string, err error) error {
	return port.NewAdapterError(PostgresAdapterName, op, err)
}

// classifyPgError maps driver errors onto the adapter error taxonomy. Data exceptions and
// integrity violations (SQLSTATE classes 22 and 23) are data problems; everything else,
// including a missing schema, means this adapter cannot serve right now.
func classifyPgError(err error, write bool) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, port.ErrNotFound) || errors.Is(err, port.ErrMalformed) || errors.Is(err, port.ErrRejected) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "22", "23":
			if write {
				return fmt.Errorf("%w: %s (%s)", port.ErrRejected, pgErr.Message, pgErr.Code)
			}
			return fmt.Errorf("%w: %s (%s)", port.ErrMalformed, pgErr.Message, pgErr.Code)
		}
		return fmt.Errorf("%w: %s (%s)", port.ErrAdapterUnavailable, pgErr.Message, pgErr.Code)
	}
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: timeout: %v", port.ErrAdapterUnavailable, err)
	}
	return fmt.Errorf("%w: %v", port.ErrAdapterUnavailable, err)
}

var (
	_ port.ConfigAdapter = (*PostgresAdapter)(nil)
	_ PgxQuerier         = (*pgxpool.Pool)(nil)
)
