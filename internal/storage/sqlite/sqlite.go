package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/siiapp/phasetrack/internal/log"
	"github.com/siiapp/phasetrack/internal/model"
	"github.com/siiapp/phasetrack/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.ProgressRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// DB returns the underlying database handle so other repositories can share
// the same connection.
func (r *Repository) DB() *sql.DB { return r.db }

// CreateProgress inserts a progress row and the opening ledger window for its
// phase as a single transaction, and returns the generated progress ID.
func (r *Repository) CreateProgress(ctx context.Context, p model.PhaseProgress, now time.Time) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	id := ulid.Make().String()

	query := `
		INSERT INTO phase_progress (
			id, order_number, company_code,
			quantity, phase, plant, comments,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(
		ctx,
		query,
		id,
		p.OrderNumber,
		p.CompanyCode,
		p.Quantity,
		p.Phase,
		p.Plant,
		p.Comments,
		now.Unix(),
		now.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", fmt.Errorf("progress for order %s already exists: %w", p.OrderNumber, model.ErrAlreadyExists)
		}
		return "", fmt.Errorf("could not insert progress: %w", err)
	}

	// Dispatch closes instantaneously: start and end share the captured time.
	var endedAt *int64
	if p.Phase.Terminal() {
		u := now.Unix()
		endedAt = &u
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO phase_times (progress_id, phase, started_at, ended_at) VALUES (?, ?, ?, ?)`,
		id, p.Phase, now.Unix(), endedAt,
	)
	if err != nil {
		return "", fmt.Errorf("could not insert phase window: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Created progress %s for order %s", id, p.OrderNumber)
	return id, nil
}

// GetProgress retrieves a progress record by ID.
func (r *Repository) GetProgress(ctx context.Context, id string) (*model.PhaseProgress, error) {
	progress, err := r.scanOne(ctx, `WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query progress: %w", err)
	}

	return progress, nil
}

// GetProgressByOrder retrieves the progress record of an order.
func (r *Repository) GetProgressByOrder(ctx context.Context, orderNumber, companyCode string) (*model.PhaseProgress, error) {
	progress, err := r.scanOne(ctx, `WHERE order_number = ? AND company_code = ?`, orderNumber, companyCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress for order %s company %s: %w", orderNumber, companyCode, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query progress: %w", err)
	}

	return progress, nil
}

// TransitionProgress updates the progress fields and the time ledger in a
// single transaction:
//
//   - The new phase gets its start set only if it never started (re-entering a
//     phase does not reset its start).
//   - Dispatch additionally gets its end set unconditionally.
//   - The previous phase gets its end set if it had started, unless it is the
//     same phase being entered, in which case its end is left untouched.
func (r *Repository) TransitionProgress(ctx context.Context, p model.PhaseProgress, prevPhase model.Phase, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE phase_progress
		SET quantity = ?, phase = ?, plant = ?, comments = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, p.Quantity, p.Phase, p.Plant, p.Comments, now.Unix(), p.ID)
	if err != nil {
		return fmt.Errorf("could not update progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("progress %s: %w", p.ID, model.ErrNotFound)
	}

	var endedAt *int64
	if p.Phase.Terminal() {
		u := now.Unix()
		endedAt = &u
	}

	// Open the window of the entered phase, keeping an existing start. A
	// terminal end always wins over an existing one.
	upsert := `
		INSERT INTO phase_times (progress_id, phase, started_at, ended_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (progress_id, phase) DO UPDATE SET
			started_at = COALESCE(phase_times.started_at, excluded.started_at),
			ended_at = COALESCE(excluded.ended_at, phase_times.ended_at)
	`
	_, err = tx.ExecContext(ctx, upsert, p.ID, p.Phase, now.Unix(), endedAt)
	if err != nil {
		return fmt.Errorf("could not upsert phase window: %w", err)
	}

	if prevPhase != p.Phase {
		closePrev := `
			UPDATE phase_times
			SET ended_at = ?
			WHERE progress_id = ? AND phase = ? AND started_at IS NOT NULL
		`
		_, err = tx.ExecContext(ctx, closePrev, now.Unix(), p.ID, prevPhase)
		if err != nil {
			return fmt.Errorf("could not close previous phase window: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Transitioned progress %s from %s to %s", p.ID, prevPhase, p.Phase)
	return nil
}

// GetPhaseTimes returns the time ledger of a progress record.
func (r *Repository) GetPhaseTimes(ctx context.Context, progressID string) (*model.PhaseTimes, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM phase_progress WHERE id = ?`, progressID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("could not query progress: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("progress %s: %w", progressID, model.ErrNotFound)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT phase, started_at, ended_at
		FROM phase_times
		WHERE progress_id = ?
	`, progressID)
	if err != nil {
		return nil, fmt.Errorf("could not query phase times: %w", err)
	}
	defer rows.Close()

	times := &model.PhaseTimes{
		ProgressID: progressID,
		Windows:    map[model.Phase]model.PhaseWindow{},
	}

	for rows.Next() {
		var phase model.Phase
		var startedAt, endedAt sql.NullInt64
		if err := rows.Scan(&phase, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}

		var window model.PhaseWindow
		if startedAt.Valid {
			t := timeFromUnix(startedAt.Int64)
			window.Start = &t
		}
		if endedAt.Valid {
			t := timeFromUnix(endedAt.Int64)
			window.End = &t
		}
		times.Windows[phase] = window
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return times, nil
}

func (r *Repository) scanOne(ctx context.Context, where string, args ...any) (*model.PhaseProgress, error) {
	query := `
		SELECT id, order_number, company_code, quantity, phase, plant, comments, created_at, updated_at
		FROM phase_progress ` + where

	row := r.db.QueryRowContext(ctx, query, args...)

	var p model.PhaseProgress
	var createdAt, updatedAt int64
	err := row.Scan(
		&p.ID,
		&p.OrderNumber,
		&p.CompanyCode,
		&p.Quantity,
		&p.Phase,
		&p.Plant,
		&p.Comments,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt = timeFromUnix(createdAt)
	p.UpdatedAt = timeFromUnix(updatedAt)

	return &p, nil
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
