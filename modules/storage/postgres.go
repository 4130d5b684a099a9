package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskore/taskore/core"
	"github.com/taskore/taskore/errors"
)

type Config struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// Postgres is the durable record of job state. It is the source of truth for
// persisted flags; concurrent writes for the same job ID are serialized by
// the row lock.
type Postgres struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *Config) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse storage config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping storage: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

// EnsureSchema creates the jobs table if it does not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS jobs (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			priority       TEXT NOT NULL,
			cancellable    BOOLEAN NOT NULL DEFAULT FALSE,
			track_progress BOOLEAN NOT NULL DEFAULT FALSE,
			payload        JSONB,
			saved_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

// SaveJob upserts the full job record.
func (s *Postgres) SaveJob(ctx context.Context, job *core.Job) error {
	payload, err := job.Serialize()
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO jobs (id, name, priority, cancellable, track_progress, payload, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			priority = EXCLUDED.priority,
			cancellable = EXCLUDED.cancellable,
			track_progress = EXCLUDED.track_progress,
			payload = EXCLUDED.payload,
			saved_at = EXCLUDED.saved_at`,
		job.ID, job.Name, string(job.Priority), job.Cancellable, job.TrackProgress, payload, time.Now())
	return err
}

// SaveJobAsCancellable persists just the cancellable flag. Writing the value
// the row already has is fine; the operation is idempotent.
func (s *Postgres) SaveJobAsCancellable(ctx context.Context, jobID string, cancellable bool) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE jobs SET cancellable = $2, saved_at = now() WHERE id = $1`,
		jobID, cancellable)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.InfraError(errors.ErrJobNotFound).WithMetadata("job_id", jobID)
	}
	return nil
}

// GetJob rehydrates a stored job record. The result is detached; the caller
// re-attaches storage and resolves the callable by name.
func (s *Postgres) GetJob(ctx context.Context, jobID string) (*core.Job, error) {
	var payload []byte
	err := s.Pool.QueryRow(ctx, `SELECT payload FROM jobs WHERE id = $1`, jobID).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, errors.InfraError(errors.ErrJobNotFound).WithMetadata("job_id", jobID)
	}
	if err != nil {
		return nil, err
	}
	return core.DeserializeJob(payload)
}

func (s *Postgres) Close() {
	s.Pool.Close()
}

// HealthCheck returns nil if the database is reachable.
func (s *Postgres) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}
