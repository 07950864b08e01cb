package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"
)

const promptFields = `id, text, active, created_at`

// Querier is the subset of pgxpool.Pool the catalog needs. Satisfied by the
// pool in production and by pgxmock in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Compile-time check to ensure PgPromptCatalog implements PromptCatalog
var _ interfaces.PromptCatalog = (*PgPromptCatalog)(nil)

// PgPromptCatalog is the PostgreSQL-backed prompt catalog.
type PgPromptCatalog struct {
	db Querier
}

// NewPgPromptCatalog creates a catalog over the given pool.
func NewPgPromptCatalog(db *pgxpool.Pool) *PgPromptCatalog {
	if db == nil {
		log.Fatal().Msg("Database pool is nil for PgPromptCatalog")
	}
	return &PgPromptCatalog{db: db}
}

// NewPgPromptCatalogFromQuerier creates a catalog over any pgx querier.
// Used by tests to substitute a mock connection.
func NewPgPromptCatalogFromQuerier(db Querier) *PgPromptCatalog {
	return &PgPromptCatalog{db: db}
}

// ListUnused retrieves up to limit active prompts whose ids are not in
// excluded. The result carries no ordering contract.
func (r *PgPromptCatalog) ListUnused(ctx context.Context, excluded []uuid.UUID, limit int) ([]models.Prompt, error) {
	var (
		query string
		args  []interface{}
	)
	// An empty exclusion list must not produce `id <> ALL(NULL)`, which
	// matches nothing, so the filter is added conditionally.
	if len(excluded) > 0 {
		query = fmt.Sprintf(`SELECT %s FROM prompts WHERE active = TRUE AND id <> ALL($1) LIMIT $2`, promptFields)
		args = []interface{}{excluded, limit}
	} else {
		query = fmt.Sprintf(`SELECT %s FROM prompts WHERE active = TRUE LIMIT $1`, promptFields)
		args = []interface{}{limit}
	}

	prompts := make([]models.Prompt, 0)
	if err := pgxscan.Select(ctx, r.db, &prompts, query, args...); err != nil {
		log.Error().Err(err).Int("excluded", len(excluded)).Int("limit", limit).Msg("Failed to list unused prompts")
		return nil, fmt.Errorf("failed to list unused prompts: %w", err)
	}
	return prompts, nil
}

// Create inserts a new active prompt and fills in its generated id and
// creation timestamp.
func (r *PgPromptCatalog) Create(ctx context.Context, prompt *models.Prompt) error {
	query := `INSERT INTO prompts (text, active) VALUES ($1, TRUE) RETURNING id, active, created_at`
	err := r.db.QueryRow(ctx, query, prompt.Text).Scan(&prompt.ID, &prompt.Active, &prompt.CreatedAt)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create prompt")
		return fmt.Errorf("failed to create prompt: %w", err)
	}
	log.Info().Str("id", prompt.ID.String()).Msg("Prompt created")
	return nil
}

// List retrieves all catalog prompts, active or not.
func (r *PgPromptCatalog) List(ctx context.Context) ([]models.Prompt, error) {
	query := fmt.Sprintf(`SELECT %s FROM prompts ORDER BY created_at`, promptFields)
	prompts := make([]models.Prompt, 0)
	if err := pgxscan.Select(ctx, r.db, &prompts, query); err != nil {
		log.Error().Err(err).Msg("Failed to list prompts")
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return prompts, nil
}

// Deactivate removes a prompt from catalog eligibility.
func (r *PgPromptCatalog) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE prompts SET active = FALSE WHERE id = $1`
	commandTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("Failed to deactivate prompt")
		return fmt.Errorf("failed to deactivate prompt %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrPromptNotFound
	}
	log.Info().Str("id", id.String()).Msg("Prompt deactivated")
	return nil
}

// GetByID retrieves a prompt by its unique id.
func (r *PgPromptCatalog) GetByID(ctx context.Context, id uuid.UUID) (*models.Prompt, error) {
	query := fmt.Sprintf(`SELECT %s FROM prompts WHERE id = $1`, promptFields)
	var prompt models.Prompt
	if err := pgxscan.Get(ctx, r.db, &prompt, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPromptNotFound
		}
		log.Error().Err(err).Str("id", id.String()).Msg("Failed to get prompt by ID")
		return nil, fmt.Errorf("failed to get prompt by ID %s: %w", id, err)
	}
	return &prompt, nil
}
