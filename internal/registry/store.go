package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gradepilot/evaluator-api/internal/models"
)

// Store is the read/write side of provider configuration. The pipeline only
// reads it, and only through the Registry; administrative handlers write.
type Store interface {
	List(ctx context.Context) ([]models.ProviderConfig, error)
	GetByName(ctx context.Context, name string) (*models.ProviderConfig, error)
	Upsert(ctx context.Context, cfg *models.ProviderConfig) error
	SetActive(ctx context.Context, name string, active bool) error
}

type store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

type providerRow struct {
	Name           string    `db:"name"`
	Capabilities   string    `db:"capabilities"`
	Preferred      string    `db:"preferred"`
	Active         bool      `db:"active"`
	Options        string    `db:"options"`
	CredentialsRef string    `db:"credentials_ref"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r providerRow) toModel() (models.ProviderConfig, error) {
	cfg := models.ProviderConfig{
		Name:           r.Name,
		Active:         r.Active,
		CredentialsRef: r.CredentialsRef,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(r.Capabilities), &cfg.Capabilities); err != nil {
		return cfg, fmt.Errorf("bad capabilities for provider %s: %w", r.Name, err)
	}
	if err := json.Unmarshal([]byte(r.Preferred), &cfg.Preferred); err != nil {
		return cfg, fmt.Errorf("bad preference flags for provider %s: %w", r.Name, err)
	}
	if err := json.Unmarshal([]byte(r.Options), &cfg.Options); err != nil {
		return cfg, fmt.Errorf("bad options for provider %s: %w", r.Name, err)
	}
	return cfg, nil
}

func (s *store) List(ctx context.Context) ([]models.ProviderConfig, error) {
	var rows []providerRow
	query := `
		SELECT name, capabilities, preferred, active, options, credentials_ref, created_at, updated_at
		FROM provider_configs
		ORDER BY name
	`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	configs := make([]models.ProviderConfig, 0, len(rows))
	for _, row := range rows {
		cfg, err := row.toModel()
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (s *store) GetByName(ctx context.Context, name string) (*models.ProviderConfig, error) {
	var row providerRow
	query := `
		SELECT name, capabilities, preferred, active, options, credentials_ref, created_at, updated_at
		FROM provider_configs
		WHERE name = $1
	`
	err := s.db.GetContext(ctx, &row, query, name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cfg, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *store) Upsert(ctx context.Context, cfg *models.ProviderConfig) error {
	capabilities, err := json.Marshal(cfg.Capabilities)
	if err != nil {
		return err
	}
	preferred, err := json.Marshal(cfg.Preferred)
	if err != nil {
		return err
	}
	options, err := json.Marshal(cfg.Options)
	if err != nil {
		return err
	}

	now := time.Now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	query := `
		INSERT INTO provider_configs (name, capabilities, preferred, active, options, credentials_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			capabilities = excluded.capabilities,
			preferred = excluded.preferred,
			active = excluded.active,
			options = excluded.options,
			credentials_ref = excluded.credentials_ref,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		cfg.Name,
		string(capabilities),
		string(preferred),
		cfg.Active,
		string(options),
		cfg.CredentialsRef,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	return err
}

func (s *store) SetActive(ctx context.Context, name string, active bool) error {
	query := `UPDATE provider_configs SET active = $2, updated_at = $3 WHERE name = $1`
	res, err := s.db.ExecContext(ctx, query, name, active, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
