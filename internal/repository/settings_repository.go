package repository

import (
	"context"
	"database/sql"

	"github.com/goccy/go-json"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
)

type SettingsRepositoryInterface interface {
	Load(ctx context.Context, module string) (*model.SyncConfig, error)
	Save(ctx context.Context, module string, cfg *model.SyncConfig) error
}

// SettingsRepository keeps one JSON key/value document per module.
type SettingsRepository struct {
	DB *sql.DB
}

// Load returns an empty config when the module has never been saved.
func (r *SettingsRepository) Load(ctx context.Context, module string) (*model.SyncConfig, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `SELECT data FROM settings WHERE module=$1`, module).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return &model.SyncConfig{}, nil
		}
		return nil, err
	}

	cfg := &model.SyncConfig{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *SettingsRepository) Save(ctx context.Context, module string, cfg *model.SyncConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO settings (module, data, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (module) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
    `
	_, err = r.DB.ExecContext(ctx, query, module, raw)
	return err
}

var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)
