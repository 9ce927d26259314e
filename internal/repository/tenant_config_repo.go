package repository

import (
	"context"

	"github.com/ferazfhansurie/jutaCRM/internal/models"
)

// TenantConfigRepository reads and writes the per-company credential
// document: the gateway token plus the OAuth client pair and the
// rotating access/refresh tokens.
type TenantConfigRepository struct {
	db DBTX
}

func NewTenantConfigRepository(db DBTX) *TenantConfigRepository {
	return &TenantConfigRepository{db: db}
}

func (r *TenantConfigRepository) GetByTenantID(ctx context.Context, tenantID string) (*models.TenantConfig, error) {
	query := `
		SELECT tenant_id, ghl_id, ghl_secret, refresh_token,
		       COALESCE(access_token, ''), whapi_token, updated_at
		FROM tenant_configs
		WHERE tenant_id = $1
	`
	var cfg models.TenantConfig
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&cfg.TenantID,
		&cfg.GHLClientID,
		&cfg.GHLSecret,
		&cfg.RefreshToken,
		&cfg.AccessToken,
		&cfg.WhapiToken,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateTokens rewrites only the token pair for a tenant, leaving the
// client id/secret and gateway token untouched (the store's merge
// update).
func (r *TenantConfigRepository) UpdateTokens(ctx context.Context, tenantID string, tokens models.TokenPair) error {
	_, err := r.db.Exec(ctx, `
		UPDATE tenant_configs
		SET access_token = $2,
		    refresh_token = $3,
		    updated_at = NOW()
		WHERE tenant_id = $1
	`, tenantID, tokens.AccessToken, tokens.RefreshToken)
	return err
}

func (r *TenantConfigRepository) Upsert(ctx context.Context, cfg *models.TenantConfig) error {
	query := `
		INSERT INTO tenant_configs (tenant_id, ghl_id, ghl_secret, refresh_token, access_token, whapi_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id)
		DO UPDATE SET ghl_id = EXCLUDED.ghl_id,
		              ghl_secret = EXCLUDED.ghl_secret,
		              refresh_token = EXCLUDED.refresh_token,
		              access_token = EXCLUDED.access_token,
		              whapi_token = EXCLUDED.whapi_token,
		              updated_at = NOW()
		RETURNING updated_at
	`
	return r.db.QueryRow(ctx, query,
		cfg.TenantID,
		cfg.GHLClientID,
		cfg.GHLSecret,
		cfg.RefreshToken,
		cfg.AccessToken,
		cfg.WhapiToken,
	).Scan(&cfg.UpdatedAt)
}
