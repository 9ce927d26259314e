package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/ferazfhansurie/jutaCRM/internal/models"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestTenantConfigUpsertAndGetRoundtrip(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	repo := NewTenantConfigRepository(pool)

	tenantID := testTenantID()
	t.Cleanup(func() { cleanupTestTenants(t, ctx, pool, tenantID) })

	cfg := &models.TenantConfig{
		TenantID:     tenantID,
		GHLClientID:  "client-id",
		GHLSecret:    "client-secret",
		RefreshToken: "initial-refresh",
		WhapiToken:   "whapi-token",
	}
	if err := repo.Upsert(ctx, cfg); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if cfg.UpdatedAt.IsZero() {
		t.Fatal("expected updated_at populated on upsert")
	}

	loaded, err := repo.GetByTenantID(ctx, tenantID)
	if err != nil {
		t.Fatalf("GetByTenantID: %v", err)
	}
	if loaded.GHLClientID != "client-id" || loaded.WhapiToken != "whapi-token" {
		t.Fatalf("unexpected config: %+v", loaded)
	}
	if loaded.AccessToken != "" {
		t.Fatalf("expected empty access token before first refresh, got %q", loaded.AccessToken)
	}
}

func TestTenantConfigUpdateTokensKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	repo := NewTenantConfigRepository(pool)

	tenantID := testTenantID()
	t.Cleanup(func() { cleanupTestTenants(t, ctx, pool, tenantID) })

	if err := repo.Upsert(ctx, &models.TenantConfig{
		TenantID:     tenantID,
		GHLClientID:  "client-id",
		GHLSecret:    "client-secret",
		RefreshToken: "old-refresh",
		AccessToken:  "old-access",
		WhapiToken:   "whapi-token",
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	before, err := repo.GetByTenantID(ctx, tenantID)
	if err != nil {
		t.Fatalf("GetByTenantID: %v", err)
	}

	if err := repo.UpdateTokens(ctx, tenantID, models.TokenPair{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
	}); err != nil {
		t.Fatalf("UpdateTokens: %v", err)
	}

	after, err := repo.GetByTenantID(ctx, tenantID)
	if err != nil {
		t.Fatalf("GetByTenantID after update: %v", err)
	}
	if after.AccessToken != "new-access" || after.RefreshToken != "new-refresh" {
		t.Fatalf("expected rotated pair, got %+v", after)
	}
	if after.GHLClientID != before.GHLClientID || after.GHLSecret != before.GHLSecret || after.WhapiToken != before.WhapiToken {
		t.Fatalf("merge update touched non-token fields: %+v", after)
	}
	if after.UpdatedAt.Before(before.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, got %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestUserRepositoryTenantScopedAccounts(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	tenantRepo := NewTenantConfigRepository(pool)
	userRepo := NewUserRepository(pool)

	tenantID := testTenantID()
	t.Cleanup(func() { cleanupTestTenants(t, ctx, pool, tenantID) })

	if err := tenantRepo.Upsert(ctx, &models.TenantConfig{
		TenantID:     tenantID,
		GHLClientID:  "client-id",
		GHLSecret:    "client-secret",
		RefreshToken: "refresh",
		WhapiToken:   "whapi-token",
	}); err != nil {
		t.Fatalf("Upsert tenant: %v", err)
	}

	user := &models.User{
		Email:        fmt.Sprintf("operator-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "test-hash",
		TenantID:     tenantID,
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected generated user id")
	}

	byEmail, err := userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.TenantID != tenantID {
		t.Fatalf("expected tenant %q, got %q", tenantID, byEmail.TenantID)
	}

	byID, err := userRepo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, byID.Email)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func testTenantID() string {
	return fmt.Sprintf("tenant-test-%d", time.Now().UnixNano())
}

func cleanupTestTenants(t *testing.T, ctx context.Context, pool *pgxpool.Pool, tenantIDs ...string) {
	t.Helper()

	if len(tenantIDs) == 0 {
		return
	}

	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE tenant_id = ANY($1)", tenantIDs); err != nil {
		t.Fatalf("cleanup users: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM tenant_configs WHERE tenant_id = ANY($1)", tenantIDs); err != nil {
		t.Fatalf("cleanup tenant configs: %v", err)
	}
}
