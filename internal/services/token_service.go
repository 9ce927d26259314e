package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/ferazfhansurie/jutaCRM/internal/models"
)

type tenantConfigStore interface {
	GetByTenantID(ctx context.Context, tenantID string) (*models.TenantConfig, error)
	UpdateTokens(ctx context.Context, tenantID string, tokens models.TokenPair) error
}

type conversationSearcher interface {
	Search(ctx context.Context, accessToken string, query string) ([]models.SearchHit, error)
}

// TokenService exchanges a tenant's stored refresh token for a fresh
// access token and persists the rotated pair. The exchange is a single
// attempt; failures are logged and returned to the caller.
type TokenService struct {
	tenants    tenantConfigStore
	tokenURL   string
	search     conversationSearcher
	httpClient *http.Client
}

func NewTokenService(tenants tenantConfigStore, tokenURL string, search conversationSearcher) *TokenService {
	return &TokenService{
		tenants:    tenants,
		tokenURL:   tokenURL,
		search:     search,
		httpClient: http.DefaultClient,
	}
}

// RefreshTokens runs the OAuth refresh-token grant for a tenant and
// merge-updates the stored config with the returned pair. Both tokens
// rotate on every exchange.
func (s *TokenService) RefreshTokens(ctx context.Context, tenantID string) (*models.TokenPair, error) {
	cfg, err := s.tenants.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant config: %w", err)
	}

	form := url.Values{}
	form.Set("client_id", cfg.GHLClientID)
	form.Set("client_secret", cfg.GHLSecret)
	form.Set("refresh_token", cfg.RefreshToken)
	form.Set("grant_type", "refresh_token")
	form.Set("user_type", "Location")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("token exchange: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var pair models.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("token exchange: access token missing from response")
	}

	if err := s.tenants.UpdateTokens(ctx, tenantID, pair); err != nil {
		return nil, fmt.Errorf("persist tokens: %w", err)
	}

	return &pair, nil
}

// SearchConversations refreshes the tenant's tokens, then runs one
// downstream search with the new access token.
func (s *TokenService) SearchConversations(ctx context.Context, tenantID string, query string) ([]models.SearchHit, error) {
	pair, err := s.RefreshTokens(ctx, tenantID)
	if err != nil {
		log.Printf("token refresh for tenant %s: %v", tenantID, err)
		return nil, err
	}

	hits, err := s.search.Search(ctx, pair.AccessToken, query)
	if err != nil {
		log.Printf("conversation search for tenant %s: %v", tenantID, err)
		return nil, err
	}
	return hits, nil
}
