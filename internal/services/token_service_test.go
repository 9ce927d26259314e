package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferazfhansurie/jutaCRM/internal/models"
)

type stubTenantStore struct {
	cfg          *models.TenantConfig
	getErr       error
	updatedPair  *models.TokenPair
	updateCalls  int
	lastTenantID string
}

func (s *stubTenantStore) GetByTenantID(_ context.Context, tenantID string) (*models.TenantConfig, error) {
	s.lastTenantID = tenantID
	return s.cfg, s.getErr
}

func (s *stubTenantStore) UpdateTokens(_ context.Context, tenantID string, tokens models.TokenPair) error {
	s.updateCalls++
	s.lastTenantID = tenantID
	s.updatedPair = &tokens
	return nil
}

type stubSearcher struct {
	hits      []models.SearchHit
	err       error
	calls     int
	lastToken string
	lastQuery string
}

func (s *stubSearcher) Search(_ context.Context, accessToken string, query string) ([]models.SearchHit, error) {
	s.calls++
	s.lastToken = accessToken
	s.lastQuery = query
	return s.hits, s.err
}

func testTenantStore() *stubTenantStore {
	return &stubTenantStore{
		cfg: &models.TenantConfig{
			TenantID:     "0123",
			GHLClientID:  "client-id",
			GHLSecret:    "client-secret",
			RefreshToken: "old-refresh",
			WhapiToken:   "whapi-token",
		},
	}
}

func TestRefreshTokensPersistsRotatedPair(t *testing.T) {
	var gotForm map[string]string
	oauth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotForm = map[string]string{
			"client_id":     r.PostFormValue("client_id"),
			"client_secret": r.PostFormValue("client_secret"),
			"refresh_token": r.PostFormValue("refresh_token"),
			"grant_type":    r.PostFormValue("grant_type"),
			"user_type":     r.PostFormValue("user_type"),
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
		})
	}))
	defer oauth.Close()

	store := testTenantStore()
	service := NewTokenService(store, oauth.URL, &stubSearcher{})

	pair, err := service.RefreshTokens(context.Background(), "0123")
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}

	if gotForm["client_id"] != "client-id" || gotForm["client_secret"] != "client-secret" {
		t.Fatalf("unexpected client credentials: %+v", gotForm)
	}
	if gotForm["refresh_token"] != "old-refresh" {
		t.Fatalf("expected stored refresh token, got %q", gotForm["refresh_token"])
	}
	if gotForm["grant_type"] != "refresh_token" || gotForm["user_type"] != "Location" {
		t.Fatalf("unexpected grant fields: %+v", gotForm)
	}

	if pair.AccessToken != "new-access" || pair.RefreshToken != "new-refresh" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
	if store.updateCalls != 1 {
		t.Fatalf("expected 1 merge update, got %d", store.updateCalls)
	}
	if store.updatedPair.RefreshToken != "new-refresh" {
		t.Fatalf("expected rotated refresh token persisted, got %q", store.updatedPair.RefreshToken)
	}
}

func TestRefreshTokensFailureDoesNotPersist(t *testing.T) {
	oauth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer oauth.Close()

	store := testTenantStore()
	service := NewTokenService(store, oauth.URL, &stubSearcher{})

	if _, err := service.RefreshTokens(context.Background(), "0123"); err == nil {
		t.Fatal("expected error for rejected exchange")
	}
	if store.updateCalls != 0 {
		t.Fatalf("expected no token update, got %d", store.updateCalls)
	}
}

func TestRefreshTokensRejectsEmptyAccessToken(t *testing.T) {
	oauth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"refresh_token": "only-refresh"})
	}))
	defer oauth.Close()

	store := testTenantStore()
	service := NewTokenService(store, oauth.URL, &stubSearcher{})

	if _, err := service.RefreshTokens(context.Background(), "0123"); err == nil {
		t.Fatal("expected error for missing access token")
	}
	if store.updateCalls != 0 {
		t.Fatalf("expected no token update, got %d", store.updateCalls)
	}
}

func TestSearchConversationsUsesFreshAccessToken(t *testing.T) {
	oauth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "fresh-access",
			"refresh_token": "fresh-refresh",
		})
	}))
	defer oauth.Close()

	searcher := &stubSearcher{
		hits: []models.SearchHit{{ID: "c1", ContactName: "Alice"}},
	}
	service := NewTokenService(testTenantStore(), oauth.URL, searcher)

	hits, err := service.SearchConversations(context.Background(), "0123", "alice")
	if err != nil {
		t.Fatalf("SearchConversations: %v", err)
	}

	if searcher.calls != 1 {
		t.Fatalf("expected exactly one search call, got %d", searcher.calls)
	}
	if searcher.lastToken != "fresh-access" {
		t.Fatalf("expected search to use the fresh access token, got %q", searcher.lastToken)
	}
	if searcher.lastQuery != "alice" {
		t.Fatalf("expected query forwarded, got %q", searcher.lastQuery)
	}
	if len(hits) != 1 || hits[0].ContactName != "Alice" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestSearchConversationsSkipsSearchWhenRefreshFails(t *testing.T) {
	oauth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer oauth.Close()

	searcher := &stubSearcher{}
	service := NewTokenService(testTenantStore(), oauth.URL, searcher)

	if _, err := service.SearchConversations(context.Background(), "0123", "alice"); err == nil {
		t.Fatal("expected refresh error to propagate")
	}
	if searcher.calls != 0 {
		t.Fatalf("expected no search call, got %d", searcher.calls)
	}
}
