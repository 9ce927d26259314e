package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchClientSendsTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"conversations":[{"id":"c1","contactName":"Alice","lastMessageBody":"hi"}]}`))
	}))
	defer server.Close()

	client := NewSearchClient(server.URL)
	hits, err := client.Search(context.Background(), "fresh-access", "alice")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotAuth != "Bearer fresh-access" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotQuery != "alice" {
		t.Fatalf("expected query alice, got %q", gotQuery)
	}
	if len(hits) != 1 || hits[0].LastMessage != "hi" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestSearchClientReportsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewSearchClient(server.URL)
	if _, err := client.Search(context.Background(), "stale", "alice"); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
