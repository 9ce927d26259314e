package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ferazfhansurie/jutaCRM/internal/models"
)

// SearchClient queries the conversation provider's search endpoint.
// It always runs with a just-refreshed access token supplied by the
// caller, never a stored one.
type SearchClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewSearchClient(baseURL string) *SearchClient {
	return &SearchClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

func (c *SearchClient) Search(ctx context.Context, accessToken string, query string) ([]models.SearchHit, error) {
	endpoint := c.baseURL
	if query != "" {
		endpoint += "?q=" + url.QueryEscape(query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search conversations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("search conversations: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var body struct {
		Conversations []struct {
			ID              string `json:"id"`
			ContactName     string `json:"contactName"`
			LastMessageBody string `json:"lastMessageBody"`
		} `json:"conversations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]models.SearchHit, 0, len(body.Conversations))
	for _, conversation := range body.Conversations {
		hits = append(hits, models.SearchHit{
			ID:          conversation.ID,
			ContactName: conversation.ContactName,
			LastMessage: conversation.LastMessageBody,
		})
	}
	return hits, nil
}
