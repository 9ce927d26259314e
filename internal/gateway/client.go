package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client talks to the messaging gateway's REST surface. The bearer
// token is per tenant, so every call takes it as a parameter instead
// of binding it at construction.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

func (c *Client) ListChats(ctx context.Context, token string) ([]Chat, error) {
	var resp chatsResponse
	if err := c.do(ctx, token, http.MethodGet, "/chats", nil, &resp); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return resp.Chats, nil
}

// ListMessages returns up to count messages for a chat, newest first,
// which is the order the gateway serves them in.
func (c *Client) ListMessages(ctx context.Context, token string, chatID string, count int) ([]Message, error) {
	endpoint := "/messages/list/" + url.PathEscape(chatID)
	if count > 0 {
		endpoint += "?count=" + strconv.Itoa(count)
	}

	var resp messagesResponse
	if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return resp.Messages, nil
}

func (c *Client) SendText(ctx context.Context, token string, to string, body string) (*Message, error) {
	var resp sendMessageResponse
	err := c.do(ctx, token, http.MethodPost, "/messages/text", sendMessageRequest{To: to, Body: body}, &resp)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if !resp.Sent {
		return nil, fmt.Errorf("send message: gateway did not accept the message")
	}
	return &resp.Message, nil
}

func (c *Client) ForwardMessage(ctx context.Context, token string, messageID string, to string) (*Message, error) {
	endpoint := "/messages/" + url.PathEscape(messageID) + "/forward"

	var resp sendMessageResponse
	if err := c.do(ctx, token, http.MethodPost, endpoint, forwardMessageRequest{To: to}, &resp); err != nil {
		return nil, fmt.Errorf("forward message: %w", err)
	}
	if !resp.Sent {
		return nil, fmt.Errorf("forward message: gateway did not accept the message")
	}
	return &resp.Message, nil
}

func (c *Client) ListGroups(ctx context.Context, token string) ([]Group, error) {
	var resp groupsResponse
	if err := c.do(ctx, token, http.MethodGet, "/groups", nil, &resp); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return resp.Groups, nil
}

func (c *Client) ListContacts(ctx context.Context, token string) ([]Contact, error) {
	var resp contactsResponse
	if err := c.do(ctx, token, http.MethodGet, "/contacts", nil, &resp); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return resp.Contacts, nil
}

func (c *Client) ListNewsletters(ctx context.Context, token string) ([]Newsletter, error) {
	var resp newslettersResponse
	if err := c.do(ctx, token, http.MethodGet, "/newsletters", nil, &resp); err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}
	return resp.Newsletters, nil
}

func (c *Client) GetMediaLink(ctx context.Context, token string, mediaID string) (string, error) {
	var resp mediaResponse
	if err := c.do(ctx, token, http.MethodGet, "/media/"+url.PathEscape(mediaID), nil, &resp); err != nil {
		return "", fmt.Errorf("get media link: %w", err)
	}
	if resp.Link == "" {
		return "", fmt.Errorf("get media link: link missing from response")
	}
	return resp.Link, nil
}

func (c *Client) do(ctx context.Context, token string, method string, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
