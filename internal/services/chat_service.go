package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ferazfhansurie/jutaCRM/internal/gateway"
	"github.com/ferazfhansurie/jutaCRM/internal/models"
	"github.com/ferazfhansurie/jutaCRM/internal/retry"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrTenantNotFound = errors.New("tenant not found")
)

const (
	noMessagesPreview = "No messages yet"
	imagePreview      = "[image]"

	minBubbleWidth   = 12
	maxBubbleWidth   = 56
	imageBubbleWidth = 36
)

type gatewayAPI interface {
	ListChats(ctx context.Context, token string) ([]gateway.Chat, error)
	ListMessages(ctx context.Context, token string, chatID string, count int) ([]gateway.Message, error)
	SendText(ctx context.Context, token string, to string, body string) (*gateway.Message, error)
	ForwardMessage(ctx context.Context, token string, messageID string, to string) (*gateway.Message, error)
	ListGroups(ctx context.Context, token string) ([]gateway.Group, error)
	ListContacts(ctx context.Context, token string) ([]gateway.Contact, error)
	ListNewsletters(ctx context.Context, token string) ([]gateway.Newsletter, error)
	GetMediaLink(ctx context.Context, token string, mediaID string) (string, error)
}

type tenantConfigReader interface {
	GetByTenantID(ctx context.Context, tenantID string) (*models.TenantConfig, error)
}

// ChatService proxies the messaging gateway for one request at a time.
// Reads go through the bounded-retry fetch; sends are a single
// attempt. Chat and message lists are always rebuilt wholesale from
// the gateway response, never merged into prior state.
type ChatService struct {
	gw            gatewayAPI
	tenants       tenantConfigReader
	retryAttempts int
	retryDelay    time.Duration
	fetchLimit    int
}

// SendResult carries the delivered message plus the chat-list entry
// whose preview it replaces, so callers can update their list without
// re-fetching. Only the id and preview of Chat are populated; the
// display name is not known without a list fetch, so callers must keep
// the name they already have.
type SendResult struct {
	ChatID  string             `json:"chat_id"`
	Message models.ChatMessage `json:"message"`
	Chat    models.ChatSummary `json:"chat"`
}

func NewChatService(
	gw gatewayAPI,
	tenants tenantConfigReader,
	retryAttempts int,
	retryDelay time.Duration,
	fetchLimit int,
) *ChatService {
	return &ChatService{
		gw:            gw,
		tenants:       tenants,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
		fetchLimit:    fetchLimit,
	}
}

func (s *ChatService) ListChats(ctx context.Context, tenantID string) ([]models.ChatSummary, error) {
	cfg, err := s.tenantConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	chats, err := retry.Do(ctx, s.retryAttempts, s.retryDelay, func(ctx context.Context) ([]gateway.Chat, error) {
		return s.gw.ListChats(ctx, cfg.WhapiToken)
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summaries = append(summaries, summarize(chat))
	}
	return summaries, nil
}

// ListMessages returns the chat's messages in chronological order.
// The gateway serves them newest first, so the slice is reversed
// before it is handed to the render side.
func (s *ChatService) ListMessages(ctx context.Context, tenantID string, chatID string) ([]models.ChatMessage, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, ErrInvalidInput
	}

	cfg, err := s.tenantConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	raw, err := retry.Do(ctx, s.retryAttempts, s.retryDelay, func(ctx context.Context) ([]gateway.Message, error) {
		return s.gw.ListMessages(ctx, cfg.WhapiToken, chatID, s.fetchLimit)
	})
	if err != nil {
		return nil, err
	}

	messages := make([]models.ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		messages = append(messages, present(raw[i]))
	}
	return messages, nil
}

// SendMessage posts one text message. Empty or whitespace-only bodies
// are rejected before any network call. There is no retry on sends.
func (s *ChatService) SendMessage(ctx context.Context, tenantID string, chatID string, body string) (*SendResult, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.TrimSpace(chatID) == "" {
		return nil, ErrInvalidInput
	}

	cfg, err := s.tenantConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	sent, err := s.gw.SendText(ctx, cfg.WhapiToken, chatID, trimmed)
	if err != nil {
		return nil, err
	}

	message := present(*sent)
	message.FromMe = true
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Body == "" {
		message.Body = trimmed
		message.BubbleWidth = bubbleWidth(message.Type, trimmed)
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	return &SendResult{
		ChatID:  chatID,
		Message: message,
		Chat: models.ChatSummary{
			ID:      chatID,
			Preview: message.Body,
		},
	}, nil
}

func (s *ChatService) ForwardMessage(ctx context.Context, tenantID string, messageID string, to string) (*models.ChatMessage, error) {
	if strings.TrimSpace(messageID) == "" || strings.TrimSpace(to) == "" {
		return nil, ErrInvalidInput
	}

	cfg, err := s.tenantConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	forwarded, err := s.gw.ForwardMessage(ctx, cfg.WhapiToken, messageID, to)
	if err != nil {
		return nil, err
	}

	message := present(*forwarded)
	message.FromMe = true
	return &message, nil
}

func (s *ChatService) ListGroups(ctx context.Context, tenantID string) ([]gateway.Group, error) {
	cfg, err := s.tenantConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.gw.ListGroups(ctx, cfg.WhapiToken)
}

func (s *ChatService) ListContacts(ctx context.Context, tenantID string) ([]gateway.Contact, error) {
	cfg, err := s.tenantConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.gw.ListContacts(ctx, cfg.WhapiToken)
}

func (s *ChatService) ListNewsletters(ctx context.Context, tenantID string) ([]gateway.Newsletter, error) {
	cfg, err := s.tenantConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.gw.ListNewsletters(ctx, cfg.WhapiToken)
}

// MediaLink resolves a downloadable link for an image or other media
// payload referenced by a message.
func (s *ChatService) MediaLink(ctx context.Context, tenantID string, mediaID string) (string, error) {
	if strings.TrimSpace(mediaID) == "" {
		return "", ErrInvalidInput
	}

	cfg, err := s.tenantConfig(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return s.gw.GetMediaLink(ctx, cfg.WhapiToken, mediaID)
}

func (s *ChatService) tenantConfig(ctx context.Context, tenantID string) (*models.TenantConfig, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantNotFound
	}
	cfg, err := s.tenants.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func summarize(chat gateway.Chat) models.ChatSummary {
	name := chat.Name
	if name == "" {
		name = chat.ID
	}

	preview := noMessagesPreview
	if chat.LastMessage != nil {
		preview = previewFor(*chat.LastMessage)
	}

	return models.ChatSummary{
		ID:      chat.ID,
		Name:    name,
		Preview: preview,
	}
}

func previewFor(msg gateway.Message) string {
	switch {
	case msg.Text != nil && msg.Text.Body != "":
		return msg.Text.Body
	case msg.Image != nil && msg.Image.Caption != "":
		return msg.Image.Caption
	case msg.Type == "image":
		return imagePreview
	default:
		return noMessagesPreview
	}
}

func present(msg gateway.Message) models.ChatMessage {
	body := ""
	if msg.Text != nil {
		body = msg.Text.Body
	}

	out := models.ChatMessage{
		ID:        msg.ID,
		Body:      body,
		FromMe:    msg.FromMe,
		Type:      msg.Type,
		Timestamp: time.Unix(msg.Timestamp, 0).UTC(),
	}
	if msg.Timestamp == 0 {
		out.Timestamp = time.Time{}
	}
	if msg.Image != nil {
		out.Image = &models.MessageImage{
			Link:    msg.Image.Link,
			Caption: msg.Image.Caption,
		}
	}
	out.BubbleWidth = bubbleWidth(msg.Type, body)
	return out
}

// bubbleWidth is a presentation hint: text bubbles grow with the body
// up to a cap, image bubbles are fixed.
func bubbleWidth(msgType string, body string) int {
	if msgType == "image" {
		return imageBubbleWidth
	}

	width := len([]rune(body))
	if width < minBubbleWidth {
		return minBubbleWidth
	}
	if width > maxBubbleWidth {
		return maxBubbleWidth
	}
	return width
}
