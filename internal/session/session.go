// Package session holds the state behind one open chat console: the
// chat list, the selected chat, and its visible messages. All state is
// scoped to the session object; nothing lives in package globals.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ferazfhansurie/jutaCRM/internal/models"
	"github.com/ferazfhansurie/jutaCRM/internal/services"
)

var ErrNoSelection = errors.New("no chat selected")

type chatOps interface {
	ListChats(ctx context.Context, tenantID string) ([]models.ChatSummary, error)
	ListMessages(ctx context.Context, tenantID string, chatID string) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, tenantID string, chatID string, body string) (*services.SendResult, error)
}

// Update is one state change pushed to the console client.
type Update struct {
	Kind     string               `json:"type"`
	ChatID   string               `json:"chat_id,omitempty"`
	Loading  bool                 `json:"loading,omitempty"`
	Chats    []models.ChatSummary `json:"chats,omitempty"`
	Messages []models.ChatMessage `json:"messages,omitempty"`
	Message  *models.ChatMessage  `json:"message,omitempty"`
	Error    string               `json:"error,omitempty"`
}

const (
	UpdateChats    = "chats"
	UpdateLoading  = "loading"
	UpdateMessages = "messages"
	UpdateMessage  = "message"
	UpdateError    = "error"
)

// ChatSession serializes all mutation through its mutex and tags every
// message fetch with a generation number. Selecting a new chat bumps
// the generation and cancels the in-flight fetch, so a slow fetch for
// a previous selection can never overwrite the current one.
type ChatSession struct {
	svc      chatOps
	tenantID string

	mu       sync.Mutex
	chats    []models.ChatSummary
	selected string
	messages []models.ChatMessage
	loading  bool
	gen      int
	cancel   context.CancelFunc
	closed   bool

	updates chan Update
}

func New(svc chatOps, tenantID string) *ChatSession {
	return &ChatSession{
		svc:      svc,
		tenantID: tenantID,
		updates:  make(chan Update, 16),
	}
}

func (s *ChatSession) Updates() <-chan Update {
	return s.updates
}

// LoadChats replaces the chat list wholesale from the gateway.
func (s *ChatSession) LoadChats(ctx context.Context) error {
	chats, err := s.svc.ListChats(ctx, s.tenantID)
	if err != nil {
		s.emitError("", err)
		return err
	}

	s.mu.Lock()
	s.chats = chats
	s.mu.Unlock()

	s.emit(Update{Kind: UpdateChats, Chats: chats})
	return nil
}

// SelectChat makes chatID the current selection: the visible message
// list is cleared, the loading flag raised, any in-flight fetch for
// the previous selection cancelled, and a fresh fetch started. An
// empty id is a no-op.
func (s *ChatSession) SelectChat(chatID string) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.selected = chatID
	s.messages = nil
	s.loading = true
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	s.emit(Update{Kind: UpdateLoading, ChatID: chatID, Loading: true})
	go s.fetchMessages(ctx, gen, chatID)
}

func (s *ChatSession) fetchMessages(ctx context.Context, gen int, chatID string) {
	messages, err := s.svc.ListMessages(ctx, s.tenantID, chatID)

	s.mu.Lock()
	if gen != s.gen || s.closed {
		// A newer selection owns the view now.
		s.mu.Unlock()
		return
	}
	s.loading = false
	if err == nil {
		s.messages = messages
	}
	s.mu.Unlock()

	if err != nil {
		s.emitError(chatID, err)
		return
	}
	s.emit(Update{Kind: UpdateMessages, ChatID: chatID, Messages: messages})
}

// Send posts body to the selected chat. On success the message is
// appended to the visible list and the chat's preview updated, without
// a re-fetch.
func (s *ChatSession) Send(ctx context.Context, body string) error {
	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()

	if selected == "" {
		return ErrNoSelection
	}
	if strings.TrimSpace(body) == "" {
		return services.ErrInvalidInput
	}

	result, err := s.svc.SendMessage(ctx, s.tenantID, selected, body)
	if err != nil {
		s.emitError(selected, err)
		return err
	}

	s.mu.Lock()
	if s.selected == result.ChatID {
		s.messages = append(s.messages, result.Message)
	}
	for i := range s.chats {
		if s.chats[i].ID == result.ChatID {
			s.chats[i].Preview = result.Message.Body
			break
		}
	}
	s.mu.Unlock()

	message := result.Message
	s.emit(Update{Kind: UpdateMessage, ChatID: result.ChatID, Message: &message})
	return nil
}

// Snapshot returns a copy of the current view state.
func (s *ChatSession) Snapshot() (chats []models.ChatSummary, selected string, messages []models.ChatMessage, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats = append(chats, s.chats...)
	messages = append(messages, s.messages...)
	return chats, s.selected, messages, s.loading
}

func (s *ChatSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	close(s.updates)
}

func (s *ChatSession) emitError(chatID string, err error) {
	s.emit(Update{Kind: UpdateError, ChatID: chatID, Error: err.Error()})
}

func (s *ChatSession) emit(update Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.updates <- update:
	default:
		// Slow consumer; drop rather than block the session.
	}
}
