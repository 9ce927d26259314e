package handlers

import (
	"context"
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/ferazfhansurie/jutaCRM/internal/models"
	"github.com/ferazfhansurie/jutaCRM/internal/retry"
	"github.com/ferazfhansurie/jutaCRM/internal/services"
	"github.com/ferazfhansurie/jutaCRM/internal/session"
	consolews "github.com/ferazfhansurie/jutaCRM/internal/websocket"
	"github.com/ferazfhansurie/jutaCRM/pkg/utils"
)

type chatConsoleService interface {
	ListChats(ctx context.Context, tenantID string) ([]models.ChatSummary, error)
	ListMessages(ctx context.Context, tenantID string, chatID string) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, tenantID string, chatID string, body string) (*services.SendResult, error)
	ForwardMessage(ctx context.Context, tenantID string, messageID string, to string) (*models.ChatMessage, error)
}

type ChatHandler struct {
	service   chatConsoleService
	hub       *consolews.Hub
	jwtSecret string
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

type forwardRequest struct {
	To string `json:"to"`
}

func NewChatHandler(service chatConsoleService, hub *consolews.Hub, jwtSecret string) *ChatHandler {
	return &ChatHandler{
		service:   service,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	chats, err := h.service.ListChats(c.Context(), tenantID)
	if err != nil {
		return mapChatError(c, err)
	}

	return c.JSON(fiber.Map{"chats": chats})
}

func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	chatID := strings.TrimSpace(c.Params("id"))
	if chatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid chat id"})
	}

	messages, err := h.service.ListMessages(c.Context(), tenantID, chatID)
	if err != nil {
		return mapChatError(c, err)
	}

	return c.JSON(fiber.Map{
		"chat_id":  chatID,
		"messages": messages,
	})
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	chatID := strings.TrimSpace(c.Params("id"))
	if chatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid chat id"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.service.SendMessage(c.Context(), tenantID, chatID, req.Body)
	if err != nil {
		return mapChatError(c, err)
	}

	message := result.Message
	h.hub.Broadcast(tenantID, session.Update{
		Kind:    session.UpdateMessage,
		ChatID:  result.ChatID,
		Message: &message,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": result.Message,
		"chat":    result.Chat,
	})
}

func (h *ChatHandler) ForwardMessage(c *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	messageID := strings.TrimSpace(c.Params("id"))
	if messageID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message id"})
	}

	var req forwardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	message, err := h.service.ForwardMessage(c.Context(), tenantID, messageID, req.To)
	if err != nil {
		return mapChatError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message})
}

func (h *ChatHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("tenant_id", claims.TenantID)
	return c.Next()
}

func (h *ChatHandler) HandleWebSocket(conn *websocket.Conn) {
	tenantID, _ := conn.Locals("tenant_id").(string)
	sess := session.New(consoleOps{h.service}, tenantID)
	client := consolews.NewClient(h.hub, conn, tenantID, sess)

	h.hub.Register(client)
	go client.WritePump()
	go client.PumpSession()
	client.ReadPump()
}

// consoleOps narrows the handler's service interface to what a console
// session needs.
type consoleOps struct {
	svc chatConsoleService
}

func (o consoleOps) ListChats(ctx context.Context, tenantID string) ([]models.ChatSummary, error) {
	return o.svc.ListChats(ctx, tenantID)
}

func (o consoleOps) ListMessages(ctx context.Context, tenantID string, chatID string) ([]models.ChatMessage, error) {
	return o.svc.ListMessages(ctx, tenantID, chatID)
}

func (o consoleOps) SendMessage(ctx context.Context, tenantID string, chatID string, body string) (*services.SendResult, error) {
	return o.svc.SendMessage(ctx, tenantID, chatID, body)
}

func (h *ChatHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}

func tenantFromLocals(c *fiber.Ctx) (string, error) {
	tenantID, ok := c.Locals("tenant_id").(string)
	if !ok || strings.TrimSpace(tenantID) == "" {
		return "", errors.New("missing tenant")
	}
	return tenantID, nil
}

func mapChatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrTenantNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tenant is not configured"})
	case errors.Is(err, retry.ErrExhausted):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Messaging gateway unavailable"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process chat request"})
	}
}
