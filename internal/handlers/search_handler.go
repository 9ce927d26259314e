package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/ferazfhansurie/jutaCRM/internal/models"
)

type searchService interface {
	SearchConversations(ctx context.Context, tenantID string, query string) ([]models.SearchHit, error)
}

// SearchHandler runs the token-refresh-then-search flow against the
// conversation provider.
type SearchHandler struct {
	service searchService
}

type searchRequest struct {
	Query string `json:"query"`
}

func NewSearchHandler(service searchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query is required"})
	}

	hits, err := h.service.SearchConversations(c.Context(), tenantID, req.Query)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tenant is not configured"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Conversation search failed"})
	}

	return c.JSON(fiber.Map{"results": hits})
}
