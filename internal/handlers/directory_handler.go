package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ferazfhansurie/jutaCRM/internal/gateway"
)

type directoryService interface {
	ListGroups(ctx context.Context, tenantID string) ([]gateway.Group, error)
	ListContacts(ctx context.Context, tenantID string) ([]gateway.Contact, error)
	ListNewsletters(ctx context.Context, tenantID string) ([]gateway.Newsletter, error)
	MediaLink(ctx context.Context, tenantID string, mediaID string) (string, error)
}

// DirectoryHandler serves the sidebar listings that are plain gateway
// passthroughs: groups, contacts, newsletters.
type DirectoryHandler struct {
	service directoryService
}

func NewDirectoryHandler(service directoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func (h *DirectoryHandler) ListGroups(c *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	groups, err := h.service.ListGroups(c.Context(), tenantID)
	if err != nil {
		return mapChatError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

func (h *DirectoryHandler) ListContacts(c *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	contacts, err := h.service.ListContacts(c.Context(), tenantID)
	if err != nil {
		return mapChatError(c, err)
	}
	return c.JSON(fiber.Map{"contacts": contacts})
}

func (h *DirectoryHandler) ListNewsletters(c *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	newsletters, err := h.service.ListNewsletters(c.Context(), tenantID)
	if err != nil {
		return mapChatError(c, err)
	}
	return c.JSON(fiber.Map{"newsletters": newsletters})
}

func (h *DirectoryHandler) GetMediaLink(c *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	link, err := h.service.MediaLink(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return mapChatError(c, err)
	}
	return c.JSON(fiber.Map{"link": link})
}
