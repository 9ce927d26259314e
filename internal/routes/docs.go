package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ferazfhansurie/jutaCRM/internal/config"
)

type docEndpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Auth        bool   `json:"auth"`
}

// registerDocsRoutes exposes a machine-readable API index in
// development when docs are enabled. It is a no-op otherwise.
func registerDocsRoutes(app *fiber.App, cfg *config.Config) {
	if !cfg.DocsEnabled() {
		return
	}

	endpoints := []docEndpoint{
		{Method: "POST", Path: "/api/auth/register", Description: "Create a dashboard account for a provisioned tenant"},
		{Method: "POST", Path: "/api/auth/login", Description: "Exchange credentials for a JWT"},
		{Method: "GET", Path: "/api/auth/me", Description: "Current account", Auth: true},
		{Method: "GET", Path: "/api/v1/chats", Description: "List the tenant's chats with previews", Auth: true},
		{Method: "GET", Path: "/api/v1/chats/:id/messages", Description: "Messages for a chat, chronological", Auth: true},
		{Method: "POST", Path: "/api/v1/chats/:id/messages", Description: "Send a text message", Auth: true},
		{Method: "POST", Path: "/api/v1/messages/:id/forward", Description: "Forward a message to another chat", Auth: true},
		{Method: "GET", Path: "/api/v1/groups", Description: "List groups", Auth: true},
		{Method: "GET", Path: "/api/v1/contacts", Description: "List contacts", Auth: true},
		{Method: "GET", Path: "/api/v1/newsletters", Description: "List newsletters", Auth: true},
		{Method: "GET", Path: "/api/v1/media/:id", Description: "Resolve a media download link", Auth: true},
		{Method: "POST", Path: "/api/v1/search", Description: "Refresh tokens and search conversations", Auth: true},
		{Method: "GET", Path: "/api/v1/ws", Description: "Chat console websocket", Auth: true},
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":      "jutaCRM API",
			"endpoints": endpoints,
		})
	})
}
