package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ferazfhansurie/jutaCRM/internal/config"
	"github.com/ferazfhansurie/jutaCRM/internal/gateway"
	"github.com/ferazfhansurie/jutaCRM/internal/handlers"
	"github.com/ferazfhansurie/jutaCRM/internal/middleware"
	"github.com/ferazfhansurie/jutaCRM/internal/repository"
	"github.com/ferazfhansurie/jutaCRM/internal/services"
	consolews "github.com/ferazfhansurie/jutaCRM/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantConfigRepository(db)

	gatewayClient := gateway.NewClient(cfg.GatewayBaseURL)
	chatService := services.NewChatService(
		gatewayClient,
		tenantRepo,
		cfg.ChatRetryAttempts,
		cfg.ChatRetryDelay,
		cfg.MessageFetchLimit,
	)
	searchClient := services.NewSearchClient(cfg.SearchAPIURL)
	tokenService := services.NewTokenService(tenantRepo, cfg.OAuthTokenURL, searchClient)

	consoleHub := consolews.NewHub()
	go consoleHub.Run()

	authHandler := handlers.NewAuthHandler(userRepo, tenantRepo, cfg.JWTSecret)
	chatHandler := handlers.NewChatHandler(chatService, consoleHub, cfg.JWTSecret)
	directoryHandler := handlers.NewDirectoryHandler(chatService)
	searchHandler := handlers.NewSearchHandler(tokenService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	chats := authProtected.Group("/chats")
	chats.Get("", chatHandler.ListChats)
	chats.Get("/:id/messages", chatHandler.GetMessages)
	chats.Post("/:id/messages", chatHandler.SendMessage)

	authProtected.Post("/messages/:id/forward", chatHandler.ForwardMessage)

	authProtected.Get("/groups", directoryHandler.ListGroups)
	authProtected.Get("/contacts", directoryHandler.ListContacts)
	authProtected.Get("/newsletters", directoryHandler.ListNewsletters)
	authProtected.Get("/media/:id", directoryHandler.GetMediaLink)

	authProtected.Post("/search", searchHandler.Search)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))

	registerDocsRoutes(app, cfg)
}
