package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alfaruq-id/barakah-api/internal/config"
	"github.com/alfaruq-id/barakah-api/internal/handler"
	"github.com/alfaruq-id/barakah-api/internal/middleware"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	PostHandler         *handler.PostHandler
	FeedHandler         *handler.FeedHandler
	FollowHandler       *handler.FollowHandler
	ChatHandler         *handler.ChatHandler
	NotificationHandler *handler.NotificationHandler
	ModerationHandler   *handler.ModerationHandler
	StreamHandler       *handler.StreamHandler
	PushHandler         *handler.PushHandler
	RealtimeHandler     *handler.RealtimeHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/healthz", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.PostHandler != nil || deps.FeedHandler != nil {
		posts := api.Group("/posts", jwtMiddleware)
		// The feed route goes first so "/:id" never shadows it.
		if deps.FeedHandler != nil {
			deps.FeedHandler.Register(posts)
		}
		if deps.PostHandler != nil {
			deps.PostHandler.Register(posts)
		}
	}

	if deps.FollowHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.FollowHandler.Register(users)
	}

	if deps.ChatHandler != nil {
		chat := api.Group("/chat", jwtMiddleware)
		deps.ChatHandler.Register(chat)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.StreamHandler != nil {
		streams := api.Group("/streams", jwtMiddleware)
		deps.StreamHandler.Register(streams)
	}

	if deps.PushHandler != nil {
		deps.PushHandler.RegisterPublic(api.Group("/push"))
		push := api.Group("/push", jwtMiddleware)
		deps.PushHandler.Register(push)
	}

	if deps.ModerationHandler != nil {
		reports := api.Group("/reports", jwtMiddleware)
		deps.ModerationHandler.RegisterPublic(reports)

		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleModerator, models.RoleAdmin))
		deps.ModerationHandler.RegisterAdmin(admin)
	}

	if deps.RealtimeHandler != nil {
		realtime := api.Group("/realtime", jwtMiddleware)
		deps.RealtimeHandler.Register(realtime)
	}
}
