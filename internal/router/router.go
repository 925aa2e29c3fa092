package router

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"

	"careercompass/internal/auth"
	"careercompass/internal/config"
	"careercompass/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	gate *auth.Gate,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	aiHandler *handler.AIHandler,
) {
	SetLogLevel(e, cfg.LogLevel)

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	protect := gate.Middleware()

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/google", authHandler.Google)

	// Secured routes
	api.GET("/auth/me", userHandler.Me, protect)
	api.POST("/auth/logout", authHandler.Logout, protect)

	ai := api.Group("/ai", protect)
	ai.POST("/deep-consult", aiHandler.DeepConsult)
	ai.POST("/generate-roadmap", aiHandler.GenerateRoadmap)
	ai.GET("/roadmap", aiHandler.GetRoadmap)
	ai.PATCH("/roadmap/months/:month", aiHandler.ToggleMonth)
}

// SetLogLevel applies a textual log level to the echo logger.
func SetLogLevel(e *echo.Echo, level string) {
	switch strings.ToLower(level) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "", "info":
		e.Logger.SetLevel(log.INFO)
	case "warn":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.INFO)
		e.Logger.Warnf("unknown log level %q, using info", level)
	}
}
