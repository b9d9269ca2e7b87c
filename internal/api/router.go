package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/visioncall/calling-api/internal/api/handler"
	"github.com/visioncall/calling-api/internal/api/middleware"
	"github.com/visioncall/calling-api/internal/core/domain"
	"github.com/visioncall/calling-api/internal/core/ports"
)

// Deps carries everything the router needs. The caller owns construction and
// lifecycle (the dispatcher in particular is started and stopped outside).
type Deps struct {
	Users         ports.UserRepository
	Auth          ports.AuthService
	Credentials   ports.CredentialService
	Messages      ports.MessageService
	Notifications ports.NotificationService
	MediaTokens   ports.MediaTokenProvider
	Dispatcher    handler.NotificationDispatcher

	Mongo *mongo.Database
	Redis *redis.Client

	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("calling"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Credentials)
	userHandler := handler.NewUserHandler(deps.Users)
	messageHandler := handler.NewMessageHandler(deps.Messages, deps.Notifications, deps.Dispatcher, deps.Log)
	rtcHandler := handler.NewRTCHandler(deps.Notifications, deps.MediaTokens, deps.Dispatcher)

	authRequired := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/verify-email-id", authHandler.VerifyEmail)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.GET("/verify-password-key", authHandler.VerifyPasswordKey)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.POST("/change-password", authHandler.ChangePassword, authRequired)

	// --- User routes ---
	user := e.Group("/api/user", authRequired)
	user.GET("/me", userHandler.Me)
	user.POST("/fcm-token", userHandler.SetFCMToken)
	user.GET("/:id", userHandler.Get, middleware.RBAC(domain.RoleAdmin))

	// --- Messaging and call routes ---
	e.POST("/api/msg/send", messageHandler.Send, authRequired)
	e.POST("/api/rtc/call", rtcHandler.Call, authRequired)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
