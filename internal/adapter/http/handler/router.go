package handler

import (
	"time"

	"quantum-bank/internal/adapter/http/middleware"
	redisStore "quantum-bank/internal/adapter/storage/redis"
	"quantum-bank/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	maxRequestBody    = 1 << 20 // 1 MB
	defaultSessionTTL = 24 * time.Hour
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	ChannelSvc     ports.ChannelService
	LedgerSvc      ports.LedgerService
	TokenSvc       ports.TokenService
	SessionStore   ports.SessionStore
	SessionTTL     time.Duration              // zero = 24h
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	OpenAPISpec    []byte // nil = /swagger/spec returns 404
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxRequestBody))
	r.Use(middleware.AuditLog(deps.Logger))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	docs := NewDocsHandler(deps.OpenAPISpec)
	swagger := r.Group("/swagger")
	{
		swagger.GET("", docs.UI)
		swagger.GET("/spec", docs.Spec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	sessionTTL := deps.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}

	v1 := r.Group("/api/v1")

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.AuthSvc, deps.SessionStore)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl(middleware.GroupAuthRegister), authHandler.Register)
		auth.POST("/login", rl(middleware.GroupAuthLogin), authHandler.Login)
		auth.POST("/logout", jwtAuth, rl(middleware.GroupAccounts), authHandler.Logout)
	}

	// --- JWT-authenticated routes ---

	accountHandler := NewAccountHandler(deps.AuthSvc, deps.LedgerSvc)
	accounts := v1.Group("/accounts", jwtAuth)
	{
		accounts.GET("/me", rl(middleware.GroupAccounts), accountHandler.Me)
	}

	channelHandler := NewChannelHandler(deps.ChannelSvc, deps.SessionStore, sessionTTL, deps.Logger)
	channels := v1.Group("/channels", jwtAuth)
	{
		channels.POST("", rl(middleware.GroupChannels), channelHandler.Establish)
		channels.GET("", rl(middleware.GroupAccounts), channelHandler.List)
		channels.GET("/:id", rl(middleware.GroupAccounts), channelHandler.Get)
		channels.POST("/:id/revoke", rl(middleware.GroupChannels), channelHandler.Revoke)
	}

	txHandler := NewTransactionHandler(deps.LedgerSvc, deps.SessionStore)
	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.POST("", rl(middleware.GroupTransactions), txHandler.Initiate)
		transactions.POST("/cancelled", rl(middleware.GroupTransactions), txHandler.RecordCancelled)
		transactions.POST("/:id/process", rl(middleware.GroupProcess), txHandler.Process)
		transactions.GET("", rl(middleware.GroupAccounts), txHandler.List)
	}

	return r
}
