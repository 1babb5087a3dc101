package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quantum-bank/config"
	httpHandler "quantum-bank/internal/adapter/http/handler"
	"quantum-bank/internal/adapter/qrng"
	pgStorage "quantum-bank/internal/adapter/storage/postgres"
	redisStorage "quantum-bank/internal/adapter/storage/redis"
	"quantum-bank/internal/core/ports"
	"quantum-bank/internal/service"
	"quantum-bank/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	qrngHTTPTimeout = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	openAPIPath     = "docs/api/openapi.yaml"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("qkd_mode", cfg.QKD.Mode).
		Msg("Starting Quantum Bank")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret must be set")
	}
	initialBalance, err := decimal.NewFromString(cfg.Account.InitialBalance)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Account.InitialBalance).Msg("Invalid account.initial_balance")
	}

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	vault, err := service.NewAESKeyVault(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize channel key vault")
	}

	// Repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	channelRepo := pgStorage.NewChannelRepo(pool, vault)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Redis stores
	processedCache := redisStorage.NewProcessedCache(rdb)
	sessionStore := redisStorage.NewSessionStore(rdb)

	// Core services
	keyGen := newKeyGenerator(cfg.QKD, log)
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc, initialBalance)
	channelSvc := service.NewChannelService(channelRepo, keyGen, cfg.QKD.LengthBits, log)
	ledgerSvc := service.NewLedgerService(
		txRepo,
		channelRepo,
		accountRepo,
		processedCache,
		service.NewXORCipher(),
		transactor,
		log,
	)

	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.RateLimit.Enabled {
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	openAPISpec, err := os.ReadFile(openAPIPath)
	if err != nil {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
		openAPISpec = nil
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		ChannelSvc:     channelSvc,
		LedgerSvc:      ledgerSvc,
		TokenSvc:       tokenSvc,
		SessionStore:   sessionStore,
		SessionTTL:     cfg.JWT.Expiry,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{
			pgStorage.NewHealthCheck(pool),
			redisStorage.NewHealthCheck(rdb),
		},
		OpenAPISpec: openAPISpec,
		Logger:      log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newKeyGenerator selects the primary key source from qkd.mode. The
// simulated source draws its entropy from the remote QRNG when one is
// configured, else from the local CSPRNG.
func newKeyGenerator(cfg config.QKDConfig, log zerolog.Logger) *service.KeyDistributionEngine {
	var primary ports.RandomSource
	switch cfg.Mode {
	case config.QKDModeSecureRandom:
		primary = service.NewSecureRandomSource()
	default:
		var entropy ports.EntropySource = service.CryptoEntropy{}
		if cfg.BackendURL != "" {
			entropy = qrng.NewClient(cfg.BackendURL, cfg.APIKey, &http.Client{Timeout: qrngHTTPTimeout}, log)
			log.Info().Str("backend_url", cfg.BackendURL).Msg("Using remote QRNG entropy")
		}
		primary = service.NewSimulatedQuantumSource(entropy)
	}
	return service.NewKeyDistributionEngine(primary, cfg.Timeout, log)
}

func ginMode(mode string) string {
	switch mode {
	case gin.ReleaseMode, gin.TestMode:
		return mode
	}
	return gin.DebugMode
}
