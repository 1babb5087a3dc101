package middleware

import (
	"strconv"
	"time"

	redisStore "quantum-bank/internal/adapter/storage/redis"
	"quantum-bank/pkg/apperror"
	"quantum-bank/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// Endpoint groups with their own counters.
const (
	GroupAuthLogin    = "auth_login"
	GroupAuthRegister = "auth_register"
	GroupAccounts     = "accounts"
	GroupChannels     = "channels"
	GroupTransactions = "transactions"
	GroupProcess      = "transactions_process"
)

// DefaultRateLimitRules returns the rate limits per endpoint group.
// Channel establishment runs the key distribution engine, so it is
// budgeted tighter than plain reads.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		GroupAuthLogin:    {Limit: 10, Window: time.Minute},
		GroupAuthRegister: {Limit: 5, Window: time.Hour},
		GroupAccounts:     {Limit: 60, Window: time.Minute},
		GroupChannels:     {Limit: 20, Window: time.Minute},
		GroupTransactions: {Limit: 60, Window: time.Minute},
		GroupProcess:      {Limit: 30, Window: time.Minute},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
// Redis failures degrade to allowing the request.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateLimitIdentifier(c) + ":" + group

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

// rateLimitIdentifier scopes counters to the authenticated account, or to
// the client IP on public routes.
func rateLimitIdentifier(c *gin.Context) string {
	if id, ok := AccountID(c); ok {
		return "account:" + id.String()
	}
	return "ip:" + c.ClientIP()
}
