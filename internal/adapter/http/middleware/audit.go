package middleware

import (
	"net/http"

	"quantum-bank/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuditAction names a state-changing operation recorded in the audit trail.
type AuditAction string

const (
	AuditActionRegister           AuditAction = "ACCOUNT_REGISTER"
	AuditActionLogin              AuditAction = "ACCOUNT_LOGIN"
	AuditActionLogout             AuditAction = "ACCOUNT_LOGOUT"
	AuditActionEstablishChannel   AuditAction = "CHANNEL_ESTABLISH"
	AuditActionRevokeChannel      AuditAction = "CHANNEL_REVOKE"
	AuditActionInitiateTransfer   AuditAction = "TRANSACTION_INITIATE"
	AuditActionRecordCancellation AuditAction = "TRANSACTION_CANCELLED"
	AuditActionProcessTransfer    AuditAction = "TRANSACTION_PROCESS"
)

// AuditLog emits one structured audit event per successful write.
// It runs after the handler so only committed outcomes are recorded.
func AuditLog(log zerolog.Logger) gin.HandlerFunc {
	auditLog := log.With().Str("component", "audit").Logger()

	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		action, resourceType := mapRouteToAction(c.Request.Method, c.FullPath())
		if action == "" {
			return
		}

		event := auditLog.Info().
			Str("action", string(action)).
			Str("resource_type", resourceType).
			Str("request_id", c.GetString(response.CtxRequestID)).
			Str("ip_address", c.ClientIP()).
			Int("status", status)
		if id, ok := AccountID(c); ok {
			event = event.Str("account_id", id.String())
		}
		if rid := c.Param("id"); rid != "" {
			event = event.Str("resource_id", rid)
		}
		event.Msg("audit")
	}
}

// mapRouteToAction keys on the registered route pattern, not the raw path.
func mapRouteToAction(method, route string) (AuditAction, string) {
	if method != http.MethodPost {
		return "", ""
	}
	switch route {
	case "/api/v1/auth/register":
		return AuditActionRegister, "account"
	case "/api/v1/auth/login":
		return AuditActionLogin, "session"
	case "/api/v1/auth/logout":
		return AuditActionLogout, "session"
	case "/api/v1/channels":
		return AuditActionEstablishChannel, "channel"
	case "/api/v1/channels/:id/revoke":
		return AuditActionRevokeChannel, "channel"
	case "/api/v1/transactions":
		return AuditActionInitiateTransfer, "transaction"
	case "/api/v1/transactions/cancelled":
		return AuditActionRecordCancellation, "transaction"
	case "/api/v1/transactions/:id/process":
		return AuditActionProcessTransfer, "transaction"
	}
	return "", ""
}
