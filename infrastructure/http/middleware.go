package http

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Authenticate resolves the caller from the bearer token, records it in the
// member directory and stores it in the request context for the handlers
// and the websocket upgrade.
func Authenticate(log *slog.Logger, resolver *auth.Resolver, members contract.IMemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.ResolveRequest(c.Request)
		if err != nil {
			log.Debug("Rejected request", "path", c.FullPath(), "error", err)
			abortWithError(c, err)
			return
		}
		if err := members.EnsureMember(c.Request.Context(), identity.Member()); err != nil {
			log.Error("Unable to record member", "identity", identity.Email, "error", err)
			abortWithError(c, err)
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("Request served",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

func identityOf(c *gin.Context) auth.Identity {
	identity, _ := auth.IdentityFrom(c.Request.Context())
	return identity
}
