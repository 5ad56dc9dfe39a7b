package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reliefnet-backend-go/internal/auth"
	"reliefnet-backend-go/internal/core"
)

const actorKey = "actor"

// TokenParser validates an access token and returns its claims.
type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// Authenticator resolves the caller from the Authorization header.
type Authenticator struct {
	tokens TokenParser
}

// NewAuthenticator panics on a nil parser; it is a wiring error.
func NewAuthenticator(tokens TokenParser) *Authenticator {
	if tokens == nil {
		panic("NewAuthenticator requires a non-nil TokenParser")
	}
	return &Authenticator{tokens: tokens}
}

// RequireAuth rejects the request unless it carries a valid bearer token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.authenticate(c) {
			c.Next()
		}
	}
}

// Identify attaches the caller when a valid token is present and never
// rejects the request.
func (a *Authenticator) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.identify(c)
		c.Next()
	}
}

// authenticate writes the rejection itself and reports whether the request
// may proceed.
func (a *Authenticator) authenticate(c *gin.Context) bool {
	header := c.GetHeader("Authorization")
	if header == "" {
		abort(c, http.StatusUnauthorized, "Access token required", "")
		return false
	}
	token, ok := bearer(header)
	if !ok {
		abort(c, http.StatusUnauthorized, "Invalid token format", "")
		return false
	}
	claims, err := a.tokens.ParseToken(token)
	if err != nil {
		abort(c, http.StatusForbidden, "Invalid or expired token", err.Error())
		return false
	}
	c.Set(actorKey, core.Actor{ID: claims.ID, Role: claims.Role})
	return true
}

func (a *Authenticator) identify(c *gin.Context) {
	token, ok := bearer(c.GetHeader("Authorization"))
	if !ok {
		return
	}
	if claims, err := a.tokens.ParseToken(token); err == nil {
		c.Set(actorKey, core.Actor{ID: claims.ID, Role: claims.Role})
	}
}

func bearer(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// ActorFrom returns the caller attached by the auth middleware, or the
// anonymous actor.
func ActorFrom(c *gin.Context) core.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(core.Actor); ok {
			return actor
		}
	}
	return core.Actor{}
}

// abort writes the shared response envelope. It mirrors the api package's
// envelope so middleware does not import handlers.
func abort(c *gin.Context, status int, message, detail string) {
	body := gin.H{"success": false, "message": message}
	if detail != "" {
		body["error"] = detail
	}
	c.AbortWithStatusJSON(status, body)
}
