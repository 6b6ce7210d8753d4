package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gridspace-io/gridspace/internal/infra/session"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/serializer"
)

// PrincipalKey is the gin context key holding the *model.Principal.
const PrincipalKey = "principal"

// SessionToken extracts the session token from the Authorization bearer header, falling back
// to the session cookie.
func SessionToken(c *gin.Context, cookieName string) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// SessionAuth resolves the session token against the store and sets the principal in the context.
// It also sets the user_id attribute on the current span.
func SessionAuth(cookieName string, store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		data, err := store.Get(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.ServerErr("session lookup failed", err))
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.String("user_id", data.UserID))
		}

		c.Set(PrincipalKey, &model.Principal{UserID: data.UserID, Email: data.Email})
		c.Next()
	}
}
