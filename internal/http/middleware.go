package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
)

const (
	ctxAccountID   = "accountID"
	ctxAccountKind = "accountKind"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requireAuth verifies the bearer access token and stores the account
// identity on the request context.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := h.issuer.ParseAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		kind := domain.AccountKind(claims.Kind)
		if !kind.Valid() {
			abortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ctxAccountID, claims.Subject)
		c.Set(ctxAccountKind, kind)
		c.Next()
	}
}

// requireKind restricts a route group to one account population.
func (h *Handler) requireKind(kind domain.AccountKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, got, ok := accountIdentity(c)
		if !ok || got != kind {
			abortError(c, http.StatusForbidden, "You do not have access to this resource")
			return
		}
		c.Next()
	}
}

func accountIdentity(c *gin.Context) (string, domain.AccountKind, bool) {
	id, ok := c.Get(ctxAccountID)
	if !ok {
		return "", "", false
	}
	kind, ok := c.Get(ctxAccountKind)
	if !ok {
		return "", "", false
	}
	idStr, ok := id.(string)
	if !ok || idStr == "" {
		return "", "", false
	}
	kindVal, ok := kind.(domain.AccountKind)
	if !ok {
		return "", "", false
	}
	return idStr, kindVal, true
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
