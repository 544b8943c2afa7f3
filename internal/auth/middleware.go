package auth

import (
	"context"
	"net/http"
	"strings"

	"quickbite/models"

	"github.com/gin-gonic/gin"
)

// RoleDirectory resolves a user's single active role. Implemented by
// repository.RoleRepository.
type RoleDirectory interface {
	GetActiveRole(ctx context.Context, uid string) (models.Role, error)
}

type roleKey struct{}

// RoleFromContext retrieves the resolved role injected by RequireRoles.
func RoleFromContext(ctx context.Context) (models.Role, bool) {
	r, ok := ctx.Value(roleKey{}).(models.Role)
	return r, ok
}

// Bearer extracts and validates the Authorization bearer token, injecting
// the Principal into the request context. Requests without a valid token are
// rejected with 401.
func Bearer(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "no token provided"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid authorization header"})
			return
		}
		p, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// RequireRoles is the single authorization gate: it resolves the caller's
// active role from the role directory once, checks it against the allowed
// set, and injects it into the request context. Admins pass every gate.
// A missing or deactivated assignment is treated as "no role".
func RequireRoles(dir RoleDirectory, allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := FromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing principal"})
			return
		}
		role, err := dir.GetActiveRole(c.Request.Context(), p.UID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "role lookup failed"})
			return
		}
		if role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "no active role assigned"})
			return
		}
		permitted := role == models.RoleAdmin
		for _, a := range allowed {
			if role == a {
				permitted = true
				break
			}
		}
		if !permitted {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "insufficient role"})
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), roleKey{}, role))
		c.Next()
	}
}

// UID returns the authenticated caller's uid, or empty when unauthenticated.
func UID(c *gin.Context) string {
	p, ok := FromContext(c.Request.Context())
	if !ok {
		return ""
	}
	return p.UID
}
