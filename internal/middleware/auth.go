package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lifehub/internal/model"
	"lifehub/internal/policy"
	"lifehub/pkg/response"
	"lifehub/pkg/token"
)

type AuthMiddleware struct {
	tokens *token.Manager
}

func NewAuthMiddleware(tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth rejects requests without a valid access token and attaches the
// actor to the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := m.actorFromHeader(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		response.SetActor(c, actor)
		c.Next()
	}
}

// OptionalAuth attaches the actor when a valid token is present and the
// anonymous actor otherwise. Used on publicly readable routes so list
// scoping still knows who is asking.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := m.actorFromHeader(c); ok {
			response.SetActor(c, actor)
		} else {
			response.SetActor(c, policy.Anonymous())
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := response.Actor(c)
		if !actor.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) actorFromHeader(c *gin.Context) (policy.Actor, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return policy.Anonymous(), false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return policy.Anonymous(), false
	}

	claims, err := m.tokens.ParseAccess(parts[1])
	if err != nil {
		return policy.Anonymous(), false
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return policy.Anonymous(), false
	}

	role := model.Role(claims.Role)
	if !role.Valid() {
		role = model.RoleUser
	}

	return policy.NewActor(userID, role), true
}
