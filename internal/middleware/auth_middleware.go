package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/policy"
)

// Context keys for user information
const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
	TokenKey    = "access_token"
)

var errMalformedHeader = apperrors.Auth(apperrors.AuthTokenInvalid, "Authorization header must be 'Bearer <token>'").WithStatus(403)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*policy.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate requires a valid bearer token. A missing header is a 401;
// a malformed header or a bad, expired or revoked token is a 403.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.Unauthorized(c, "Authentication required")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.Respond(c, errMalformedHeader)
			return
		}
		token := parts[1]

		identity, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			apperrors.Respond(c, err)
			return
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(UserRoleKey, identity.Role)
		c.Set(TokenKey, token)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": identity.UserID,
			"role":    identity.Role,
		})

		c.Next()
	}
}

// RequireRole lets the request through only when the authenticated identity
// holds role. It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		identity, ok := GetIdentity(c)
		if !ok {
			log.Warn("Identity not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.Respond(c, policy.ErrForbidden)
			return
		}

		if err := policy.RequireRole(identity, role); err != nil {
			log.Warn("Insufficient permissions", map[string]interface{}{
				"user_id":       identity.UserID,
				"user_role":     identity.Role,
				"required_role": role,
				"path":          c.Request.URL.Path,
			})
			apperrors.Respond(c, err)
			return
		}

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetIdentity rebuilds the caller's identity from context.
func GetIdentity(c *gin.Context) (policy.Identity, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return policy.Identity{}, false
	}
	return policy.Identity{UserID: userID, Role: c.GetString(UserRoleKey)}, true
}

// GetToken returns the raw bearer token of an authenticated request.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
