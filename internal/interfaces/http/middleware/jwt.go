package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bizbook/backend/internal/infrastructure/auth"
	"github.com/bizbook/backend/internal/infrastructure/logger"
	"github.com/bizbook/backend/internal/interfaces/http/dto"
)

// Keys under which JWT claims are exposed to handlers.
const (
	JWTClaimsKey     = "jwt_claims"
	JWTUserIDKey     = "jwt_user_id"
	JWTEmailKey      = "jwt_email"
	JWTBusinessIDKey = "jwt_business_id"
	JWTRoleKey       = "jwt_role"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// JWTMiddlewareConfig configures token validation for protected routes.
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService

	// RevocationStore, when set, rejects tokens revoked by logout or
	// password change.
	RevocationStore auth.TokenRevocationStore

	// SkipPaths and SkipPathPrefixes bypass authentication entirely.
	SkipPaths        []string
	SkipPathPrefixes []string

	// OnError overrides the default 401 response.
	OnError func(c *gin.Context, err error)

	Logger *zap.Logger
}

// DefaultJWTConfig leaves health checks and the public auth endpoints open.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
		},
	}
}

// JWTAuthMiddleware authenticates requests with the default configuration.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig authenticates requests using cfg.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipAuth(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			handleAuthError(c, cfg, err, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		if revoked := checkRevocation(c, cfg, claims); revoked {
			return
		}

		setClaims(c, claims)

		// propagate the user id into the request context so repository
		// and service logs carry it
		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("email", claims.Email),
			)
		}

		c.Next()
	}
}

func skipAuth(cfg JWTMiddlewareConfig, path string) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	token, found := strings.CutPrefix(header, BearerPrefix)
	if !found || token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// checkRevocation rejects tokens revoked by logout (jti) or invalidated by a
// password change (issued-at cutoff). Store failures are logged but do not
// block the request, availability over strictness. Returns true when the
// request has been aborted.
func checkRevocation(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) bool {
	if cfg.RevocationStore == nil {
		return false
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := cfg.RevocationStore.IsRevoked(ctx, claims.UserID, claims.ID)
		switch {
		case err != nil:
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.Error(err))
			}
		case revoked:
			handleAuthError(c, cfg, auth.ErrTokenRevoked, "Token has been revoked")
			return true
		}
	}

	if claims.UserID != "" {
		revoked, err := cfg.RevocationStore.IsRevokedSince(ctx, claims.UserID, claims.GetIssuedAtTime())
		switch {
		case err != nil:
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check session invalidation",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			}
		case revoked:
			handleAuthError(c, cfg, auth.ErrTokenRevoked, "Session has been invalidated")
			return true
		}
	}

	return false
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTEmailKey, claims.Email)
	c.Set(JWTBusinessIDKey, claims.BusinessID)
	c.Set(JWTRoleKey, claims.Role)
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code, msg := authErrorCode(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, msg))
}

func authErrorCode(err error) (code, message string) {
	switch err {
	case auth.ErrExpiredToken:
		return "TOKEN_EXPIRED", "Token has expired"
	case auth.ErrInvalidToken:
		return "INVALID_TOKEN", "Invalid token"
	case auth.ErrInvalidTokenType:
		return "INVALID_TOKEN_TYPE", "Invalid token type"
	case auth.ErrTokenNotYetValid:
		return "TOKEN_NOT_VALID", "Token is not yet valid"
	case auth.ErrTokenRevoked:
		return "TOKEN_REVOKED", "Token has been revoked"
	default:
		return "UNAUTHORIZED", "Authentication required"
	}
}

// GetJWTClaims returns the validated claims, or nil on public routes.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(JWTClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// MustGetJWTClaims panics when called outside an authenticated route.
func MustGetJWTClaims(c *gin.Context) *auth.Claims {
	claims := GetJWTClaims(c)
	if claims == nil {
		panic("jwt claims not found in context")
	}
	return claims
}

func contextString(c *gin.Context, key string) string {
	if v, exists := c.Get(key); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetJWTUserID returns the authenticated user's id, or "".
func GetJWTUserID(c *gin.Context) string {
	return contextString(c, JWTUserIDKey)
}

// GetJWTEmail returns the authenticated user's email, or "".
func GetJWTEmail(c *gin.Context) string {
	return contextString(c, JWTEmailKey)
}

// GetJWTBusinessID returns the authenticated user's business id, or "".
func GetJWTBusinessID(c *gin.Context) string {
	return contextString(c, JWTBusinessIDKey)
}

// GetJWTRole returns the authenticated user's role, or "".
func GetJWTRole(c *gin.Context) string {
	return contextString(c, JWTRoleKey)
}

// OptionalJWTAuthMiddleware extracts claims when a valid token is present but
// never rejects the request.
func OptionalJWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		if claims, err := jwtService.ValidateAccessToken(tokenString); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}
