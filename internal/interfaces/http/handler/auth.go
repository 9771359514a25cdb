package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizbook/backend/internal/application/identity"
	"github.com/bizbook/backend/internal/infrastructure/config"
	"github.com/bizbook/backend/internal/interfaces/http/middleware"
)

// refreshCookieName is the cookie carrying the refresh token
const refreshCookieName = "refresh_token"

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	cookieCfg   config.CookieConfig
	rateLimit   gin.HandlerFunc
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, cookieCfg config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieCfg:   cookieCfg,
	}
}

// WithRateLimit applies mw to every auth route, typically the stricter
// credential-endpoint limiter.
func (h *AuthHandler) WithRateLimit(mw gin.HandlerFunc) *AuthHandler {
	h.rateLimit = mw
	return h
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	if h.rateLimit != nil {
		auth.Use(h.rateLimit)
	}
	{
		auth.POST("/register", h.Register)
		auth.POST("/business-profile", h.CompleteBusinessProfile)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.GetCurrentUser)
		auth.POST("/change-password", h.ChangePassword)
	}
}

// Register creates a pending account from personal details
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), identity.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, CurrentUserResponse{User: toAuthUserResponse(result.User)})
}

// CompleteBusinessProfile finishes registration by recording business details
// and assigning the generated business id
func (h *AuthHandler) CompleteBusinessProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CompleteBusinessProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.CompleteBusinessProfile(c.Request.Context(), identity.CompleteBusinessProfileInput{
		UserID:        userID,
		BusinessName:  req.BusinessName,
		BusinessEmail: req.BusinessEmail,
		BusinessPhone: req.BusinessPhone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CurrentUserResponse{User: toAuthUserResponse(result.User)})
}

// Login authenticates a user and issues a token pair. The refresh token is
// also set as an HTTP-only cookie for browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshTokenExpiresAt)

	h.Success(c, LoginResponse{
		Token: TokenResponse{
			AccessToken:           result.AccessToken,
			RefreshToken:          result.RefreshToken,
			AccessTokenExpiresAt:  result.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
			TokenType:             result.TokenType,
		},
		User: toAuthUserResponse(result.User),
	})
}

// RefreshToken rotates a refresh token into a new token pair. The token is
// read from the body, falling back to the refresh cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// An empty or absent body is fine when the cookie is present.
	var req RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(refreshCookieName); err == nil {
			req.RefreshToken = cookie
		}
	}
	if req.RefreshToken == "" {
		h.BadRequest(c, "Refresh token is required")
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), identity.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshTokenExpiresAt)

	h.Success(c, RefreshTokenResponse{
		Token: TokenResponse{
			AccessToken:           result.AccessToken,
			RefreshToken:          result.RefreshToken,
			AccessTokenExpiresAt:  result.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
			TokenType:             result.TokenType,
		},
	})
}

// Logout revokes the current access token and, when available, the refresh
// token from the body or cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		h.BadRequest(c, "Invalid user ID in token")
		return
	}

	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(refreshCookieName); err == nil {
			req.RefreshToken = cookie
		}
	}

	err = h.authService.Logout(c.Request.Context(), identity.LogoutInput{
		UserID:       userID,
		AccessJTI:    claims.ID,
		AccessTTL:    claims.GetRemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearRefreshCookie(c)

	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

// GetCurrentUser returns the authenticated user's profile
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.authService.GetCurrentUser(c.Request.Context(), identity.GetCurrentUserInput{
		UserID: userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CurrentUserResponse{User: toAuthUserResponse(result.User)})
}

// ChangePassword changes the current user's password and revokes all of
// their existing sessions
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearRefreshCookie(c)

	h.Success(c, gin.H{"message": "Password changed successfully"})
}

// setRefreshCookie stores the refresh token in an HTTP-only cookie
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     h.cookieCfg.Path,
		Domain:   h.cookieCfg.Domain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   h.cookieCfg.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(h.cookieCfg.SameSite),
	})
}

// clearRefreshCookie expires the refresh cookie
func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     h.cookieCfg.Path,
		Domain:   h.cookieCfg.Domain,
		MaxAge:   -1,
		Secure:   h.cookieCfg.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(h.cookieCfg.SameSite),
	})
}

func parseSameSite(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
