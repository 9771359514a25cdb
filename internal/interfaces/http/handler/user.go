package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bizbook/backend/internal/application/identity"
	"github.com/bizbook/backend/internal/interfaces/http/middleware"
)

// UpdateProfileRequest represents the profile update request body. Template
// mode rides along as a preference and is applied after the profile fields.
type UpdateProfileRequest struct {
	FirstName    string `json:"first_name" binding:"required,min=1,max=100"`
	LastName     string `json:"last_name" binding:"required,min=1,max=100"`
	Phone        string `json:"phone" binding:"omitempty,max=50"`
	TemplateMode string `json:"template_mode" binding:"omitempty,oneof=classic modern"`
}

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers the user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.PUT("/me", h.UpdateProfile)
	}
}

// UpdateProfile updates the authenticated user's personal details and
// preferences
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.userService.UpdateProfile(c.Request.Context(), identity.UpdateProfileInput{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.TemplateMode != "" && req.TemplateMode != result.User.TemplateMode {
		modeResult, err := h.userService.SetTemplateMode(c.Request.Context(), identity.SetTemplateModeInput{
			UserID:       userID,
			TemplateMode: req.TemplateMode,
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		result = &identity.UpdateProfileResult{User: modeResult.User}
	}

	h.Success(c, CurrentUserResponse{User: toAuthUserResponse(result.User)})
}
