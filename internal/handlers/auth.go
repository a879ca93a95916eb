package handlers

import (
	"deckshare-backend/internal/config"
	"deckshare-backend/internal/middleware"
	"deckshare-backend/internal/models"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
	config      *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		config:      cfg,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.UserLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, h.config.JWT.Secret, h.config.JWT.ExpireHours)
	if err != nil {
		utils.InternalError(c)
		return
	}

	utils.SuccessWithMessage(c, "login successful", models.UserResponse{
		User:  user,
		Token: token,
	})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	user, exists := c.Get(middleware.ContextUser)
	if !exists {
		utils.Unauthorized(c, "please log in")
		return
	}
	utils.Success(c, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	// tokens are stateless; the client drops its copy
	utils.SuccessWithMessage(c, "logged out", nil)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.PasswordChangeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), currentUserID(c), &req); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "password updated", nil)
}
