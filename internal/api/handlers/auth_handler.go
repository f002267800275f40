package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-crm-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/models"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
)

// ============================================
// Auth Handler
// ============================================

type AuthHandler struct {
	authService service.AuthService
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		badRequest(c, "Email, password, and name are required")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	c.Set(middleware.ContextUserID, user.ID.Hex())
	logger.LogAction(c, "user.register", "user", user.ID.Hex())
	c.JSON(http.StatusCreated, models.MessageResponse{Message: "User registered"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: toUserResponse(user)})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	logger.LogAction(c, "user.update_profile", "user", userID)
	c.JSON(http.StatusOK, toUserResponse(user))
}
