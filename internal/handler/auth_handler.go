package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apicontracts "tableease/contracts/api"
	"tableease/internal/service/auth"
	"tableease/pkg/rbac"
)

type AuthHandler struct {
	authService *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role"`
		Phone    string `json:"phone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Role == "" {
		req.Role = rbac.RoleCustomer
	}

	u, err := h.authService.Register(c.Request.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateEmail):
			respondError(c, http.StatusConflict, apicontracts.MsgEmailTaken)
		case errors.Is(err, auth.ErrDuplicateName):
			respondError(c, http.StatusConflict, apicontracts.MsgNameTaken)
		case errors.Is(err, auth.ErrInvalidRole):
			respondError(c, http.StatusBadRequest, "unknown role")
		default:
			respondError(c, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	respondCreated(c, u)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	u, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, apicontracts.MsgInvalidCredentials)
			return
		}
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	respondOK(c, gin.H{"user": u, "token": token})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetInt("user_id")

	u, err := h.authService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}

	respondOK(c, u)
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req struct {
		Name      *string `json:"name"`
		Phone     *string `json:"phone"`
		AvatarURL *string `json:"avatar_url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	u, err := h.authService.UpdateProfile(c.Request.Context(), userID, auth.ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateName) {
			respondError(c, http.StatusConflict, apicontracts.MsgNameTaken)
			return
		}
		respondError(c, http.StatusInternalServerError, "profile update failed")
		return
	}

	respondOK(c, u)
}
