package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rizz-social/internal/app"
	"rizz-social/internal/model"
	"rizz-social/internal/transport/http/response"
)

type AuthHandler struct {
	authService   *app.AuthService
	maxImageBytes int64
}

// RegisterRequest binds from JSON or from a multipart form that may also
// carry a profile_picture file.
type RegisterRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" form:"email" binding:"required,email,max=128"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func NewAuthHandler(authService *app.AuthService, maxImageBytes int64) *AuthHandler {
	return &AuthHandler{authService: authService, maxImageBytes: maxImageBytes}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid request payload")
		return
	}

	avatar, closeAvatar, err := formUpload(c, "profile_picture", h.maxImageBytes)
	if err != nil {
		writeServiceError(c, err, "register failed")
		return
	}
	defer closeAvatar()

	user, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   avatar,
	})
	if err != nil {
		writeServiceError(c, err, "register failed")
		return
	}

	response.Created(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid request payload")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, err, "login failed")
		return
	}

	response.OK(c, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}
