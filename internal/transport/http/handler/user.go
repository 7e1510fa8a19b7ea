package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rizz-social/internal/app"
	"rizz-social/internal/transport/http/response"
)

type UserHandler struct {
	userService   *app.UserService
	maxImageBytes int64
}

// UpdateProfileRequest is the JSON form of a profile update; absent fields
// keep their stored value.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func NewUserHandler(userService *app.UserService, maxImageBytes int64) *UserHandler {
	return &UserHandler{userService: userService, maxImageBytes: maxImageBytes}
}

func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthenticated, "invalid token payload")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "fetch profile failed")
		return
	}
	response.OK(c, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid user id")
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "fetch user failed")
		return
	}
	response.OK(c, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthenticated, "invalid token payload")
		return
	}

	input := app.UpdateProfileInput{UserID: userID}
	if isJSONRequest(c) {
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid request payload")
			return
		}
		input.Username = req.Username
		input.Email = req.Email
		input.Password = req.Password
	} else {
		input.Username = optionalPostForm(c, "username")
		input.Email = optionalPostForm(c, "email")
		input.Password = optionalPostForm(c, "password")
	}

	avatar, closeAvatar, err := formUpload(c, "profile_picture", h.maxImageBytes)
	if err != nil {
		writeServiceError(c, err, "update profile failed")
		return
	}
	defer closeAvatar()
	input.Avatar = avatar

	user, err := h.userService.UpdateProfile(c.Request.Context(), input)
	if err != nil {
		writeServiceError(c, err, "update profile failed")
		return
	}
	response.OK(c, user)
}
