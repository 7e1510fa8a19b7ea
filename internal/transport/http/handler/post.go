package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rizz-social/internal/app"
	"rizz-social/internal/transport/http/response"
)

type PostHandler struct {
	postService   *app.PostService
	maxImageBytes int64
}

type CreatePostRequest struct {
	Content string `json:"content" form:"content"`
}

type UpdatePostRequest struct {
	Content *string `json:"content"`
}

func NewPostHandler(postService *app.PostService, maxImageBytes int64) *PostHandler {
	return &PostHandler{postService: postService, maxImageBytes: maxImageBytes}
}

func (h *PostHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid limit")
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid offset")
		return
	}
	_, hasLimit := c.GetQuery("limit")
	if hasLimit && limit == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid limit")
		return
	}
	if _, hasOffset := c.GetQuery("offset"); hasOffset && !hasLimit {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "offset requires limit")
		return
	}

	posts, err := h.postService.ListPosts(c.Request.Context(), app.ListPostsInput{Limit: limit, Offset: offset})
	if err != nil {
		writeServiceError(c, err, "list posts failed")
		return
	}
	response.OK(c, posts)
}

func (h *PostHandler) Get(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid post id")
		return
	}

	post, err := h.postService.GetPost(c.Request.Context(), postID)
	if err != nil {
		writeServiceError(c, err, "fetch post failed")
		return
	}
	response.OK(c, post)
}

func (h *PostHandler) ListByUser(c *gin.Context) {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid user id")
		return
	}

	posts, err := h.postService.ListPostsByUser(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "list user posts failed")
		return
	}
	c.Header("Cache-Control", "no-store")
	response.OK(c, posts)
}

func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthenticated, "invalid token payload")
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid request payload")
		return
	}

	image, closeImage, err := formUpload(c, "image", h.maxImageBytes)
	if err != nil {
		writeServiceError(c, err, "create post failed")
		return
	}
	defer closeImage()

	post, err := h.postService.CreatePost(c.Request.Context(), app.CreatePostInput{
		UserID:  userID,
		Content: req.Content,
		Image:   image,
	})
	if err != nil {
		writeServiceError(c, err, "create post failed")
		return
	}
	response.Created(c, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthenticated, "invalid token payload")
		return
	}
	postID, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid post id")
		return
	}

	var content *string
	if isJSONRequest(c) {
		var req UpdatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid request payload")
			return
		}
		content = req.Content
	} else {
		content = optionalPostForm(c, "content")
	}

	image, closeImage, err := formUpload(c, "image", h.maxImageBytes)
	if err != nil {
		writeServiceError(c, err, "update post failed")
		return
	}
	defer closeImage()

	post, err := h.postService.UpdatePost(c.Request.Context(), app.UpdatePostInput{
		UserID:  userID,
		PostID:  postID,
		Content: content,
		Image:   image,
	})
	if err != nil {
		writeServiceError(c, err, "update post failed")
		return
	}
	response.OK(c, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthenticated, "invalid token payload")
		return
	}
	postID, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, "invalid post id")
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), userID, postID); err != nil {
		writeServiceError(c, err, "delete post failed")
		return
	}
	response.Message(c, "Post deleted successfully")
}

// queryInt returns 0 for an absent parameter.
func queryInt(c *gin.Context, key string) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
