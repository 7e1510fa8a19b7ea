package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rizz-social/internal/storage"
	"rizz-social/internal/transport/http/response"
)

type UploadHandler struct {
	images storage.Store
}

func NewUploadHandler(images storage.Store) *UploadHandler {
	return &UploadHandler{images: images}
}

// Serve streams a stored image by the name in its /uploads/ reference.
func (h *UploadHandler) Serve(c *gin.Context) {
	obj, err := h.images.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidRef) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "image not found")
			return
		}
		internalError(c, err, "read image failed")
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, map[string]string{
		"Cache-Control":          "public, max-age=31536000, immutable",
		"X-Content-Type-Options": "nosniff",
	})
}
