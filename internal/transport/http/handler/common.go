package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"rizz-social/internal/app"
	"rizz-social/internal/logging"
	"rizz-social/internal/storage"
	"rizz-social/internal/transport/http/middleware"
	"rizz-social/internal/transport/http/response"
)

var errImageTooLarge = errors.New("image exceeds the upload size limit")

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	return middleware.UserIDFromContext(c)
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil {
		return 0, err
	}
	if u == 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return uint(u), nil
}

func isJSONRequest(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEJSON
}

// optionalPostForm distinguishes an absent form field from an empty one.
func optionalPostForm(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

// formUpload opens the optional multipart file in field. The returned closer
// is never nil.
func formUpload(c *gin.Context, field string, maxBytes int64) (*storage.Upload, func(), error) {
	noop := func() {}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("%w: %v", app.ErrInvalidImage, err)
	}
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return nil, noop, fmt.Errorf("%w: %w", app.ErrInvalidImage, errImageTooLarge)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("open uploaded file failed: %w", err)
	}
	return uploadFrom(fileHeader, f), func() { _ = f.Close() }, nil
}

func uploadFrom(fileHeader *multipart.FileHeader, r io.Reader) *storage.Upload {
	return &storage.Upload{Filename: fileHeader.Filename, Reader: r}
}

// internalError logs the cause and answers with a generic message.
func internalError(c *gin.Context, err error, message string) {
	logging.FromContext(c.Request.Context()).Error().Err(err).
		Str("route", c.FullPath()).
		Msg(message)
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, message)
}

// writeServiceError maps the app sentinel errors shared by every handler.
func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, app.ErrContentRequired),
		errors.Is(err, app.ErrContentTooLong),
		errors.Is(err, app.ErrInvalidImage):
		response.Error(c, http.StatusBadRequest, response.CodeValidationFailed, err.Error())
	case errors.Is(err, app.ErrUsernameExists):
		response.Error(c, http.StatusBadRequest, response.CodeUsernameExists, err.Error())
	case errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrTooManyAttempts):
		response.Error(c, http.StatusTooManyRequests, response.CodeTooManyAttempts, err.Error())
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, app.ErrPostNotFound), errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		internalError(c, err, fallback)
	}
}
