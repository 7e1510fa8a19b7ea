package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rizz-social/internal/logging"
	"rizz-social/internal/pkg/jwtutil"
	"rizz-social/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

func AuthJWT(verifier *jwtutil.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := verifier.Verify(c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, jwtutil.ErrMissingToken):
				response.Abort(c, http.StatusUnauthorized, response.CodeUnauthenticated, jwtutil.ErrMissingToken.Error())
			case errors.Is(err, jwtutil.ErrTokenExpired):
				response.Abort(c, http.StatusUnauthorized, response.CodeTokenExpired, jwtutil.ErrTokenExpired.Error())
			default:
				logging.FromContext(c.Request.Context()).Debug().Err(err).Msg("token verification failed")
				response.Abort(c, http.StatusUnauthorized, response.CodeTokenInvalid, jwtutil.ErrTokenInvalid.Error())
			}
			return
		}

		c.Set(ContextUserIDKey, identity.UserID)
		c.Set(ContextUsernameKey, identity.Username)
		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok && userID != 0
}
