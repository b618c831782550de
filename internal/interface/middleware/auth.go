package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentgrid/talentgrid-api/pkg/helpers"
	"github.com/talentgrid/talentgrid-api/pkg/response"
)

// CtxUserIDKey is where the verified account id is stored in the Gin context.
const CtxUserIDKey = "userID"

// Auth reads the session cookie, verifies the token, and injects the account
// id into the context. It trusts the signed claim and never hits storage;
// downstream handlers that need the full record do their own lookup.
// Missing, invalid and expired tokens all get the same response so the
// failure mode is not leaked.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookieName)
		if err != nil || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "user not authenticated", nil)
			return
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "user not authenticated", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
