package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/talentgrid/talentgrid-api/pkg/helpers"
)

func authRouter(jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString(CtxUserIDKey)})
	})
	return r
}

func TestAuth_MissingCookie(t *testing.T) {
	r := authRouter(helpers.NewJWTManager("secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	r := authRouter(helpers.NewJWTManager("secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: "garbage"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongSecretAndExpiredLookAlike(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := authRouter(jwt)

	otherToken, _, err := helpers.NewJWTManager("other-secret", time.Hour).GenerateToken("u1")
	require.NoError(t, err)
	expiredToken, _, err := helpers.NewJWTManager("secret", -time.Minute).GenerateToken("u1")
	require.NoError(t, err)

	var messages []string
	for _, tok := range []string{otherToken, expiredToken} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: tok})
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.False(t, body.Success)
		messages = append(messages, body.Message)
	}
	// Uniform response: the caller cannot tell a bad signature from expiry.
	require.Equal(t, messages[0], messages[1])
}

func TestAuth_ValidToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := authRouter(jwt)

	token, _, err := jwt.GenerateToken("user-42")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: token})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "user-42")
}
