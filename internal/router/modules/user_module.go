package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentgrid/talentgrid-api/internal/container"
	handlers "github.com/talentgrid/talentgrid-api/internal/interface/http"
	"github.com/talentgrid/talentgrid-api/internal/interface/middleware"
	"github.com/talentgrid/talentgrid-api/pkg/helpers"
)

// UserModule wires user HTTP handlers and the session middleware into routes.
// Public: POST /api/user/register, POST /api/user/login, GET /api/user/logout
// Protected: GET /api/user/profile, POST /api/user/profile/update, GET /api/user/search
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	allowLocal := middleware.AllowPrivateIP()
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), allowLocal)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), allowLocal)

	rg.POST("/user/register", registerLimiter, m.Handler.Register)
	rg.POST("/user/login", loginLimiter, m.Handler.Login)
	rg.GET("/user/logout", m.Handler.Logout)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/user/profile", m.Handler.GetProfile)
		auth.POST("/user/profile/update", m.Handler.UpdateProfile)
		auth.GET("/user/search", m.Handler.Search)
	}
}
