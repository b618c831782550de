package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/talentgrid/talentgrid-api/internal/application"
	"github.com/talentgrid/talentgrid-api/internal/domain/entity"
	"github.com/talentgrid/talentgrid-api/internal/interface/middleware"
	"github.com/talentgrid/talentgrid-api/pkg/helpers"
	"github.com/talentgrid/talentgrid-api/pkg/response"
	"github.com/talentgrid/talentgrid-api/pkg/validation"
)

type UserHandler struct {
	Svc     *userapp.Service
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	FullName    string `form:"fullName" json:"fullName" binding:"required"`
	Email       string `form:"email" json:"email" binding:"required,email"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber" binding:"required"`
	Password    string `form:"password" json:"password" binding:"required"`
	Role        string `form:"role" json:"role" binding:"required,oneof=seeker recruiter"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=seeker recruiter"`
}

// Register handles POST /user/register (multipart form with a required
// profileImage file).
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "something is missing", validation.ToDetails(err))
		return
	}

	file, header, err := c.Request.FormFile("profileImage")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "profile picture is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	_, err = h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        entity.Role(req.Role),
		Photo:       fileUpload(file, header),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"created": true}, "account created successfully")
}

// Login handles POST /user/login. On success it sets the session cookie and
// returns the account projection.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "something is missing", validation.ToDetails(err))
		return
	}

	u, token, exp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, entity.Role(req.Role))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.Cookies.SetSession(c, token, exp)
	response.Success(c, http.StatusOK, userapp.NewProjection(u), "welcome back "+u.FullName)
}

// Logout clears the session cookie; it always succeeds.
func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out successfully")
}

// GetProfile returns the projection for the authenticated account.
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userapp.NewProjection(u), "profile")
}

// UpdateProfile handles POST /user/profile/update (multipart form, every
// field optional, empty values skipped).
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	in := userapp.UpdateProfileInput{
		FullName:    formValue(c, "fullName"),
		Email:       formValue(c, "email"),
		PhoneNumber: formValue(c, "phoneNumber"),
		Bio:         formValue(c, "bio"),
		Skills:      formValue(c, "skills"),
	}

	if file, header, err := c.Request.FormFile("resume"); err == nil {
		defer func() { _ = file.Close() }()
		up := fileUpload(file, header)
		in.Resume = &up
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userapp.NewProjection(u), "profile updated successfully")
}

// Search handles GET /user/search?q=&size=.
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "query is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchProfiles(c.Request.Context(), q, size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results")
}

// writeError maps known flow errors to client responses and hides everything
// else behind a generic 500.
func (h *UserHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, userapp.ErrEmailTaken),
		errors.Is(err, userapp.ErrInvalidCredentials),
		errors.Is(err, userapp.ErrRoleMismatch),
		errors.Is(err, userapp.ErrInvalidRole),
		errors.Is(err, userapp.ErrUserNotFound):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		}
		response.Error(c, http.StatusInternalServerError, "an unexpected error occurred", nil)
	}
}

func fileUpload(file multipart.File, header *multipart.FileHeader) userapp.FileUpload {
	return userapp.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
}

func formValue(c *gin.Context, key string) *string {
	v := c.PostForm(key)
	if v == "" {
		return nil
	}
	return &v
}
