package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	userapp "github.com/talentgrid/talentgrid-api/internal/application"
	"github.com/talentgrid/talentgrid-api/internal/domain/entity"
	"github.com/talentgrid/talentgrid-api/internal/domain/repository"
	"github.com/talentgrid/talentgrid-api/internal/interface/middleware"
	"github.com/talentgrid/talentgrid-api/pkg/helpers"
	"github.com/talentgrid/talentgrid-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	m.Run()
}

// ---- fakes ----

type memRepo struct {
	byEmail map[string]*entity.User
	byID    map[string]*entity.User
	nextID  int
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: map[string]*entity.User{}, byID: map[string]*entity.User{}}
}

func (r *memRepo) Create(ctx context.Context, u *entity.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.byEmail[u.Email] = &cp
	r.byID[u.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) Update(ctx context.Context, u *entity.User) error {
	old, ok := r.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Email != old.Email {
		delete(r.byEmail, old.Email)
	}
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = &cp
	return nil
}

type memUploader struct{}

func (memUploader) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	return "https://blobs.test/" + folder + "/" + filename, nil
}

// ---- setup ----

func newTestRouter() *gin.Engine {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	svc := userapp.NewService(newMemRepo(), helpers.NewHasher(4), jwt, memUploader{}, nil, nil, nil, "")
	h := NewUserHandler(svc, nil, "localhost", false)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/user/register", h.Register)
	api.POST("/user/login", h.Login)
	api.GET("/user/logout", h.Logout)

	auth := api.Group("/")
	auth.Use(middleware.Auth(jwt))
	auth.GET("/user/profile", h.GetProfile)
	auth.POST("/user/profile/update", h.UpdateProfile)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("file-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func registerFields(email string) map[string]string {
	return map[string]string{
		"fullName":    "A",
		"email":       email,
		"phoneNumber": "1",
		"password":    "password1",
		"role":        "seeker",
	}
}

func doRegister(t *testing.T, r *gin.Engine, email string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, registerFields(email), "profileImage", "me.png")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)
	return w
}

func doLogin(t *testing.T, r *gin.Engine, email, password, role string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"email": email, "password": password, "role": role})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.SessionCookieName {
			return c
		}
	}
	return nil
}

// ---- tests ----

func TestRegister_Created(t *testing.T) {
	r := newTestRouter()
	w := doRegister(t, r, "a@x.com")

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"success":true`)
}

func TestRegister_ShortPasswordAccepted(t *testing.T) {
	r := newTestRouter()

	fields := registerFields("a@x.com")
	fields["password"] = "pw"
	body, ct := multipartBody(t, fields, "profileImage", "me.png")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	// Any non-empty password is accepted at registration.
	require.Equal(t, http.StatusCreated, w.Code)

	login := doLogin(t, r, "a@x.com", "pw", "seeker")
	require.Equal(t, http.StatusOK, login.Code)
	require.NotNil(t, sessionCookie(login))
}

func TestRegister_MissingField(t *testing.T) {
	r := newTestRouter()

	fields := registerFields("a@x.com")
	delete(fields, "email")
	body, ct := multipartBody(t, fields, "profileImage", "me.png")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "something is missing")
}

func TestRegister_MissingProfileImage(t *testing.T) {
	r := newTestRouter()

	body, ct := multipartBody(t, registerFields("a@x.com"), "", "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "profile picture is required")
}

func TestRegister_Duplicate(t *testing.T) {
	r := newTestRouter()

	require.Equal(t, http.StatusCreated, doRegister(t, r, "a@x.com").Code)

	w := doRegister(t, r, "a@x.com")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "already exists")
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	r := newTestRouter()
	doRegister(t, r, "a@x.com")

	w := doLogin(t, r, "a@x.com", "password1", "seeker")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"full_name":"A"`)
	require.NotContains(t, w.Body.String(), "password")

	c := sessionCookie(w)
	require.NotNil(t, c)
	require.NotEmpty(t, c.Value)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	require.Greater(t, c.MaxAge, 0)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newTestRouter()
	doRegister(t, r, "a@x.com")

	w := doLogin(t, r, "a@x.com", "wrongpass1", "seeker")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "incorrect email or password")
	require.Nil(t, sessionCookie(w))
}

func TestLogin_WrongRole(t *testing.T) {
	r := newTestRouter()
	doRegister(t, r, "a@x.com")

	w := doLogin(t, r, "a@x.com", "password1", "recruiter")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "current role")
	require.Nil(t, sessionCookie(w))
}

func TestLogout_ClearsCookie(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/logout", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	c := sessionCookie(w)
	require.NotNil(t, c)
	require.Empty(t, c.Value)
	require.Less(t, c.MaxAge, 0)
}

func TestUpdateProfile_RequiresSession(t *testing.T) {
	r := newTestRouter()

	body, ct := multipartBody(t, map[string]string{"bio": "hi"}, "", "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user/profile/update", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterLoginUpdate_EndToEnd(t *testing.T) {
	r := newTestRouter()

	require.Equal(t, http.StatusCreated, doRegister(t, r, "a@x.com").Code)

	login := doLogin(t, r, "a@x.com", "password1", "seeker")
	require.Equal(t, http.StatusOK, login.Code)
	cookie := sessionCookie(login)
	require.NotNil(t, cookie)

	// Update skills under the issued session
	body, ct := multipartBody(t, map[string]string{"skills": "go,rust"}, "", "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user/profile/update", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data userapp.Projection `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, []string{"go", "rust"}, resp.Data.Profile.Skills)
	require.Equal(t, "A", resp.Data.FullName)

	// Resume upload, everything else untouched
	body, ct = multipartBody(t, nil, "resume", "cv.pdf")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/user/profile/update", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "https://blobs.test/resumes/cv.pdf", resp.Data.Profile.ResumeURL)
	require.Equal(t, "cv.pdf", resp.Data.Profile.ResumeOriginalFileName)
	require.Equal(t, []string{"go", "rust"}, resp.Data.Profile.Skills)

	// Profile endpoint reflects the same state
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "a@x.com", resp.Data.Email)
}
