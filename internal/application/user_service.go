package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/talentgrid/talentgrid-api/internal/domain/entity"
	"github.com/talentgrid/talentgrid-api/internal/domain/repository"
	"github.com/talentgrid/talentgrid-api/pkg/helpers"
	"github.com/talentgrid/talentgrid-api/pkg/mailer"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the response cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrRoleMismatch is deliberately distinguished from ErrInvalidCredentials,
	// matching the existing product behavior.
	ErrRoleMismatch = errors.New("account doesn't exist with current role")
	ErrEmailTaken   = errors.New("user already exists with this email")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
)

// BlobUploader accepts raw file bytes and returns a stable retrieval URL.
type BlobUploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
}

// MailPublisher enqueues email jobs. Publishing is best-effort: failures are
// logged and never fail the calling flow.
type MailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Service implements the registration, authentication and profile update
// flows. Mail, ES and Logger are optional; a nil value disables that concern.
type Service struct {
	Repo     repository.UserRepository
	Hasher   *helpers.Hasher
	JWT      *helpers.JWTManager
	Uploader BlobUploader
	Mail     MailPublisher
	Logger   *logrus.Logger
	ES       *elasticsearch.Client
	ESIndex  string
}

func NewService(repo repository.UserRepository, hasher *helpers.Hasher, jwt *helpers.JWTManager, uploader BlobUploader, mail MailPublisher, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *Service {
	return &Service{
		Repo:     repo,
		Hasher:   hasher,
		JWT:      jwt,
		Uploader: uploader,
		Mail:     mail,
		Logger:   logger,
		ES:       es,
		ESIndex:  esIndex,
	}
}

// FileUpload carries one uploaded file through a flow.
type FileUpload struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

type RegisterInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Password    string
	Role        entity.Role
	Photo       FileUpload
}

// Register creates a new account. The duplicate lookup runs before the photo
// upload so the common failure path never orphans a blob; a concurrent
// registration racing past the lookup is still caught by the storage-level
// unique constraint and surfaces as ErrEmailTaken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	// The HTTP binding rejects unknown roles too; this guard covers
	// non-HTTP callers such as the seed command.
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	existing, err := s.Repo.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	photoURL, err := s.Uploader.Upload(ctx, "photos", in.Photo.Name, in.Photo.ContentType, in.Photo.Reader)
	if err != nil {
		return nil, fmt.Errorf("upload profile photo: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		Role:         in.Role,
		Profile:      entity.Profile{PhotoURL: photoURL},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.sendWelcomeEmail(ctx, u)
	s.indexProfile(ctx, u)
	return u, nil
}

// Login verifies credentials and the asserted role, then issues a session
// token bound to the account id.
func (s *Service) Login(ctx context.Context, email, password string, role entity.Role) (*entity.User, string, time.Time, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if !s.Hasher.Verify(u.PasswordHash, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if u.Role != role {
		return nil, "", time.Time{}, ErrRoleMismatch
	}

	token, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		}
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// GetProfile loads the account for an already-trusted id.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfileInput uses pointers so a future surface can distinguish
// "absent" from "present but empty". The current multipart handlers only set
// non-empty values; empty strings are skipped, matching the legacy behavior.
type UpdateProfileInput struct {
	FullName    *string
	Email       *string
	PhoneNumber *string
	Bio         *string
	Skills      *string // comma-joined
	Resume      *FileUpload
}

// UpdateProfile applies the present fields to the account of the trusted id.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	var resumeURL, resumeName string
	if in.Resume != nil {
		url, err := s.Uploader.Upload(ctx, "resumes", in.Resume.Name, in.Resume.ContentType, in.Resume.Reader)
		if err != nil {
			return nil, fmt.Errorf("upload resume: %w", err)
		}
		resumeURL = url
		resumeName = in.Resume.Name
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Should not happen with a verified token; worth alerting on.
			if s.Logger != nil {
				s.Logger.WithField("user_id", userID).Error("profile update for missing account")
			}
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if v := strVal(in.FullName); v != "" {
		u.FullName = v
	}
	if v := strVal(in.Email); v != "" {
		u.Email = v
	}
	if v := strVal(in.PhoneNumber); v != "" {
		u.PhoneNumber = v
	}
	if v := strVal(in.Bio); v != "" {
		u.Profile.Bio = v
	}
	if v := strVal(in.Skills); v != "" {
		u.Profile.Skills = SplitSkills(v)
	}
	if resumeURL != "" {
		u.Profile.ResumeURL = resumeURL
		u.Profile.ResumeOriginalFileName = resumeName
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.indexProfile(ctx, u)
	return u, nil
}

// SplitSkills splits a comma-joined skills string into a trimmed list.
func SplitSkills(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (s *Service) sendWelcomeEmail(ctx context.Context, u *entity.User) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:      u.Email,
		Subject: "Welcome to TalentGrid",
		Text:    fmt.Sprintf("Hi %s, your %s account is ready.", u.FullName, u.Role),
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}

func (s *Service) indexProfile(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"full_name":  u.FullName,
		"email":      u.Email,
		"role":       u.Role,
		"bio":        u.Profile.Bio,
		"skills":     u.Profile.Skills,
		"photo_url":  u.Profile.PhotoURL,
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// SearchProfiles performs a multi_match search on name, skills and bio.
func (s *Service) SearchProfiles(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"full_name^2", "skills", "bio"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
