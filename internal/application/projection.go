package application

import (
	"time"

	"github.com/talentgrid/talentgrid-api/internal/domain/entity"
)

// Projection is the non-sensitive view of an account returned to clients.
// The password hash never leaves the service layer.
type Projection struct {
	ID          string            `json:"id"`
	FullName    string            `json:"full_name"`
	Email       string            `json:"email"`
	PhoneNumber string            `json:"phone_number"`
	Role        entity.Role       `json:"role"`
	Profile     ProfileProjection `json:"profile"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type ProfileProjection struct {
	PhotoURL               string   `json:"photo_url"`
	Bio                    string   `json:"bio"`
	Skills                 []string `json:"skills"`
	ResumeURL              string   `json:"resume_url"`
	ResumeOriginalFileName string   `json:"resume_original_file_name"`
}

func NewProjection(u *entity.User) Projection {
	return Projection{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		Profile: ProfileProjection{
			PhotoURL:               u.Profile.PhotoURL,
			Bio:                    u.Profile.Bio,
			Skills:                 u.Profile.Skills,
			ResumeURL:              u.Profile.ResumeURL,
			ResumeOriginalFileName: u.Profile.ResumeOriginalFileName,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
