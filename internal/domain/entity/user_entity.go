package entity

import "time"

// User is the aggregate root for the identity domain.
// PasswordHash is always a bcrypt hash; no code path stores or logs the
// plaintext password past the hashing step.
type User struct {
	ID           string
	FullName     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	Role         Role
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the mutable, optional attributes attached to an account.
// PhotoURL is set at registration; the rest only via profile update.
type Profile struct {
	PhotoURL               string
	Bio                    string
	Skills                 []string
	ResumeURL              string
	ResumeOriginalFileName string
}
