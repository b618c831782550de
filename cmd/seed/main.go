package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/talentgrid/talentgrid-api/config"
	"github.com/talentgrid/talentgrid-api/pkg/helpers"
)

// Seeds one demo seeker and one demo recruiter for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hasher := helpers.NewHasher(cfg.BcryptCost)

	seed := []struct {
		fullName string
		email    string
		phone    string
		role     string
	}{
		{"Demo Seeker", "seeker@example.com", "+10000000001", "seeker"},
		{"Demo Recruiter", "recruiter@example.com", "+10000000002", "recruiter"},
	}

	const password = "password123"
	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	for _, s := range seed {
		var id string
		err := db.QueryRow(`
			INSERT INTO users (full_name, email, phone_number, password_hash, role)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name
			RETURNING id
		`, s.fullName, s.email, s.phone, hash, s.role).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", s.email, err)
		}
		fmt.Printf("seeded user: id=%s email=%s role=%s password=%s\n", id, s.email, s.role, password)
	}
}
