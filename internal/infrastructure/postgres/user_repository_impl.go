package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentgrid/talentgrid-api/internal/domain/entity"
	"github.com/talentgrid/talentgrid-api/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (full_name, email, phone_number, password_hash, role, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.FullName, u.Email, u.PhoneNumber, u.PasswordHash, string(u.Role), u.Profile.PhotoURL)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapDuplicate(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	u := &entity.User{}
	var role string

	row := r.pool.QueryRow(ctx, `
		SELECT id, full_name, email, phone_number, password_hash, role,
		       photo_url, bio, skills, resume_url, resume_original_file_name,
		       created_at, updated_at
		FROM users
		WHERE `+column+` = $1
	`, value)

	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PhoneNumber, &u.PasswordHash, &role,
		&u.Profile.PhotoURL, &u.Profile.Bio, &u.Profile.Skills,
		&u.Profile.ResumeURL, &u.Profile.ResumeOriginalFileName,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET full_name = $1, email = $2, phone_number = $3, password_hash = $4,
		    photo_url = $5, bio = $6, skills = $7, resume_url = $8,
		    resume_original_file_name = $9, updated_at = $10
		WHERE id = $11
	`, u.FullName, u.Email, u.PhoneNumber, u.PasswordHash,
		u.Profile.PhotoURL, u.Profile.Bio, u.Profile.Skills,
		u.Profile.ResumeURL, u.Profile.ResumeOriginalFileName,
		u.UpdatedAt, u.ID)
	if err != nil {
		return mapDuplicate(err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateEmail
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
