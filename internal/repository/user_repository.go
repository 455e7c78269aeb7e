package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gyansort/gyansort-api/internal/models"
)

// UserRepository provides database access for both account schemas.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindStudentByEmail returns a student by email address.
func (r *UserRepository) FindStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	const query = `SELECT id, email, password_hash, full_name, first_name, last_name, profile_picture, active, created_at, updated_at FROM students WHERE email = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &student, nil
}

// FindStudentByID returns a student by identifier.
func (r *UserRepository) FindStudentByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, email, password_hash, full_name, first_name, last_name, profile_picture, active, created_at, updated_at FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// CreateStudent inserts a new student account.
func (r *UserRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	const query = `INSERT INTO students (id, email, password_hash, full_name, first_name, last_name, profile_picture, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.Email, s.PasswordHash, s.FullName, s.FirstName, s.LastName, s.ProfilePicture, s.Active, s.CreatedAt, s.UpdatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateStudentProfile updates the editable student profile columns.
func (r *UserRepository) UpdateStudentProfile(ctx context.Context, id, fullName, firstName, lastName string, picture *string, updatedAt time.Time) error {
	const query = `UPDATE students SET full_name = $2, first_name = $3, last_name = $4, profile_picture = $5, updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, fullName, firstName, lastName, picture, updatedAt); err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}

// FindInstructorByEmail returns an instructor by email address.
func (r *UserRepository) FindInstructorByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	const query = `SELECT id, email, password_hash, full_name, profile_pic, verification_status, active, created_at, updated_at FROM instructors WHERE email = $1 LIMIT 1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find instructor by email: %w", err)
	}
	return &instructor, nil
}

// FindInstructorByID returns an instructor by identifier.
func (r *UserRepository) FindInstructorByID(ctx context.Context, id string) (*models.Instructor, error) {
	const query = `SELECT id, email, password_hash, full_name, profile_pic, verification_status, active, created_at, updated_at FROM instructors WHERE id = $1 LIMIT 1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find instructor by id: %w", err)
	}
	return &instructor, nil
}

// CreateInstructor inserts a new instructor account pending verification.
func (r *UserRepository) CreateInstructor(ctx context.Context, i *models.Instructor) error {
	const query = `INSERT INTO instructors (id, email, password_hash, full_name, profile_pic, verification_status, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, i.ID, i.Email, i.PasswordHash, i.FullName, i.ProfilePic, i.VerificationStatus, i.Active, i.CreatedAt, i.UpdatedAt); err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// UpdateInstructorProfile updates the editable instructor profile columns.
func (r *UserRepository) UpdateInstructorProfile(ctx context.Context, id, fullName string, picture *string, updatedAt time.Time) error {
	const query = `UPDATE instructors SET full_name = $2, profile_pic = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, fullName, picture, updatedAt); err != nil {
		return fmt.Errorf("update instructor profile: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a refresh token session.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (id, user_id, role, token, expires_at, created_at, revoked)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, token.ID, token.UserID, token.Role, token.Token, token.ExpiresAt, token.CreatedAt, token.Revoked); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken loads a refresh token by its opaque value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, role, token, expires_at, created_at, revoked, revoked_at FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &stored, nil
}

// RevokeRefreshToken marks a refresh token as revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
