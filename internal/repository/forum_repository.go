package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gyansort/gyansort-api/internal/models"
)

// ForumRepository manages persistence for forums.
type ForumRepository struct {
	db *sqlx.DB
}

// NewForumRepository constructs a ForumRepository.
func NewForumRepository(db *sqlx.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

const forumColumns = `f.id, f.title, f.description, f.topic, f.created_by, i.full_name AS created_by_name, i.email AS created_by_email, f.created_at, f.is_active`

// List returns active forums, newest first.
func (r *ForumRepository) List(ctx context.Context) ([]models.Forum, error) {
	query := fmt.Sprintf(`SELECT %s FROM forums f JOIN instructors i ON i.id = f.created_by WHERE f.is_active = TRUE ORDER BY f.created_at DESC`, forumColumns)
	var forums []models.Forum
	if err := r.db.SelectContext(ctx, &forums, query); err != nil {
		return nil, fmt.Errorf("list forums: %w", err)
	}
	return forums, nil
}

// ListByCreator returns forums created by the given instructor.
func (r *ForumRepository) ListByCreator(ctx context.Context, instructorID string) ([]models.Forum, error) {
	query := fmt.Sprintf(`SELECT %s FROM forums f JOIN instructors i ON i.id = f.created_by WHERE f.created_by = $1 ORDER BY f.created_at DESC`, forumColumns)
	var forums []models.Forum
	if err := r.db.SelectContext(ctx, &forums, query, instructorID); err != nil {
		return nil, fmt.Errorf("list forums by creator: %w", err)
	}
	return forums, nil
}

// FindByID returns a forum by identifier.
func (r *ForumRepository) FindByID(ctx context.Context, id string) (*models.Forum, error) {
	query := fmt.Sprintf(`SELECT %s FROM forums f JOIN instructors i ON i.id = f.created_by WHERE f.id = $1 LIMIT 1`, forumColumns)
	var forum models.Forum
	if err := r.db.GetContext(ctx, &forum, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find forum by id: %w", err)
	}
	return &forum, nil
}

// Create inserts a new forum.
func (r *ForumRepository) Create(ctx context.Context, forum *models.Forum) error {
	const query = `INSERT INTO forums (id, title, description, topic, created_by, created_at, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, forum.ID, forum.Title, forum.Description, forum.Topic, forum.CreatedBy, forum.CreatedAt, forum.IsActive); err != nil {
		return fmt.Errorf("create forum: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a forum.
func (r *ForumRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE forums SET is_active = FALSE WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate forum: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
