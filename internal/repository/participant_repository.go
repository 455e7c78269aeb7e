package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gyansort/gyansort-api/internal/models"
)

// ParticipantRepository manages forum membership rows. Rows are never
// deleted; leaving flips is_active and rejoining reactivates the same row.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

const participantColumns = `p.id, p.forum_id, p.student_id, s.email AS student_email, s.full_name AS student_name, p.joined_at, p.is_active`

// ListByForum returns every membership row for a forum, active or not.
func (r *ParticipantRepository) ListByForum(ctx context.Context, forumID string) ([]models.ForumParticipant, error) {
	query := fmt.Sprintf(`SELECT %s FROM forum_participants p JOIN students s ON s.id = p.student_id WHERE p.forum_id = $1 ORDER BY p.joined_at ASC`, participantColumns)
	var participants []models.ForumParticipant
	if err := r.db.SelectContext(ctx, &participants, query, forumID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// Find returns the membership row for a (forum, student) pair regardless of
// its active flag.
func (r *ParticipantRepository) Find(ctx context.Context, forumID, studentID string) (*models.ForumParticipant, error) {
	query := fmt.Sprintf(`SELECT %s FROM forum_participants p JOIN students s ON s.id = p.student_id WHERE p.forum_id = $1 AND p.student_id = $2 LIMIT 1`, participantColumns)
	var participant models.ForumParticipant
	if err := r.db.GetContext(ctx, &participant, query, forumID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}
	return &participant, nil
}

// Create inserts a new active membership row.
func (r *ParticipantRepository) Create(ctx context.Context, p *models.ForumParticipant) error {
	const query = `INSERT INTO forum_participants (id, forum_id, student_id, joined_at, is_active)
        VALUES ($1, $2, $3, $4, TRUE)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.ForumID, p.StudentID, p.JoinedAt); err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

// SetActive toggles the membership flag on an existing row.
func (r *ParticipantRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	const query = `UPDATE forum_participants SET is_active = $2, joined_at = CASE WHEN $2 THEN $3 ELSE joined_at END WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, at); err != nil {
		return fmt.Errorf("set participant active: %w", err)
	}
	return nil
}

// CountActive returns the number of active student members in a forum.
func (r *ParticipantRepository) CountActive(ctx context.Context, forumID string) (int, error) {
	const query = `SELECT COUNT(*) FROM forum_participants WHERE forum_id = $1 AND is_active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, forumID); err != nil {
		return 0, fmt.Errorf("count active participants: %w", err)
	}
	return count, nil
}

// HasActive reports whether the student currently holds active membership.
func (r *ParticipantRepository) HasActive(ctx context.Context, forumID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM forum_participants WHERE forum_id = $1 AND student_id = $2 AND is_active = TRUE)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, forumID, studentID); err != nil {
		return false, fmt.Errorf("check active participant: %w", err)
	}
	return exists, nil
}
