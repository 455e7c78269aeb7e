package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyansort/gyansort-api/internal/models"
)

func TestParticipantFindReturnsInactiveRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	rows := sqlmock.NewRows([]string{"id", "forum_id", "student_id", "student_email", "student_name", "joined_at", "is_active"}).
		AddRow("p1", "f1", "s1", "ada@example.com", "Ada Lovelace", time.Now(), false)
	mock.ExpectQuery("SELECT .* FROM forum_participants p JOIN students s").
		WithArgs("f1", "s1").
		WillReturnRows(rows)

	participant, err := repo.Find(context.Background(), "f1", "s1")
	require.NoError(t, err)
	assert.False(t, participant.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantSetActiveDoesNotDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectExec("UPDATE forum_participants SET is_active").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetActive(context.Background(), "p1", false, time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantCountActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM forum_participants WHERE forum_id = $1 AND is_active = TRUE")).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountActive(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectExec("INSERT INTO forum_participants").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.ForumParticipant{
		ID: "p1", ForumID: "f1", StudentID: "s1", JoinedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
