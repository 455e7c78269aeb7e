package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gyansort/gyansort-api/internal/models"
	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
)

type mockForumStore struct {
	forums       map[string]*models.Forum
	participants map[string]*models.ForumParticipant
	messages     []*models.ForumMessage
	attachments  []*models.ForumAttachment
	students     map[string]*models.Student
	instructors  map[string]*models.Instructor
}

func newMockForumStore() *mockForumStore {
	return &mockForumStore{
		forums:       map[string]*models.Forum{},
		participants: map[string]*models.ForumParticipant{},
		students:     map[string]*models.Student{},
		instructors:  map[string]*models.Instructor{},
	}
}

func (m *mockForumStore) List(ctx context.Context) ([]models.Forum, error) {
	var forums []models.Forum
	for _, f := range m.forums {
		if f.IsActive {
			forums = append(forums, *f)
		}
	}
	return forums, nil
}

func (m *mockForumStore) ListByCreator(ctx context.Context, instructorID string) ([]models.Forum, error) {
	var forums []models.Forum
	for _, f := range m.forums {
		if f.CreatedBy == instructorID {
			forums = append(forums, *f)
		}
	}
	return forums, nil
}

func (m *mockForumStore) FindByID(ctx context.Context, id string) (*models.Forum, error) {
	if f, ok := m.forums[id]; ok {
		return f, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockForumStore) Create(ctx context.Context, forum *models.Forum) error {
	m.forums[forum.ID] = forum
	return nil
}

func (m *mockForumStore) Deactivate(ctx context.Context, id string) error {
	if f, ok := m.forums[id]; ok {
		f.IsActive = false
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockForumStore) ListByForum(ctx context.Context, forumID string) ([]models.ForumParticipant, error) {
	var participants []models.ForumParticipant
	for _, p := range m.participants {
		if p.ForumID == forumID {
			participants = append(participants, *p)
		}
	}
	return participants, nil
}

func (m *mockForumStore) Find(ctx context.Context, forumID, studentID string) (*models.ForumParticipant, error) {
	for _, p := range m.participants {
		if p.ForumID == forumID && p.StudentID == studentID {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockForumStore) CreateParticipant(ctx context.Context, p *models.ForumParticipant) error {
	m.participants[p.ID] = p
	return nil
}

func (m *mockForumStore) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	if p, ok := m.participants[id]; ok {
		p.IsActive = active
		if active {
			p.JoinedAt = at
		}
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockForumStore) CountActive(ctx context.Context, forumID string) (int, error) {
	count := 0
	for _, p := range m.participants {
		if p.ForumID == forumID && p.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *mockForumStore) HasActive(ctx context.Context, forumID, studentID string) (bool, error) {
	for _, p := range m.participants {
		if p.ForumID == forumID && p.StudentID == studentID && p.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockForumStore) ListMessages(ctx context.Context, forumID string) ([]models.ForumMessage, error) {
	var messages []models.ForumMessage
	for _, msg := range m.messages {
		if msg.ForumID == forumID {
			messages = append(messages, *msg)
		}
	}
	return messages, nil
}

func (m *mockForumStore) CreateMessage(ctx context.Context, msg *models.ForumMessage) error {
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockForumStore) FindMessage(ctx context.Context, id string) (*models.ForumMessage, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockForumStore) CreateAttachment(ctx context.Context, a *models.ForumAttachment) error {
	m.attachments = append(m.attachments, a)
	return nil
}

func (m *mockForumStore) ListAttachmentsByMessage(ctx context.Context, messageID string) ([]models.ForumAttachment, error) {
	var attachments []models.ForumAttachment
	for _, a := range m.attachments {
		if a.MessageID == messageID {
			attachments = append(attachments, *a)
		}
	}
	return attachments, nil
}

func (m *mockForumStore) FindStudentByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockForumStore) FindInstructorByID(ctx context.Context, id string) (*models.Instructor, error) {
	if i, ok := m.instructors[id]; ok {
		return i, nil
	}
	return nil, sql.ErrNoRows
}

// forumRepoAdapter splits the single mock across the service's repo interfaces.
type forumRepoAdapter struct{ *mockForumStore }

func (a forumRepoAdapter) Create(ctx context.Context, p *models.ForumParticipant) error {
	return a.CreateParticipant(ctx, p)
}

type messageRepoAdapter struct{ *mockForumStore }

func (a messageRepoAdapter) ListByForum(ctx context.Context, forumID string) ([]models.ForumMessage, error) {
	return a.ListMessages(ctx, forumID)
}

func (a messageRepoAdapter) Create(ctx context.Context, m *models.ForumMessage) error {
	return a.CreateMessage(ctx, m)
}

func newForumService(store *mockForumStore) *ForumService {
	return NewForumService(store, forumRepoAdapter{store}, messageRepoAdapter{store}, store, nil, validator.New(), zap.NewNop(), ForumConfig{})
}

func seedForum(store *mockForumStore) (*models.Forum, *models.Instructor) {
	instructor := &models.Instructor{
		ID: "i1", Email: "grace@example.com", FullName: "Grace Hopper",
		VerificationStatus: models.VerificationVerified, Active: true,
	}
	store.instructors[instructor.ID] = instructor
	forum := &models.Forum{
		ID: "f1", Title: "Go Basics", Description: "Intro forum", Topic: "General",
		CreatedBy: instructor.ID, CreatedByName: instructor.FullName,
		CreatedByEmail: instructor.Email, IsActive: true,
	}
	store.forums[forum.ID] = forum
	return forum, instructor
}

func studentClaims(id, email string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleStudent, Email: email}
}

func instructorClaims(id, email string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleInstructor, Email: email}
}

func TestCreateForumRequiresVerifiedInstructor(t *testing.T) {
	store := newMockForumStore()
	store.instructors["i2"] = &models.Instructor{
		ID: "i2", Email: "new@example.com", FullName: "New Teacher",
		VerificationStatus: models.VerificationPending, Active: true,
	}
	svc := newForumService(store)

	_, err := svc.Create(context.Background(), instructorClaims("i2", "new@example.com"), models.CreateForumRequest{
		Title: "A forum", Description: "desc",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotVerified))
}

func TestCreateForumValidatesBeforeWrite(t *testing.T) {
	store := newMockForumStore()
	_, instructor := seedForum(store)
	svc := newForumService(store)

	_, err := svc.Create(context.Background(), instructorClaims(instructor.ID, instructor.Email), models.CreateForumRequest{
		Title: "   ", Description: "desc",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCreateForumStudentForbidden(t *testing.T) {
	store := newMockForumStore()
	svc := newForumService(store)

	_, err := svc.Create(context.Background(), studentClaims("s1", "ada@example.com"), models.CreateForumRequest{
		Title: "A forum", Description: "desc",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestJoinCreatesSingleActiveRecord(t *testing.T) {
	store := newMockForumStore()
	seedForum(store)
	store.students["s1"] = &models.Student{ID: "s1", Email: "ada@example.com", FullName: "Ada Lovelace", Active: true}
	svc := newForumService(store)

	res, err := svc.Join(context.Background(), studentClaims("s1", "ada@example.com"), "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ParticipantCount)

	// Second join is a conflict the client maps to success.
	_, err = svc.Join(context.Background(), studentClaims("s1", "ada@example.com"), "f1")
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyMember))

	count, err := store.CountActive(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLeaveThenRejoinReactivatesSameRow(t *testing.T) {
	store := newMockForumStore()
	seedForum(store)
	store.students["s1"] = &models.Student{ID: "s1", Email: "ada@example.com", FullName: "Ada Lovelace", Active: true}
	svc := newForumService(store)
	claims := studentClaims("s1", "ada@example.com")

	_, err := svc.Join(context.Background(), claims, "f1")
	require.NoError(t, err)
	require.NoError(t, svc.Leave(context.Background(), claims, "f1"))

	count, _ := store.CountActive(context.Background(), "f1")
	assert.Equal(t, 0, count)
	assert.Len(t, store.participants, 1, "leave must not delete the row")

	res, err := svc.Join(context.Background(), claims, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ParticipantCount)
	assert.Len(t, store.participants, 1, "rejoin must reactivate, not duplicate")
}

func TestLeaveWithoutMembership(t *testing.T) {
	store := newMockForumStore()
	seedForum(store)
	svc := newForumService(store)

	err := svc.Leave(context.Background(), studentClaims("s9", "no@example.com"), "f1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotMember))
}

func TestJoinUnknownForum(t *testing.T) {
	store := newMockForumStore()
	svc := newForumService(store)

	_, err := svc.Join(context.Background(), studentClaims("s1", "ada@example.com"), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestMessagesHiddenFromNonMembers(t *testing.T) {
	store := newMockForumStore()
	seedForum(store)
	store.messages = append(store.messages, &models.ForumMessage{ID: "m1", ForumID: "f1", Content: "hello"})
	svc := newForumService(store)

	messages, err := svc.Messages(context.Background(), studentClaims("s1", "ada@example.com"), "f1")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestInstructorCreatorReadsMessagesWithoutParticipantRow(t *testing.T) {
	store := newMockForumStore()
	_, instructor := seedForum(store)
	store.messages = append(store.messages, &models.ForumMessage{ID: "m1", ForumID: "f1", Content: "hello"})
	svc := newForumService(store)

	messages, err := svc.Messages(context.Background(), instructorClaims(instructor.ID, instructor.Email), "f1")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestPostMessageMemberOnly(t *testing.T) {
	store := newMockForumStore()
	seedForum(store)
	store.students["s1"] = &models.Student{ID: "s1", Email: "ada@example.com", FullName: "Ada Lovelace", Active: true}
	svc := newForumService(store)
	claims := studentClaims("s1", "ada@example.com")

	_, err := svc.PostMessage(context.Background(), claims, models.CreateMessageRequest{Forum: "f1", Content: "hi"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Join(context.Background(), claims, "f1")
	require.NoError(t, err)

	message, err := svc.PostMessage(context.Background(), claims, models.CreateMessageRequest{Forum: "f1", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace (Student)", message.SenderName)
	assert.Equal(t, models.SenderStudent, message.SenderType)
}

func TestCreateAttachmentRejectsUnknownMIME(t *testing.T) {
	store := newMockForumStore()
	_, instructor := seedForum(store)
	store.messages = append(store.messages, &models.ForumMessage{ID: "m1", ForumID: "f1", Content: "hello"})
	svc := newForumService(store)

	_, err := svc.CreateAttachment(context.Background(), instructorClaims(instructor.ID, instructor.Email), models.CreateAttachmentRequest{
		Forum: "f1", Message: "m1", FileName: "x.exe", FileType: "application/octet-stream", FileURL: "/files/x.exe",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCreateAttachmentEnforcesSizeLimit(t *testing.T) {
	store := newMockForumStore()
	_, instructor := seedForum(store)
	store.messages = append(store.messages, &models.ForumMessage{ID: "m1", ForumID: "f1", Content: "hello"})
	svc := NewForumService(store, forumRepoAdapter{store}, messageRepoAdapter{store}, store, nil, validator.New(), zap.NewNop(), ForumConfig{
		MaxAttachmentSize: 1024,
	})
	claims := instructorClaims(instructor.ID, instructor.Email)

	_, err := svc.CreateAttachment(context.Background(), claims, models.CreateAttachmentRequest{
		Forum: "f1", Message: "m1", FileName: "big.pdf", FileType: "application/pdf", FileURL: "/files/big.pdf",
		FileSize: 2048,
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	att, err := svc.CreateAttachment(context.Background(), claims, models.CreateAttachmentRequest{
		Forum: "f1", Message: "m1", FileName: "small.pdf", FileType: "application/pdf", FileURL: "/files/small.pdf",
		FileSize: 512,
	})
	require.NoError(t, err)
	assert.Equal(t, "small.pdf", att.FileName)
}
