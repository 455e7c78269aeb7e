package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyansort/gyansort-api/internal/middleware"
	"github.com/gyansort/gyansort-api/internal/models"
	"github.com/gyansort/gyansort-api/internal/service"
)

type fakeForumRepo struct {
	forums map[string]*models.Forum
}

func (f *fakeForumRepo) List(context.Context) ([]models.Forum, error) {
	out := make([]models.Forum, 0, len(f.forums))
	for _, fr := range f.forums {
		out = append(out, *fr)
	}
	return out, nil
}

func (f *fakeForumRepo) ListByCreator(context.Context, string) ([]models.Forum, error) {
	return nil, nil
}

func (f *fakeForumRepo) FindByID(_ context.Context, id string) (*models.Forum, error) {
	fr, ok := f.forums[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return fr, nil
}

func (f *fakeForumRepo) Create(_ context.Context, forum *models.Forum) error {
	f.forums[forum.ID] = forum
	return nil
}

func (f *fakeForumRepo) Deactivate(context.Context, string) error { return nil }

type fakeParticipantRepo struct {
	rows map[string]*models.ForumParticipant
}

func (f *fakeParticipantRepo) ListByForum(context.Context, string) ([]models.ForumParticipant, error) {
	return nil, nil
}

func (f *fakeParticipantRepo) Find(_ context.Context, forumID, studentID string) (*models.ForumParticipant, error) {
	for _, p := range f.rows {
		if p.ForumID == forumID && p.StudentID == studentID {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeParticipantRepo) Create(_ context.Context, p *models.ForumParticipant) error {
	f.rows[p.ID] = p
	return nil
}

func (f *fakeParticipantRepo) SetActive(_ context.Context, id string, active bool, _ time.Time) error {
	if p, ok := f.rows[id]; ok {
		p.IsActive = active
	}
	return nil
}

func (f *fakeParticipantRepo) CountActive(_ context.Context, forumID string) (int, error) {
	n := 0
	for _, p := range f.rows {
		if p.ForumID == forumID && p.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeParticipantRepo) HasActive(_ context.Context, forumID, studentID string) (bool, error) {
	for _, p := range f.rows {
		if p.ForumID == forumID && p.StudentID == studentID && p.IsActive {
			return true, nil
		}
	}
	return false, nil
}

type fakeMessageRepo struct{}

func (fakeMessageRepo) ListByForum(context.Context, string) ([]models.ForumMessage, error) {
	return nil, nil
}
func (fakeMessageRepo) Create(context.Context, *models.ForumMessage) error { return nil }
func (fakeMessageRepo) FindMessage(context.Context, string) (*models.ForumMessage, error) {
	return nil, sql.ErrNoRows
}
func (fakeMessageRepo) CreateAttachment(context.Context, *models.ForumAttachment) error { return nil }
func (fakeMessageRepo) ListAttachmentsByMessage(context.Context, string) ([]models.ForumAttachment, error) {
	return nil, nil
}

type fakeForumUsers struct{}

func (fakeForumUsers) FindStudentByID(_ context.Context, id string) (*models.Student, error) {
	return &models.Student{ID: id, FullName: "Asha Verma", Email: "asha@example.com"}, nil
}

func (fakeForumUsers) FindInstructorByID(_ context.Context, id string) (*models.Instructor, error) {
	return nil, sql.ErrNoRows
}

func newForumHandler(forums *fakeForumRepo, participants *fakeParticipantRepo) *ForumHandler {
	svc := service.NewForumService(forums, participants, fakeMessageRepo{}, fakeForumUsers{}, nil, nil, nil, service.ForumConfig{})
	return NewForumHandler(svc)
}

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func studentContext(rec *httptest.ResponseRecorder, method, target string) *gin.Context {
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: "student-1",
		Role:   models.RoleStudent,
		Email:  "asha@example.com",
	})
	return c
}

func TestForumHandlerJoinFirstTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	forums := &fakeForumRepo{forums: map[string]*models.Forum{
		"forum-1": {ID: "forum-1", Title: "Algorithms", CreatedBy: "inst-1", IsActive: true},
	}}
	participants := &fakeParticipantRepo{rows: map[string]*models.ForumParticipant{}}
	handler := newForumHandler(forums, participants)

	rec := httptest.NewRecorder()
	c := studentContext(rec, http.MethodPost, "/forums/forum-1/join/")
	c.Params = gin.Params{{Key: "id", Value: "forum-1"}}

	handler.Join(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data service.JoinResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.AlreadyMember)
	assert.Equal(t, 1, envelope.Data.ParticipantCount)
}

func TestForumHandlerJoinTwiceConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	forums := &fakeForumRepo{forums: map[string]*models.Forum{
		"forum-1": {ID: "forum-1", Title: "Algorithms", CreatedBy: "inst-1", IsActive: true},
	}}
	participants := &fakeParticipantRepo{rows: map[string]*models.ForumParticipant{
		"p-1": {ID: "p-1", ForumID: "forum-1", StudentID: "student-1", IsActive: true},
	}}
	handler := newForumHandler(forums, participants)

	rec := httptest.NewRecorder()
	c := studentContext(rec, http.MethodPost, "/forums/forum-1/join/")
	c.Params = gin.Params{{Key: "id", Value: "forum-1"}}

	handler.Join(c)

	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Message, "already a member")
}

func TestForumHandlerParticipantsRequiresForumParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newForumHandler(
		&fakeForumRepo{forums: map[string]*models.Forum{}},
		&fakeParticipantRepo{rows: map[string]*models.ForumParticipant{}},
	)

	rec := httptest.NewRecorder()
	c := studentContext(rec, http.MethodGet, "/forums/participants/")

	handler.Participants(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForumHandlerMessagesRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newForumHandler(
		&fakeForumRepo{forums: map[string]*models.Forum{}},
		&fakeParticipantRepo{rows: map[string]*models.ForumParticipant{}},
	)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/forums/messages/?forum=forum-1", nil)

	handler.Messages(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
