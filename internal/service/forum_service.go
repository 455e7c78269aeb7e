package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gyansort/gyansort-api/internal/models"
	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
)

type forumRepository interface {
	List(ctx context.Context) ([]models.Forum, error)
	ListByCreator(ctx context.Context, instructorID string) ([]models.Forum, error)
	FindByID(ctx context.Context, id string) (*models.Forum, error)
	Create(ctx context.Context, forum *models.Forum) error
	Deactivate(ctx context.Context, id string) error
}

type participantRepository interface {
	ListByForum(ctx context.Context, forumID string) ([]models.ForumParticipant, error)
	Find(ctx context.Context, forumID, studentID string) (*models.ForumParticipant, error)
	Create(ctx context.Context, p *models.ForumParticipant) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	CountActive(ctx context.Context, forumID string) (int, error)
	HasActive(ctx context.Context, forumID, studentID string) (bool, error)
}

type messageRepository interface {
	ListByForum(ctx context.Context, forumID string) ([]models.ForumMessage, error)
	Create(ctx context.Context, m *models.ForumMessage) error
	FindMessage(ctx context.Context, id string) (*models.ForumMessage, error)
	CreateAttachment(ctx context.Context, a *models.ForumAttachment) error
	ListAttachmentsByMessage(ctx context.Context, messageID string) ([]models.ForumAttachment, error)
}

type forumUserRepository interface {
	FindStudentByID(ctx context.Context, id string) (*models.Student, error)
	FindInstructorByID(ctx context.Context, id string) (*models.Instructor, error)
}

type forumCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ForumConfig tunes forum service behaviour.
type ForumConfig struct {
	CacheTTL          time.Duration
	AllowedMIMEs      []string
	MaxAttachmentSize int64
}

// JoinResult reports the outcome of a join request. AlreadyMember marks the
// idempotent path where no new membership was created.
type JoinResult struct {
	AlreadyMember    bool `json:"already_member"`
	ParticipantCount int  `json:"participant_count"`
}

// ForumService implements the forum use cases: creation, membership with
// idempotent join and soft leave, messages and attachments.
type ForumService struct {
	forums       forumRepository
	participants participantRepository
	messages     messageRepository
	users        forumUserRepository
	cache        forumCache
	validator    *validator.Validate
	logger       *zap.Logger
	config       ForumConfig
}

// NewForumService constructs a ForumService.
func NewForumService(forums forumRepository, participants participantRepository, messages messageRepository, users forumUserRepository, cache forumCache, validate *validator.Validate, logger *zap.Logger, config ForumConfig) *ForumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = time.Minute
	}
	return &ForumService{
		forums:       forums,
		participants: participants,
		messages:     messages,
		users:        users,
		cache:        cache,
		validator:    validate,
		logger:       logger,
		config:       config,
	}
}

const forumListCacheKey = "forums:list"

// List returns active forums, read-visible to every authenticated user.
func (s *ForumService) List(ctx context.Context) ([]models.Forum, error) {
	if s.cache != nil {
		var cached []models.Forum
		if err := s.cache.Get(ctx, forumListCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	forums, err := s.forums.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list forums")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, forumListCacheKey, forums, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache forum list", zap.Error(err))
		}
	}
	return forums, nil
}

// ListByCreator returns the forums an instructor owns.
func (s *ForumService) ListByCreator(ctx context.Context, instructorID string) ([]models.Forum, error) {
	forums, err := s.forums.ListByCreator(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list forums")
	}
	return forums, nil
}

// Get returns a single forum.
func (s *ForumService) Get(ctx context.Context, forumID string) (*models.Forum, error) {
	forum, err := s.forums.FindByID(ctx, forumID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "forum not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load forum")
	}
	return forum, nil
}

// Create makes a new forum. Only verified instructors may create forums;
// title and description are validated before any write.
func (s *ForumService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateForumRequest) (*models.Forum, error) {
	if claims == nil || claims.Role != models.RoleInstructor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only instructors can create forums")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title and description are required")
	}

	instructor, err := s.users.FindInstructorByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "instructor account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if instructor.VerificationStatus != models.VerificationVerified {
		return nil, appErrors.Clone(appErrors.ErrNotVerified, "")
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = "General"
	}

	forum := &models.Forum{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Topic:          topic,
		CreatedBy:      instructor.ID,
		CreatedByName:  instructor.FullName,
		CreatedByEmail: instructor.Email,
		CreatedAt:      time.Now().UTC(),
		IsActive:       true,
	}
	if err := s.forums.Create(ctx, forum); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create forum")
	}

	s.invalidateForumCaches(ctx, forum.ID)
	s.logger.Info("forum created", zap.String("forum_id", forum.ID), zap.String("created_by", instructor.ID))
	return forum, nil
}

// Delete soft-deletes a forum owned by the caller.
func (s *ForumService) Delete(ctx context.Context, claims *models.JWTClaims, forumID string) error {
	forum, err := s.Get(ctx, forumID)
	if err != nil {
		return err
	}
	if claims == nil || claims.Role != models.RoleInstructor || forum.CreatedBy != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the forum creator can delete it")
	}
	if err := s.forums.Deactivate(ctx, forumID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete forum")
	}
	s.invalidateForumCaches(ctx, forumID)
	return nil
}

// Participants lists a forum's membership rows, active and inactive.
func (s *ForumService) Participants(ctx context.Context, forumID string) ([]models.ForumParticipant, error) {
	participants, err := s.participants.ListByForum(ctx, forumID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}
	return participants, nil
}

// Join enrols a student into a forum. An existing active membership is a
// conflict the client treats as success; an inactive row is reactivated so the
// (forum, student) pair never yields two active records.
func (s *ForumService) Join(ctx context.Context, claims *models.JWTClaims, forumID string) (*JoinResult, error) {
	if claims == nil || claims.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can join forums")
	}

	if _, err := s.Get(ctx, forumID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	existing, err := s.participants.Find(ctx, forumID, claims.UserID)
	switch {
	case err == nil && existing.IsActive:
		return nil, appErrors.ErrAlreadyMember

	case err == nil:
		if err := s.participants.SetActive(ctx, existing.ID, true, now); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rejoin forum")
		}

	case errors.Is(err, sql.ErrNoRows):
		participant := &models.ForumParticipant{
			ID:        uuid.NewString(),
			ForumID:   forumID,
			StudentID: claims.UserID,
			JoinedAt:  now,
			IsActive:  true,
		}
		if err := s.participants.Create(ctx, participant); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join forum")
		}

	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}

	s.invalidateForumCaches(ctx, forumID)

	count, err := s.participants.CountActive(ctx, forumID)
	if err != nil {
		s.logger.Warn("failed to count participants", zap.Error(err))
	}
	s.logger.Info("student joined forum", zap.String("forum_id", forumID), zap.String("student_id", claims.UserID))
	return &JoinResult{ParticipantCount: count}, nil
}

// Leave deactivates a student's membership. The row survives so a later join
// reactivates it.
func (s *ForumService) Leave(ctx context.Context, claims *models.JWTClaims, forumID string) error {
	if claims == nil || claims.Role != models.RoleStudent {
		return appErrors.Clone(appErrors.ErrForbidden, "only students can leave forums")
	}

	existing, err := s.participants.Find(ctx, forumID, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotMember
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !existing.IsActive {
		return appErrors.ErrNotMember
	}

	if err := s.participants.SetActive(ctx, existing.ID, false, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to leave forum")
	}

	s.invalidateForumCaches(ctx, forumID)
	s.logger.Info("student left forum", zap.String("forum_id", forumID), zap.String("student_id", claims.UserID))
	return nil
}

// Messages returns a forum's chat history for members. Non-members receive an
// empty list rather than an error, matching the legacy read behaviour.
func (s *ForumService) Messages(ctx context.Context, claims *models.JWTClaims, forumID string) ([]models.ForumMessage, error) {
	member, err := s.isMember(ctx, claims, forumID)
	if err != nil {
		return nil, err
	}
	if !member {
		return []models.ForumMessage{}, nil
	}

	messages, err := s.messages.ListByForum(ctx, forumID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// PostMessage appends a chat message on behalf of the caller. Posting is
// member-only for both roles.
func (s *ForumService) PostMessage(ctx context.Context, claims *models.JWTClaims, req models.CreateMessageRequest) (*models.ForumMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "forum and content are required")
	}

	member, err := s.isMember(ctx, claims, req.Forum)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only forum members can post messages")
	}

	senderType, senderName, err := s.senderIdentity(ctx, claims)
	if err != nil {
		return nil, err
	}

	message := &models.ForumMessage{
		ID:         uuid.NewString(),
		ForumID:    req.Forum,
		SenderType: senderType,
		SenderID:   claims.UserID,
		SenderName: senderName,
		Content:    req.Content,
		SentAt:     time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post message")
	}
	return message, nil
}

// CreateAttachment registers attachment metadata against an existing message.
// Only images and PDFs are accepted.
func (s *ForumService) CreateAttachment(ctx context.Context, claims *models.JWTClaims, req models.CreateAttachmentRequest) (*models.ForumAttachment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attachment payload")
	}

	if !s.mimeAllowed(req.FileType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only images and PDF files are allowed")
	}

	if s.config.MaxAttachmentSize > 0 && req.FileSize > s.config.MaxAttachmentSize {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("attachment exceeds the maximum size of %d bytes", s.config.MaxAttachmentSize))
	}

	member, err := s.isMember(ctx, claims, req.Forum)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only forum members can share files")
	}

	if _, err := s.messages.FindMessage(ctx, req.Message); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}

	senderType, _, err := s.senderIdentity(ctx, claims)
	if err != nil {
		return nil, err
	}

	attachment := &models.ForumAttachment{
		ID:         uuid.NewString(),
		MessageID:  req.Message,
		ForumID:    req.Forum,
		FileName:   req.FileName,
		FileType:   req.FileType,
		FileURL:    req.FileURL,
		SenderType: senderType,
		SenderID:   claims.UserID,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.messages.CreateAttachment(ctx, attachment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
	}
	return attachment, nil
}

// Attachments returns attachment metadata for one message.
func (s *ForumService) Attachments(ctx context.Context, messageID string) ([]models.ForumAttachment, error) {
	attachments, err := s.messages.ListAttachmentsByMessage(ctx, messageID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attachments")
	}
	return attachments, nil
}

// isMember mirrors the client-side rule: students need an active participant
// row, instructors are implicit members of forums they created.
func (s *ForumService) isMember(ctx context.Context, claims *models.JWTClaims, forumID string) (bool, error) {
	if claims == nil {
		return false, appErrors.ErrUnauthorized
	}

	switch claims.Role {
	case models.RoleInstructor:
		forum, err := s.Get(ctx, forumID)
		if err != nil {
			return false, err
		}
		return forum.CreatedBy == claims.UserID || forum.CreatedByEmail == claims.Email, nil

	case models.RoleStudent:
		active, err := s.participants.HasActive(ctx, forumID, claims.UserID)
		if err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
		}
		return active, nil
	}
	return false, nil
}

func (s *ForumService) senderIdentity(ctx context.Context, claims *models.JWTClaims) (senderType, senderName string, err error) {
	switch claims.Role {
	case models.RoleStudent:
		student, err := s.users.FindStudentByID(ctx, claims.UserID)
		if err != nil {
			return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sender")
		}
		return models.SenderStudent, fmt.Sprintf("%s (Student)", student.FullName), nil
	case models.RoleInstructor:
		instructor, err := s.users.FindInstructorByID(ctx, claims.UserID)
		if err != nil {
			return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sender")
		}
		return models.SenderInstructor, fmt.Sprintf("%s (Instructor)", instructor.FullName), nil
	}
	return "", "", appErrors.Clone(appErrors.ErrForbidden, "invalid user type")
}

func (s *ForumService) mimeAllowed(mime string) bool {
	if len(s.config.AllowedMIMEs) == 0 {
		return strings.HasPrefix(mime, "image/") || mime == "application/pdf"
	}
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.EqualFold(mime, allowed) {
			return true
		}
	}
	return false
}

func (s *ForumService) invalidateForumCaches(ctx context.Context, forumID string) {
	if s.cache == nil {
		return
	}
	keys := []string{forumListCacheKey, fmt.Sprintf("forums:%s:participants", forumID)}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("failed to invalidate forum caches", zap.Error(err))
	}
}
