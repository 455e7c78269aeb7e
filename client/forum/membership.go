// Package forum models client-side forum membership and the polling refresh
// loop that keeps an open forum view current.
package forum

import (
	"context"

	"go.uber.org/zap"

	"github.com/gyansort/gyansort-api/client/forumapi"
	"github.com/gyansort/gyansort-api/client/session"
	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
)

// forumService is the slice of the forum client the membership model uses.
type forumService interface {
	Participants(ctx context.Context, accessToken, forumID string) ([]forumapi.Participant, error)
	Join(ctx context.Context, accessToken, forumID string) (*forumapi.JoinResult, error)
	Leave(ctx context.Context, accessToken, forumID string) error
}

// Model owns join and leave transitions for the signed-in user. Membership
// itself is derived, never stored: IsMember recomputes it from the latest
// participant list so the model cannot drift from the server.
type Model struct {
	api    forumService
	store  session.TokenStore
	logger *zap.Logger
}

// NewModel constructs a Model.
func NewModel(api forumService, store session.TokenStore, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{api: api, store: store, logger: logger}
}

// IsMember reports whether the identity may read and post in the forum.
// Students match an active participant record by id or email. Instructors
// are implicit members of forums they created; no participant record exists
// for them.
func IsMember(identity session.Identity, forum forumapi.Forum, participants []forumapi.Participant) bool {
	if !identity.Authenticated || identity.Profile == nil {
		return false
	}

	switch identity.Role {
	case session.RoleInstructor:
		if identity.Profile.ID != "" && identity.Profile.ID == forum.CreatedBy {
			return true
		}
		return identity.Profile.Email != "" && identity.Profile.Email == forum.CreatedByEmail

	case session.RoleStudent:
		for _, p := range participants {
			if !p.IsActive {
				continue
			}
			if identity.Profile.ID != "" && p.StudentID == identity.Profile.ID {
				return true
			}
			if identity.Profile.Email != "" && p.StudentEmail == identity.Profile.Email {
				return true
			}
		}
	}
	return false
}

// ActiveStudentCount counts active participant records. Instructors never
// have participant records, so the forum creator is excluded even though
// they are an implicit member.
func ActiveStudentCount(participants []forumapi.Participant) int {
	n := 0
	for _, p := range participants {
		if p.IsActive {
			n++
		}
	}
	return n
}

// Join adds the signed-in student to the forum and returns the resulting
// active participant count. It is idempotent: an existing active membership
// short-circuits before the network call, and a server-side "already a
// member" conflict counts as success. Any other failure leaves the caller a
// non-member.
func (m *Model) Join(ctx context.Context, identity session.Identity, forum forumapi.Forum) (int, error) {
	token, err := m.store.AccessToken(ctx)
	if err != nil || token == "" {
		return 0, appErrors.ErrUnauthorized
	}

	participants, err := m.api.Participants(ctx, token, forum.ID)
	if err != nil {
		return 0, err
	}
	if IsMember(identity, forum, participants) {
		return ActiveStudentCount(participants), nil
	}

	if _, err := m.api.Join(ctx, token, forum.ID); err != nil {
		if !appErrors.Is(err, appErrors.ErrAlreadyMember) {
			return 0, err
		}
		m.logger.Debug("join raced an existing membership", zap.String("forum_id", forum.ID))
	}

	participants, err = m.api.Participants(ctx, token, forum.ID)
	if err != nil {
		return 0, err
	}
	return ActiveStudentCount(participants), nil
}

// Leave deactivates the signed-in student's membership. The caller owns
// navigation away from the chat view afterwards.
func (m *Model) Leave(ctx context.Context, forumID string) error {
	token, err := m.store.AccessToken(ctx)
	if err != nil || token == "" {
		return appErrors.ErrUnauthorized
	}
	return m.api.Leave(ctx, token, forumID)
}

// Refresh fetches the current participant list.
func (m *Model) Refresh(ctx context.Context, forumID string) ([]forumapi.Participant, error) {
	token, err := m.store.AccessToken(ctx)
	if err != nil || token == "" {
		return nil, appErrors.ErrUnauthorized
	}
	return m.api.Participants(ctx, token, forumID)
}
