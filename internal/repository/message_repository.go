package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gyansort/gyansort-api/internal/models"
)

// MessageRepository manages forum messages and their attachments.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// ListByForum returns a forum's messages ordered by send time ascending,
// with attachments attached.
func (r *MessageRepository) ListByForum(ctx context.Context, forumID string) ([]models.ForumMessage, error) {
	const query = `SELECT id, forum_id, sender_type, sender_id, sender_name, content, sent_at
        FROM forum_messages WHERE forum_id = $1 ORDER BY sent_at ASC`
	var messages []models.ForumMessage
	if err := r.db.SelectContext(ctx, &messages, query, forumID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(messages) == 0 {
		return messages, nil
	}

	const attachmentQuery = `SELECT id, message_id, forum_id, file_name, file_type, file_url, sender_type, sender_id, uploaded_at
        FROM forum_attachments WHERE forum_id = $1 ORDER BY uploaded_at ASC`
	var attachments []models.ForumAttachment
	if err := r.db.SelectContext(ctx, &attachments, attachmentQuery, forumID); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}

	byMessage := make(map[string][]models.ForumAttachment, len(attachments))
	for _, a := range attachments {
		byMessage[a.MessageID] = append(byMessage[a.MessageID], a)
	}
	for i := range messages {
		messages[i].Attachments = byMessage[messages[i].ID]
	}
	return messages, nil
}

// Create inserts a new message.
func (r *MessageRepository) Create(ctx context.Context, m *models.ForumMessage) error {
	const query = `INSERT INTO forum_messages (id, forum_id, sender_type, sender_id, sender_name, content, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.ForumID, m.SenderType, m.SenderID, m.SenderName, m.Content, m.SentAt); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// FindMessage returns a single message by id.
func (r *MessageRepository) FindMessage(ctx context.Context, id string) (*models.ForumMessage, error) {
	const query = `SELECT id, forum_id, sender_type, sender_id, sender_name, content, sent_at
        FROM forum_messages WHERE id = $1 LIMIT 1`
	var message models.ForumMessage
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		return nil, err
	}
	return &message, nil
}

// CreateAttachment inserts attachment metadata for a message.
func (r *MessageRepository) CreateAttachment(ctx context.Context, a *models.ForumAttachment) error {
	const query = `INSERT INTO forum_attachments (id, message_id, forum_id, file_name, file_type, file_url, sender_type, sender_id, uploaded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.MessageID, a.ForumID, a.FileName, a.FileType, a.FileURL, a.SenderType, a.SenderID, a.UploadedAt); err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

// ListAttachmentsByMessage returns attachments for one message.
func (r *MessageRepository) ListAttachmentsByMessage(ctx context.Context, messageID string) ([]models.ForumAttachment, error) {
	const query = `SELECT id, message_id, forum_id, file_name, file_type, file_url, sender_type, sender_id, uploaded_at
        FROM forum_attachments WHERE message_id = $1 ORDER BY uploaded_at ASC`
	var attachments []models.ForumAttachment
	if err := r.db.SelectContext(ctx, &attachments, query, messageID); err != nil {
		return nil, fmt.Errorf("list attachments by message: %w", err)
	}
	return attachments, nil
}
