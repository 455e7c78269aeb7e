package models

import "time"

// Forum is a discussion group created by an instructor.
type Forum struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	Topic          string    `db:"topic" json:"topic"`
	CreatedBy      string    `db:"created_by" json:"created_by"`
	CreatedByName  string    `db:"created_by_name" json:"created_by_name"`
	CreatedByEmail string    `db:"created_by_email" json:"created_by_email"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	IsActive       bool      `db:"is_active" json:"is_active"`
}

// ForumParticipant is a student's membership record in a forum. Leaving a
// forum deactivates the record instead of deleting it; the (forum, student)
// pair is unique so rejoining reactivates the same row.
type ForumParticipant struct {
	ID           string    `db:"id" json:"id"`
	ForumID      string    `db:"forum_id" json:"forum"`
	StudentID    string    `db:"student_id" json:"student_id"`
	StudentEmail string    `db:"student_email" json:"student_email"`
	StudentName  string    `db:"student_name" json:"student_name"`
	JoinedAt     time.Time `db:"joined_at" json:"joined_at"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

// SenderType values for forum messages and attachments.
const (
	SenderStudent    = "student"
	SenderInstructor = "instructor"
)

// ForumMessage is an append-only chat entry ordered by SentAt.
type ForumMessage struct {
	ID          string            `db:"id" json:"id"`
	ForumID     string            `db:"forum_id" json:"forum"`
	SenderType  string            `db:"sender_type" json:"sender_type"`
	SenderID    string            `db:"sender_id" json:"sender_id"`
	SenderName  string            `db:"sender_name" json:"sender_name"`
	Content     string            `db:"content" json:"content"`
	SentAt      time.Time         `db:"sent_at" json:"sent_at"`
	Attachments []ForumAttachment `db:"-" json:"attachments"`
}

// ForumAttachment stores metadata for a file shared in a forum. Only images
// and PDFs are accepted; the file body lives behind FileURL.
type ForumAttachment struct {
	ID         string    `db:"id" json:"id"`
	MessageID  string    `db:"message_id" json:"message"`
	ForumID    string    `db:"forum_id" json:"forum"`
	FileName   string    `db:"file_name" json:"file_name"`
	FileType   string    `db:"file_type" json:"file_type"`
	FileURL    string    `db:"file_url" json:"file_url"`
	SenderType string    `db:"sender_type" json:"sender_type"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// CreateForumRequest is the instructor-facing creation payload.
type CreateForumRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Topic       string `json:"topic"`
}

// CreateMessageRequest posts a chat message to a forum.
type CreateMessageRequest struct {
	Forum   string `json:"forum" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// CreateAttachmentRequest registers an uploaded file against a message.
// FileSize is the size in bytes as reported by the uploader; zero means the
// uploader could not determine it.
type CreateAttachmentRequest struct {
	Forum    string `json:"forum" validate:"required"`
	Message  string `json:"message" validate:"required"`
	FileName string `json:"file_name" validate:"required"`
	FileType string `json:"file_type" validate:"required"`
	FileURL  string `json:"file_url" validate:"required"`
	FileSize int64  `json:"file_size" validate:"gte=0"`
}
