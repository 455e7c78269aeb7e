// Package forumapi is the SDK client for the forum endpoints: listing,
// membership, messages and attachments.
package forumapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
)

// Forum mirrors the wire shape of a discussion group.
type Forum struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Topic          string    `json:"topic"`
	CreatedBy      string    `json:"created_by"`
	CreatedByName  string    `json:"created_by_name"`
	CreatedByEmail string    `json:"created_by_email"`
	CreatedAt      time.Time `json:"created_at"`
	IsActive       bool      `json:"is_active"`
}

// Participant mirrors the wire shape of a membership record.
type Participant struct {
	ID           string    `json:"id"`
	ForumID      string    `json:"forum"`
	StudentID    string    `json:"student_id"`
	StudentEmail string    `json:"student_email"`
	StudentName  string    `json:"student_name"`
	JoinedAt     time.Time `json:"joined_at"`
	IsActive     bool      `json:"is_active"`
}

// Message mirrors the wire shape of a chat entry.
type Message struct {
	ID          string       `json:"id"`
	ForumID     string       `json:"forum"`
	SenderType  string       `json:"sender_type"`
	SenderID    string       `json:"sender_id"`
	SenderName  string       `json:"sender_name"`
	Content     string       `json:"content"`
	SentAt      time.Time    `json:"sent_at"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment mirrors the wire shape of a shared file.
type Attachment struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message"`
	ForumID    string    `json:"forum"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileURL    string    `json:"file_url"`
	SenderType string    `json:"sender_type"`
	SenderID   string    `json:"sender_id"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// JoinResult is the join endpoint payload.
type JoinResult struct {
	AlreadyMember    bool `json:"already_member"`
	ParticipantCount int  `json:"participant_count"`
}

// Config tunes the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the forum service with bearer auth.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New constructs a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// ListForums reads GET /forums/.
func (c *Client) ListForums(ctx context.Context, accessToken string) ([]Forum, error) {
	var forums []Forum
	if err := c.do(ctx, http.MethodGet, "/forums/", accessToken, nil, &forums); err != nil {
		return nil, err
	}
	return forums, nil
}

// Participants reads GET /forums/participants/?forum={id}.
func (c *Client) Participants(ctx context.Context, accessToken, forumID string) ([]Participant, error) {
	var participants []Participant
	path := "/forums/participants/?forum=" + forumID
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// Join posts POST /forums/{id}/join/. A conflict response surfaces as
// ErrAlreadyMember; callers treating rejoin as success check for it.
func (c *Client) Join(ctx context.Context, accessToken, forumID string) (*JoinResult, error) {
	var result JoinResult
	path := "/forums/" + forumID + "/join/"
	if err := c.do(ctx, http.MethodPost, path, accessToken, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Leave posts POST /forums/{id}/leave/.
func (c *Client) Leave(ctx context.Context, accessToken, forumID string) error {
	path := "/forums/" + forumID + "/leave/"
	return c.do(ctx, http.MethodPost, path, accessToken, nil, nil)
}

// Messages reads GET /forums/messages/?forum={id}, ordered by send time.
func (c *Client) Messages(ctx context.Context, accessToken, forumID string) ([]Message, error) {
	var messages []Message
	path := "/forums/messages/?forum=" + forumID
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// PostMessage posts POST /forums/messages/.
func (c *Client) PostMessage(ctx context.Context, accessToken, forumID, content string) (*Message, error) {
	payload := map[string]string{"forum": forumID, "content": content}
	var msg Message
	if err := c.do(ctx, http.MethodPost, "/forums/messages/", accessToken, payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AttachmentRequest registers an uploaded file against a message. FileSize
// is in bytes; the server rejects files above its configured limit.
type AttachmentRequest struct {
	Forum    string `json:"forum"`
	Message  string `json:"message"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileURL  string `json:"file_url"`
	FileSize int64  `json:"file_size,omitempty"`
}

// CreateAttachment posts POST /forums/attachments/.
func (c *Client) CreateAttachment(ctx context.Context, accessToken string, req AttachmentRequest) (*Attachment, error) {
	var att Attachment
	if err := c.do(ctx, http.MethodPost, "/forums/attachments/", accessToken, req, &att); err != nil {
		return nil, err
	}
	return &att, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "forum service unreachable")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return c.mapStatusError(res)
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed forum response")
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed forum response")
	}
	return nil
}

func (c *Client) mapStatusError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	var envelope struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	message := ""
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		message = envelope.Error.Message
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return appErrors.ErrUnauthorized
	case res.StatusCode == http.StatusConflict && strings.Contains(strings.ToLower(message), "already a member"):
		return appErrors.ErrAlreadyMember
	case res.StatusCode == http.StatusConflict:
		return appErrors.Clone(appErrors.ErrConflict, message)
	case res.StatusCode == http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrForbidden, message)
	case res.StatusCode == http.StatusNotFound:
		return appErrors.ErrNotFound
	case res.StatusCode >= 500:
		if message == "" {
			message = fmt.Sprintf("forum service returned %d", res.StatusCode)
		}
		return appErrors.Clone(appErrors.ErrUpstream, message)
	default:
		if message == "" {
			message = fmt.Sprintf("forum request rejected with %d", res.StatusCode)
		}
		return appErrors.New(appErrors.ErrValidation.Code, res.StatusCode, message)
	}
}
