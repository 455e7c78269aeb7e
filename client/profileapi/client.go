// Package profileapi is the SDK client for the profile endpoints. It fetches
// the role-keyed profile payload and leaves schema normalization to the
// session package.
package profileapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gyansort/gyansort-api/client/session"
	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
)

// Config tunes the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the profile service with bearer auth.
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

// FetchProfile reads GET /{role}s/profile/ for the given role.
func (c *Client) FetchProfile(ctx context.Context, role session.Role, accessToken string) (*session.RawProfile, error) {
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	url := fmt.Sprintf("%s/%ss/profile/", c.baseURL, role)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "profile service unreachable")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, mapStatusError(res)
	}

	var envelope struct {
		Data session.RawProfile `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed profile response")
	}

	return &envelope.Data, nil
}

func mapStatusError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	var envelope struct {
		Error *struct {
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
	case res.StatusCode == http.StatusForbidden:
		return appErrors.ErrForbidden
	case res.StatusCode == http.StatusNotFound:
		return appErrors.ErrNotFound
	case res.StatusCode >= 500:
		if message == "" {
			message = fmt.Sprintf("profile service returned %d", res.StatusCode)
		}
		return appErrors.Clone(appErrors.ErrUpstream, message)
	default:
		if message == "" {
			message = fmt.Sprintf("profile request rejected with %d", res.StatusCode)
		}
		return appErrors.New(appErrors.ErrValidation.Code, res.StatusCode, message)
	}
}
