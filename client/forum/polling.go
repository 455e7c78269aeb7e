package forum

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gyansort/gyansort-api/client/forumapi"
	"github.com/gyansort/gyansort-api/client/session"
)

// DefaultPollInterval matches the legacy chat refresh cadence.
const DefaultPollInterval = 5 * time.Second

// pollSource is the slice of the forum client the poller fetches from.
type pollSource interface {
	Messages(ctx context.Context, accessToken, forumID string) ([]forumapi.Message, error)
	Participants(ctx context.Context, accessToken, forumID string) ([]forumapi.Participant, error)
}

// UpdateFunc receives each successful refresh.
type UpdateFunc func(messages []forumapi.Message, participants []forumapi.Participant)

// MemberFunc reports current membership without touching the network.
type MemberFunc func() bool

// CancelHandle stops a polling loop. Cancel is idempotent and safe after the
// owning view is gone.
type CancelHandle struct {
	once sync.Once
	done chan struct{}
}

// Cancel stops all future ticks. Once cancelled, the update callback is
// never invoked again, including for fetches already in flight.
func (h *CancelHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
}

// Done exposes the cancellation channel for callers that select on it.
func (h *CancelHandle) Done() <-chan struct{} {
	return h.done
}

// Syncer runs the bounded-interval refresh loop for an open forum view.
type Syncer struct {
	api      pollSource
	store    session.TokenStore
	logger   *zap.Logger
	interval time.Duration
}

// NewSyncer constructs a Syncer. interval <= 0 selects the default.
func NewSyncer(api pollSource, store session.TokenStore, interval time.Duration, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Syncer{api: api, store: store, logger: logger, interval: interval}
}

// Start begins polling the forum. At each tick, if member reports true, a
// fetch runs in its own goroutine and onUpdate receives the result; a slow
// response never delays the next tick. Non-member ticks skip the network
// entirely. interval <= 0 selects the syncer's configured interval.
func (s *Syncer) Start(forumID string, interval time.Duration, member MemberFunc, onUpdate UpdateFunc) *CancelHandle {
	if interval <= 0 {
		interval = s.interval
	}
	handle := &CancelHandle{done: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-handle.done:
				return
			case <-ticker.C:
				if member != nil && !member() {
					continue
				}
				go s.fetch(forumID, handle, onUpdate)
			}
		}
	}()

	return handle
}

func (s *Syncer) fetch(forumID string, handle *CancelHandle, onUpdate UpdateFunc) {
	ctx := context.Background()
	token, err := s.store.AccessToken(ctx)
	if err != nil || token == "" {
		return
	}

	messages, err := s.api.Messages(ctx, token, forumID)
	if err != nil {
		s.logger.Debug("message refresh failed", zap.String("forum_id", forumID), zap.Error(err))
		return
	}
	participants, err := s.api.Participants(ctx, token, forumID)
	if err != nil {
		s.logger.Debug("participant refresh failed", zap.String("forum_id", forumID), zap.Error(err))
		return
	}

	select {
	case <-handle.done:
		// Cancelled while the fetch was in flight; drop the result.
	default:
		if onUpdate != nil {
			onUpdate(messages, participants)
		}
	}
}
