package forum

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyansort/gyansort-api/client/forumapi"
	"github.com/gyansort/gyansort-api/client/session"
)

type countingSource struct {
	mu           sync.Mutex
	messageCalls int
	messages     []forumapi.Message
	participants []forumapi.Participant
}

func (c *countingSource) Messages(context.Context, string, string) ([]forumapi.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messageCalls++
	return c.messages, nil
}

func (c *countingSource) Participants(context.Context, string, string) ([]forumapi.Participant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.participants, nil
}

func (c *countingSource) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messageCalls
}

func pollStore(t *testing.T) session.TokenStore {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.SetSession(context.Background(), session.Session{
		AccessToken: "tok",
		Role:        session.RoleStudent,
	}))
	return store
}

func TestCancelBeforeFirstTickSuppressesUpdates(t *testing.T) {
	source := &countingSource{}
	syncer := NewSyncer(source, pollStore(t), 0, nil)

	var updates atomic.Int32
	handle := syncer.Start("f-1", 50*time.Millisecond, func() bool { return true }, func([]forumapi.Message, []forumapi.Participant) {
		updates.Add(1)
	})
	handle.Cancel()

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, updates.Load())
	assert.Zero(t, source.calls())
}

func TestCancelIsIdempotent(t *testing.T) {
	syncer := NewSyncer(&countingSource{}, pollStore(t), 0, nil)
	handle := syncer.Start("f-1", time.Hour, func() bool { return true }, nil)

	handle.Cancel()
	handle.Cancel()

	select {
	case <-handle.Done():
	default:
		t.Fatal("handle not closed after cancel")
	}
}

func TestNonMemberTickSkipsNetwork(t *testing.T) {
	source := &countingSource{}
	syncer := NewSyncer(source, pollStore(t), 0, nil)

	handle := syncer.Start("f-1", 20*time.Millisecond, func() bool { return false }, func([]forumapi.Message, []forumapi.Participant) {
		t.Error("onUpdate fired for a non-member")
	})
	defer handle.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, source.calls())
}

func TestMemberTickFetchesAndDelivers(t *testing.T) {
	source := &countingSource{
		messages:     []forumapi.Message{{ID: "m-1", Content: "hello"}},
		participants: []forumapi.Participant{{ID: "p-1", IsActive: true}},
	}
	syncer := NewSyncer(source, pollStore(t), 0, nil)

	got := make(chan int, 16)
	handle := syncer.Start("f-1", 20*time.Millisecond, func() bool { return true }, func(msgs []forumapi.Message, parts []forumapi.Participant) {
		got <- len(msgs)
	})
	defer handle.Cancel()

	select {
	case n := <-got:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("no update delivered")
	}
}

func TestMembershipFlipStopsFetching(t *testing.T) {
	source := &countingSource{}
	syncer := NewSyncer(source, pollStore(t), 0, nil)

	var member atomic.Bool
	member.Store(true)
	handle := syncer.Start("f-1", 20*time.Millisecond, member.Load, nil)
	defer handle.Cancel()

	time.Sleep(100 * time.Millisecond)
	require.Positive(t, source.calls())

	member.Store(false)
	time.Sleep(50 * time.Millisecond)
	before := source.calls()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, source.calls())
}
