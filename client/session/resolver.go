package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
)

// ProfileFetcher reads the role-keyed profile endpoint with bearer auth.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, role Role, accessToken string) (*RawProfile, error)
}

// Resolver derives the current Identity from the TokenStore plus an optional
// network refresh. It is the single writer of session state: Login, Logout
// and the Resolve write-back all pass through it.
type Resolver struct {
	store    TokenStore
	profiles ProfileFetcher
	logger   *zap.Logger

	mu      sync.Mutex
	gen     uint64
	current Identity
}

// NewResolver constructs a Resolver. profiles may be nil, in which case
// Resolve never refreshes and serves cached profiles only.
func NewResolver(store TokenStore, profiles ProfileFetcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:    store,
		profiles: profiles,
		logger:   logger,
		current:  Identity{Loading: true},
	}
}

// Current returns the last resolved identity without touching the store.
func (r *Resolver) Current() Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Resolve reads the store, optimistically authenticates from the persisted
// role, then refreshes the profile from the Profile Service. Fetch failures
// degrade to the cached profile and never sign the user out; a concurrent
// Login or Logout invalidates the in-flight fetch so its result is discarded
// instead of clobbering the newer session.
func (r *Resolver) Resolve(ctx context.Context) Identity {
	snap, err := r.store.Snapshot(ctx)
	if err != nil {
		r.logger.Warn("session store unreadable", zap.Error(err))
		return r.commit(Anonymous())
	}

	if snap.Empty() || !snap.Role.Valid() {
		return r.commit(Anonymous())
	}

	// A cached profile tagged with a different role means the record was
	// half-written by an older client. Fail closed: clear and sign out.
	if snap.Profile != nil && snap.Profile.Role != "" && snap.Profile.Role != snap.Role {
		r.logger.Warn("session role mismatch, clearing store",
			zap.String("record_role", string(snap.Role)),
			zap.String("profile_role", string(snap.Profile.Role)))
		if err := r.store.Clear(ctx); err != nil {
			r.logger.Warn("failed to clear corrupt session", zap.Error(err))
		}
		return r.commit(Anonymous())
	}

	identity := Identity{
		Authenticated: true,
		Role:          snap.Role,
		Profile:       snap.Profile,
	}

	if r.profiles == nil {
		return r.commit(identity)
	}

	r.mu.Lock()
	startGen := r.gen
	r.current = Identity{Authenticated: true, Role: snap.Role, Profile: snap.Profile, Loading: true}
	r.mu.Unlock()

	raw, err := r.profiles.FetchProfile(ctx, snap.Role, snap.AccessToken)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrUnauthorized) {
			// The token is stale but clearing here could race a login
			// that just wrote fresh credentials. The application
			// boundary decides whether to prompt re-login.
			r.logger.Warn("profile refresh unauthorized", zap.String("role", string(snap.Role)))
		} else {
			r.logger.Warn("profile refresh failed", zap.Error(err))
		}
		// A logout or re-login during the failed fetch must win even
		// though there is nothing to write back.
		if r.staleSince(startGen) {
			return r.Current()
		}
		return r.commit(identity)
	}

	fresh := Normalize(*raw, snap.Role)
	identity.Profile = &fresh

	if r.staleSince(startGen) {
		return r.Current()
	}

	// Re-read before the write-back so a logout or re-login that slipped
	// past the generation check still wins.
	latest, err := r.store.Snapshot(ctx)
	if err != nil || latest.AccessToken != snap.AccessToken || latest.Role != snap.Role {
		return r.Current()
	}
	latest.Profile = &fresh
	if err := r.store.SetSession(ctx, latest); err != nil {
		r.logger.Warn("profile cache write-back failed", zap.Error(err))
	}

	return r.commit(identity)
}

// Login normalizes the raw user payload and persists the session as one
// atomic record. The caller may treat the user as signed in on return, no
// further network round-trip needed.
func (r *Resolver) Login(ctx context.Context, raw RawProfile, role Role, accessToken, refreshToken string) (Identity, error) {
	if !role.Valid() {
		return Anonymous(), appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if accessToken == "" {
		return Anonymous(), appErrors.Clone(appErrors.ErrValidation, "access token is required")
	}

	profile := Normalize(raw, role)
	record := Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         role,
		Profile:      &profile,
	}
	if err := r.store.SetSession(ctx, record); err != nil {
		return Anonymous(), appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	identity := Identity{Authenticated: true, Role: role, Profile: &profile}
	r.mu.Lock()
	r.gen++
	r.current = identity
	r.mu.Unlock()

	r.logger.Info("session established", zap.String("role", string(role)))
	return identity, nil
}

// Logout clears the store and resets the identity. Safe to call with no
// active session.
func (r *Resolver) Logout(ctx context.Context) Identity {
	if err := r.store.Clear(ctx); err != nil {
		r.logger.Warn("failed to clear session store", zap.Error(err))
	}

	r.mu.Lock()
	r.gen++
	r.current = Anonymous()
	r.mu.Unlock()

	return Anonymous()
}

func (r *Resolver) staleSince(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen != gen
}

func (r *Resolver) commit(identity Identity) Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = identity
	return identity
}
