// Package session keeps the signed-in customer's credentials and profile.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"momskitchen/internal/models"
	"momskitchen/internal/security"
)

// ErrNoAccessToken is returned by Token when nobody is signed in
var ErrNoAccessToken = errors.New("no access token")

// Persister stores the session record durably
type Persister interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, s models.Session) error
	Delete(ctx context.Context) error
}

// Listener is called with a snapshot after every change
type Listener func(models.Session)

// Store owns the session state. All changes go through its methods; each one is
// applied in memory first and then persisted. Persistence failures are logged and
// otherwise ignored, so the session simply does not survive a restart.
type Store struct {
	writeMu sync.Mutex // serializes mutate-then-persist

	mu    sync.RWMutex
	state models.Session

	subMu     sync.Mutex
	listeners map[int]Listener
	nextSubID int

	repo Persister
	log  logrus.FieldLogger
}

// NewStore creates an empty, logged-out store
func NewStore(repo Persister, log logrus.FieldLogger) *Store {
	return &Store{
		repo:      repo,
		log:       log.WithField("component", "session"),
		listeners: make(map[int]Listener),
	}
}

// Load rehydrates the session from durable storage
func (s *Store) Load(ctx context.Context) {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Failed to load persisted session, starting logged out")
		return
	}
	s.apply(ctx, func(st *models.Session) { *st = loaded }, nil)
}

// Login replaces the tokens and user in one step and persists them
func (s *Store) Login(ctx context.Context, accessToken, refreshToken string, user *models.UserProfile) {
	s.apply(ctx, func(st *models.Session) {
		*st = models.Session{AccessToken: accessToken, RefreshToken: refreshToken, User: cloneUser(user)}
	}, s.save)
}

// SetAccessToken stores a refreshed access token, leaving the rest untouched
func (s *Store) SetAccessToken(ctx context.Context, accessToken string) {
	s.apply(ctx, func(st *models.Session) { st.AccessToken = accessToken }, s.save)
}

// SetUser stores a freshly fetched profile
func (s *Store) SetUser(ctx context.Context, user *models.UserProfile) {
	s.apply(ctx, func(st *models.Session) { st.User = cloneUser(user) }, s.save)
}

// Logout clears memory and the persisted record
func (s *Store) Logout(ctx context.Context) {
	s.apply(ctx, func(st *models.Session) { *st = models.Session{} }, func(ctx context.Context, _ models.Session) error {
		return s.repo.Delete(ctx)
	})
}

// AccessToken returns the current access token, or "" when logged out
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// RefreshToken returns the current refresh token, or ""
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// Snapshot returns a copy of the session that callers may keep
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.state
	snap.User = cloneUser(s.state.User)
	return snap
}

// Token implements oauth2.TokenSource over the current access token
func (s *Store) Token() (*oauth2.Token, error) {
	tok := security.OAuthToken(s.AccessToken())
	if tok == nil {
		return nil, ErrNoAccessToken
	}
	return tok, nil
}

// Subscribe registers fn for change notifications and returns a function that removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) apply(ctx context.Context, mutate func(*models.Session), persist func(context.Context, models.Session) error) {
	s.writeMu.Lock()
	s.mu.Lock()
	mutate(&s.state)
	s.mu.Unlock()

	snap := s.Snapshot()
	if persist != nil {
		if err := persist(ctx, snap); err != nil {
			s.log.WithError(err).Warn("Failed to persist session")
		}
	}
	s.writeMu.Unlock()

	s.notify(snap)
}

func (s *Store) save(ctx context.Context, snap models.Session) error {
	return s.repo.Save(ctx, snap)
}

func (s *Store) notify(snap models.Session) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func cloneUser(u *models.UserProfile) *models.UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	if u.Addresses != nil {
		c.Addresses = append([]models.Address(nil), u.Addresses...)
	}
	if u.Preferences != nil {
		p := *u.Preferences
		c.Preferences = &p
	}
	return &c
}
