// Package session keeps one ingredient master per dashboard visitor.
//
// Sessions live in memory only. Operators save their work explicitly by
// downloading the master as CSV and restore it by uploading the file again.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/laffle/internal/costing"
	"github.com/Simplici0/laffle/internal/ingredient"
)

// MasterFactory builds the master a new session starts from.
type MasterFactory func(ctx context.Context) (*ingredient.Master, error)

// State is the mutable part of a session. It is only reachable through
// Session.Do, which holds the session lock.
type State struct {
	Master   *ingredient.Master
	Template string
	Recipe   []costing.Line
}

// Session is one visitor's workspace.
type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session state.
func (s *Session) Do(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// Store owns all live sessions.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	secret    []byte
	ttl       time.Duration
	newMaster MasterFactory
	log       *zap.Logger

	now func() time.Time
}

// NewStore returns an empty store. Sessions idle longer than ttl are dropped
// the next time a session is created.
func NewStore(secret string, ttl time.Duration, newMaster MasterFactory, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sessions:  make(map[string]*Session),
		secret:    []byte(secret),
		ttl:       ttl,
		newMaster: newMaster,
		log:       log,
		now:       time.Now,
	}
}

// Create starts a session from a fresh master.
func (st *Store) Create(ctx context.Context) (*Session, error) {
	master, err := st.newMaster(ctx)
	if err != nil {
		return nil, fmt.Errorf("build session master: %w", err)
	}

	sess := &Session{
		ID:    uuid.NewString(),
		state: State{Master: master},
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.pruneLocked(now)
	sess.lastSeen = now
	st.sessions[sess.ID] = sess

	st.log.Debug("session created", zap.String("session_id", sess.ID), zap.Int("live_sessions", len(st.sessions)))
	return sess, nil
}

// Get returns a live session and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.expired(sess, now) {
		delete(st.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

// Resolve returns the session named by a signed cookie value, or a new one
// when the value is missing, forged or expired. created reports the latter.
func (st *Store) Resolve(ctx context.Context, cookieValue string) (sess *Session, created bool, err error) {
	if id, ok := st.Verify(cookieValue); ok {
		if sess, ok := st.Get(id); ok {
			return sess, false, nil
		}
	}
	sess, err = st.Create(ctx)
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) expired(sess *Session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(sess.lastSeen) > st.ttl
}

func (st *Store) pruneLocked(now time.Time) {
	for id, sess := range st.sessions {
		if st.expired(sess, now) {
			delete(st.sessions, id)
		}
	}
}

// Sign returns "id.signature" for use as a cookie value.
func (st *Store) Sign(id string) string {
	mac := hmac.New(sha256.New, st.secret)
	_, _ = mac.Write([]byte(id))
	return id + "." + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a value produced by Sign and returns the session id.
func (st *Store) Verify(value string) (string, bool) {
	id, signature, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}

	mac := hmac.New(sha256.New, st.secret)
	_, _ = mac.Write([]byte(id))
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return "", false
	}
	return id, true
}
