package service

import (
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/listener"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/metrics"
)

// Session is the live state of one signed-in user.
type Session struct {
	uid   string
	Store *Store

	mu       sync.Mutex
	owner    entity.Owner
	lastSeen time.Time
}

func (s *Session) UID() string {
	return s.uid
}

func (s *Session) Owner() entity.Owner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

func (s *Session) setOwner(o entity.Owner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.Email != "" {
		s.owner.Email = o.Email
	}
	if o.DisplayName != "" {
		s.owner.DisplayName = o.DisplayName
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionManager owns the sessions of this process, one per user.
type SessionManager struct {
	log     logger.Logger
	metrics *metrics.MetricsManager
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager(log logger.Logger, m *metrics.MetricsManager) *SessionManager {
	return &SessionManager{
		log:      log,
		metrics:  m,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (m *SessionManager) onPanic(topic listener.Topic, _ any) {
	if m.metrics != nil {
		m.metrics.ObserverPanicked(string(topic))
	}
}

// Get returns the session of id, creating it on first use.
func (m *SessionManager) Get(id auth.Identity) *Session {
	now := m.now()

	m.mu.RLock()
	s, ok := m.sessions[id.UID]
	m.mu.RUnlock()
	if ok {
		s.setOwner(id.Owner())
		s.touch(now)
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.sessions[id.UID]; ok {
		s.setOwner(id.Owner())
		s.touch(now)
		return s
	}
	hub := listener.NewHub(m.log.With("uid", id.UID), m.onPanic)
	s = &Session{uid: id.UID, owner: id.Owner(), Store: NewStore(hub), lastSeen: now}
	m.sessions[id.UID] = s
	if m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
	m.log.Debugf("Session opened for user %s", id.UID)
	return s
}

// Lookup returns the session of uid without creating one.
func (m *SessionManager) Lookup(uid string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[uid]
	return s, ok
}

func (m *SessionManager) Each(fn func(s *Session)) {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	for _, s := range all {
		fn(s)
	}
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) Remove(uid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[uid]; !ok {
		return false
	}
	delete(m.sessions, uid)
	if m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
	return true
}

// Sweep drops sessions idle for longer than idle that have no stream
// subscribers left, and returns how many were dropped.
func (m *SessionManager) Sweep(idle time.Duration) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for uid, s := range m.sessions {
		if s.idleSince(now) <= idle || s.Store.HasSubscribers() {
			continue
		}
		delete(m.sessions, uid)
		dropped++
	}
	if dropped > 0 {
		if m.metrics != nil {
			m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
		}
		m.log.Infof("Swept %d idle sessions", dropped)
	}
	return dropped
}

// RetireListing removes the listing of photocard id from every live session.
func (m *SessionManager) RetireListing(id string) {
	m.Each(func(s *Session) {
		s.Store.RemoveListing(id)
	})
}

// RemovePhotocard drops photocard id from the portfolio of uid's session, if
// that user has one in this process.
func (m *SessionManager) RemovePhotocard(uid, id string) {
	if s, ok := m.Lookup(uid); ok {
		s.Store.RemovePortfolio(id)
	}
}
