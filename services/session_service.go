package services

import (
	"sync"
	"time"

	"dietvision/models"

	"github.com/google/uuid"
)

const oauthStateTTL = 10 * time.Minute

// Session is the per-login state: who the user is, what they saved, what they
// asked the assistant and what they last photographed.
type Session struct {
	mu sync.Mutex

	ID          string
	Email       string
	Profile     models.Profile
	Preferences *models.Preferences

	chat         []models.ChatMessage
	lastAnalysis *models.Analysis
}

func (s *Session) SetPreferences(p models.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Preferences = &p
}

func (s *Session) CurrentPreferences() *models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Preferences == nil {
		return nil
	}
	p := *s.Preferences
	return &p
}

func (s *Session) HealthConditions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Preferences == nil {
		return nil
	}
	return append([]string(nil), s.Preferences.HealthConditions...)
}

func (s *Session) AppendChat(msgs ...models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat, msgs...)
}

func (s *Session) Chat() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.chat...)
}

func (s *Session) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = nil
}

func (s *Session) SetLastAnalysis(a models.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAnalysis = &a
}

func (s *Session) LastAnalysis() *models.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastAnalysis == nil {
		return nil
	}
	a := *s.lastAnalysis
	return &a
}

// SessionStore keeps sessions and pending OAuth states in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	states   map[string]time.Time
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		states:   make(map[string]time.Time),
		now:      time.Now,
	}
}

func (st *SessionStore) Create(profile models.Profile, prefs *models.Preferences) *Session {
	sess := &Session{
		ID:          uuid.NewString(),
		Email:       profile.Email,
		Profile:     profile,
		Preferences: prefs,
	}
	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess
}

func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// AddState remembers an OAuth state value until it is consumed or expires.
func (st *SessionStore) AddState(state string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	for k, exp := range st.states {
		if now.After(exp) {
			delete(st.states, k)
		}
	}
	st.states[state] = now.Add(oauthStateTTL)
}

// ConsumeState reports whether state was issued and is still live. A state
// can be consumed once.
func (st *SessionStore) ConsumeState(state string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	exp, ok := st.states[state]
	if !ok {
		return false
	}
	delete(st.states, state)
	return !st.now().After(exp)
}
