package api

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/soaringjerry/MindBalance/internal/wellness"
)

type User struct {
	ID         string
	Name       string
	Email      string
	PassHash   []byte
	Profession string
	CreatedAt  time.Time
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

// ErrDuplicate is returned when a unique key already exists.
var ErrDuplicate = errors.New("duplicate key")

type memoryStore struct {
	mu           sync.RWMutex
	users        map[string]*User
	usersByEmail map[string]*User
	// assessments holds per-owner records keyed by id.
	assessments map[string]map[string]*wellness.Assessment
	seq         int64
	audit       []AuditEntry
}

// NewMemoryStore returns a process-local Store. Data is lost on restart.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:        map[string]*User{},
		usersByEmail: map[string]*User{},
		assessments:  map[string]map[string]*wellness.Assessment{},
		audit:        []AuditEntry{},
	}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PassHash = append([]byte(nil), u.PassHash...)
	return &cp
}

func (s *memoryStore) AddUser(_ context.Context, u *User) error {
	if u == nil {
		return errors.New("nil user")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := s.usersByEmail[key]; ok {
		return ErrDuplicate
	}
	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicate
	}
	cp := copyUser(u)
	s.users[u.ID] = cp
	s.usersByEmail[key] = cp
	return nil
}

func (s *memoryStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.usersByEmail[strings.ToLower(email)]), nil
}

func (s *memoryStore) GetUser(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.users[id]), nil
}

func (s *memoryStore) UpdateProfile(_ context.Context, id, name, profession string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	u.Name = name
	u.Profession = profession
	return true, nil
}

func (s *memoryStore) SaveAssessment(_ context.Context, a *wellness.Assessment) error {
	if a == nil {
		return errors.New("nil assessment")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := s.assessments[a.OwnerID]
	if byID == nil {
		byID = map[string]*wellness.Assessment{}
		s.assessments[a.OwnerID] = byID
	}
	if _, ok := byID[a.ID]; ok {
		return ErrDuplicate
	}
	s.seq++
	a.Seq = s.seq
	byID[a.ID] = a.Clone()
	return nil
}

func (s *memoryStore) ListAssessmentsByOwner(_ context.Context, owner string) ([]*wellness.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*wellness.Assessment, 0, len(s.assessments[owner]))
	for _, a := range s.assessments[owner] {
		out = append(out, a.Clone())
	}
	wellness.SortChronological(out)
	return out, nil
}

func (s *memoryStore) DeleteAssessment(_ context.Context, owner, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := s.assessments[owner]
	if _, ok := byID[id]; !ok {
		return false, nil
	}
	delete(byID, id)
	return true, nil
}

func (s *memoryStore) DeleteAssessmentsByOwner(_ context.Context, owner string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.assessments[owner])
	delete(s.assessments, owner)
	return n, nil
}

func (s *memoryStore) AddAudit(e AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
}

func (s *memoryStore) ListAudit() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AuditEntry(nil), s.audit...)
}
