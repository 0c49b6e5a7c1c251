package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EnrollmentRecord is the durable trail of one machine joining the fleet.
// The inventory files remain the source of truth for ansible; this is the
// server's own ledger (who enrolled, with which key, when last seen).
type EnrollmentRecord struct {
	ID          string
	Hostname    string
	User        string
	Environment string
	Groups      []string
	PublicKey   string // base64, empty for script-based enrollments
	EnrolledAt  int64
	LastSeen    int64
}

// Store persists enrollment records. Implementations return (nil, nil) for
// lookups that find nothing.
type Store interface {
	// CreateEnrollment inserts a record, or returns the existing ID when the
	// hostname is already enrolled (idempotent re-enroll).
	CreateEnrollment(rec *EnrollmentRecord) (string, error)
	GetByHostname(hostname string) (*EnrollmentRecord, error)
	GetByPubKey(publicKey string) (*EnrollmentRecord, error)
	List() ([]*EnrollmentRecord, error)
	TouchLastSeen(hostname string, ts int64) error
}

// MemoryStore backs handler tests and token-only dev setups.
type MemoryStore struct {
	mu    sync.Mutex
	byID  map[string]*EnrollmentRecord
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]*EnrollmentRecord{}}
}

func (s *MemoryStore) CreateEnrollment(rec *EnrollmentRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if s.byID[id].Hostname == rec.Hostname {
			return id, nil
		}
	}
	cp := *rec
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.EnrolledAt == 0 {
		cp.EnrolledAt = time.Now().Unix()
	}
	cp.LastSeen = cp.EnrolledAt
	s.byID[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	return cp.ID, nil
}

func (s *MemoryStore) GetByHostname(hostname string) (*EnrollmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if s.byID[id].Hostname == hostname {
			cp := *s.byID[id]
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetByPubKey(publicKey string) (*EnrollmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if rec := s.byID[id]; rec.PublicKey != "" && rec.PublicKey == publicKey {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) List() ([]*EnrollmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*EnrollmentRecord, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) TouchLastSeen(hostname string, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if s.byID[id].Hostname == hostname {
			s.byID[id].LastSeen = ts
			return nil
		}
	}
	return nil
}
