package repository

import (
	"log"
	"sync"
	"time"

	"github.com/anasmostafa23/Safety-Hub/models"
)

// SessionRepository stores in-flight audit sessions keyed by user
// identity. One active session per user.
type SessionRepository interface {
	Get(userID string) (*models.AuditSession, bool)
	Put(session *models.AuditSession)
	Remove(userID string)
	Count() int
}

// sessionRepository is the in-memory implementation. Sessions are
// deliberately process-local; losing them on restart is accepted.
type sessionRepository struct {
	sessions map[string]*models.AuditSession
	mu       sync.RWMutex
}

// NewSessionRepository creates an empty in-memory session store.
func NewSessionRepository() SessionRepository {
	return &sessionRepository{
		sessions: make(map[string]*models.AuditSession),
	}
}

func (r *sessionRepository) Get(userID string) (*models.AuditSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[userID]
	return session, exists
}

func (r *sessionRepository) Put(session *models.AuditSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.UserID] = session
}

func (r *sessionRepository) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
}

func (r *sessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// StartSweeper launches a background loop that evicts sessions idle for
// longer than ttl. A user who vanishes mid-audit would otherwise leak a
// session until process restart. ttl <= 0 disables the sweep.
func StartSweeper(repo SessionRepository, interval, ttl time.Duration) chan<- struct{} {
	stop := make(chan struct{})
	if ttl <= 0 {
		log.Println("INFO: [SessionRepository] Session TTL sweep disabled.")
		return stop
	}

	mem, ok := repo.(*sessionRepository)
	if !ok {
		log.Println("WARN: [SessionRepository] Sweeper only supports the in-memory repository; sweep disabled.")
		return stop
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if evicted := mem.sweep(ttl); evicted > 0 {
					log.Printf("INFO: [SessionRepository] Evicted %d expired session(s).", evicted)
				}
			case <-stop:
				return
			}
		}
	}()
	log.Printf("INFO: [SessionRepository] Session TTL sweep enabled (ttl=%s, interval=%s).", ttl, interval)
	return stop
}

func (r *sessionRepository) sweep(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	evicted := 0
	for userID, session := range r.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(r.sessions, userID)
			evicted++
		}
	}
	return evicted
}
