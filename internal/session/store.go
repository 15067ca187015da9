package session

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinemuse/models"
)

var ErrSessionNotFound = errors.New("session not found")

const DefaultIdleTTL = 30 * time.Minute

type StoreOptions struct {
	// IdleTTL is how long an untouched session survives a sweep.
	IdleTTL time.Duration
	// NewRand supplies each session's chip sampler. Nil uses a randomly seeded PCG.
	NewRand func() *rand.Rand
	Now     func() time.Time
}

// Store keeps sessions in memory. Nothing is persisted.
type Store struct {
	rec     Recommender
	idleTTL time.Duration
	newRand func() *rand.Rand
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(rec Recommender, opts StoreOptions) *Store {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		rec:      rec,
		idleTTL:  opts.IdleTTL,
		newRand:  opts.NewRand,
		now:      opts.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new idle session in lang.
func (st *Store) Create(lang models.Language) *Session {
	s := newSession(uuid.NewString(), lang, st.rec, st.newRand(), st.now)
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	log.Printf("[session] created %s lang=%s", s.id, s.language)
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete tears a session down. Any in-flight submission finishes but its result is dropped.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many it removed.
func (st *Store) Sweep() int {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.idleTTL {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				log.Printf("[session] evicted %d idle sessions, %d remaining", n, st.Len())
			}
		}
	}
}
