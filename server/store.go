package server

import (
	"strings"

	"github.com/merliot/marvin"
)

// DefaultCapacity is the number of entries a Store keeps
const DefaultCapacity = 1000

// Store keeps the most recent log entries in memory.  When full, adding an
// entry drops the oldest one.
type Store struct {
	mu       rwMutex
	entries  []marvin.Entry // oldest first
	capacity int
	lastId   int
}

// NewStore returns a store holding up to capacity entries.  A capacity of
// zero or less means DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		entries:  make([]marvin.Entry, 0, capacity),
		capacity: capacity,
	}
}

// Add stores e under the next Id and returns the stored entry
func (s *Store) Add(e marvin.Entry) marvin.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastId++
	e.Id = s.lastId
	if len(s.entries) == s.capacity {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:s.capacity-1]
	}
	s.entries = append(s.entries, e)
	return e
}

// Count returns the number of entries held
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Recent returns up to n entries, newest first.  n <= 0 returns all.
func (s *Store) Recent(n int) []marvin.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]marvin.Entry, 0, n)
	for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

// Clear removes every entry and returns how many there were.  Ids keep
// counting up.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = s.entries[:0]
	return n
}

// Filter selects entries for Query
type Filter struct {
	// Message and Sender are case-insensitive substrings to match
	Message string
	Sender  string
	// Distinct keeps only the latest entry per IP address and sender
	Distinct bool
	// N limits the result; zero means no limit
	N int
}

func (f Filter) match(e marvin.Entry) bool {
	return containsFold(e.Message, f.Message) && containsFold(e.Sender, f.Sender)
}

func containsFold(s, substr string) bool {
	return substr == "" || strings.Contains(strings.ToUpper(s), strings.ToUpper(substr))
}

type source struct {
	ip     string
	sender string
}

// Query returns the entries matching f, newest first
func (s *Store) Query(f Filter) []marvin.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []marvin.Entry{}
	seen := make(map[source]bool)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if f.N > 0 && len(out) == f.N {
			break
		}
		e := s.entries[i]
		if !f.match(e) {
			continue
		}
		if f.Distinct {
			key := source{e.IPAddress, e.Sender}
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, e)
	}
	return out
}
