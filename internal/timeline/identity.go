package timeline

import (
	"strings"
	"sync"
)

// NormalizeEmail lowercases and trims a raw author identifier so that the
// same address always resolves the same way regardless of how a tool
// recorded it.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IdentityIndex maps normalized email addresses to canonical users. It is
// built once from the full registry before any retrieval begins and is
// read-only afterwards, so it is safe to share across fetchers.
type IdentityIndex struct {
	byEmail map[string]User
}

// NewIdentityIndex indexes every address of every configured user. When two
// users claim the same normalized address the later registration wins;
// registry order is stable, so the outcome is deterministic.
func NewIdentityIndex(users []User) *IdentityIndex {
	idx := &IdentityIndex{byEmail: make(map[string]User)}
	for _, u := range users {
		for _, email := range u.Emails {
			idx.byEmail[NormalizeEmail(email)] = u
		}
	}
	return idx
}

// Resolve looks up the canonical user for a raw email address.
func (idx *IdentityIndex) Resolve(raw string) (User, bool) {
	u, ok := idx.byEmail[NormalizeEmail(raw)]
	return u, ok
}

// UnmatchedSet collects author identifiers that resolved to nobody, for the
// end-of-run audit. Each identifier is recorded at most once and first-seen
// order is preserved. Safe for concurrent use.
type UnmatchedSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func NewUnmatchedSet() *UnmatchedSet {
	return &UnmatchedSet{seen: make(map[string]struct{})}
}

// Record adds a raw identifier to the audit set unless its normalized form
// was already seen.
func (s *UnmatchedSet) Record(raw string) {
	email := NormalizeEmail(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[email]; ok {
		return
	}
	s.seen[email] = struct{}{}
	s.order = append(s.order, email)
}

// Emails returns the recorded identifiers in first-seen order.
func (s *UnmatchedSet) Emails() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *UnmatchedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
