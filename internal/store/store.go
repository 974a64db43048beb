// Package store holds customer session credentials in process memory.
// It is the single source of truth for cached tokens: nothing here is
// persisted, so a restart always starts from an empty store.
package store

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"recharge-mcp-go/internal/errors"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CredentialStore maps customer IDs to session credentials and keeps a
// secondary email index so repeated email lookups skip the remote API.
// All methods are safe for concurrent use.
type CredentialStore struct {
	mu      sync.Mutex
	entries map[string]*CredentialEntry
	byEmail map[string]string // normalized email -> customer ID

	// invalidated remembers, per customer, the last token removed
	// through Invalidate. The session manager consumes it to detect a
	// remote that keeps returning the token we just threw away.
	invalidated map[string]string

	now func() time.Time
}

// New returns an empty store.
func New() *CredentialStore {
	return &CredentialStore{
		entries:     make(map[string]*CredentialEntry),
		byEmail:     make(map[string]string),
		invalidated: make(map[string]string),
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Get returns the cached token for a customer and refreshes its
// last-used timestamp.
func (s *CredentialStore) Get(customerID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[customerID]
	if !ok {
		return "", false
	}
	e.LastUsedAt = s.now()
	return e.Token, true
}

// Put stores a credential for a customer, replacing any previous entry.
// A non-empty email is recorded in the email index; passing an empty
// email keeps an existing mapping intact.
func (s *CredentialStore) Put(customerID, token, email string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return errors.New(errors.KindValidation, "customer ID must not be empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New(errors.KindValidation, "session token must not be empty")
	}
	email = normalizeEmail(email)
	if email != "" && !emailShape.MatchString(email) {
		return errors.Newf(errors.KindValidation, "invalid email address %q", email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nowTS := s.now()
	if prev, ok := s.entries[customerID]; ok && prev.Email != "" && prev.Email != email {
		// Entry is being rebound; drop the old index row if it still
		// points at this customer.
		if s.byEmail[prev.Email] == customerID && email != "" {
			delete(s.byEmail, prev.Email)
		}
		if email == "" {
			email = prev.Email
		}
	}
	s.entries[customerID] = &CredentialEntry{
		CustomerID: customerID,
		Token:      token,
		Email:      email,
		CreatedAt:  nowTS,
		LastUsedAt: nowTS,
	}
	if email != "" {
		s.byEmail[email] = customerID
	}
	// A fresh credential supersedes any stale-token bookkeeping.
	delete(s.invalidated, customerID)
	return nil
}

// CustomerIDByEmail resolves a previously learned email to its customer
// ID. Matching is case-insensitive.
func (s *CredentialStore) CustomerIDByEmail(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	return id, ok
}

// SetEmailMapping records an email to customer ID association without
// touching credential entries. Used after a remote lookup so the next
// request for the same email stays local.
func (s *CredentialStore) SetEmailMapping(email, customerID string) {
	email = normalizeEmail(email)
	customerID = strings.TrimSpace(customerID)
	if email == "" || customerID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmail[email] = customerID
}

// Clear removes a customer's credential together with its email mapping
// and any stale-token marker. It reports whether an entry existed.
func (s *CredentialStore) Clear(customerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(customerID)
}

func (s *CredentialStore) clearLocked(customerID string) bool {
	e, ok := s.entries[customerID]
	if ok {
		delete(s.entries, customerID)
		if e.Email != "" && s.byEmail[e.Email] == customerID {
			delete(s.byEmail, e.Email)
		}
	}
	delete(s.invalidated, customerID)
	return ok
}

// ClearByEmail removes the credential for whichever customer the email
// maps to. The mapping itself is removed even when no entry remains.
func (s *CredentialStore) ClearByEmail(email string) bool {
	email = normalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return false
	}
	removed := s.clearLocked(id)
	delete(s.byEmail, email)
	return removed
}

// ClearAll empties the store and returns how many credential entries
// and email mappings were dropped.
func (s *CredentialStore) ClearAll() (entries, mappings int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries = len(s.entries)
	mappings = len(s.byEmail)
	s.entries = make(map[string]*CredentialEntry)
	s.byEmail = make(map[string]string)
	s.invalidated = make(map[string]string)
	return entries, mappings
}

// ClearOlderThan removes entries created more than maxAge ago and
// returns the number removed. Email mappings of removed entries go with
// them.
func (s *CredentialStore) ClearOlderThan(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxAge)
	removed := 0
	for id, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
			if e.Email != "" && s.byEmail[e.Email] == id {
				delete(s.byEmail, e.Email)
			}
			removed++
		}
	}
	return removed
}

// HasAnyEntries reports whether at least one credential is cached.
func (s *CredentialStore) HasAnyEntries() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) > 0
}

// Invalidate removes the customer's entry only if it still holds the
// given token, so a concurrent refresh is never thrown away. The token
// is remembered for stale-token detection either way. Email mappings
// survive invalidation: the customer's identity has not changed, only
// the session.
func (s *CredentialStore) Invalidate(customerID, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated[customerID] = token
	e, ok := s.entries[customerID]
	if !ok || e.Token != token {
		return false
	}
	delete(s.entries, customerID)
	return true
}

// TakeInvalidatedToken returns and consumes the stale-token marker left
// by Invalidate.
func (s *CredentialStore) TakeInvalidatedToken(customerID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.invalidated[customerID]
	if ok {
		delete(s.invalidated, customerID)
	}
	return tok, ok
}

// Stats returns aggregate counts and entry ages in whole seconds.
func (s *CredentialStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Count:         len(s.entries),
		EmailMappings: len(s.byEmail),
	}
	if len(s.entries) == 0 {
		return st
	}
	nowTS := s.now()
	var oldest, newest time.Time
	for _, e := range s.entries {
		if oldest.IsZero() || e.CreatedAt.Before(oldest) {
			oldest = e.CreatedAt
		}
		if newest.IsZero() || e.CreatedAt.After(newest) {
			newest = e.CreatedAt
		}
	}
	st.OldestAgeSeconds = int64(nowTS.Sub(oldest).Seconds())
	st.NewestAgeSeconds = int64(nowTS.Sub(newest).Seconds())
	return st
}
