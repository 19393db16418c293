package engine

import (
	"errors"
	"sync"
	"time"
)

var ErrNoHealthyCredential = errors.New("no healthy credential in pool")

// credential is one API key with its health counters.
type credential struct {
	key              string
	consecutiveFails int
	lastSuccess      time.Time
	lastFailure      time.Time
}

// CredentialPool rotates remote-service API keys round-robin, skipping keys
// whose consecutive-failure count reached the ceiling. The pool lives for
// the whole process and is rebuilt from configuration on restart; its
// counters are shared by concurrent decisions, so every access goes through
// one mutex. Contention is low: one remote call per bot move, human-paced.
type CredentialPool struct {
	mu      sync.Mutex
	keys    []*credential
	next    int
	ceiling int
}

// NewCredentialPool - builds a pool from the configured key list. ceiling is
// the consecutive-failure count at which a key stops being offered.
func NewCredentialPool(keys []string, ceiling int) *CredentialPool {
	pool := &CredentialPool{
		keys:    make([]*credential, 0, len(keys)),
		ceiling: ceiling,
	}

	for _, key := range keys {
		pool.keys = append(pool.keys, &credential{key: key})
	}

	return pool
}

// Size - reports how many keys the pool holds, healthy or not.
func (that *CredentialPool) Size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.keys)
}

// Next - returns the next healthy key in round-robin order, or
// ErrNoHealthyCredential when every key is over the failure ceiling.
func (that *CredentialPool) Next() (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for range that.keys {
		candidate := that.keys[that.next%len(that.keys)]
		that.next++

		if candidate.consecutiveFails < that.ceiling {
			return candidate.key, nil
		}
	}

	return "", ErrNoHealthyCredential
}

// MarkSuccess - resets the key's consecutive-failure count.
func (that *CredentialPool) MarkSuccess(key string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if cred := that.find(key); cred != nil {
		cred.consecutiveFails = 0
		cred.lastSuccess = time.Now()
	}
}

// MarkFailure - records one failed attempt against the key.
func (that *CredentialPool) MarkFailure(key string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if cred := that.find(key); cred != nil {
		cred.consecutiveFails++
		cred.lastFailure = time.Now()
	}
}

// ResetFailures - clears the failure counters of every key, bringing
// ceiling-exceeded keys back into rotation.
func (that *CredentialPool) ResetFailures() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, cred := range that.keys {
		cred.consecutiveFails = 0
	}
}

// Failures - reports the key's current consecutive-failure count.
func (that *CredentialPool) Failures(key string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	if cred := that.find(key); cred != nil {
		return cred.consecutiveFails
	}

	return 0
}

func (that *CredentialPool) find(key string) *credential {
	for _, cred := range that.keys {
		if cred.key == key {
			return cred
		}
	}
	return nil
}
