package meterface

import (
	"math/big"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

type (
	// Session holds the process-wide session identifier and the per-key
	// position counters backing meter identity.
	//
	// A single shared instance is used by default, see [DefaultSession] and
	// [ResetSession].
	Session struct {
		counters sync.Map // string -> *atomic.Uint64
		uuid     string
	}
)

const base62Alphabet = `0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz`

var (
	sessionMu sync.Mutex
	session   *Session
)

// NewSession constructs a Session with a freshly generated identifier of
// the given length (base-62 characters). Lengths less than 1 use the
// default of [DefaultUUIDLength].
func NewSession(uuidLength int) *Session {
	if uuidLength < 1 {
		uuidLength = DefaultUUIDLength
	}
	return &Session{uuid: shortUUID(uuidLength)}
}

// DefaultSession returns the shared process-wide session, initializing it
// on first use.
func DefaultSession() *Session {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if session == nil {
		session = NewSession(DefaultUUIDLength)
	}
	return session
}

// ResetSession discards the shared session, so the next use allocates a
// new identifier and fresh position counters. It is intended for test
// isolation.
func ResetSession() {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	session = nil
}

// UUID returns the session identifier, stable for the lifetime of the
// Session.
func (x *Session) UUID() string { return x.uuid }

// NextPosition atomically allocates the next position for key, a strictly
// monotonic sequence starting at 1, independent per key.
func (x *Session) NextPosition(key string) uint64 {
	c, ok := x.counters.Load(key)
	if !ok {
		c, _ = x.counters.LoadOrStore(key, new(atomic.Uint64))
	}
	return c.(*atomic.Uint64).Add(1)
}

// FullID composes the full identity of an operation, in the form
// `category#position`, or `category/operation#position` when operation is
// non-empty.
func FullID(category, operation string, position uint64) string {
	b := make([]byte, 0, len(category)+len(operation)+24)
	b = append(b, category...)
	if operation != `` {
		b = append(b, '/')
		b = append(b, operation...)
	}
	b = append(b, '#')
	b = strconv.AppendUint(b, position, 10)
	return string(b)
}

// shortUUID derives a short base-62 identifier from a random UUID,
// truncating (or zero-padding) to length characters.
func shortUUID(length int) string {
	id := uuid.New()
	var n big.Int
	n.SetBytes(id[:])
	base := big.NewInt(int64(len(base62Alphabet)))
	var digit big.Int
	b := make([]byte, 0, length)
	for len(b) < length {
		if n.Sign() == 0 {
			b = append(b, base62Alphabet[0])
			continue
		}
		n.QuoRem(&n, base, &digit)
		b = append(b, base62Alphabet[digit.Int64()])
	}
	return string(b)
}
