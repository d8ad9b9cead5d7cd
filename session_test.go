package meterface

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_uuid(t *testing.T) {
	s := NewSession(8)
	require.Len(t, s.UUID(), 8)
	for _, c := range s.UUID() {
		assert.True(t, strings.ContainsRune(base62Alphabet, c), string(c))
	}
	assert.Equal(t, s.UUID(), s.UUID())
	assert.Len(t, NewSession(16).UUID(), 16)
	assert.Len(t, NewSession(0).UUID(), DefaultUUIDLength)
}

func TestDefaultSession_stable(t *testing.T) {
	ResetSession()
	defer ResetSession()
	a := DefaultSession()
	b := DefaultSession()
	if a != b {
		t.Error(`expected the same instance`)
	}
	ResetSession()
	if c := DefaultSession(); c == a {
		t.Error(`expected a fresh instance after reset`)
	}
}

// positions per key are a strict increasing sequence with no duplicates,
// including under concurrent allocation
func TestSession_NextPosition(t *testing.T) {
	s := NewSession(8)
	if p := s.NextPosition(`a`); p != 1 {
		t.Error(p)
	}
	if p := s.NextPosition(`a`); p != 2 {
		t.Error(p)
	}
	if p := s.NextPosition(`b`); p != 1 {
		t.Error(p)
	}

	const (
		workers = 8
		each    = 1000
	)
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		all = make(map[uint64]struct{}, workers*each)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				p := s.NextPosition(`concurrent`)
				mu.Lock()
				all[p] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, all, workers*each)
	for p := uint64(1); p <= workers*each; p++ {
		if _, ok := all[p]; !ok {
			t.Fatalf(`missing position %d`, p)
		}
	}
}

func TestFullID(t *testing.T) {
	assert.Equal(t, `orders.import#17`, FullID(`orders.import`, ``, 17))
	assert.Equal(t, `orders.import/validate#17`, FullID(`orders.import`, `validate`, 17))
}
