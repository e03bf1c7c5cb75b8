package keyindex

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/shbhmexe/questdb/cursor"
)

// Sharded is a striped variant of Store, intended for a factory that
// builds several independent join plans against pools of key indexes
// keyed by a fingerprint of the plan's join columns (construction-time
// sharing across plan instances, not concurrent use of a single
// cursor.KeyIndex — a single join.Cursor's Advance calls stay
// single-threaded regardless). Each stripe is an ordinary Store guarded
// by its own mutex; the shard for a given key is chosen by hashing the
// key bytes with xxhash.
type Sharded struct {
	stripes []stripe
	mask    uint64
}

type stripe struct {
	mu    sync.Mutex
	store *Store
}

// NewSharded returns a Sharded index with n stripes, rounded up to the
// next power of two so the shard selector can be a mask instead of a mod.
func NewSharded(n int) *Sharded {
	if n < 1 {
		n = 1
	}
	pow := 1
	for pow < n {
		pow <<= 1
	}
	s := &Sharded{stripes: make([]stripe, pow), mask: uint64(pow - 1)}
	for i := range s.stripes {
		s.stripes[i].store = New()
	}
	return s
}

func (s *Sharded) Clear() {
	for i := range s.stripes {
		s.stripes[i].mu.Lock()
		s.stripes[i].store.Clear()
		s.stripes[i].mu.Unlock()
	}
}

func (s *Sharded) Close() error {
	for i := range s.stripes {
		s.stripes[i].mu.Lock()
		err := s.stripes[i].store.Close()
		s.stripes[i].mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Sharded) Reopen() error {
	for i := range s.stripes {
		s.stripes[i].mu.Lock()
		err := s.stripes[i].store.Reopen()
		s.stripes[i].mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// WithKey serializes the key once to select a stripe by its xxhash
// fingerprint, then locks that stripe for the duration of the single
// CreateValue-or-FindValue call the caller is required to make on the
// returned handle (the same contract cursor.KeyIndex documents: a handle
// is only valid until the next WithKey call). The lock is released by
// whichever of those two methods is called.
func (s *Sharded) WithKey(row cursor.Row, ser cursor.KeySerializer) cursor.KeyHandle {
	var b cursor.KeyBuilder
	ser.Write(row, &b)
	h := xxhash.Sum64(b.Bytes())
	st := &s.stripes[h&s.mask]
	st.mu.Lock()
	return &shardedHandle{stripe: st, inner: st.store.WithKey(row, ser)}
}

type shardedHandle struct {
	stripe *stripe
	inner  cursor.KeyHandle
}

func (h *shardedHandle) CreateValue() cursor.KeyValue {
	defer h.stripe.mu.Unlock()
	return h.inner.CreateValue()
}

func (h *shardedHandle) FindValue() (cursor.KeyValue, bool) {
	defer h.stripe.mu.Unlock()
	return h.inner.FindValue()
}

var (
	_ cursor.KeyIndex  = (*Sharded)(nil)
	_ cursor.KeyHandle = (*shardedHandle)(nil)
)
