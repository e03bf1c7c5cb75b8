// Package keyindex provides a default, in-memory implementation of
// cursor.KeyIndex backed by a Go map keyed on the serialized key bytes.
// The join package treats the key/hash-table data structure as an
// external collaborator behind a narrow interface, so this package is
// deliberately unremarkable.
package keyindex

import (
	"github.com/pkg/errors"
	"github.com/shbhmexe/questdb/cursor"
)

// entry is a two-int64 value slot: offset 0 holds the row id used by the
// light ASOF join, offset 1 is reserved for a sibling "full" variant that
// also stores a timestamp for eviction.
type entry [2]int64

// Store is a plain, unsharded cursor.KeyIndex. CreateValue returns the
// key's existing slot if there is one (or a new zeroed slot), so the value
// Set last for a key always wins.
type Store struct {
	entries map[string]*entry
	open    bool

	// scratch is reused across WithKey calls to avoid allocating a new
	// handle per row.
	scratch handle
}

// New returns an open Store ready for use.
func New() *Store {
	s := &Store{entries: make(map[string]*entry)}
	s.open = true
	s.scratch.store = s
	return s
}

func (s *Store) Clear() {
	// Clearing in place keeps the map's allocated buckets, so a
	// rewind/replay cycle refills the index without regrowing it.
	clear(s.entries)
}

func (s *Store) WithKey(row cursor.Row, ser cursor.KeySerializer) cursor.KeyHandle {
	s.scratch.builder.Reset()
	ser.Write(row, &s.scratch.builder)
	return &s.scratch
}

func (s *Store) Close() error {
	if !s.open {
		return nil
	}
	s.open = false
	s.entries = nil
	return nil
}

func (s *Store) Reopen() error {
	if s.open {
		return nil
	}
	s.open = true
	s.entries = make(map[string]*entry)
	return nil
}

// handle is the scratch cursor.KeyHandle reused by Store.WithKey.
type handle struct {
	store   *Store
	builder cursor.KeyBuilder
}

func (h *handle) CreateValue() cursor.KeyValue {
	if !h.store.open {
		panic(errors.New("keyindex: CreateValue on closed store"))
	}
	key := string(h.builder.Bytes())
	e, ok := h.store.entries[key]
	if !ok {
		e = &entry{}
		h.store.entries[key] = e
	}
	return e
}

func (h *handle) FindValue() (cursor.KeyValue, bool) {
	if !h.store.open {
		return nil, false
	}
	e, ok := h.store.entries[string(h.builder.Bytes())]
	if !ok {
		return nil, false
	}
	return e, true
}

func (e *entry) Get(offset int) int64    { return e[offset] }
func (e *entry) Set(offset int, v int64) { e[offset] = v }

var (
	_ cursor.KeyIndex = (*Store)(nil)
	_ cursor.KeyHandle = (*handle)(nil)
	_ cursor.KeyValue  = (*entry)(nil)
)
