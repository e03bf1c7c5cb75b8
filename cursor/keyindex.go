package cursor

// KeyIndex is the external map/hash-table collaborator this operator
// drives. It stores fixed-width values (two int64 slots; this operator
// uses only offset 0, offset 1 is reserved for a "full" ASOF variant) keyed
// by arbitrary byte strings. Implementations are not required to preserve
// insertion order, and are explicitly not required to evict entries: the
// operator's correctness never depends on eviction (see the comment in
// join.Cursor's catchUp).
type KeyIndex interface {
	// Clear removes every entry but keeps any backing capacity.
	Clear()
	// WithKey begins construction of a key. The serializer writes the key
	// bytes for row into the returned handle; the handle is only valid
	// until the next call to WithKey.
	WithKey(row Row, ser KeySerializer) KeyHandle
	// Close releases backing storage. Reopen must be called before further
	// use.
	Close() error
	// Reopen reacquires backing storage released by Close.
	Reopen() error
}

// KeyHandle addresses one key within a KeyIndex, mid-construction.
type KeyHandle interface {
	// CreateValue returns a mutable two-int64 value slot for this key,
	// creating it if absent or overwriting the existing slot's identity if
	// present. The newest insertion for a key always wins.
	CreateValue() KeyValue
	// FindValue returns the value slot for this key, or ok=false if the
	// key is not present.
	FindValue() (v KeyValue, ok bool)
}

// KeyValue is a fixed two-int64 value slot.
type KeyValue interface {
	Get(offset int) int64
	Set(offset int, v int64)
}
