package join

import "errors"

// Sentinel error values, matched against with errors.Is by callers that
// need to distinguish failure classes, in the style of
// storage/reads/stream_reader.go's ErrPartitionKeyOrder/ErrStreamNoData.
var (
	// ErrKeyIndexConstruction is wrapped and returned when allocating the
	// backing cursor.KeyIndex fails during Factory construction.
	ErrKeyIndexConstruction = errors.New("asofjoin: key index construction failed")

	// ErrAcquireSource is wrapped and returned when opening either the
	// master or the slave source cursor fails at bind time.
	ErrAcquireSource = errors.New("asofjoin: failed to acquire source cursor")

	// ErrClosed is returned by Advance and Rewind on a Cursor after
	// Release has completed and before bind has reopened it.
	ErrClosed = errors.New("asofjoin: cursor is closed")
)
