// Package cursor defines the narrow, source-agnostic capability sets
// consumed by the join package: rows, forward cursors over rows, key
// serialization, record metadata, and the execution context handle.
// Nothing in this package materializes storage; it only describes what a
// table scan, page-frame reader, or in-memory fixture must expose to be
// usable as one side of an ASOF join.
package cursor

import "context"

// NullRowID is the sentinel stored in a KeyIndex value slot, and held in
// JoinCursor's dangling-row state, to mean "no row seen yet". It lies
// outside the domain of real row identifiers, which are always >= 0.
const NullRowID int64 = -1 << 63

// NegInfTimestamp is the sentinel used to seed the dangling slave
// timestamp before any slave row has been read. Any real timestamp
// compares greater than it.
const NegInfTimestamp int64 = -1 << 63

// ColumnType enumerates the scalar column types a Row may expose. It is
// deliberately small: this operator never interprets column values itself,
// it only needs to describe a column well enough to build a null-shaped
// row for the unmatched-slave case.
type ColumnType int

const (
	ColumnTypeUndefined ColumnType = iota
	ColumnTypeInt64
	ColumnTypeFloat64
	ColumnTypeString
	ColumnTypeBool
	ColumnTypeTimestamp
)

// Row is a single logical record, addressable by column index. A cursor
// implementation owns the storage a Row reads from; a Row handle itself is
// generally a thin, reusable view (a "slot") rather than an owned copy.
type Row interface {
	// Timestamp returns the value of the designated timestamp column.
	Timestamp(colIdx int) int64
	// RowID returns a stable identifier for the row currently addressed,
	// suitable for a later RandomRead on the same cursor.
	RowID() int64
	// IsNull reports whether the column at colIdx is null for this row.
	IsNull(colIdx int) bool

	Int64(colIdx int) int64
	Float64(colIdx int) float64
	String(colIdx int) string
	Bool(colIdx int) bool
}

// RecordMetadata describes the fixed shape of the rows a cursor produces.
type RecordMetadata interface {
	TimestampIndex() int
	ColumnCount() int
	ColumnType(colIdx int) ColumnType
	ColumnName(colIdx int) string
}

// KeySerializer projects a Row into the byte shape used as a KeyIndex key.
// Implementations must be deterministic and side-effect-free: the same
// logical join-key value must always serialize to the same bytes,
// regardless of whether the row came from the master or the slave side.
type KeySerializer interface {
	Write(row Row, dst *KeyBuilder)
}

// KeyBuilder accumulates the bytes of one key. It is reused across calls
// to avoid a per-row allocation; callers must call Reset before reuse.
type KeyBuilder struct {
	buf []byte
}

// Reset empties the builder for a new key while keeping its backing array.
func (b *KeyBuilder) Reset() { b.buf = b.buf[:0] }

// Bytes returns the accumulated key bytes. The slice is only valid until
// the next Reset.
func (b *KeyBuilder) Bytes() []byte { return b.buf }

func (b *KeyBuilder) WriteInt64(v int64) {
	b.buf = append(b.buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func (b *KeyBuilder) WriteString(v string) {
	b.buf = append(b.buf, v...)
	b.buf = append(b.buf, 0) // separator, avoids "ab"+"c" == "a"+"bc" collisions
}

func (b *KeyBuilder) WriteBool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

// ScanDirection describes the order a cursor produces rows in. Only
// forward scans are meaningful to this operator, but the type is
// pass-through state a real planner would consult.
type ScanDirection int

const (
	ScanDirectionForward ScanDirection = iota
	ScanDirectionBackward
)

// SourceCursor is the capability set common to both the master and slave
// sides: forward, single-row iteration plus lifecycle and sizing.
type SourceCursor interface {
	// Advance moves to the next row. It returns false when exhausted.
	Advance() (bool, error)
	// Row returns the handle addressing the current row. The handle is
	// only valid until the next Advance or RandomRead call that reuses it.
	Row() Row
	// Rewind resets iteration to the first row.
	Rewind() error
	// Release frees resources. It must be idempotent.
	Release() error
	// Size returns the number of rows the cursor will produce, when known
	// without a full scan.
	Size() int64
	// PreComputedStateSize reports the size of any state computed ahead of
	// iteration (e.g. a materialized sort), for cost accounting.
	PreComputedStateSize() int64
	// CalculateSize computes an exact row count, honoring cancellation.
	CalculateSize(ctx context.Context, counter *int64) error
}

// SlaveCursor additionally supports random access by row id into a
// caller-owned probe slot, without disturbing the main iteration position.
type SlaveCursor interface {
	SourceCursor
	// ProbeRow returns the row handle used for RandomRead results.
	ProbeRow() Row
	// RandomRead reads the row identified by rowID into the probe slot.
	RandomRead(rowID int64) error
}

// MasterCursor is the driving side; it needs no random access.
type MasterCursor interface {
	SourceCursor
}

// Factory constructs a fresh SourceCursor for one execution.
type Factory interface {
	Open(ctx context.Context) (SourceCursor, error)
	Metadata() RecordMetadata
	Close() error
}

// MasterFactory and SlaveFactory narrow Factory to the exact cursor type
// each side of the join needs, so join.Factory can be written without
// runtime type assertions.
type MasterFactory interface {
	Open(ctx context.Context) (MasterCursor, error)
	Metadata() RecordMetadata
	Close() error
}

type SlaveFactory interface {
	Open(ctx context.Context) (SlaveCursor, error)
	Metadata() RecordMetadata
	Close() error
}

// ExecutionContext is the narrow slice of the surrounding query execution
// context this operator interacts with: it forces off column pre-touch
// (which assumes sequential access, defeated by this operator's random
// reads) and carries the cancellation token forward to size calculation.
type ExecutionContext interface {
	SetColumnPreTouchEnabled(enabled bool)
	CancelToken() context.Context
}
