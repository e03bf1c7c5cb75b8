package join

import (
	"context"

	"github.com/shbhmexe/questdb/cursor"
)

// fixtureRow is a two-column row: column 0 is the timestamp, column 1 is
// a string join key. It is deliberately minimal — real Row
// implementations (see arrowrow) carry many more columns.
type fixtureRow struct {
	ts    int64
	key   string
	rowID int64
}

func (r *fixtureRow) Timestamp(int) int64 { return r.ts }
func (r *fixtureRow) RowID() int64        { return r.rowID }
func (r *fixtureRow) IsNull(int) bool     { return false }
func (r *fixtureRow) Int64(int) int64     { return r.rowID }
func (r *fixtureRow) Float64(int) float64 { return float64(r.ts) }
func (r *fixtureRow) String(colIdx int) string {
	if colIdx == 1 {
		return r.key
	}
	return ""
}
func (r *fixtureRow) Bool(int) bool { return false }

var _ cursor.Row = (*fixtureRow)(nil)

// keySerializer projects column 1 (the string key) into the key builder.
type keySerializer struct{}

func (keySerializer) Write(row cursor.Row, dst *cursor.KeyBuilder) {
	dst.WriteString(row.String(1))
}

// fixtureCursor iterates a fixed slice of rows, in order, forward-only. It
// implements both cursor.MasterCursor and cursor.SlaveCursor: the probe
// slot is a second cursor over the same backing rows, addressed by row id
// (== index into rows), so RandomRead never disturbs the main position.
type fixtureCursor struct {
	rows  []fixtureRow
	pos   int // index of the current row; -1 before the first Advance
	cur   fixtureRow
	probe fixtureRow

	// released is set by Release.
	released bool
}

func newFixtureCursor(rows []fixtureRow) *fixtureCursor {
	return &fixtureCursor{rows: rows, pos: -1}
}

func (c *fixtureCursor) Advance() (bool, error) {
	if c.pos+1 >= len(c.rows) {
		return false, nil
	}
	c.pos++
	c.cur = c.rows[c.pos]
	return true, nil
}

func (c *fixtureCursor) Row() cursor.Row     { return &c.cur }
func (c *fixtureCursor) ProbeRow() cursor.Row { return &c.probe }

func (c *fixtureCursor) RandomRead(rowID int64) error {
	c.probe = c.rows[rowID]
	return nil
}

func (c *fixtureCursor) Rewind() error {
	c.pos = -1
	return nil
}

func (c *fixtureCursor) Release() error {
	c.released = true
	return nil
}
func (c *fixtureCursor) Size() int64                 { return int64(len(c.rows)) }
func (c *fixtureCursor) PreComputedStateSize() int64 { return 0 }
func (c *fixtureCursor) CalculateSize(_ context.Context, counter *int64) error {
	*counter = int64(len(c.rows))
	return nil
}

var (
	_ cursor.MasterCursor = (*fixtureCursor)(nil)
	_ cursor.SlaveCursor  = (*fixtureCursor)(nil)
)

// rowSpec is the (timestamp, key) shorthand used to build fixture rows in
// tests; rowsOf assigns sequential row ids by position, matching how a
// table's row id is usually its ordinal position within a forward scan.
type rowSpec struct {
	ts  int64
	key string
}

func rowsOf(specs ...rowSpec) []fixtureRow {
	out := make([]fixtureRow, len(specs))
	for i, p := range specs {
		out[i] = fixtureRow{ts: p.ts, key: p.key, rowID: int64(i)}
	}
	return out
}
