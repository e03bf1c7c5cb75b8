package join

import "github.com/shbhmexe/questdb/cursor"

// OuterRecord concatenates a live master row with either the live slave
// probe row or a null-shaped stand-in. columnSplit marks the boundary:
// reads below it route to master, at or above it to whichever slave
// facade hasSlave currently selects.
type OuterRecord struct {
	columnSplit int
	master      cursor.Row
	slave       cursor.Row
	nullSlave   cursor.Row
	hasSlave    bool
}

// newOuterRecord builds the record shape once; master and slave rows are
// bound later via bind, and nullSlave is fixed for the record's lifetime.
func newOuterRecord(columnSplit int, nullSlave cursor.Row) *OuterRecord {
	return &OuterRecord{columnSplit: columnSplit, nullSlave: nullSlave}
}

func (r *OuterRecord) bind(master, slave cursor.Row) {
	r.master = master
	r.slave = slave
}

// setHasSlave toggles which slave facade — the live probe row or the
// null-shaped stand-in — is exposed by subsequent reads.
func (r *OuterRecord) setHasSlave(v bool) { r.hasSlave = v }

// HasSlave reports whether the current row carries a real matched slave
// row, as opposed to the null-shaped stand-in.
func (r *OuterRecord) HasSlave() bool { return r.hasSlave }

// Master returns the master row directly, for callers that only need
// master-side columns without going through the column-split routing.
func (r *OuterRecord) Master() cursor.Row { return r.master }

func (r *OuterRecord) activeSlave() cursor.Row {
	if r.hasSlave {
		return r.slave
	}
	return r.nullSlave
}

func (r *OuterRecord) route(colIdx int) (cursor.Row, int) {
	if colIdx < r.columnSplit {
		return r.master, colIdx
	}
	return r.activeSlave(), colIdx - r.columnSplit
}

func (r *OuterRecord) Timestamp(colIdx int) int64 {
	row, idx := r.route(colIdx)
	return row.Timestamp(idx)
}

func (r *OuterRecord) RowID() int64 {
	// The row identifier of the joined output is the master's: the output
	// stream is walked in master order and has no independent row space.
	return r.master.RowID()
}

func (r *OuterRecord) IsNull(colIdx int) bool {
	row, idx := r.route(colIdx)
	return row.IsNull(idx)
}

func (r *OuterRecord) Int64(colIdx int) int64 {
	row, idx := r.route(colIdx)
	return row.Int64(idx)
}

func (r *OuterRecord) Float64(colIdx int) float64 {
	row, idx := r.route(colIdx)
	return row.Float64(idx)
}

func (r *OuterRecord) String(colIdx int) string {
	row, idx := r.route(colIdx)
	return row.String(idx)
}

func (r *OuterRecord) Bool(colIdx int) bool {
	row, idx := r.route(colIdx)
	return row.Bool(idx)
}

var _ cursor.Row = (*OuterRecord)(nil)

// nullRow is a stateless, schema-shaped source of typed zero values,
// derived once from the slave's metadata at factory construction time and
// shared by every unmatched master row.
type nullRow struct {
	meta cursor.RecordMetadata
}

func newNullRow(meta cursor.RecordMetadata) *nullRow {
	return &nullRow{meta: meta}
}

func (n *nullRow) Timestamp(int) int64  { return cursor.NegInfTimestamp }
func (n *nullRow) RowID() int64         { return cursor.NullRowID }
func (n *nullRow) IsNull(int) bool      { return true }
func (n *nullRow) Int64(int) int64      { return 0 }
func (n *nullRow) Float64(int) float64  { return 0 }
func (n *nullRow) String(int) string    { return "" }
func (n *nullRow) Bool(int) bool        { return false }

var _ cursor.Row = (*nullRow)(nil)
