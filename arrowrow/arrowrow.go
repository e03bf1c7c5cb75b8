// Package arrowrow implements cursor.Row, cursor.MasterCursor,
// cursor.SlaveCursor, cursor.MasterFactory and cursor.SlaveFactory over an
// Apache Arrow record batch (github.com/apache/arrow-go/v18). It stands in
// for a table scan or page-frame reader, giving the join package a
// concrete, columnar source it can drive through join.NewFactory end to
// end.
package arrowrow

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/shbhmexe/questdb/cursor"
)

// Column describes one column of a Schema: its name, Arrow type, and the
// cursor.ColumnType it should be reported as through Metadata.
type Column struct {
	Name string
	Type arrow.DataType
	Kind cursor.ColumnType
}

// Schema is a fixed, named column layout shared by a Builder and the
// cursor.RecordMetadata it produces.
type Schema struct {
	arrow     *arrow.Schema
	columns   []Column
	tsIdx     int
}

// NewSchema builds a Schema from columns, designating column tsIdx as the
// operator's timestamp column.
func NewSchema(tsIdx int, columns ...Column) *Schema {
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		fields[i] = arrow.Field{Name: c.Name, Type: c.Type}
	}
	return &Schema{arrow: arrow.NewSchema(fields, nil), columns: columns, tsIdx: tsIdx}
}

func (s *Schema) TimestampIndex() int { return s.tsIdx }
func (s *Schema) ColumnCount() int    { return len(s.columns) }
func (s *Schema) ColumnType(colIdx int) cursor.ColumnType {
	return s.columns[colIdx].Kind
}
func (s *Schema) ColumnName(colIdx int) string { return s.columns[colIdx].Name }

var _ cursor.RecordMetadata = (*Schema)(nil)

// Builder accumulates rows into an Arrow record batch, one typed builder
// per column.
type Builder struct {
	schema  *Schema
	alloc   memory.Allocator
	i64     map[int]*array.Int64Builder
	f64     map[int]*array.Float64Builder
	str     map[int]*array.StringBuilder
	boolean map[int]*array.BooleanBuilder
	rows    int
}

// NewBuilder allocates a Builder for schema using the default Go
// allocator.
func NewBuilder(schema *Schema) *Builder {
	alloc := memory.NewGoAllocator()
	b := &Builder{
		schema:  schema,
		alloc:   alloc,
		i64:     make(map[int]*array.Int64Builder),
		f64:     make(map[int]*array.Float64Builder),
		str:     make(map[int]*array.StringBuilder),
		boolean: make(map[int]*array.BooleanBuilder),
	}
	for i, c := range schema.columns {
		switch c.Kind {
		case cursor.ColumnTypeInt64, cursor.ColumnTypeTimestamp:
			b.i64[i] = array.NewInt64Builder(alloc)
		case cursor.ColumnTypeFloat64:
			b.f64[i] = array.NewFloat64Builder(alloc)
		case cursor.ColumnTypeString:
			b.str[i] = array.NewStringBuilder(alloc)
		case cursor.ColumnTypeBool:
			b.boolean[i] = array.NewBooleanBuilder(alloc)
		}
	}
	return b
}

// AppendInt64, AppendFloat64, AppendString and AppendBool append one value
// to the named column of the row currently under construction. Every
// column must receive exactly one Append call per row before AppendRowEnd.
func (b *Builder) AppendInt64(colIdx int, v int64)     { b.i64[colIdx].Append(v) }
func (b *Builder) AppendFloat64(colIdx int, v float64) { b.f64[colIdx].Append(v) }
func (b *Builder) AppendString(colIdx int, v string)   { b.str[colIdx].Append(v) }
func (b *Builder) AppendBool(colIdx int, v bool)       { b.boolean[colIdx].Append(v) }

// AppendRowEnd finalizes bookkeeping for one completed row. Callers append
// exactly one value to every column, then call AppendRowEnd once per row.
func (b *Builder) AppendRowEnd() { b.rows++ }

// BuildRecord finalizes the accumulated columns into an Arrow record
// batch, transferring ownership of one reference to the caller.
func (b *Builder) BuildRecord() arrow.Record {
	cols := make([]arrow.Array, len(b.schema.columns))
	for i, c := range b.schema.columns {
		switch c.Kind {
		case cursor.ColumnTypeInt64, cursor.ColumnTypeTimestamp:
			cols[i] = b.i64[i].NewArray()
		case cursor.ColumnTypeFloat64:
			cols[i] = b.f64[i].NewArray()
		case cursor.ColumnTypeString:
			cols[i] = b.str[i].NewArray()
		case cursor.ColumnTypeBool:
			cols[i] = b.boolean[i].NewArray()
		}
	}
	return array.NewRecord(b.schema.arrow, cols, int64(b.rows))
}

// Build finalizes the accumulated columns into an Arrow record batch and
// wraps it as a Cursor.
func (b *Builder) Build() *Cursor {
	return NewCursor(b.schema, b.BuildRecord())
}

// Row is a positioned view into one row of an Arrow record batch.
type Row struct {
	schema *Schema
	rec    arrow.Record
	idx    int
}

func (r *Row) Timestamp(colIdx int) int64 { return r.Int64(colIdx) }
func (r *Row) RowID() int64               { return int64(r.idx) }

func (r *Row) IsNull(colIdx int) bool {
	return r.rec.Column(colIdx).IsNull(r.idx)
}

func (r *Row) Int64(colIdx int) int64 {
	return r.rec.Column(colIdx).(*array.Int64).Value(r.idx)
}

func (r *Row) Float64(colIdx int) float64 {
	return r.rec.Column(colIdx).(*array.Float64).Value(r.idx)
}

func (r *Row) String(colIdx int) string {
	return r.rec.Column(colIdx).(*array.String).Value(r.idx)
}

func (r *Row) Bool(colIdx int) bool {
	return r.rec.Column(colIdx).(*array.Boolean).Value(r.idx)
}

var _ cursor.Row = (*Row)(nil)

// Cursor is a forward, single-record-batch cursor.MasterCursor and
// cursor.SlaveCursor over an in-memory Arrow record batch.
type Cursor struct {
	schema *Schema
	rec    arrow.Record
	pos    int
	cur    Row
	probe  Row
}

// NewCursor wraps rec for forward iteration and random access.
func NewCursor(schema *Schema, rec arrow.Record) *Cursor {
	return &Cursor{
		schema: schema,
		rec:    rec,
		pos:    -1,
		cur:    Row{schema: schema, rec: rec},
		probe:  Row{schema: schema, rec: rec},
	}
}

func (c *Cursor) Advance() (bool, error) {
	if int64(c.pos+1) >= c.rec.NumRows() {
		return false, nil
	}
	c.pos++
	c.cur.idx = c.pos
	return true, nil
}

func (c *Cursor) Row() cursor.Row      { return &c.cur }
func (c *Cursor) ProbeRow() cursor.Row { return &c.probe }

func (c *Cursor) RandomRead(rowID int64) error {
	c.probe.idx = int(rowID)
	return nil
}

func (c *Cursor) Rewind() error {
	c.pos = -1
	return nil
}

func (c *Cursor) Release() error {
	if c.rec == nil {
		return nil
	}
	c.rec.Release()
	c.rec = nil
	return nil
}

func (c *Cursor) Size() int64                { return c.rec.NumRows() }
func (c *Cursor) PreComputedStateSize() int64 { return 0 }

func (c *Cursor) CalculateSize(ctx context.Context, counter *int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	*counter = c.rec.NumRows()
	return nil
}

var (
	_ cursor.MasterCursor = (*Cursor)(nil)
	_ cursor.SlaveCursor  = (*Cursor)(nil)
)

// Factory owns one materialized Arrow record batch and hands out a fresh
// Cursor over it — retained via Arrow's own refcounting — on every Open
// call, so the same in-memory batch can back repeated executions of a
// join plan the way a real table scan factory would re-open a new cursor
// per execution over its unchanging underlying storage.
type Factory struct {
	schema *Schema
	rec    arrow.Record
}

// NewFactory takes ownership of rec: Close releases the reference
// BuildRecord produced.
func NewFactory(schema *Schema, rec arrow.Record) *Factory {
	return &Factory{schema: schema, rec: rec}
}

func (f *Factory) Metadata() cursor.RecordMetadata { return f.schema }

func (f *Factory) Close() error {
	f.rec.Release()
	return nil
}

func (f *Factory) openCursor() *Cursor {
	f.rec.Retain()
	return NewCursor(f.schema, f.rec)
}

// MasterFactory adapts Factory to cursor.MasterFactory.
type MasterFactory struct{ *Factory }

func (f MasterFactory) Open(context.Context) (cursor.MasterCursor, error) {
	return f.openCursor(), nil
}

// SlaveFactory adapts Factory to cursor.SlaveFactory.
type SlaveFactory struct{ *Factory }

func (f SlaveFactory) Open(context.Context) (cursor.SlaveCursor, error) {
	return f.openCursor(), nil
}

var (
	_ cursor.MasterFactory = MasterFactory{}
	_ cursor.SlaveFactory  = SlaveFactory{}
)

// NullRow is a stateless, schema-shaped source of typed zero values for an
// Arrow schema, used as the unmatched-slave stand-in.
type NullRow struct{}

func (NullRow) Timestamp(int) int64  { return cursor.NegInfTimestamp }
func (NullRow) RowID() int64         { return cursor.NullRowID }
func (NullRow) IsNull(int) bool      { return true }
func (NullRow) Int64(int) int64      { return 0 }
func (NullRow) Float64(int) float64  { return 0 }
func (NullRow) String(int) string    { return "" }
func (NullRow) Bool(int) bool        { return false }

var _ cursor.Row = NullRow{}
