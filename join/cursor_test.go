package join

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/shbhmexe/questdb/cursor"
	"github.com/shbhmexe/questdb/keyindex"
)

type fixtureMeta struct{}

func (fixtureMeta) TimestampIndex() int              { return 0 }
func (fixtureMeta) ColumnCount() int                 { return 2 }
func (fixtureMeta) ColumnType(int) cursor.ColumnType { return cursor.ColumnTypeInt64 }
func (fixtureMeta) ColumnName(colIdx int) string {
	if colIdx == 0 {
		return "ts"
	}
	return "key"
}

// output is the flattened shape of one joined row, used for comparisons.
type output struct {
	masterTs  int64
	masterKey string
	hasSlave  bool
	slaveTs   int64
	slaveKey  string
}

func run(t *testing.T, tolerance int64, master, slave []fixtureRow) []output {
	t.Helper()

	cfg := Config{
		ColumnSplit:          2,
		MasterTimestampIndex: 0,
		SlaveTimestampIndex:  0,
		Tolerance:            tolerance,
		MasterKeySerializer:  keySerializer{},
		SlaveKeySerializer:   keySerializer{},
	}
	idx := keyindex.New()
	c := NewCursor(cfg, idx, fixtureMeta{})

	mc := newFixtureCursor(master)
	sc := newFixtureCursor(slave)
	require.NoError(t, c.bind(mc, sc))

	var got []output
	for {
		hasNext, err := c.Advance()
		require.NoError(t, err)
		if !hasNext {
			break
		}
		row := c.CurrentRow()
		o := output{
			masterTs:  row.Timestamp(0),
			masterKey: row.String(1),
			hasSlave:  row.HasSlave(),
		}
		if o.hasSlave {
			o.slaveTs = row.Timestamp(2)
			o.slaveKey = row.String(3)
		}
		got = append(got, o)
	}
	return got
}

func TestBasicPriorMatch(t *testing.T) {
	master := rowsOf(rowSpec{1, "A"}, rowSpec{2, "B"})
	slave := rowsOf(rowSpec{0, "A"}, rowSpec{1, "B"})

	got := run(t, ToleranceUnbounded, master, slave)

	want := []output{
		{masterTs: 1, masterKey: "A", hasSlave: true, slaveTs: 0, slaveKey: "A"},
		{masterTs: 2, masterKey: "B", hasSlave: true, slaveTs: 1, slaveKey: "B"},
	}
	require.Empty(t, cmp.Diff(want, got, cmp.AllowUnexported(output{})))
}

func TestNoMatchMissingKey(t *testing.T) {
	master := rowsOf(rowSpec{5, "X"})
	slave := rowsOf(rowSpec{1, "Y"})

	got := run(t, ToleranceUnbounded, master, slave)

	want := []output{{masterTs: 5, masterKey: "X", hasSlave: false}}
	require.Empty(t, cmp.Diff(want, got, cmp.AllowUnexported(output{})))
}

func TestToleranceCutoffAtProbeTime(t *testing.T) {
	master := rowsOf(rowSpec{10, "A"}, rowSpec{100, "A"})
	slave := rowsOf(rowSpec{8, "A"})

	got := run(t, 3, master, slave)

	require.Len(t, got, 2)
	require.True(t, got[0].hasSlave)
	require.Equal(t, int64(8), got[0].slaveTs)
	require.False(t, got[1].hasSlave)
}

func TestDanglingSlaveCarriesOver(t *testing.T) {
	master := rowsOf(rowSpec{5, "A"}, rowSpec{20, "A"})
	slave := rowsOf(rowSpec{4, "A"}, rowSpec{10, "A"}, rowSpec{25, "A"})

	got := run(t, ToleranceUnbounded, master, slave)

	require.Len(t, got, 2)
	require.True(t, got[0].hasSlave)
	require.Equal(t, int64(4), got[0].slaveTs)
	require.True(t, got[1].hasSlave)
	require.Equal(t, int64(10), got[1].slaveTs)
}

func TestKeyChange(t *testing.T) {
	master := rowsOf(rowSpec{10, "A"}, rowSpec{10, "B"})
	slave := rowsOf(rowSpec{5, "A"}, rowSpec{7, "B"})

	got := run(t, ToleranceUnbounded, master, slave)

	require.Len(t, got, 2)
	require.True(t, got[0].hasSlave)
	require.Equal(t, int64(5), got[0].slaveTs)
	require.True(t, got[1].hasSlave)
	require.Equal(t, int64(7), got[1].slaveTs)
}

func TestRewindIsIdempotent(t *testing.T) {
	cfg := Config{
		ColumnSplit:          2,
		MasterTimestampIndex: 0,
		SlaveTimestampIndex:  0,
		Tolerance:            ToleranceUnbounded,
		MasterKeySerializer:  keySerializer{},
		SlaveKeySerializer:   keySerializer{},
	}
	master := rowsOf(rowSpec{5, "A"}, rowSpec{20, "A"})
	slave := rowsOf(rowSpec{4, "A"}, rowSpec{10, "A"}, rowSpec{25, "A"})

	idx := keyindex.New()
	c := NewCursor(cfg, idx, fixtureMeta{})
	mc := newFixtureCursor(master)
	sc := newFixtureCursor(slave)
	require.NoError(t, c.bind(mc, sc))

	drain := func() []output {
		var got []output
		for {
			hasNext, err := c.Advance()
			require.NoError(t, err)
			if !hasNext {
				break
			}
			row := c.CurrentRow()
			o := output{masterTs: row.Timestamp(0), masterKey: row.String(1), hasSlave: row.HasSlave()}
			if o.hasSlave {
				o.slaveTs = row.Timestamp(2)
			}
			got = append(got, o)
		}
		return got
	}

	first := drain()
	require.NoError(t, c.Rewind())
	second := drain()

	require.Empty(t, cmp.Diff(first, second, cmp.AllowUnexported(output{})))
}

func TestOutputCardinalityEqualsMasterRowCount(t *testing.T) {
	master := rowsOf(rowSpec{1, "A"}, rowSpec{2, "B"}, rowSpec{3, "C"})
	slave := rowsOf(rowSpec{0, "A"})

	got := run(t, ToleranceUnbounded, master, slave)
	require.Len(t, got, len(master))
}

func TestReleaseIsIdempotent(t *testing.T) {
	cfg := Config{
		ColumnSplit:          2,
		MasterTimestampIndex: 0,
		SlaveTimestampIndex:  0,
		Tolerance:            ToleranceUnbounded,
		MasterKeySerializer:  keySerializer{},
		SlaveKeySerializer:   keySerializer{},
	}
	idx := keyindex.New()
	c := NewCursor(cfg, idx, fixtureMeta{})
	mc := newFixtureCursor(rowsOf(rowSpec{1, "A"}))
	sc := newFixtureCursor(rowsOf(rowSpec{0, "A"}))
	require.NoError(t, c.bind(mc, sc))

	require.NoError(t, c.Release())
	require.NoError(t, c.Release())
}

func TestAdvanceAndRewindAfterReleaseReturnErrClosed(t *testing.T) {
	cfg := Config{
		ColumnSplit:          2,
		MasterTimestampIndex: 0,
		SlaveTimestampIndex:  0,
		Tolerance:            ToleranceUnbounded,
		MasterKeySerializer:  keySerializer{},
		SlaveKeySerializer:   keySerializer{},
	}
	idx := keyindex.New()
	c := NewCursor(cfg, idx, fixtureMeta{})
	mc := newFixtureCursor(rowsOf(rowSpec{1, "A"}))
	sc := newFixtureCursor(rowsOf(rowSpec{0, "A"}))
	require.NoError(t, c.bind(mc, sc))
	require.NoError(t, c.Release())

	_, err := c.Advance()
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, c.Rewind(), ErrClosed)
}

func TestNoSlaveRetreat(t *testing.T) {
	// fixtureCursor's position can only move forward (pos only
	// increments, RandomRead reads through the probe slot without touching
	// pos), so this test checks that after one full traversal the slave's
	// forward position has ended on its last row.
	master := rowsOf(rowSpec{5, "A"}, rowSpec{20, "A"})
	slave := rowsOf(rowSpec{4, "A"}, rowSpec{10, "A"}, rowSpec{25, "A"})

	cfg := Config{
		ColumnSplit:          2,
		MasterTimestampIndex: 0,
		SlaveTimestampIndex:  0,
		Tolerance:            ToleranceUnbounded,
		MasterKeySerializer:  keySerializer{},
		SlaveKeySerializer:   keySerializer{},
	}
	idx := keyindex.New()
	c := NewCursor(cfg, idx, fixtureMeta{})
	mc := newFixtureCursor(master)
	sc := newFixtureCursor(slave)
	require.NoError(t, c.bind(mc, sc))

	for {
		hasNext, err := c.Advance()
		require.NoError(t, err)
		if !hasNext {
			break
		}
	}
	require.Equal(t, len(slave)-1, sc.pos)
}
