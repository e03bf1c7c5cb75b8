package join

import (
	"math"

	"github.com/shbhmexe/questdb/cursor"
)

// ToleranceUnbounded disables the tolerance window: any slave timestamp
// not exceeding the master timestamp qualifies. A sentinel value keeps
// Tolerance a plain int64 rather than a nullable field.
const ToleranceUnbounded int64 = math.MaxInt64

// Config is the fixed shape of one ASOF join operator instance. There is
// no file or environment surface for a single query operator to own: a
// real planner constructs this programmatically from the compiled join
// predicate and passes it to NewFactory.
type Config struct {
	// ColumnSplit is the number of leading columns in the joined output
	// that belong to the master side; columns at or beyond it belong to
	// the slave side.
	ColumnSplit int
	// MasterTimestampIndex is the column index yielding the master's
	// designated timestamp.
	MasterTimestampIndex int
	// SlaveTimestampIndex is the column index yielding the slave's
	// designated timestamp.
	SlaveTimestampIndex int
	// Tolerance is the maximum allowed masterTs-slaveTs gap, in the
	// engine's time unit, or ToleranceUnbounded to disable the bound.
	Tolerance int64
	// MasterKeySerializer and SlaveKeySerializer project rows into the
	// byte shape used as KeyIndex keys. They must agree on rows that
	// should join.
	MasterKeySerializer cursor.KeySerializer
	SlaveKeySerializer  cursor.KeySerializer
}

func (c Config) minSlaveTimestamp(masterTs int64) int64 {
	if c.Tolerance == ToleranceUnbounded {
		return math.MinInt64
	}
	return masterTs - c.Tolerance
}

func (c Config) withinTolerance(masterTs, slaveTs int64) bool {
	return c.Tolerance == ToleranceUnbounded || slaveTs >= masterTs-c.Tolerance
}
