package join

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/shbhmexe/questdb/cursor"
)

// Cursor is the ASOF join operator: a pull-based iterator that holds the
// two source cursors, the key index, a single slave probe slot, and the
// small amount of state that carries a slave row across master rows when
// it has been read but not yet matched.
type Cursor struct {
	cfg Config

	index cursor.KeyIndex
	null  *nullRow
	rec   *OuterRecord

	master cursor.MasterCursor
	slave  cursor.SlaveCursor

	st state
}

// NewCursor constructs a Cursor over an already-open key index. It must be
// bound with bind before use.
func NewCursor(cfg Config, index cursor.KeyIndex, slaveMeta cursor.RecordMetadata) *Cursor {
	null := newNullRow(slaveMeta)
	c := &Cursor{
		cfg:   cfg,
		index: index,
		null:  null,
		rec:   newOuterRecord(cfg.ColumnSplit, null),
	}
	c.st.isOpen = true
	return c
}

// bind resets transient state and captures the source cursors for one
// execution, reopening the key index first if a prior Release closed it.
// Called only by Factory.Open.
func (c *Cursor) bind(master cursor.MasterCursor, slave cursor.SlaveCursor) error {
	if !c.st.isOpen {
		if err := c.index.Reopen(); err != nil {
			return err
		}
		c.st.isOpen = true
	}
	c.st.reset()
	c.master = master
	c.slave = slave
	c.rec.bind(master.Row(), slave.ProbeRow())
	return nil
}

// Advance produces the next joined row: it advances the master cursor,
// catches the slave cursor up to the master's timestamp, and probes the
// key index for the master's best prior match. It returns false once the
// master stream is exhausted. A non-nil error surfaces a failure from
// either source cursor's Advance/RandomRead call unchanged; this operator
// does not attempt to catch or retry it.
func (c *Cursor) Advance() (bool, error) {
	if !c.st.isOpen {
		return false, ErrClosed
	}
	if c.st.masterHasNextPending {
		next, err := c.master.Advance()
		if err != nil {
			return false, err
		}
		c.st.masterHasNext = next
		c.st.masterHasNextPending = false
	}
	if !c.st.masterHasNext {
		return false, nil
	}

	masterRow := c.master.Row()
	masterTs := masterRow.Timestamp(c.cfg.MasterTimestampIndex)
	minSlaveTs := c.cfg.minSlaveTimestamp(masterTs)

	if c.st.slaveTimestamp <= masterTs {
		if err := c.catchUp(masterTs, minSlaveTs); err != nil {
			return false, err
		}
	}

	if err := c.probe(masterRow, masterTs); err != nil {
		return false, err
	}

	c.st.masterHasNextPending = true
	return true, nil
}

// catchUp replays the dangling row if it still qualifies, then pulls the
// slave cursor forward until it overshoots masterTs, inserting every
// qualifying row into the key index along the way. It never retreats the
// slave cursor and visits each of its rows at most once; random access is
// used only for the dangling row, via the probe slot, and never disturbs
// the main position.
func (c *Cursor) catchUp(masterTs, minSlaveTs int64) error {
	probeRow := c.slave.ProbeRow()

	if c.st.lastSlaveRowID != cursor.NullRowID {
		if err := c.slave.RandomRead(c.st.lastSlaveRowID); err != nil {
			return err
		}
		ts := probeRow.Timestamp(c.cfg.SlaveTimestampIndex)
		if ts >= minSlaveTs {
			c.insert(probeRow, c.st.lastSlaveRowID)
		}
	}

	// Deliberately no eviction here: values in the index are bare row
	// ids, so evicting a stale key would require dereferencing its row to
	// learn its timestamp — the exact per-key random read this operator
	// exists to avoid. The tolerance re-check in probe covers correctness.
	slaveRow := c.slave.Row()
	for {
		hasNext, err := c.slave.Advance()
		if err != nil {
			return err
		}
		if !hasNext {
			// End of slave stream inside catch-up without ever
			// overshooting: slaveTimestamp/lastSlaveRowID retain the
			// last values written below (or the pre-loop dangling row,
			// if the slave cursor produced nothing new). A future
			// master row with masterTs >= that timestamp will replay it
			// through the dangling-row branch above; the replay is
			// idempotent, so no correctness issue arises from it.
			break
		}
		ts := slaveRow.Timestamp(c.cfg.SlaveTimestampIndex)
		if ts <= masterTs {
			if ts >= minSlaveTs {
				c.insert(slaveRow, slaveRow.RowID())
			}
			c.st.slaveTimestamp = ts
			c.st.lastSlaveRowID = slaveRow.RowID()
			continue
		}
		// Overshoot: this row becomes the new dangling row, held for
		// reconsideration against the next master row.
		c.st.slaveTimestamp = ts
		c.st.lastSlaveRowID = slaveRow.RowID()
		break
	}
	return nil
}

func (c *Cursor) insert(row cursor.Row, rowID int64) {
	h := c.index.WithKey(row, c.cfg.SlaveKeySerializer)
	h.CreateValue().Set(0, rowID)
}

// probe looks up the master row's key in the index and, if found, reads
// the matched slave row and checks it against the tolerance window.
func (c *Cursor) probe(masterRow cursor.Row, masterTs int64) error {
	h := c.index.WithKey(masterRow, c.cfg.MasterKeySerializer)
	v, ok := h.FindValue()
	if !ok {
		c.rec.setHasSlave(false)
		return nil
	}
	rowID := v.Get(0)
	if err := c.slave.RandomRead(rowID); err != nil {
		return err
	}
	slaveTs := c.slave.ProbeRow().Timestamp(c.cfg.SlaveTimestampIndex)
	c.rec.setHasSlave(c.cfg.withinTolerance(masterTs, slaveTs))
	return nil
}

// CurrentRow returns the joined row produced by the most recent successful
// Advance call, typed as the concrete *OuterRecord.
func (c *Cursor) CurrentRow() *OuterRecord { return c.rec }

// Row satisfies cursor.SourceCursor's narrower, source-agnostic accessor.
func (c *Cursor) Row() cursor.Row { return c.rec }

// Rewind clears the key index, resets transient state, and rewinds both
// sources. After Rewind the key index is empty and both cursors are at
// their first row.
func (c *Cursor) Rewind() error {
	if !c.st.isOpen {
		return ErrClosed
	}
	c.index.Clear()
	c.st.reset()
	if err := c.master.Rewind(); err != nil {
		return err
	}
	return c.slave.Rewind()
}

// Size equals the master's size: this is an outer join on the master
// side, so it produces exactly one output row per master row.
func (c *Cursor) Size() int64 { return c.master.Size() }

// PreComputedStateSize is the sum of both sources' pre-computed state
// sizes, passed through unchanged.
func (c *Cursor) PreComputedStateSize() int64 {
	return c.master.PreComputedStateSize() + c.slave.PreComputedStateSize()
}

// CalculateSize forwards to the master cursor's own size calculation,
// carrying the cancellation handle through unchanged: an exact output row
// count is exactly the master's exact row count, so the master is the
// only side that needs to be walked to get one.
func (c *Cursor) CalculateSize(ctx context.Context, counter *int64) error {
	return c.master.CalculateSize(ctx, counter)
}

// Release closes the key index and releases both sources. It is
// idempotent via isOpen, and aggregates any errors from the three
// underlying releases so a failure in one does not hide a failure in
// another.
func (c *Cursor) Release() error {
	if !c.st.isOpen {
		return nil
	}
	c.st.isOpen = false

	var errs *multierror.Error
	if err := c.index.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if c.master != nil {
		if err := c.master.Release(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if c.slave != nil {
		if err := c.slave.Release(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

var _ cursor.SourceCursor = (*Cursor)(nil)
