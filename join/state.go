package join

import "github.com/shbhmexe/questdb/cursor"

// state gathers Cursor's transient, mutating fields into one struct so
// its lifecycle transitions are easy to read in one place. All
// transitions happen inside Cursor.Advance/Rewind/bind/Release; nothing
// else mutates it.
type state struct {
	// slaveTimestamp is the timestamp of the dangling slave row: the last
	// slave row pulled during catch-up, which is the one that overshot the
	// previous master timestamp, or the final slave row if the stream
	// ended first. Seeded to -inf so the first master row always triggers
	// the catch-up loop.
	slaveTimestamp int64
	// lastSlaveRowID is the row id of the dangling slave row, or
	// cursor.NullRowID if none has been seen yet.
	lastSlaveRowID int64
	// masterHasNext caches the most recent master Advance result; valid
	// only while masterHasNextPending is false.
	masterHasNext bool
	// masterHasNextPending is true iff the master must be advanced before
	// the next row can be produced.
	masterHasNextPending bool
	// isOpen is false once Release has completed; bind reopens it.
	isOpen bool
}

func (s *state) reset() {
	s.slaveTimestamp = cursor.NegInfTimestamp
	s.lastSlaveRowID = cursor.NullRowID
	s.masterHasNextPending = true
	s.masterHasNext = false
}
