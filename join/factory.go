package join

import (
	"context"

	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shbhmexe/questdb/cursor"
)

// Factory constructs the Cursor, owning the key index allocation, and
// wires fresh source cursors on each execution.
type Factory struct {
	cfg    Config
	master cursor.MasterFactory
	slave  cursor.SlaveFactory
	index  cursor.KeyIndex
	cur    *Cursor
	log    *zap.Logger
}

// Option configures a Factory at construction time.
type Option func(*Factory)

// WithLogger sets the logger used for construction and acquisition
// failures. It must be called before the Factory is used, matching
// storage/engine.go's WithLogger convention. The default is a no-op
// logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Factory) { f.log = l }
}

// NewFactory allocates the key index and the Cursor. If index allocation
// or cursor construction fails partway through, any state already
// allocated is closed before the error is returned.
func NewFactory(cfg Config, index cursor.KeyIndex, master cursor.MasterFactory, slave cursor.SlaveFactory, opts ...Option) (f *Factory, err error) {
	f = &Factory{cfg: cfg, master: master, slave: slave, index: index, log: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	// The error paths below return a nil f, so the deferred cleanup keeps
	// its own reference to the logger.
	log := f.log

	defer func() {
		if err != nil {
			log.Warn("asof join factory construction failed", zap.Error(err))
			if index != nil {
				_ = index.Close()
			}
		}
	}()

	if index == nil {
		return nil, pkgerrors.Wrap(ErrKeyIndexConstruction, "nil key index")
	}
	if err := index.Reopen(); err != nil {
		return nil, pkgerrors.Wrap(ErrKeyIndexConstruction, err.Error())
	}

	f.cur = NewCursor(cfg, index, slave.Metadata())
	return f, nil
}

// Open acquires fresh master and slave source cursors and binds them to
// the owned Cursor. On any failure between acquiring the master cursor and
// completing bind, both source cursors are released before the error is
// propagated.
func (f *Factory) Open(ctx context.Context, execCtx cursor.ExecutionContext) (cur *Cursor, err error) {
	// Column pre-touch assumes sequential access; the probe phase's
	// random reads into slave storage defeat that assumption, so it is
	// forced off on acquisition.
	if execCtx != nil {
		execCtx.SetColumnPreTouchEnabled(false)
	}

	master, err := f.master.Open(ctx)
	if err != nil {
		f.log.Warn("failed to acquire master cursor", zap.Error(err))
		return nil, pkgerrors.Wrap(ErrAcquireSource, err.Error())
	}

	slave, err := f.slave.Open(ctx)
	if err != nil {
		f.log.Warn("failed to acquire slave cursor", zap.Error(err))
		_ = master.Release()
		return nil, pkgerrors.Wrap(ErrAcquireSource, err.Error())
	}

	if err := f.cur.bind(master, slave); err != nil {
		f.log.Warn("failed to bind source cursors", zap.Error(err))
		_ = master.Release()
		_ = slave.Release()
		return nil, pkgerrors.Wrap(ErrAcquireSource, err.Error())
	}

	return f.cur, nil
}

// FollowsMasterOrder reports whether the operator's output order follows
// the same order-by advice the master factory follows: the join never
// reorders rows relative to the master, so this is a thin pass-through.
func (f *Factory) FollowsMasterOrder(masterFollowsOrderByAdvice bool) bool {
	return masterFollowsOrderByAdvice
}

// ScanDirection passes through the master's scan direction unchanged.
func (f *Factory) ScanDirection(masterDirection cursor.ScanDirection) cursor.ScanDirection {
	return masterDirection
}

// SupportsRandomAccess is always false: the state machine is one-shot
// forward, a compile-time fact rather than a runtime flag.
func (f *Factory) SupportsRandomAccess() bool { return false }

// Close releases the owned Cursor (which in turn closes the key index and
// releases the current source cursors) and both source factories. Errors
// from each step are aggregated so one failure does not mask another.
func (f *Factory) Close() error {
	var errs *multierror.Error
	if f.cur != nil {
		if err := f.cur.Release(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := f.master.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := f.slave.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
