package utils

import (
	"time"

	"github.com/iov-one/valman"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ valman.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug
func (Logging) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Checker) (*valman.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var msg string
	if err == nil {
		msg = res.Log
	}
	logDuration(ctx, tx, start, msg, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (Logging) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Deliverer) (*valman.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var msg string
	if err == nil {
		msg = res.Log
	}
	logDuration(ctx, tx, start, msg, err, false)
	return res, err
}

func logDuration(ctx valman.Context, tx valman.Tx, start time.Time, msg string, err error, lowPrio bool) {
	logger := valman.GetLogger(ctx).With(
		"path", valman.GetPath(tx),
		"duration", time.Since(start)/time.Microsecond,
	)
	// An entry is written even for an empty message.
	switch {
	case err != nil:
		logger.Error(msg, "err", err)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
