package validators

import (
	"github.com/iov-one/valman/errors"
)

// x/validators reserves 140 ~ 149.
var (
	ErrAlreadyQueued       = errors.Register(140, "validator already queued")
	ErrNotCurrentValidator = errors.Register(141, "not a current validator")
	ErrKeyNotReady         = errors.Register(142, "validator keys not ready")
	ErrTooFewValidators    = errors.Register(143, "too few validators")
)
