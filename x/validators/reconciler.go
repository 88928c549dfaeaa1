package validators

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Reconciler builds the validator set of every new session from the
// current set and the queued changes. It is driven by the session
// extension.
type Reconciler struct {
	active ActiveSetReader
	queues Queues
}

// NewReconciler returns a reconciler reading the current set from
// active.
func NewReconciler(active ActiveSetReader) Reconciler {
	return Reconciler{active: active}
}

// NewSession returns the validator set of the session index, or nil if
// the current set stays in force.
//
// At session 0 the validators queued at genesis are returned. During the
// bootstrap sessions nothing changes and the queues are left as they
// are. Afterwards both queues are drained and merged into the current
// set. If the result is smaller than the configured minimum, the current
// set is kept and the drained changes are dropped.
func (r Reconciler) NewSession(ctx valman.Context, db valman.KVStore, index uint32) ([]valman.ValidatorID, error) {
	logger := sessionLogger(ctx, index)
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}

	if index == 0 {
		return r.genesisSet(logger, db, conf)
	}
	if index <= conf.BootstrapSessions {
		logger.Debug("Bootstrap session, validator set unchanged")
		return nil, nil
	}

	active, err := r.active.ActiveSet(db)
	if err != nil {
		return nil, errors.Wrap(err, "active set")
	}
	removals, err := r.queues.Take(db, Removals)
	if err != nil {
		return nil, err
	}
	additions, err := r.queues.Take(db, Additions)
	if err != nil {
		return nil, err
	}
	if len(removals) == 0 && len(additions) == 0 {
		return nil, nil
	}

	next := merge(active, removals, additions, conf.MergeOrder)
	if len(next) < int(conf.MinAuthorities) {
		logger.Info("Not enough validators, keeping the current set",
			"size", len(next),
			"min", conf.MinAuthorities,
			"dropped_additions", len(additions),
			"dropped_removals", len(removals))
		return nil, nil
	}
	if valman.SameValidators(next, active) {
		logger.Debug("Queued changes do not modify the validator set")
		return nil, nil
	}
	logger.Info("New validator set",
		"size", len(next),
		"added", len(additions),
		"removed", len(removals))
	return next, nil
}

func (r Reconciler) genesisSet(logger log.Logger, db valman.KVStore, conf Configuration) ([]valman.ValidatorID, error) {
	queued, err := r.queues.Take(db, Additions)
	if err != nil {
		return nil, err
	}
	if len(queued) == 0 {
		logger.Info("No genesis validators")
		return nil, nil
	}
	set := valman.DedupValidators(queued)
	if len(set) < int(conf.MinAuthorities) {
		logger.Error("Genesis validator set below minimum",
			"size", len(set),
			"min", conf.MinAuthorities)
	}
	logger.Info("Genesis validator set", "size", len(set))
	return set, nil
}

// EndSession is called before the next session is built.
func (r Reconciler) EndSession(ctx valman.Context, db valman.KVStore, index uint32) {
	sessionLogger(ctx, index).Debug("Session ended")
}

// StartSession is called once the set of the session index is in force.
func (r Reconciler) StartSession(ctx valman.Context, db valman.KVStore, index uint32) {
	sessionLogger(ctx, index).Debug("Session started")
}

// ProcessQueue returns the set built from the validators queued at
// genesis. It is the same as NewSession with index 0.
func (r Reconciler) ProcessQueue(ctx valman.Context, db valman.KVStore) ([]valman.ValidatorID, error) {
	return r.NewSession(ctx, db, 0)
}

func sessionLogger(ctx valman.Context, index uint32) log.Logger {
	return valman.GetLogger(ctx).With("module", "validators", "session", index)
}

// merge applies the queued changes to a copy of active and removes any
// duplicate from the result. Additions already present are skipped.
func merge(active, removals, additions []valman.ValidatorID, order string) []valman.ValidatorID {
	set := append([]valman.ValidatorID(nil), active...)
	remove := func() {
		for _, id := range removals {
			if i := valman.IndexOfValidator(set, id); i >= 0 {
				set = append(set[:i], set[i+1:]...)
			}
		}
	}
	add := func() {
		for _, id := range additions {
			if !valman.ContainsValidator(set, id) {
				set = append(set, id)
			}
		}
	}
	if order == AdditionsFirst {
		add()
		remove()
	} else {
		remove()
		add()
	}
	return valman.DedupValidators(set)
}

// Bootstrap queues the genesis validators for session 0. Accounts that
// cannot act as validators are skipped. Key readiness is not checked.
func Bootstrap(db valman.KVStore, mapping ValidatorOf, accounts []valman.Address) error {
	ids := make([]valman.ValidatorID, 0, len(accounts))
	for _, a := range accounts {
		if id, ok := mapping.Convert(a); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return Queues{}.Append(db, Additions, ids...)
}
