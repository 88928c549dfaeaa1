package weavetest

import "github.com/iov-one/valman"

// Handler is a mock implementation of the valman.Handler interface. Set
// the error attributes to force an error response. Every call is counted.
type Handler struct {
	checkCall   int
	CheckResult valman.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult valman.DeliverResult
	DeliverErr    error
}

var _ valman.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// WriteHandler writes Key/Value to the store on every call and then
// returns Err.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ valman.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &valman.CheckResult{}, nil
}

func (h *WriteHandler) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &valman.DeliverResult{}, nil
}

// PanicHandler panics with Value on every call.
type PanicHandler struct {
	Value interface{}
}

var _ valman.Handler = PanicHandler{}

func (h PanicHandler) Check(valman.Context, valman.KVStore, valman.Tx) (*valman.CheckResult, error) {
	panic(h.Value)
}

func (h PanicHandler) Deliver(valman.Context, valman.KVStore, valman.Tx) (*valman.DeliverResult, error) {
	panic(h.Value)
}
