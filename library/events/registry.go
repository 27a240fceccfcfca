package events

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
)

type entry[R any] struct {
	decode func(lg *gethtypes.Log) (R, bool, error)
}

// Registry maps topic0 to decoders producing R. Several decoders may share a
// topic0; the first one whose shape matches the log wins.
type Registry[R any] struct {
	mu sync.RWMutex
	m  map[common.Hash][]entry[R]
}

func NewRegistry[R any]() *Registry[R] {
	return &Registry[R]{m: make(map[common.Hash][]entry[R])}
}

// Register binds event eventName of a to a decoder into T and a mapper from
// T to R. It returns the event id (topic0).
func Register[T any, R any](
	r *Registry[R],
	a abi.ABI,
	eventName string,
	mapper func(T, Meta) (R, error),
) (common.Hash, error) {
	ev, ok := a.Events[eventName]
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrUnknownEvent, eventName)
	}

	if _, err := bindingFor(ev, reflect.TypeFor[T]()); err != nil {
		return common.Hash{}, err
	}

	e := entry[R]{
		decode: func(lg *gethtypes.Log) (R, bool, error) {
			var zero R

			v, matched, err := Decode[T](a, eventName, lg)
			if !matched || err != nil {
				return zero, matched, err
			}

			out, err := mapper(v, MetaOf(lg))

			return out, true, err
		},
	}

	r.mu.Lock()
	r.m[ev.ID] = append(r.m[ev.ID], e)
	r.mu.Unlock()

	return ev.ID, nil
}

// HandleLog decodes lg with the decoders registered under its topic0.
// handled is false when no decoder accepts the log.
func (r *Registry[R]) HandleLog(lg *gethtypes.Log) (out R, handled bool, err error) {
	if len(lg.Topics) == 0 {
		return out, false, nil
	}

	r.mu.RLock()
	entries := r.m[lg.Topics[0]]
	r.mu.RUnlock()

	for _, e := range entries {
		v, matched, err := e.decode(lg)
		if !matched {
			continue
		}

		return v, true, err
	}

	return out, false, nil
}

// HandleReceipt decodes every log of rc that some decoder accepts, in log
// order. Logs nobody handles are skipped; the first decode error aborts.
func (r *Registry[R]) HandleReceipt(rc *gethtypes.Receipt) ([]R, error) {
	if rc == nil {
		return nil, nil
	}

	out := make([]R, 0, len(rc.Logs))

	for _, lg := range rc.Logs {
		v, ok, err := r.HandleLog(lg)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, v)
		}
	}

	return out, nil
}
