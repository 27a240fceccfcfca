package flow

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/onchainnft/nftcreator/metrics"
	"github.com/onchainnft/nftcreator/types"
)

type State int

const (
	Idle State = iota
	Submitting
)

func (s State) String() string {
	if s == Submitting {
		return "Submitting"
	}

	return "Idle"
}

// form is the busy flag and last outcome shared by every form.
type form struct {
	name string
	busy atomic.Bool
	log  zerolog.Logger

	mu      sync.Mutex
	lastErr string
}

func (f *form) setup(name string, l zerolog.Logger) {
	f.name = name
	f.log = l.With().Str("form", name).Logger()
}

// acquire moves the form to Submitting. Only one caller wins.
func (f *form) acquire() error {
	if !f.busy.CompareAndSwap(false, true) {
		metrics.BusyRejections.WithLabelValues(f.name).Inc()
		f.log.Warn().Msg("submit ignored, form busy")

		return ErrBusy
	}

	f.mu.Lock()
	f.lastErr = ""
	f.mu.Unlock()

	return nil
}

// release moves the form back to Idle, remembering err for display.
func (f *form) release(err error) {
	f.mu.Lock()
	if err != nil {
		f.lastErr = err.Error()
	}
	f.mu.Unlock()

	f.busy.Store(false)
}

func (f *form) State() State {
	if f.busy.Load() {
		return Submitting
	}

	return Idle
}

func (f *form) Pending() types.PendingTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()

	return types.PendingTransaction{Submitting: f.busy.Load(), Err: f.lastErr}
}
