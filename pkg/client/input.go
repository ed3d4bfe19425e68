package client

import (
	"sync"
	"time"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

// defaultSendPeriod is the cadence of move commands while keys are
// held.
const defaultSendPeriod = 50 * time.Millisecond

// inputTracker turns key press/release edges into a steady stream of
// move commands. It holds the set of pressed movement keys in press
// order and runs one repeating emitter while that set is non-empty;
// starting a new emitter always cancels the previous one first.
type inputTracker struct {
	mu       sync.Mutex
	held     []shared.Direction // cardinals only, press order retained
	cancel   chan struct{}      // non-nil exactly while the emitter runs
	period   time.Duration
	requests chan<- *shared.Message
	onChange func() // status refresh hook
}

func newInputTracker(period time.Duration, requests chan<- *shared.Message, onChange func()) *inputTracker {
	if period <= 0 {
		period = defaultSendPeriod
	}
	if onChange == nil {
		onChange = func() {}
	}
	return &inputTracker{
		period:   period,
		requests: requests,
		onChange: onChange,
	}
}

// KeyDown records a pressed movement key. Non-cardinal and
// already-held keys are ignored entirely.
func (t *inputTracker) KeyDown(d shared.Direction) {
	if !isCardinal(d) {
		return
	}
	t.mu.Lock()
	if t.indexOf(d) >= 0 {
		t.mu.Unlock()
		return
	}
	t.held = append(t.held, d)
	if len(t.held) == 1 {
		t.startEmitterLocked()
	}
	t.mu.Unlock()
	t.onChange()
}

// KeyUp releases a held movement key. Releasing the last key stops
// the emitter and sends an explicit stop; otherwise the emitter is
// restarted so the newly resolved direction takes effect immediately.
func (t *inputTracker) KeyUp(d shared.Direction) {
	t.mu.Lock()
	i := t.indexOf(d)
	if i < 0 {
		t.mu.Unlock()
		return
	}
	t.held = append(t.held[:i], t.held[i+1:]...)
	t.stopEmitterLocked()
	lastKey := len(t.held) == 0
	if !lastKey {
		t.startEmitterLocked()
	}
	t.mu.Unlock()
	if lastKey {
		// send outside the lock; a full requests buffer must not
		// wedge the tracker
		t.requests <- shared.StopMessage()
	}
	t.onChange()
}

// Blur clears all held keys, stops the emitter and sends a stop,
// regardless of prior state. Keys must be re-pressed after focus
// returns.
func (t *inputTracker) Blur() {
	t.mu.Lock()
	t.held = nil
	t.stopEmitterLocked()
	t.mu.Unlock()
	t.requests <- shared.StopMessage()
	t.onChange()
}

// Focus clears held keys without sending any command.
func (t *inputTracker) Focus() {
	t.mu.Lock()
	t.held = nil
	t.stopEmitterLocked()
	t.mu.Unlock()
	t.onChange()
}

// Moving reports whether any movement key is held right now. This is
// the local participant's display status; input intent is more
// immediate than round-tripped server state.
func (t *inputTracker) Moving() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.held) > 0
}

// resolve maps the held set to a single direction. One key emits its
// cardinal. Exactly two keys forming a valid pair resolve to the
// diagonal; anything else (opposing keys, three-plus keys) falls
// back to the first-pressed key. Deterministic, never an error.
func (t *inputTracker) resolve() (shared.Direction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch len(t.held) {
	case 0:
		return shared.DIR_NONE, false
	case 1:
		return t.held[0], true
	case 2:
		if d := shared.Diagonal(t.held[0], t.held[1]); d != shared.DIR_NONE {
			return d, true
		}
	}
	return t.held[0], true
}

// startEmitterLocked launches the repeating emitter. Callers hold
// t.mu and have already ensured no emitter is running.
func (t *inputTracker) startEmitterLocked() {
	done := make(chan struct{})
	t.cancel = done
	go func() {
		// first command goes out immediately; the ticker sustains
		// the cadence afterward
		t.emit()
		tick := time.NewTicker(t.period)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				t.emit()
			}
		}
	}()
}

func (t *inputTracker) stopEmitterLocked() {
	if t.cancel != nil {
		close(t.cancel)
		t.cancel = nil
	}
}

func (t *inputTracker) emit() {
	d, ok := t.resolve()
	if !ok {
		return
	}
	t.requests <- shared.MoveMessage(d)
}

func (t *inputTracker) indexOf(d shared.Direction) int {
	for i, h := range t.held {
		if h == d {
			return i
		}
	}
	return -1
}

func isCardinal(d shared.Direction) bool {
	switch d {
	case shared.UP, shared.DOWN, shared.LEFT, shared.RIGHT:
		return true
	}
	return false
}
