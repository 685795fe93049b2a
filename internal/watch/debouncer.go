package watch

import (
	"sync"
	"time"
)

// eventDebouncer collects changed paths and signals ready once no new
// event arrived for the debounce interval.
type eventDebouncer struct {
	mu       sync.Mutex
	pending  map[string]bool
	debounce time.Duration
	timer    *time.Timer
	ready    chan struct{}
}

func newEventDebouncer(debounce time.Duration) *eventDebouncer {
	if debounce <= 0 {
		debounce = time.Millisecond
	}
	return &eventDebouncer{
		pending:  make(map[string]bool),
		debounce: debounce,
		ready:    make(chan struct{}, 1),
	}
}

// add records path and restarts the quiet period.
func (d *eventDebouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.signal)
}

func (d *eventDebouncer) signal() {
	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// drain returns and clears the pending paths.
func (d *eventDebouncer) drain() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	paths := make([]string, 0, len(d.pending))
	for path := range d.pending {
		paths = append(paths, path)
	}
	d.pending = make(map[string]bool)
	return paths
}

// stop cancels a pending signal. Pending paths are dropped.
func (d *eventDebouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[string]bool)
}
