package mapreduce

import "sync"

// dispatcher hands out each unit of a fixed list exactly once.
type dispatcher struct {
	mu    sync.Mutex
	units []string
	next  int
}

func newDispatcher(units []string) *dispatcher {
	return &dispatcher{units: units}
}

func (d *dispatcher) take() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.next == len(d.units) {
		return "", false
	}

	unit := d.units[d.next]
	d.next++

	return unit, true
}
