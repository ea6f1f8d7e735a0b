package mirrorfetch

import (
	"sync"
	"time"
)

// modifiedTracker holds the Last-Modified timestamp observed for one
// fetch attempt, shared safely across the concurrent range fetches a
// multi-part attempt runs. The first response to carry the header wins;
// later observations are ignored.
type modifiedTracker struct {
	mu sync.Mutex
	t  *time.Time
}

func newModifiedTracker(initial *time.Time) *modifiedTracker {
	return &modifiedTracker{t: initial}
}

func (mt *modifiedTracker) have() bool {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.t != nil
}

func (mt *modifiedTracker) set(t time.Time) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.t == nil {
		mt.t = &t
	}
}

func (mt *modifiedTracker) value() *time.Time {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.t
}
