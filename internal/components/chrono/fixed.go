package chrono

import (
	"sync"
	"time"
)

// FixedTime is a TimeAPI that only moves when told to.
type FixedTime struct {
	mutex sync.Mutex
	now   time.Time
}

func NewFixedTime(now time.Time) *FixedTime {
	return &FixedTime{now: now}
}

func (f *FixedTime) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.now
}

func (f *FixedTime) Set(now time.Time) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.now = now
}

func (f *FixedTime) Advance(d time.Duration) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.now = f.now.Add(d)
}
