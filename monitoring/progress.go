package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how far a long task has come, such as the seconds of
// a timed simulation run.
type ProgressBar struct {
	lock     sync.Mutex
	id       string
	name     string
	start    time.Time
	total    uint64
	finished uint64
}

type progressRsp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// Advance marks more units as finished. The count never exceeds the total.
func (b *ProgressBar) Advance(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.finished = min(b.finished+amount, b.total)
}

// Finished returns the number of finished units.
func (b *ProgressBar) Finished() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.finished
}

func (b *ProgressBar) snapshot() progressRsp {
	b.lock.Lock()
	defer b.lock.Unlock()

	return progressRsp{
		ID:        b.id,
		Name:      b.name,
		StartTime: b.start,
		Total:     b.total,
		Finished:  b.finished,
	}
}
