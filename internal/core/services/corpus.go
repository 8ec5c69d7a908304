package services

import (
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// corpusState is one published, immutable view of the corpus.
type corpusState struct {
	snapshot *domain.Snapshot
	status   domain.IndexStatus
}

// Corpus owns the published snapshot and the rebuild writer lock.
// Readers load the current state without locking; the single writer swaps
// in a new state only after the index and snapshot are complete.
type Corpus struct {
	state      atomic.Pointer[corpusState]
	rebuilding atomic.Bool
	generation atomic.Uint64
	writer     sync.Mutex
}

// NewCorpus returns a corpus with nothing published.
func NewCorpus() *Corpus {
	return &Corpus{}
}

// Snapshot returns the published snapshot, or nil before the first build.
func (c *Corpus) Snapshot() *domain.Snapshot {
	if st := c.state.Load(); st != nil {
		return st.snapshot
	}
	return nil
}

// Status returns the published status with the live rebuild flag.
func (c *Corpus) Status() domain.IndexStatus {
	var status domain.IndexStatus
	if st := c.state.Load(); st != nil {
		status = st.status
	}
	status.Rebuilding = c.rebuilding.Load()
	return status
}

// Published reports whether a snapshot has been published.
func (c *Corpus) Published() bool {
	st := c.state.Load()
	return st != nil && st.snapshot != nil
}

// Rebuilding reports whether the writer currently holds the index.
func (c *Corpus) Rebuilding() bool {
	return c.rebuilding.Load()
}

// Available returns nil when the index may be searched.
func (c *Corpus) Available() error {
	if c.rebuilding.Load() {
		return domain.ErrRebuildInProgress
	}
	st := c.state.Load()
	if st == nil || !st.status.Ready {
		return domain.ErrIndexUnavailable
	}
	return nil
}

// Generation counts writer acquisitions. A reader that saw generation g
// before touching the index can detect an overlapping rebuild.
func (c *Corpus) Generation() uint64 {
	return c.generation.Load()
}

// Unchanged returns domain.ErrRebuildInProgress when a rebuild started
// after gen was read, and otherwise the result of Available.
func (c *Corpus) Unchanged(gen uint64) error {
	if c.generation.Load() != gen {
		return domain.ErrRebuildInProgress
	}
	return c.Available()
}

// acquire takes the writer lock without blocking.
func (c *Corpus) acquire() bool {
	if !c.writer.TryLock() {
		return false
	}
	c.generation.Add(1)
	c.rebuilding.Store(true)
	return true
}

// release drops the writer lock.
func (c *Corpus) release() {
	c.rebuilding.Store(false)
	c.writer.Unlock()
}

// publish swaps in a new snapshot and status.
func (c *Corpus) publish(snapshot *domain.Snapshot, status domain.IndexStatus) {
	status.Ready = true
	c.state.Store(&corpusState{snapshot: snapshot, status: status})
}

// invalidate marks the index unusable after a failed rebuild. The last
// snapshot stays readable for statistics.
func (c *Corpus) invalidate() {
	next := &corpusState{}
	if st := c.state.Load(); st != nil {
		next.snapshot = st.snapshot
		next.status = st.status
	}
	next.status.Ready = false
	c.state.Store(next)
}
