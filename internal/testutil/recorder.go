package testutil

import (
	"context"
	"sync"

	"github.com/vk/traverse/internal/sink"
)

// Recorder is a sink that keeps every visit in arrival order.
type Recorder struct {
	mu     sync.Mutex
	visits []sink.Visit

	// FailOn makes Visit return Err for the named node instead of recording it.
	FailOn string
	Err    error
}

// Visit implements sink.Sink.
func (r *Recorder) Visit(_ context.Context, v sink.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailOn != "" && v.Name == r.FailOn {
		return r.Err
	}
	r.visits = append(r.visits, v)
	return nil
}

// Visits returns a copy of the recorded visits.
func (r *Recorder) Visits() []sink.Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sink.Visit(nil), r.visits...)
}

// Names returns the visited node names in arrival order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.visits))
	for i, v := range r.visits {
		names[i] = v.Name
	}
	return names
}
