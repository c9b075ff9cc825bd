package stream

import (
	"fmt"

	"github.com/liveflow/hls-gateway/cache"
)

// Registry is the process-wide Streams map, per spec.md §3 and the
// explicit "requires construction at startup, not module-level state"
// note in spec.md §9. It wraps the teacher's generic Cache rather than
// a bare map so insertion/lookup/deletion share one lock with the rest
// of the codebase's map-like state.
type Registry struct {
	streams     *cache.Cache[*Stream]
	maxStreams  int
}

func NewRegistry(maxConcurrentStreams int) *Registry {
	return &Registry{
		streams:    cache.New[*Stream](),
		maxStreams: maxConcurrentStreams,
	}
}

// ErrRegistryFull is returned by Admit when the registry is already at
// its configured capacity.
var ErrRegistryFull = fmt.Errorf("max concurrent streams reached")

// Admit inserts s if the registry has spare capacity, otherwise returns
// ErrRegistryFull without mutating anything. The capacity check and the
// insertion happen under the cache's single lock acquisition
// (StoreIfUnderLimit), so two concurrent Admit calls arriving when the
// registry is one below maxStreams can't both succeed — this is the
// single admission-control gate spec.md §5 describes, and it's the
// authoritative one even though the capacity middleware also
// pre-checks Len() as a cheap early reject.
func (r *Registry) Admit(s *Stream) error {
	if !r.streams.StoreIfUnderLimit(s.Identifier, s, r.maxStreams) {
		return ErrRegistryFull
	}
	return nil
}

func (r *Registry) Get(identifier string) *Stream {
	return r.streams.Get(identifier)
}

// Remove deletes identifier from the registry. Intended to be passed as
// (part of) a Stream's on_finish callback.
func (r *Registry) Remove(requestID, identifier string) {
	r.streams.Remove(requestID, identifier)
}

func (r *Registry) Len() int {
	return r.streams.Len()
}

// All returns a snapshot of every live Stream, used by graceful
// shutdown to kill children before the process exits.
func (r *Registry) All() []*Stream {
	m := r.streams.UnittestIntrospection()
	out := make([]*Stream, 0, len(*m))
	for _, s := range *m {
		out = append(out, s)
	}
	return out
}
