package boundary

import (
	"sync"

	"github.com/Workiva/go-datastructures/queue"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/panjf2000/ants/v2"
)

// RebuildKind identifies one class of background geometry rebuild. At most
// one rebuild per kind runs at a time.
type RebuildKind string

const (
	// RebuildFloorMesh regenerates the triangulated floor fill.
	RebuildFloorMesh RebuildKind = "floor-mesh"
	// RebuildBoundaryLines regenerates the boundary outline mesh.
	RebuildBoundaryLines RebuildKind = "boundary-lines"
)

// RebuildResult is one completed rebuild, handed back to the per-frame
// tick through Drain.
type RebuildResult struct {
	Kind    RebuildKind
	Seq     uint64
	Payload interface{}
	Err     error
}

// Rebuilder offloads geometry rebuilds to a worker pool with drop-if-busy
// semantics: a request for a kind already in flight is dropped, not queued.
// Completed results carry a per-kind sequence stamp; Drain discards results
// that were superseded before they were applied, so a slow rebuild can
// never clobber a newer one.
type Rebuilder struct {
	pool     *ants.Pool
	inflight cmap.ConcurrentMap[string, struct{}]
	results  *queue.Queue

	mu        sync.Mutex
	nextSeq   map[RebuildKind]uint64
	appliedAt map[RebuildKind]uint64
}

// NewRebuilder starts a rebuilder with the given pool size.
func NewRebuilder(workers int) (*Rebuilder, error) {
	if workers <= 0 {
		workers = 2
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Rebuilder{
		pool:      pool,
		inflight:  cmap.New[struct{}](),
		results:   queue.New(8),
		nextSeq:   make(map[RebuildKind]uint64),
		appliedAt: make(map[RebuildKind]uint64),
	}, nil
}

// Request submits a rebuild unless one of the same kind is already in
// flight, in which case it reports false and the request is dropped. The
// build function runs on the pool; there is no cancellation, an accepted
// build always runs to completion.
func (r *Rebuilder) Request(kind RebuildKind, build func() (interface{}, error)) bool {
	if !r.inflight.SetIfAbsent(string(kind), struct{}{}) {
		return false
	}
	r.mu.Lock()
	r.nextSeq[kind]++
	seq := r.nextSeq[kind]
	r.mu.Unlock()

	err := r.pool.Submit(func() {
		payload, err := build()
		r.inflight.Remove(string(kind))
		// Put only fails once the queue is disposed during shutdown.
		_ = r.results.Put(RebuildResult{Kind: kind, Seq: seq, Payload: payload, Err: err})
	})
	if err != nil {
		r.inflight.Remove(string(kind))
		return false
	}
	return true
}

// Drain hands every pending, non-stale result to apply. Called once per
// tick by the owning loop; apply runs on the caller's goroutine.
func (r *Rebuilder) Drain(apply func(RebuildResult)) int {
	n := r.results.Len()
	if n == 0 {
		return 0
	}
	items, err := r.results.Get(n)
	if err != nil {
		return 0
	}
	applied := 0
	for _, it := range items {
		res, ok := it.(RebuildResult)
		if !ok {
			continue
		}
		r.mu.Lock()
		stale := res.Seq <= r.appliedAt[res.Kind]
		if !stale {
			r.appliedAt[res.Kind] = res.Seq
		}
		r.mu.Unlock()
		if stale {
			continue
		}
		apply(res)
		applied++
	}
	return applied
}

// Close releases the pool and disposes the result queue. Outstanding
// builds finish but their results are discarded.
func (r *Rebuilder) Close() {
	r.pool.Release()
	r.results.Dispose()
}
