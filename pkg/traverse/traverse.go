// Package traverse computes node-value sums by parallel graph traversal
package traverse

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/kashari/golog"

	"github.com/jzx17/graphsum/pkg/graph"
	"github.com/jzx17/graphsum/pkg/pool"
)

// debugLogging gates all golog output from this package. golog panics on any
// call before the process-level golog.Init, so the traversal stays silent
// unless the process initialized the logger and opted in.
var debugLogging int32

// SetDebugLogging toggles traversal debug output. golog.Init must have been
// called before enabling it.
func SetDebugLogging(enabled bool) {
	var v int32
	if enabled {
		v = 1
	}
	atomic.StoreInt32(&debugLogging, v)
}

func debugf(format string, args ...interface{}) {
	if atomic.LoadInt32(&debugLogging) == 1 {
		golog.Debug(format, args...)
	}
}

func errorf(format string, args ...interface{}) {
	if atomic.LoadInt32(&debugLogging) == 1 {
		golog.Error(format, args...)
	}
}

// Summer accumulates the values of all nodes reachable from a start node,
// visiting each node exactly once. Visiting a node submits one task per
// out-neighbour, so the traversal fans out across the pool's workers.
//
// The visited set and the running sum are guarded by their own mutex,
// deliberately separate from the pool's internal lock: actions run without the
// queue lock held, and serializing them on it would defeat the pool.
type Summer struct {
	graph *graph.Graph
	pool  *pool.Pool

	mu      sync.Mutex
	visited []bool
	sum     int64
}

// New creates a Summer over a graph using the given pool
func New(g *graph.Graph, p *pool.Pool) *Summer {
	return &Summer{
		graph:   g,
		pool:    p,
		visited: make([]bool, g.Len()),
	}
}

// visit is the task action: mark the node visited and accumulate its value
// under the domain lock, then fan out to its neighbours outside of it.
func (s *Summer) visit(arg interface{}) {
	idx := arg.(int)
	node := s.graph.Nodes[idx]

	s.mu.Lock()
	if s.visited[idx] {
		s.mu.Unlock()
		return
	}
	s.visited[idx] = true
	s.sum += node.Value
	s.mu.Unlock()

	for _, nb := range node.Neighbours {
		s.submit(nb)
	}
}

// submit enqueues a visit of the given node
func (s *Summer) submit(idx int) {
	if err := s.pool.Submit(pool.NewTask(s.visit, idx, nil)); err != nil {
		// Cannot happen while a visit is in flight: the pool only shuts
		// down once every worker is idle.
		errorf("submit node {}: {}", idx, err)
	}
}

// Sum returns the accumulated value
func (s *Summer) Sum() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sum
}

// Seed submits the traversal's first task
func (s *Summer) Seed(start int) error {
	if start < 0 || start >= s.graph.Len() {
		return fmt.Errorf("start node %d out of range [0, %d)", start, s.graph.Len())
	}
	s.submit(start)
	return nil
}

// SumFrom traverses the graph from the start node on a fresh pool of the
// given size and returns the sum of all reachable node values.
func SumFrom(g *graph.Graph, start, workers int) (int64, error) {
	p, err := pool.New(&pool.Config{Workers: workers})
	if err != nil {
		return 0, err
	}
	if err := p.Start(); err != nil {
		return 0, err
	}

	runID := uuid.New()
	debugf("traversal {} starting at node {} with {} workers", runID, start, workers)

	s := New(g, p)
	if err := s.Seed(start); err != nil {
		p.Close()
		return 0, err
	}
	if err := p.Close(); err != nil {
		return 0, err
	}

	stats := p.Stats()
	debugf("traversal {} done: {} tasks executed, sum {}", runID, stats.Executed, s.Sum())
	return s.Sum(), nil
}
