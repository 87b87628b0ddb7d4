package compute

import (
	"runtime"
	"sync"
)

// MinParallel is the smallest range worth splitting across workers.
const MinParallel = 16

type Scheduler interface {
	Name() string
	Workers() int
	For(n int, fn func(start, end int))
	Close()
}

type task struct {
	fn         func(start, end int)
	start, end int
	done       *sync.WaitGroup
}

// Pool runs ranges on a fixed set of worker goroutines started by NewPool.
type Pool struct {
	workers int
	tasks   chan task

	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines. workers <= 0 means runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		workers: workers,
		tasks:   make(chan task, workers),
	}
	for w := 0; w < workers; w++ {
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	for t := range p.tasks {
		t.fn(t.start, t.end)
		t.done.Done()
	}
}

func (p *Pool) Name() string { return "pool" }
func (p *Pool) Workers() int { return p.workers }

// For splits [0, n) into at most Workers() contiguous ranges of equal size
// and blocks until fn has returned for all of them. Small inputs, single
// worker pools and closed pools run fn inline.
func (p *Pool) For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || p.workers == 1 || n < MinParallel {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	for _, r := range Split(n, p.workers) {
		wg.Add(1)
		p.tasks <- task{fn: fn, start: r[0], end: r[1], done: &wg}
	}
	wg.Wait()
}

// Close stops the workers. It is safe to call more than once; For keeps
// working afterwards on the caller's goroutine.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tasks)
}

// Serial is a Scheduler without goroutines.
type Serial struct{}

func (Serial) Name() string { return "serial" }
func (Serial) Workers() int { return 1 }
func (Serial) Close() {}

func (Serial) For(n int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}

// Split partitions [0, n) into at most parts contiguous [start, end) ranges
// of size ceil(n/parts), the last one possibly shorter.
func Split(n, parts int) [][2]int {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	chunk := (n + parts - 1) / parts
	out := make([][2]int, 0, parts)
	for start := 0; start < n; start += chunk {
		out = append(out, [2]int{start, min(start+chunk, n)})
	}
	return out
}
