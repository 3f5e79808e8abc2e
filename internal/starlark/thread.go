package starlark

import (
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"golang.org/x/sync/errgroup"
)

// defaultPoolSize bounds pools created with a non-positive size.
const defaultPoolSize = 10

// ThreadPool recycles Starlark threads between reference lookups.
type ThreadPool struct {
	mu      sync.Mutex
	threads []*starlark.Thread
	maxSize int
}

// NewThreadPool returns a pool retaining at most maxSize idle threads.
func NewThreadPool(maxSize int) *ThreadPool {
	if maxSize <= 0 {
		maxSize = defaultPoolSize
	}
	return &ThreadPool{
		threads: make([]*starlark.Thread, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get hands out an idle thread, or a new one, named after the reference
// it will evaluate so that backtraces point at it.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.threads); n > 0 {
		thread := p.threads[n-1]
		p.threads = p.threads[:n-1]
		thread.Name = name
		return thread
	}

	return &starlark.Thread{
		Name:  name,
		Print: func(*starlark.Thread, string) {},
	}
}

// Put returns thread to the pool. Threads beyond maxSize are dropped.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) >= p.maxSize {
		return
	}
	thread.Name = ""
	p.threads = append(p.threads, thread)
}

// Size returns the number of idle threads.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}

// EvalTask is a single reference to evaluate.
type EvalTask struct {
	Name string // reported in errors
	Expr string
}

// EvalResult is the outcome of an EvalTask.
type EvalResult struct {
	Name  string
	Value starlark.Value
	Error error
}

// ParallelExecutor evaluates expressions against frozen globals with at
// most limit evaluations in flight.
type ParallelExecutor struct {
	pool    *ThreadPool
	globals starlark.StringDict
	limit   int
}

// NewParallelExecutor returns an executor over globals. A non-positive
// maxConcurrency uses the default pool size.
func NewParallelExecutor(maxConcurrency int, globals starlark.StringDict) *ParallelExecutor {
	pool := NewThreadPool(maxConcurrency)
	return &ParallelExecutor{
		pool:    pool,
		globals: globals,
		limit:   pool.maxSize,
	}
}

// Execute evaluates every task. Results keep the task order; a failing
// task does not stop the others.
func (e *ParallelExecutor) Execute(tasks []EvalTask) []EvalResult {
	results := make([]EvalResult, len(tasks))

	var g errgroup.Group
	g.SetLimit(e.limit)
	for i, task := range tasks {
		g.Go(func() error {
			thread := e.pool.Get(task.Name)
			defer e.pool.Put(thread)

			v, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, task.Name, task.Expr, e.globals)
			results[i] = EvalResult{Name: task.Name, Value: v, Error: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
