// Package exec runs a built tree.Node forest to completion, giving every
// distinct task exactly one execution no matter how many parents share
// it.
package exec

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/yarlson/rusk/internal/executable"
	"github.com/yarlson/rusk/internal/ruskerr"
	"github.com/yarlson/rusk/internal/shellrun"
	"github.com/yarlson/rusk/internal/tree"
)

type cellState int

const (
	statePending cellState = iota
	stateRunning
	stateDone
)

// cell is the three-state box attached to every distinct node of the
// forest: pending until some goroutine claims it, running
// while that goroutine's shell body is in flight, done once its result
// is fixed forever.
type cell struct {
	mu     sync.Mutex
	state  cellState
	result error
	latch  *latch
}

// Executor runs one forest to completion. A fresh Executor must be
// created per invocation: its cell table is what guarantees at-most-once
// execution, and reusing it across unrelated forests would let a node
// built from a stale run answer for a node that was never actually run
// in this one.
type Executor struct {
	cells  sync.Map // map[*tree.Node[executable.Executable]]*cell
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	runID  string
	sem    chan struct{}
}

// New creates an Executor that streams every task's shell body through
// the given stdin/stdout/stderr, running at most maxParallel shell
// bodies at once — the RUSK_MAX_PARALLEL ceiling from internal/settings.
// maxParallel <= 0 means unbounded.
func New(stdin io.Reader, stdout, stderr io.Writer, maxParallel int) *Executor {
	var sem chan struct{}
	if maxParallel > 0 {
		sem = make(chan struct{}, maxParallel)
	}
	return &Executor{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		runID:  uuid.NewString(),
		sem:    sem,
	}
}

// Run executes every root and everything it transitively depends on,
// fanning out siblings concurrently and aborting the remaining siblings
// as soon as any one of them fails. The first error observed (by
// whichever goroutine observes it first; which root "wins" under
// concurrent failure is unspecified) is returned; nil means every task
// in the forest succeeded.
func (x *Executor) Run(ctx context.Context, roots []*tree.Node[executable.Executable]) error {
	return x.runSet(ctx, roots)
}

// visit runs a node's children before the node itself, then invokes
// runOnce so that a node reached through more than one parent is only
// ever actually executed once.
func (x *Executor) visit(ctx context.Context, node *tree.Node[executable.Executable]) error {
	if err := x.runSet(ctx, node.Children); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return x.runOnce(ctx, node)
}

// runSet runs every node in a sibling set concurrently, cancelling a
// scoped child context as soon as one of them fails so the remaining
// siblings' in-flight shell bodies are asked to stop promptly.
func (x *Executor) runSet(ctx context.Context, nodes []*tree.Node[executable.Executable]) error {
	if len(nodes) == 0 {
		return nil
	}

	childCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(nodes))
	var wg sync.WaitGroup
	for _, node := range nodes {
		wg.Add(1)
		go func(node *tree.Node[executable.Executable]) {
			defer wg.Done()
			err := x.visit(childCtx, node)
			if err != nil {
				cancel()
			}
			errCh <- err
		}(node)
	}
	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// cellFor returns the single cell shared by every goroutine that
// reaches node, creating it on first access. sync.Map.LoadOrStore makes
// the creation itself race-safe even though two goroutines may reach
// the same shared node for the first time at nearly the same instant.
func (x *Executor) cellFor(node *tree.Node[executable.Executable]) *cell {
	actual, _ := x.cells.LoadOrStore(node, &cell{})
	return actual.(*cell)
}

// runOnce implements the pending/running/done state machine: the first
// goroutine to observe a node as pending claims it and runs its shell
// body. A goroutine arriving while that run is still in flight waits on
// its latch; one arriving after it has finished reads the stored result.
// Either way it receives the same result and never runs the body itself.
func (x *Executor) runOnce(ctx context.Context, node *tree.Node[executable.Executable]) error {
	c := x.cellFor(node)

	c.mu.Lock()
	switch c.state {
	case stateDone:
		result := c.result
		c.mu.Unlock()
		return result
	case stateRunning:
		l := c.latch
		c.mu.Unlock()
		return l.wait(ctx)
	default:
		l := newLatch()
		c.state = stateRunning
		c.latch = l
		c.mu.Unlock()

		result := x.runTask(ctx, node)

		c.mu.Lock()
		c.state = stateDone
		c.result = result
		c.mu.Unlock()

		l.publish(result)
		return result
	}
}

// runTask invokes the shell executor contract (internal/shellrun) for
// one task's body, translating a non-zero exit code into a
// ruskerr.TaskFailedError so the CLI can surface the task's own exit
// code.
func (x *Executor) runTask(ctx context.Context, node *tree.Node[executable.Executable]) error {
	if x.sem != nil {
		select {
		case x.sem <- struct{}{}:
			defer func() { <-x.sem }()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ex := node.Item

	fmt.Fprintf(x.stderr, ":: %s [%s]\n", ex.Key.Display(), x.runID)

	state := shellrun.State{Envs: ex.Envs, Cwd: ex.Cwd.Abs()}
	exitCode, err := shellrun.Execute(ctx, ex.Program, state, x.stdin, x.stdout, x.stderr)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return &ruskerr.TaskFailedError{Key: ex.Key.String(), ExitCode: exitCode}
	}
	return nil
}
