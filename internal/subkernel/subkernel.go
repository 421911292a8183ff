// Package subkernel implements a pool of child VMs
// sharing one parent's program and global-variable slots but each owning
// its own stack, heap, and error-handler state, so independent scripted
// tasks can run concurrently without corrupting each other's registers.
package subkernel

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"morpho/internal/interp"
	"morpho/internal/value"
)

// Kernel is one subkernel: an id plus the VM it owns.
type Kernel struct {
	ID uuid.UUID
	VM *interp.VM
}

// Pool manages a set of subkernels spawned from a common parent VM.
type Pool struct {
	parent *interp.VM
}

// NewPool returns a pool that spawns subkernels from parent.
func NewPool(parent *interp.VM) *Pool {
	return &Pool{parent: parent}
}

// Spawn creates a fresh subkernel sharing the pool's parent program and
// globals.
func (p *Pool) Spawn() *Kernel {
	return &Kernel{ID: uuid.New(), VM: interp.NewSubkernel(p.parent)}
}

// Task is one unit of concurrent work: call fn on a freshly spawned
// subkernel's VM.
type Task func(vm *interp.VM) (value.Value, error)

// RunAll spawns one subkernel per task and runs them concurrently,
// collecting every result in task order. A failing task does not cancel
// the others: RunAll waits for every task to finish and then returns the
// first error, wrapped, and no results.
func (p *Pool) RunAll(ctx context.Context, tasks []Task) ([]value.Value, error) {
	g, _ := errgroup.WithContext(ctx)
	results := make([]value.Value, len(tasks))
	for i, task := range tasks {
		i, task := i, task
		k := p.Spawn()
		g.Go(func() error {
			v, err := task(k.VM)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "subkernel task failed")
	}
	return results, nil
}
