// SPDX-License-Identifier: EPL-2.0

package arena

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("jass.arena")

// disposable is the type-erased view the arena keeps of every cell.
type disposable interface {
	Refs() int32
	dispose()
}

// Arena is a registry of cells awaiting eventual disposal.
// Acquire, MarkForCleanup and Sweep may be called from any goroutine
// except the audio callback.
type Arena struct {
	mu       sync.Mutex
	cells    []disposable
	disposed atomic.Uint64
}

// New returns an empty arena.
func New() *Arena {
	return &Arena{}
}

func (a *Arena) register(d disposable) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cells = append(a.cells, d)
}

// MarkForCleanup gives back the caller's reference to c. The value is not
// disposed until a Sweep finds no remaining references.
func (a *Arena) MarkForCleanup(c Releaser) {
	if c == nil {
		return
	}
	c.Release()
}

// Sweep disposes every cell with no references left and returns how many
// were disposed. Disposing a cell may release others, so Sweep repeats until
// a pass finds nothing to do.
func (a *Arena) Sweep() int {
	total := 0
	for {
		dead := a.collect()
		if len(dead) == 0 {
			break
		}
		for _, d := range dead {
			d.dispose()
		}
		total += len(dead)
	}

	if total > 0 {
		a.disposed.Add(uint64(total))
		logger.Debugf("swept %d cells, %d live", total, a.Live())
	}
	return total
}

// collect removes zero-count cells from the registry and returns them.
func (a *Arena) collect() []disposable {
	a.mu.Lock()
	defer a.mu.Unlock()

	var dead []disposable
	live := a.cells[:0]
	for _, d := range a.cells {
		if d.Refs() == 0 {
			dead = append(dead, d)
			continue
		}
		live = append(live, d)
	}
	clear(a.cells[len(live):])
	a.cells = live
	return dead
}

// Live returns the number of registered cells not yet disposed.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.cells)
}

// Disposed returns the total number of cells disposed so far.
func (a *Arena) Disposed() uint64 {
	return a.disposed.Load()
}

// Run sweeps every interval until ctx is done. The final sweep on exit
// disposes whatever was released meanwhile.
func (a *Arena) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Sweep()
			return nil
		case <-ticker.C:
			a.Sweep()
		}
	}
}
