// SPDX-License-Identifier: EPL-2.0

package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juju/loggo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/arena"
	"github.com/ik5/jass/engine"
	"github.com/ik5/jass/sample"
	"github.com/ik5/jass/setup"
)

var logger = loggo.GetLogger("jass.control")

// Config holds the controller settings.
type Config struct {
	// Polyphony is the number of voices given to each new generator.
	Polyphony int

	// AckInterval is how often Run polls for acknowledgements.
	AckInterval time.Duration

	// CleanupInterval is how often Run sweeps the arena.
	CleanupInterval time.Duration

	// OnEnabled, when set, is called whenever edits become disabled or
	// enabled again.
	OnEnabled func(enabled bool)

	// OnGeneratorsChanged, when set, is called once a structural edit has
	// been acknowledged.
	OnGeneratorsChanged func()
}

// DefaultConfig returns the settings used for zero fields of a Config.
func DefaultConfig() Config {
	return Config{
		Polyphony:       setup.DefaultPolyphony,
		AckInterval:     100 * time.Millisecond,
		CleanupInterval: time.Second,
	}
}

// entry is the control side's view of one published generator. The
// controller owns one reference to cell. voices is the bank the generator
// currently owns; the controller holds no reference to it.
type entry struct {
	name   string
	cell   *arena.Cell[*engine.Generator]
	voices *arena.Cell[[]engine.Voice]
	params engine.Params
}

func (e *entry) sample() *sample.Sample {
	return e.cell.Value().Sample().Value()
}

// Controller publishes commands to an engine and tracks their
// acknowledgements. Its methods may be called from any goroutine except the
// one running Engine.Process.
type Controller struct {
	engine *engine.Engine
	arena  *arena.Arena
	loader *sample.Loader
	cfg    Config

	mu          sync.Mutex
	entries     []entry
	collection  *arena.Cell[engine.Collection]
	auditor     *arena.Cell[*engine.Generator]
	polyphony   int
	outstanding int
	enabled     bool
	superseded  []arena.Releaser
	deferred    []func()

	// after is run by unlock once mu has been released.
	after []func()

	ackOverflows uint64
	midiDropped  uint64
}

// New returns a controller for e. Replaced values are released to a, and
// samples are opened with l.
func New(e *engine.Engine, a *arena.Arena, l *sample.Loader, cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.Polyphony <= 0 {
		cfg.Polyphony = def.Polyphony
	}
	if cfg.AckInterval <= 0 {
		cfg.AckInterval = def.AckInterval
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	return &Controller{
		engine:    e,
		arena:     a,
		loader:    l,
		cfg:       cfg,
		polyphony: cfg.Polyphony,
		enabled:   true,
	}
}

func (c *Controller) lock() {
	c.mu.Lock()
}

// unlock releases mu and then runs the queued callbacks, so that they are
// free to call back into the controller.
func (c *Controller) unlock() {
	after := c.after
	c.after = nil
	c.mu.Unlock()

	for _, fn := range after {
		fn()
	}
}

// Send writes a command that does not disable edits.
func (c *Controller) Send(cmd engine.Command) error {
	c.lock()
	defer c.unlock()

	return c.publish(false, cmd)
}

// SendBlocking writes a command and disables edits until every outstanding
// command has been acknowledged.
func (c *Controller) SendBlocking(cmd engine.Command) error {
	c.lock()
	defer c.unlock()

	return c.publish(true, cmd)
}

// publish writes all of cmds or none of them. It must be called with mu
// held.
func (c *Controller) publish(blocking bool, cmds ...engine.Command) error {
	q := c.engine.Commands()
	if q.Cap()-q.Len() < len(cmds) {
		logger.Warningf("command channel full, dropping %v", cmds)
		return errgo.WithCausef(nil, ErrChannelFull, "cannot send %d commands", len(cmds))
	}

	for _, cmd := range cmds {
		if !q.Write(cmd) {
			// Only this goroutine writes, and the reader only makes room.
			panic("control: command channel lost free space")
		}
		c.outstanding++
		logger.Tracef("sent %v", cmd)
	}

	if blocking && c.enabled {
		c.setEnabled(false)
	}
	return nil
}

func (c *Controller) setEnabled(enabled bool) {
	c.enabled = enabled
	if fn := c.cfg.OnEnabled; fn != nil {
		c.after = append(c.after, func() { fn(enabled) })
	}
}

// supersede hands refs to the arena once everything sent so far has been
// acknowledged. It must be called with mu held, after the replacing
// commands have been published.
func (c *Controller) supersede(refs ...arena.Releaser) {
	for _, r := range refs {
		if r != nil {
			c.superseded = append(c.superseded, r)
		}
	}
	if c.outstanding == 0 {
		c.settle()
	}
}

// CheckAcknowledgements reads every available acknowledgement and returns
// how many there were. When none remain outstanding it releases replaced
// values, runs deferred actions and enables edits.
func (c *Controller) CheckAcknowledgements() int {
	c.lock()
	defer c.unlock()

	acks := c.engine.Acknowledgements()
	n := 0
	for {
		if _, ok := acks.Read(); !ok {
			break
		}
		n++
	}

	c.outstanding -= n
	if c.outstanding < 0 {
		panic(fmt.Sprintf("control: %d more acknowledgements than commands", -c.outstanding))
	}
	c.logStats()

	if c.outstanding == 0 {
		c.settle()
	}
	return n
}

// settle runs the work that waits for all acknowledgements.
func (c *Controller) settle() {
	for _, r := range c.superseded {
		c.arena.MarkForCleanup(r)
	}
	clear(c.superseded)
	c.superseded = c.superseded[:0]

	c.after = append(c.after, c.deferred...)
	c.deferred = nil

	if !c.enabled {
		c.setEnabled(true)
	}
}

func (c *Controller) logStats() {
	s := c.engine.Stats()
	if s.AckOverflows > c.ackOverflows {
		logger.Errorf("%d acknowledgements lost; edits stay disabled", s.AckOverflows-c.ackOverflows)
		c.ackOverflows = s.AckOverflows
	}
	if s.MIDIDropped > c.midiDropped {
		logger.Warningf("%d MIDI events dropped", s.MIDIDropped-c.midiDropped)
		c.midiDropped = s.MIDIDropped
	}
}

// Defer queues fn to run once every command sent so far has been
// acknowledged. With nothing outstanding fn runs before Defer returns.
func (c *Controller) Defer(fn func()) {
	c.lock()
	defer c.unlock()

	c.deferLocked(fn)
}

func (c *Controller) deferLocked(fn func()) {
	if c.outstanding == 0 {
		c.after = append(c.after, fn)
		return
	}
	c.deferred = append(c.deferred, fn)
}

// Enabled reports whether edits are accepted.
func (c *Controller) Enabled() bool {
	c.lock()
	defer c.unlock()

	return c.enabled
}

// Outstanding returns the number of commands not yet acknowledged.
func (c *Controller) Outstanding() int {
	c.lock()
	defer c.unlock()

	return c.outstanding
}

// Run polls for acknowledgements and sweeps the arena until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(c.cfg.AckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				c.CheckAcknowledgements()
			}
		}
	})
	g.Go(func() error {
		return c.arena.Run(ctx, c.cfg.CleanupInterval)
	})

	return g.Wait()
}
