// SPDX-License-Identifier: EPL-2.0

package sample

import (
	"os"
	"sync"

	"github.com/juju/loggo"
	"golang.org/x/sync/singleflight"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/arena"
	"github.com/ik5/jass/audio"
)

var logger = loggo.GetLogger("jass.sample")

// Loader opens sample files into arena cells. It is used from control
// goroutines only.
type Loader struct {
	arena    *arena.Arena
	registry *audio.Registry
	rate     int

	group singleflight.Group

	mu    sync.Mutex
	cache map[string]*arena.Cell[*Sample]
}

// NewLoader returns a loader that decodes with the decoders in reg. rate is
// the engine rate; samples at other rates load but are reported.
func NewLoader(a *arena.Arena, reg *audio.Registry, rate int) *Loader {
	return &Loader{
		arena:    a,
		registry: reg,
		rate:     rate,
		cache:    make(map[string]*arena.Cell[*Sample]),
	}
}

// Load returns a cell holding the sample at path. The caller owns one
// reference to the returned cell.
func (l *Loader) Load(path string) (*arena.Cell[*Sample], error) {
	if c := l.lookup(path); c != nil {
		return c, nil
	}

	v, err, shared := l.group.Do(path, func() (any, error) {
		return l.decodeFile(path)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Tracef("shared decode of %q", path)
	}
	return l.store(path, v.(*Sample)), nil
}

// Cached returns the number of paths with a live cell.
func (l *Loader) Cached() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.cache)
}

func (l *Loader) lookup(path string) *arena.Cell[*Sample] {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.cache[path]
	if ok && c.TryRetain() {
		return c
	}
	return nil
}

// store hands out a reference to the cached cell for path, creating the
// cell when there is none or the old one is waiting to be swept.
func (l *Loader) store(path string, s *Sample) *arena.Cell[*Sample] {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.cache[path]; ok && c.TryRetain() {
		return c
	}

	var c *arena.Cell[*Sample]
	c = arena.Acquire(l.arena, s, func(*Sample) {
		l.forget(path, c)
	})
	l.cache[path] = c
	return c
}

func (l *Loader) forget(path string, c *arena.Cell[*Sample]) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cache[path] == c {
		delete(l.cache, path)
		logger.Debugf("released sample %q", path)
	}
}

func (l *Loader) decodeFile(path string) (*Sample, error) {
	dec, err := l.registry.ForPath(path)
	if err != nil {
		return nil, errgo.NoteMask(err, path, errgo.Is(audio.ErrUnknownFormat))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errgo.NoteMask(err, "opening sample", errgo.Any)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, errgo.Notef(err, "decoding %q", path)
	}
	defer src.Close()

	s, err := Decode(src)
	if err != nil {
		return nil, errgo.NoteMask(err, path, errgo.Is(ErrEmpty), errgo.Is(ErrInvalidRate))
	}
	s.Path = path

	if s.Rate != l.rate {
		logger.Warningf("%q is %d Hz, engine runs at %d Hz: playing without rate conversion", path, s.Rate, l.rate)
	}
	logger.Infof("loaded %q: %d frames at %d Hz", path, s.Frames(), s.Rate)
	return s, nil
}
