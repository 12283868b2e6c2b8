// SPDX-License-Identifier: EPL-2.0

package control

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/arena"
	"github.com/ik5/jass/engine"
	"github.com/ik5/jass/setup"
)

// GeneratorInfo describes a published generator.
type GeneratorInfo struct {
	Name   string
	Path   string
	Frames int
	Rate   int
	Params engine.Params
}

// Generators returns a snapshot of the published generators, in order.
func (c *Controller) Generators() []GeneratorInfo {
	c.lock()
	defer c.unlock()

	infos := make([]GeneratorInfo, len(c.entries))
	for i := range c.entries {
		e := &c.entries[i]
		s := e.sample()
		infos[i] = GeneratorInfo{
			Name:   e.name,
			Path:   s.Path,
			Frames: s.Frames(),
			Rate:   s.Rate,
			Params: e.params,
		}
	}
	return infos
}

// Polyphony returns the number of voices each generator has.
func (c *Controller) Polyphony() int {
	c.lock()
	defer c.unlock()

	return c.polyphony
}

// Setup returns the records describing the published generators.
func (c *Controller) Setup() setup.Setup {
	c.lock()
	defer c.unlock()

	s := setup.Setup{
		Polyphony:  c.polyphony,
		Generators: make([]setup.Generator, len(c.entries)),
	}
	for i := range c.entries {
		e := &c.entries[i]
		s.Generators[i] = record(e.name, e.sample().Path, e.params)
	}
	return s
}

// checkEdit returns an error unless edits are accepted. It must be called
// with mu held.
func (c *Controller) checkEdit() error {
	if !c.enabled {
		return errgo.WithCausef(nil, ErrDisabled, "%d commands outstanding", c.outstanding)
	}
	return nil
}

func (c *Controller) entryAt(i int) (*entry, error) {
	if i < 0 || i >= len(c.entries) {
		return nil, errgo.WithCausef(nil, ErrNoGenerator, "generator %d of %d", i, len(c.entries))
	}
	return &c.entries[i], nil
}

// replaceEntries publishes a collection made of entries and makes it the
// mirror. The controller's references to the cells of dropped entries are
// released after the acknowledgement. It must be called with mu held.
func (c *Controller) replaceEntries(entries []entry, dropped ...*entry) error {
	gens := make(engine.Collection, len(entries))
	for i := range entries {
		gens[i] = entries[i].cell.Retain()
	}
	coll := engine.AcquireCollection(c.arena, gens)

	if err := c.publish(true, engine.ReplaceGenerators(coll)); err != nil {
		coll.Release()
		return err
	}

	old := make([]arena.Releaser, 0, len(dropped)+1)
	if c.collection != nil {
		old = append(old, c.collection)
	}
	for _, e := range dropped {
		old = append(old, e.cell)
	}
	c.collection = coll
	c.entries = entries
	c.supersede(old...)
	c.notifyChanged()
	return nil
}

func (c *Controller) notifyChanged() {
	if fn := c.cfg.OnGeneratorsChanged; fn != nil {
		c.deferLocked(fn)
	}
}

// newEntry builds an unpublished generator for the sample at path. The
// returned entry owns the only reference to its cell.
func (c *Controller) newEntry(name, path string, params func(frames int) (engine.Params, error), voices int) (entry, error) {
	s, err := c.loader.Load(path)
	if err != nil {
		return entry{}, errgo.Mask(err, errgo.Any)
	}
	p, err := params(s.Value().Frames())
	if err != nil {
		s.Release()
		return entry{}, errgo.Mask(err, errgo.Any)
	}

	bank := engine.AcquireVoices(c.arena, voices)
	return entry{
		name:   name,
		cell:   engine.AcquireGenerator(c.arena, s, p, bank),
		voices: bank,
		params: p,
	}, nil
}

func defaultParams(frames int) (engine.Params, error) {
	return engine.DefaultParams(frames), nil
}

func releaseEntries(entries []entry) {
	for _, e := range entries {
		e.cell.Release()
	}
}

// LoadSamples appends one generator per file. Files that cannot be loaded
// are skipped and reported in the returned error; the others are still
// added.
func (c *Controller) LoadSamples(paths ...string) error {
	c.lock()
	defer c.unlock()

	if err := c.checkEdit(); err != nil {
		return err
	}

	var (
		added []entry
		errs  []error
	)
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		e, err := c.newEntry(name, path, defaultParams, c.polyphony)
		if err != nil {
			logger.Errorf("cannot load %q: %v", path, err)
			errs = append(errs, err)
			continue
		}
		logger.Infof("loaded generator %q", name)
		added = append(added, e)
	}
	if len(added) == 0 {
		return errors.Join(errs...)
	}

	if err := c.replaceEntries(append(slices.Clone(c.entries), added...)); err != nil {
		releaseEntries(added)
		return err
	}
	return errors.Join(errs...)
}

// RemoveGenerator removes the i-th generator.
func (c *Controller) RemoveGenerator(i int) error {
	c.lock()
	defer c.unlock()

	if err := c.checkEdit(); err != nil {
		return err
	}
	e, err := c.entryAt(i)
	if err != nil {
		return err
	}

	removed := *e
	return c.replaceEntries(slices.Delete(slices.Clone(c.entries), i, i+1), &removed)
}

// DuplicateGenerator inserts a copy of the i-th generator after it. The
// copy shares the sample and starts with idle voices.
func (c *Controller) DuplicateGenerator(i int) error {
	c.lock()
	defer c.unlock()

	if err := c.checkEdit(); err != nil {
		return err
	}
	e, err := c.entryAt(i)
	if err != nil {
		return err
	}

	s := e.cell.Value().Sample().Retain()
	bank := engine.AcquireVoices(c.arena, c.polyphony)
	dup := entry{
		name:   e.name,
		cell:   engine.AcquireGenerator(c.arena, s, e.params, bank),
		voices: bank,
		params: e.params,
	}

	if err := c.replaceEntries(slices.Insert(slices.Clone(c.entries), i+1, dup)); err != nil {
		dup.cell.Release()
		return err
	}
	return nil
}

// Rename changes the name of the i-th generator. Names are not seen by the
// engine.
func (c *Controller) Rename(i int, name string) error {
	c.lock()
	defer c.unlock()

	e, err := c.entryAt(i)
	if err != nil {
		return err
	}
	e.name = name
	return nil
}

// SetParam changes one parameter of the i-th generator.
func (c *Controller) SetParam(i int, id engine.ParamID, v float64) error {
	c.lock()
	defer c.unlock()

	if err := c.checkEdit(); err != nil {
		return err
	}
	e, err := c.entryAt(i)
	if err != nil {
		return err
	}

	p := e.params
	p.Set(id, v)
	if err := p.Validate(e.sample().Frames()); err != nil {
		return errgo.NoteMask(err, id.String(), errgo.Any)
	}
	if err := c.publish(false, engine.SetParam(e.cell, id, v)); err != nil {
		return err
	}
	e.params = p
	return nil
}

// SetParams replaces every parameter of the i-th generator.
func (c *Controller) SetParams(i int, p engine.Params) error {
	c.lock()
	defer c.unlock()

	if err := c.checkEdit(); err != nil {
		return err
	}
	e, err := c.entryAt(i)
	if err != nil {
		return err
	}

	if err := p.Validate(e.sample().Frames()); err != nil {
		return errgo.Mask(err, errgo.Any)
	}
	if err := c.publish(false, engine.SetParams(e.cell, p)); err != nil {
		return err
	}
	e.params = p
	return nil
}

// SetContinuousNotes maps the selected generators onto consecutive notes.
// The first keeps its note; each following one plays the next note up.
// Every selected generator then responds to its own note only.
func (c *Controller) SetContinuousNotes(indices ...int) error {
	c.lock()
	defer c.unlock()

	if err := c.checkEdit(); err != nil {
		return err
	}
	if len(indices) == 0 {
		return nil
	}

	cmds := make([]engine.Command, 0, len(indices))
	params := make([]engine.Params, 0, len(indices))
	note := -1
	for _, i := range indices {
		e, err := c.entryAt(i)
		if err != nil {
			return err
		}

		p := e.params
		if note < 0 {
			note = p.Note
		} else {
			note++
		}
		p.Note, p.MinNote, p.MaxNote = note, note, note
		if err := p.Validate(e.sample().Frames()); err != nil {
			return errgo.NoteMask(err, e.name, errgo.Any)
		}
		cmds = append(cmds, engine.SetParams(e.cell, p))
		params = append(params, p)
	}

	if err := c.publish(false, cmds...); err != nil {
		return err
	}
	for k, i := range indices {
		c.entries[i].params = params[k]
	}
	return nil
}

// SetPolyphony gives every generator a new bank of n idle voices.
func (c *Controller) SetPolyphony(n int) error {
	c.lock()
	defer c.unlock()

	if err := c.checkEdit(); err != nil {
		return err
	}
	if n < 1 {
		return errgo.WithCausef(nil, ErrInvalidPolyphony, "polyphony %d must be at least 1", n)
	}
	if n == c.polyphony {
		return nil
	}
	if len(c.entries) == 0 {
		c.polyphony = n
		return nil
	}

	banks := make([]*arena.Cell[[]engine.Voice], len(c.entries))
	cmds := make([]engine.Command, len(c.entries))
	for i := range c.entries {
		banks[i] = engine.AcquireVoices(c.arena, n)
		cmds[i] = engine.ReplaceVoices(c.entries[i].cell, banks[i])
	}

	if err := c.publish(true, cmds...); err != nil {
		for _, b := range banks {
			b.Release()
		}
		return err
	}

	// The generators now own the new banks; give back their old ones.
	old := make([]arena.Releaser, len(c.entries))
	for i := range c.entries {
		old[i] = c.entries[i].voices
		c.entries[i].voices = banks[i]
	}
	c.polyphony = n
	c.supersede(old...)
	c.notifyChanged()
	return nil
}

// Audit replaces the auditor with a generator playing the file at path and
// starts it.
func (c *Controller) Audit(path string) error {
	c.lock()
	defer c.unlock()

	if err := c.checkEdit(); err != nil {
		return err
	}

	e, err := c.newEntry(filepath.Base(path), path, func(frames int) (engine.Params, error) {
		p := engine.DefaultParams(frames)
		p.Channel = engine.AuditChannel
		return p, nil
	}, 1)
	if err != nil {
		return err
	}

	if err := c.publish(true, engine.ReplaceAuditor(e.cell), engine.PlayAuditor()); err != nil {
		e.cell.Release()
		return err
	}

	old := c.auditor
	c.auditor = e.cell
	if old != nil {
		c.supersede(old)
	}
	logger.Debugf("auditing %q", path)
	return nil
}

// AllNotesOff releases every sounding voice. It is accepted while edits
// are disabled.
func (c *Controller) AllNotesOff() error {
	c.lock()
	defer c.unlock()

	return c.publish(false, engine.AllNotesOff())
}

// LoadSetup replaces every generator with those described by s. Nothing
// changes unless every generator could be built.
func (c *Controller) LoadSetup(s setup.Setup) error {
	c.lock()
	defer c.unlock()

	if err := c.checkEdit(); err != nil {
		return err
	}

	polyphony := s.Polyphony
	if polyphony == 0 {
		polyphony = setup.DefaultPolyphony
	}
	if polyphony < 1 {
		return errgo.WithCausef(nil, ErrInvalidPolyphony, "polyphony %d must be at least 1", polyphony)
	}

	entries := make([]entry, 0, len(s.Generators))
	for i, g := range s.Generators {
		e, err := c.newEntry(g.Name, g.Sample, func(frames int) (engine.Params, error) {
			p := params(g)
			return p, p.Validate(frames)
		}, polyphony)
		if err != nil {
			releaseEntries(entries)
			return errgo.NoteMask(err, fmt.Sprintf("generator %d (%s)", i, g.Name), errgo.Any)
		}
		entries = append(entries, e)
	}

	dropped := make([]*entry, len(c.entries))
	for i := range c.entries {
		dropped[i] = &c.entries[i]
	}
	if err := c.replaceEntries(entries, dropped...); err != nil {
		releaseEntries(entries)
		return err
	}
	c.polyphony = polyphony
	logger.Infof("loaded setup with %d generators", len(entries))
	return nil
}
