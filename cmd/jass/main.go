// SPDX-License-Identifier: EPL-2.0

// The jass command plays a setup of samples from MIDI input, or renders it
// to a WAV file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/juju/gnuflag"
	"github.com/juju/loggo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass"
	"github.com/ik5/jass/config"
	"github.com/ik5/jass/driver"
)

var logger = loggo.GetLogger("jass.cmd")

var (
	configFile  = flag.String("config", "", "read settings from this TOML file")
	createSetup = flag.String("create-setup", "", "save the setup to this file when asked to")
	midiPort    = flag.String("midi", "", "listen to the MIDI input whose name contains this")
	renderFile  = flag.String("render", "", "render to this WAV file instead of playing live")
	seconds     = flag.Float64("seconds", 4, "length of a render")
	notes       = flag.String("notes", "", "notes to play in a render, e.g. 36,38:90,42")
	auditFile   = flag.String("audit", "", "play this sample file once")
	logSpec     = flag.String("log", "", "logging specification, e.g. <root>=DEBUG")
	printConfig = flag.Bool("print-config", false, "print the effective configuration and exit")
	listMIDI    = flag.Bool("list-midi", false, "list MIDI input ports and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `
Usage: jass [flags] [setup-file]

Jass plays the generators of a setup file from MIDI input. With -render
it plays the notes given by -notes offline instead and writes the result
to a WAV file.

When running live, SIGUSR1 saves the setup to the -create-setup file, or
back to the setup file it was loaded from.

`[1:])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse(true)

	if err := main0(); err != nil {
		fmt.Fprintf(os.Stderr, "jass: %v\n", err)
		os.Exit(1)
	}
}

func main0() error {
	if flag.NArg() > 1 {
		flag.Usage()
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return errgo.Mask(err)
		}
	}
	if *logSpec != "" {
		cfg.Log = *logSpec
	}
	if *midiPort != "" {
		cfg.MIDIPort = *midiPort
	}
	if err := loggo.ConfigureLoggers(cfg.Log); err != nil {
		return errgo.Notef(err, "bad -log value")
	}

	switch {
	case *printConfig:
		return config.Write(os.Stdout, cfg)
	case *listMIDI:
		ports, err := driver.MIDIPorts()
		if err != nil {
			return errgo.Mask(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	sys, err := jass.New(cfg, jass.Hooks{
		OnEnabled: func(enabled bool) {
			logger.Debugf("edits enabled: %v", enabled)
		},
	})
	if err != nil {
		return errgo.Mask(err)
	}

	setupFile := *createSetup
	if path := flag.Arg(0); path != "" {
		if err := sys.LoadSetupFile(path); err != nil {
			return errgo.Mask(err)
		}
		if setupFile == "" {
			setupFile = path
		}
	}
	if path := *auditFile; path != "" {
		// Edits wait for the setup to be installed.
		sys.Controller.Defer(func() {
			if err := sys.Controller.Audit(path); err != nil {
				logger.Errorf("cannot audit %q: %v", path, err)
			}
		})
	}

	if *renderFile != "" {
		return render(sys, *renderFile)
	}
	return live(sys, setupFile)
}

func render(sys *jass.System, path string) error {
	rate := sys.Engine.SampleRate()
	frames := int(*seconds * float64(rate))
	msgs, err := parseNotes(*notes, frames)
	if err != nil {
		return errgo.Mask(err)
	}

	left, right := sys.Offline().Render(frames, msgs)

	f, err := os.Create(path)
	if err != nil {
		return errgo.Mask(err)
	}
	if err := driver.WriteWAV(f, rate, left, right); err != nil {
		f.Close()
		return errgo.Mask(err)
	}
	if err := f.Close(); err != nil {
		return errgo.Mask(err)
	}
	logger.Infof("rendered %d frames to %q", frames, path)
	return nil
}

func live(sys *jass.System, setupFile string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := sys.MIDIInput()
	if sys.Config.MIDIPort != "" {
		closeMIDI, err := driver.OpenMIDI(sys.Config.MIDIPort, in)
		if err != nil {
			return errgo.Mask(err)
		}
		defer closeMIDI()
	}

	out, err := sys.Output(in)
	if err != nil {
		return errgo.Mask(err)
	}
	defer out.Close()
	out.Start()

	save := make(chan os.Signal, 1)
	if len(saveSignals) > 0 {
		signal.Notify(save, saveSignals...)
		defer signal.Stop(save)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sys.Run(ctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-save:
				if setupFile == "" {
					logger.Warningf("no setup file to save to; use -create-setup")
					continue
				}
				if err := sys.SaveSetupFile(setupFile); err != nil {
					logger.Errorf("cannot save setup: %v", err)
				}
			}
		}
	})
	logger.Infof("running; interrupt to stop")

	err = g.Wait()
	sys.Controller.AllNotesOff()
	return err
}
