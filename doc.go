// SPDX-License-Identifier: EPL-2.0

// Package jass is a polyphonic sample player driven by MIDI.
//
// A System ties together the pieces found in the subpackages:
//
//   - engine renders generators on the audio goroutine and never blocks,
//     allocates or frees;
//   - control is the only writer of the engine's command channel and
//     decides when replaced values may be reclaimed;
//   - arena holds every value shared between the two until nothing on
//     either side refers to it;
//   - sample and formats decode WAV, AIFF, MP3 and Ogg Vorbis files into
//     mono samples;
//   - driver plays the engine live through oto, reads MIDI devices, or
//     renders offline to a WAV file.
//
// A minimal live session:
//
//	sys, err := jass.New(config.Default(), jass.Hooks{})
//	if err != nil {
//		return err
//	}
//	if err := sys.LoadSetupFile("drums.yaml"); err != nil {
//		return err
//	}
//	out, err := sys.Output(nil)
//	if err != nil {
//		return err
//	}
//	defer out.Close()
//	out.Start()
//	return sys.Run(ctx)
package jass
