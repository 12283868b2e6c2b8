// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF WAVE files through
// github.com/go-audio/wav.
//
// Integer PCM at 8, 16, 24 and 32 bits is decoded to float32 samples in
// [-1, 1]. WriteWAV16 produces 16-bit PCM files of any channel count and is
// used by the offline renderer.
package wav
