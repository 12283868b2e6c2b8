// SPDX-License-Identifier: EPL-2.0

// Package sample holds decoded, immutable sample data and the loader that
// turns files into shared arena cells.
//
// A Sample is decoded once and shared by every generator that plays it.
// The Loader keeps a weak cache keyed by path: a second load of the same
// file while the first cell is still alive returns another reference to the
// same cell, and concurrent loads of one path decode only once. The cache
// entry disappears when the arena disposes the cell.
package sample
