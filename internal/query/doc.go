// Package query derives read-side views from a library snapshot: due cards,
// decks, material detail and summary statistics.
//
// Everything here is a pure function of its inputs. The current time is
// always passed in; nothing reads the wall clock except Engine, which takes
// its clock as a dependency.
package query
