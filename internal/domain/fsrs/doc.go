// Package fsrs implements the FSRS-5 spaced repetition algorithm and the
// pure analysis layers built on top of the same review history: the due-set
// selector, the leech policy, review statistics, the parameter optimizer and
// the retention advisor.
//
// Every function in this package is pure: identical inputs produce identical
// outputs, no shared state is touched and no I/O happens. Scheduling a card
// returns a new CardState and a ReviewLogEntry; persisting both atomically is
// the caller's responsibility.
package fsrs
