// Package store defines the persistence interfaces for card scheduling
// state, the append-only review log, and the algorithm parameters, along
// with shared error types and transaction helpers. Concrete backends live
// under internal/platform.
package store
