// Package domain defines the core business entities of the scheduling
// system: the per-card memory state, the append-only review log, and the
// rating scale. Entities carry their own validation but no behavior; all
// scheduling logic lives in the fsrs subpackage.
package domain
