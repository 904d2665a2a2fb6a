// Package ledger models the append-only attendance log and the derived
// per-person view built from it.
//
// The aggregation entry point, Aggregate, is a pure function from the full
// record set to a map of person summaries: attendance rounds, placement
// state, category, and couple linkage. The whole view is rebuilt every
// cycle; there is no incremental update path, which keeps a reader from ever
// observing a half-updated aggregate.
package ledger
