// Package resync coordinates the fetch → extract → aggregate → publish
// cycle that produces the authoritative per-person view. One cycle runs at
// a time; concurrent triggers are coalesced, and a failed cycle keeps the
// previously published snapshot intact.
package resync
