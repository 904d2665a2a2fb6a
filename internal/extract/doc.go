// Package extract turns the raw tabular attendance log into typed ledger
// records with a deterministic, rule-based parser. Schema violations surface
// as extraction errors; a failed extraction must never replace the last-good
// aggregate view.
package extract
