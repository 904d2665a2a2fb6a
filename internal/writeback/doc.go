// Package writeback appends new rows to the external attendance log.
// Delivery is fire-and-forget with a fixed deadline; a bounded
// recent-activity buffer echoes submissions for display until the next
// aggregation cycle supersedes it.
package writeback
