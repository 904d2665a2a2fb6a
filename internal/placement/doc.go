// Package placement validates small-group placement decisions and builds the
// administrative ledger rows that record them.
package placement
