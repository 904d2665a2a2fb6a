// Package daemon hosts the long-running rollcall process: the resync
// scheduler, the HTTP API, and the single-instance lock.
package daemon
