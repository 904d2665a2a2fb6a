// Package api exposes the application services shared by the daemon HTTP
// server and the CLI. It owns the write path (journal, append, delayed
// resync) so both surfaces get identical semantics.
package api
