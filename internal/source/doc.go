// Package source fetches the raw attendance log from the external record
// source over HTTP, bypassing upstream caches with a per-request busting
// parameter.
package source
