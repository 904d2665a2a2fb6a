// Package services defines the shared error taxonomy used across the
// rollcall components. Errors are tagged with sentinel markers so callers
// can classify a failure (configuration, transport, timeout, validation,
// extraction) without inspecting message text.
package services
