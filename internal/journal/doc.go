// Package journal persists append intents in SQLite. The append transport
// is fire-and-forget, so delivery is modeled as at-least-once and
// unconfirmed: an entry stays pending or submitted until a later resync
// observes the row in the authoritative record set.
package journal
