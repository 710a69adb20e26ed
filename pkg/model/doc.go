// Package model exposes the canonical intake-form types: merged field
// definitions, layout documents with ordered sections, field access rules and
// the per-session submission state. The structs mirror the persisted JSON
// representation so stores and transports can serialise them directly.
package model
