// Package orchestrator wires the source loader → field registry → layout
// store → access evaluator pipeline behind a single Engine, providing
// dependency injection friendly helpers for consumers that prefer one
// entry point for loading screens and rendering step views.
package orchestrator
