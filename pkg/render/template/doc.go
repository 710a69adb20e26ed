// Package template defines renderer-agnostic template interfaces and
// adapters so output surfaces stay decoupled from any one template engine.
package template
