// Package template defines the engine-agnostic template contract the page
// renderer depends on. The pongo subpackage provides the default engine.
package template
