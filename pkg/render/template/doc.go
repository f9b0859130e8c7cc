// Package template defines the template engine seam renderers depend on. The
// pongo subpackage provides the default pongo2 implementation.
package template
