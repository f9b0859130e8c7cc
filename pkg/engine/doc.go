// Package engine declares the capability surface the form engine consumes
// from its template execution collaborator and from the external services it
// talks to (address lookup, identity lookup, image resizing). Nothing in this
// module executes templates; implementations are injected by the host.
package engine
