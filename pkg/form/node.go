// Package form composes editors into a tree of nodes. Leaves wrap a single
// editor; Structure and Collection nodes manage composite values through the
// engine's mutators and re-emit them under their own name.
package form

import (
	"github.com/goliatone/go-varform/pkg/editors"
	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// Props are the per-render inputs of a node.
type Props = editors.Props

// Node is one rendered variable.
type Node interface {
	Name() string
	CleanName() string
	Description() string
	Type() model.VariableType
	Kind() widgets.Kind

	// Value is the node's current serialized (or buffered) value.
	Value() string
	Valid() bool
	ErrorMessage() string
	ShowError() bool

	// Children returns nested nodes in render order.
	Children() []Node

	Focus()
	Sync(props Props)
	// AfterRender runs once the host has rendered the node tree.
	AfterRender()
	Unmount()
}

// Leaf adapts an editor into a Node.
type Leaf struct {
	editors.Editor
}

// Children implements Node.
func (l *Leaf) Children() []Node { return nil }

// AfterRender implements Node.
func (l *Leaf) AfterRender() {}

// Walk visits n and its descendants depth-first until fn returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children() {
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}
