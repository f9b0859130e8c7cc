package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/model"
)

// Kind identifies the editor (or composite engine) a variable renders with.
type Kind string

// Built-in kinds exposed by the registry.
const (
	KindText              Kind = "text"
	KindLargeText         Kind = "large-text"
	KindNumber            Kind = "number"
	KindDate              Kind = "date"
	KindDateTime          Kind = "date-time"
	KindYesNo             Kind = "yes-no"
	KindChoice            Kind = "choice"
	KindIdentity          Kind = "identity"
	KindAddress           Kind = "address"
	KindImage             Kind = "image"
	KindExternalSignature Kind = "external-signature"
	KindStructure         Kind = "structure"
	KindCollection        Kind = "collection"
)

// PropWidget is the InputProps key that pins a leaf kind explicitly.
const PropWidget = "widget"

var leafKinds = map[Kind]struct{}{
	KindText:              {},
	KindLargeText:         {},
	KindNumber:            {},
	KindDate:              {},
	KindDateTime:          {},
	KindYesNo:             {},
	KindChoice:            {},
	KindIdentity:          {},
	KindAddress:           {},
	KindImage:             {},
	KindExternalSignature: {},
}

// Leaf reports whether k is rendered by a single editor.
func (k Kind) Leaf() bool {
	_, ok := leafKinds[k]
	return ok
}

// ParseKind resolves a kind name, case-insensitively.
func ParseKind(raw string) (Kind, bool) {
	trimmed := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if trimmed.Leaf() || trimmed == KindStructure || trimmed == KindCollection {
		return trimmed, true
	}
	return "", false
}

// Dispatch maps a variable to exactly one kind. Choice detection wins over the
// nominal type tag and unknown tags degrade to KindText.
func Dispatch(eng engine.Engine, v model.Variable, exec model.ExecutionResult) Kind {
	if eng.IsChoiceType(v, exec) {
		return KindChoice
	}
	switch t := eng.Type(v); t {
	case model.TypeText, model.TypeEthAddress, model.TypePeriod:
		return KindText
	case model.TypeLargeText:
		return KindLargeText
	case model.TypeNumber:
		return KindNumber
	case model.TypeDate:
		return KindDate
	case model.TypeDateTime:
		return KindDateTime
	case model.TypeYesNo:
		return KindYesNo
	case model.TypeChoice:
		return KindChoice
	case model.TypeIdentity:
		return KindIdentity
	case model.TypeAddress:
		return KindAddress
	case model.TypeImage:
		return KindImage
	case model.TypeExternalSignature:
		return KindExternalSignature
	case model.TypeCollection:
		return KindCollection
	case model.TypeStructure:
		return KindStructure
	default:
		if eng.IsStructuredType(v, exec) {
			return KindStructure
		}
		return KindText
	}
}

// Subject is what matchers inspect.
type Subject struct {
	Engine   engine.Engine
	Variable model.Variable
	Exec     model.ExecutionResult
	Type     model.VariableType
	Props    model.InputProps
}

// Matcher decides whether a kind should handle the supplied variable.
type Matcher func(subject Subject) bool

type rule struct {
	kind     Kind
	priority int
	match    Matcher
	order    int
}

// Registry selects a kind for variables based on explicit hints or
// registered matchers, falling back to Dispatch. Higher priority wins; ties
// fall back to registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs an empty registry. Resolution then equals Dispatch.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a matcher for a leaf kind. Composite kinds are decided by the
// engine alone and are ignored here.
func (r *Registry) Register(kind Kind, priority int, matcher Matcher) {
	if r == nil || matcher == nil || !kind.Leaf() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		kind:     kind,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the kind for a variable. A leaf kind pinned through the
// "widget" input prop is honoured before matchers; composite variables keep
// their composite kind whatever the hints say.
func (r *Registry) Resolve(subject Subject) Kind {
	builtin := Dispatch(subject.Engine, subject.Variable, subject.Exec)
	if !builtin.Leaf() {
		return builtin
	}
	if explicit, ok := ParseKind(subject.Props.String(PropWidget)); ok && explicit.Leaf() {
		return explicit
	}
	if subject.Type == "" {
		subject.Type = subject.Engine.Type(subject.Variable)
	}
	for _, entry := range r.sorted() {
		if entry.match(subject) {
			return entry.kind
		}
	}
	return builtin
}

func (r *Registry) sorted() []rule {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	return rules
}
