// Package model defines the data shared by every layer of the form engine:
// the closed VariableType enumeration, the serialized Value sentinel, the
// FieldError event payload emitted on every validation outcome, and the
// InputProps configuration merged per variable type. Variables and execution
// results stay opaque here; only the engine that produced them can answer
// questions about them (see pkg/engine).
package model
