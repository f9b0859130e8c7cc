package form

import (
	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/validation"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// Structure renders one child per field definition and writes child edits
// back into its composite value.
type Structure struct {
	builder *Builder
	props   Props

	name        string
	clean       string
	description string
	typ         model.VariableType

	composite string
	fields    []Node
	byName    map[string]Node
	failed    bool
	unmounted bool
}

func newStructure(b *Builder, props Props) (*Structure, error) {
	s := &Structure{builder: b, byName: map[string]Node{}}
	if err := s.layout(props); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Structure) Name() string             { return s.name }
func (s *Structure) CleanName() string        { return s.clean }
func (s *Structure) Description() string      { return s.description }
func (s *Structure) Type() model.VariableType { return s.typ }
func (s *Structure) Kind() widgets.Kind       { return widgets.KindStructure }
func (s *Structure) Value() string            { return s.composite }
func (s *Structure) Children() []Node         { return append([]Node(nil), s.fields...) }

// Valid reports whether the last write succeeded and every field is valid.
func (s *Structure) Valid() bool {
	if s.failed {
		return false
	}
	for _, field := range s.fields {
		if !field.Valid() {
			return false
		}
	}
	return true
}

// ErrorMessage is set only when the engine rejected a field write.
func (s *Structure) ErrorMessage() string {
	if s.failed {
		return validation.FailureMessage(s.typ)
	}
	return ""
}

func (s *Structure) ShowError() bool { return s.failed }

// Focus moves focus to the first field.
func (s *Structure) Focus() {
	if len(s.fields) > 0 {
		s.fields[0].Focus()
	}
}

// Sync adopts the parent's composite and resyncs every field.
func (s *Structure) Sync(props Props) {
	if s.unmounted {
		return
	}
	if err := s.layout(props); err != nil {
		s.builder.logger.Error("form: structure sync failed", "field", s.name, "error", err)
	}
}

func (s *Structure) AfterRender() {
	for _, field := range s.fields {
		field.AfterRender()
	}
}

func (s *Structure) Unmount() {
	s.unmounted = true
	for _, field := range s.fields {
		field.Unmount()
	}
}

// layout builds or resyncs one node per field definition, reusing nodes by
// field name.
func (s *Structure) layout(props Props) error {
	eng := s.builder.env.Engine
	s.props = props
	s.name = eng.Name(props.Variable)
	s.clean = eng.CleanName(props.Variable)
	s.description = eng.Description(props.Variable)
	s.typ = eng.Type(props.Variable)
	s.composite = props.Saved.Or("")

	defs := eng.StructureFieldDefinitions(props.Variable, props.Exec)
	fields := make([]Node, 0, len(defs))
	seen := make(map[string]Node, len(defs))
	for _, def := range defs {
		key := eng.Name(def)
		saved := model.Saved(eng.StructureFieldValue(props.Variable, def, s.composite, props.Exec))
		childProps := s.builder.childProps(props, def, saved, s.onFieldChange)

		node, ok := s.byName[key]
		if ok {
			node.Sync(childProps)
		} else {
			built, err := s.builder.Build(childProps)
			if err != nil {
				return err
			}
			node = built
		}
		fields = append(fields, node)
		seen[key] = node
	}
	for key, node := range s.byName {
		if _, ok := seen[key]; !ok {
			node.Unmount()
		}
	}
	s.fields = fields
	s.byName = seen
	return nil
}

// onFieldChange writes one field into the local composite and emits the
// result under the structure's name. Engine failures stay local.
func (s *Structure) onFieldChange(key string, value model.Value, errData *model.FieldError) {
	if s.unmounted {
		return
	}
	eng := s.builder.env.Engine
	next, err := eng.SetStructureFieldValue(s.props.Variable, key, value.Text, s.composite, s.props.Exec)
	if err != nil {
		s.failed = true
		s.builder.logger.Warn("form: set structure field failed", "field", s.name, "key", key, "error", err)
		return
	}
	s.failed = false
	s.composite = next
	if s.props.OnChange != nil {
		s.props.OnChange(s.name, model.Saved(next), errData)
	}
}
