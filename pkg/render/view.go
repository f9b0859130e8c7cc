package render

import (
	"fmt"
	"time"

	"github.com/goliatone/go-varform/pkg/editors"
	"github.com/goliatone/go-varform/pkg/form"
	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/orchestrator"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// View is an immutable snapshot of a form, safe to hand to templates.
type View struct {
	Title    string        `json:"title,omitempty"`
	Sections []SectionView `json:"sections"`
}

// SectionView is one section of the snapshot. Name is empty for the trailing
// section of unclaimed fields.
type SectionView struct {
	Name   string      `json:"name,omitempty"`
	Fields []FieldView `json:"fields"`
}

// FieldView is the render state of one node.
type FieldView struct {
	Name      string             `json:"name"`
	CleanName string             `json:"cleanName"`
	Label     string             `json:"label"`
	Type      model.VariableType `json:"type"`
	Kind      widgets.Kind       `json:"kind"`
	// Value is the edit buffer; Display is its human readable form.
	Value     string `json:"value,omitempty"`
	Display   string `json:"display,omitempty"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	ShowError bool   `json:"showError,omitempty"`
	Valid     bool   `json:"valid"`

	Placeholder string            `json:"placeholder,omitempty"`
	ClassName   string            `json:"className,omitempty"`
	Disabled    bool              `json:"disabled,omitempty"`
	Multiline   bool              `json:"multiline,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`

	Options     []string `json:"options,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Service     string   `json:"service,omitempty"`
	Preview     string   `json:"preview,omitempty"`
	Editable    bool     `json:"editable,omitempty"`
	Width       int      `json:"width,omitempty"`
	Height      int      `json:"height,omitempty"`

	// Key is the collection identity key of a row.
	Key      string      `json:"key,omitempty"`
	Children []FieldView `json:"children,omitempty"`
}

// Snapshot captures the current state of f.
func Snapshot(title string, f *orchestrator.Form) View {
	view := View{Title: title}
	if f == nil {
		return view
	}
	for _, section := range f.Sections() {
		sv := SectionView{Name: section.Name}
		for _, node := range section.Fields {
			sv.Fields = append(sv.Fields, NodeView(node))
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}

// NodeView captures a single node and its descendants.
func NodeView(node form.Node) FieldView {
	fv := FieldView{
		Name:      node.Name(),
		CleanName: node.CleanName(),
		Label:     node.Description(),
		Type:      node.Type(),
		Kind:      node.Kind(),
		Value:     node.Value(),
		Error:     node.ErrorMessage(),
		ShowError: node.ShowError(),
		Valid:     node.Valid(),
	}
	fv.Display = fv.Value

	switch n := node.(type) {
	case *form.Leaf:
		leafView(&fv, n.Editor)
	case *form.Collection:
		keys := n.Keys()
		for _, key := range keys {
			row, ok := n.Row(key)
			if !ok {
				continue
			}
			child := NodeView(row)
			child.Key = key
			fv.Children = append(fv.Children, child)
		}
		fv.Display = fmt.Sprintf("%d item(s)", len(keys))
	default:
		for _, child := range node.Children() {
			fv.Children = append(fv.Children, NodeView(child))
		}
		fv.Display = ""
	}
	return fv
}

func leafView(fv *FieldView, ed editors.Editor) {
	input := ed.Input()
	fv.Status = ed.Status().String()
	fv.Placeholder = input.Placeholder()
	fv.ClassName = input.ClassName()
	fv.Disabled = input.Disabled()
	fv.Attributes = attributes(input.Passthrough())

	switch e := ed.(type) {
	case *editors.Text:
		fv.Multiline = e.Multiline()
	case *editors.Choice:
		fv.Options = e.Options()
	case *editors.Date:
		if at, ok := e.Time(); ok {
			fv.Display = formatTime(at, e.EnableTime())
		}
	case *editors.YesNo:
		fv.Options = []string{"true", "false"}
		if yes, ok := e.Selection(); ok {
			fv.Display = "No"
			if yes {
				fv.Display = "Yes"
			}
		}
	case *editors.Address:
		for _, suggestion := range e.Suggestions() {
			fv.Suggestions = append(fv.Suggestions, suggestion.Description)
		}
	case *editors.Signature:
		fv.Service = e.ServiceName()
	case *editors.Image:
		if preview, ok := e.Preview(); ok {
			fv.Preview = preview.Value
		}
		fv.Editable = e.CanEdit()
		fv.Width, fv.Height = e.TargetSize()
		fv.Display = ""
	}
}

// attributes stringifies passthrough props; hooks and other non-scalar values
// are dropped.
func attributes(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	props := model.InputProps(in)
	out := make(map[string]string, len(in))
	for key := range in {
		if value := props.String(key); value != "" {
			out[key] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func formatTime(at time.Time, withTime bool) string {
	if withTime {
		return at.UTC().Format("2006-01-02 15:04")
	}
	return at.UTC().Format("2006-01-02")
}
