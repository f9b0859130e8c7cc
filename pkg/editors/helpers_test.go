package editors

import (
	"context"
	"testing"

	"github.com/goliatone/go-varform/internal/memengine"
	"github.com/goliatone/go-varform/pkg/eventloop"
	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/widgets"
)

type change struct {
	name    string
	value   model.Value
	errData *model.FieldError
}

type recorder struct {
	changes []change
}

func (r *recorder) onChange(name string, value model.Value, errData *model.FieldError) {
	r.changes = append(r.changes, change{name: name, value: value, errData: errData})
}

func (r *recorder) last(t *testing.T) change {
	t.Helper()
	if len(r.changes) == 0 {
		t.Fatalf("expected at least one change")
	}
	return r.changes[len(r.changes)-1]
}

// deferred runs calls at once but holds continuations until released, so
// tests can deliver responses out of order.
type deferred struct {
	pending []func()
}

func (d *deferred) Go(ctx context.Context, call eventloop.Call) {
	if apply := call(ctx); apply != nil {
		d.pending = append(d.pending, apply)
	}
}

func (d *deferred) release(index int) {
	d.pending[index]()
}

func leaseEngine(t *testing.T) *memengine.Engine {
	t.Helper()
	def, err := memengine.LoadSample("lease.yaml")
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	eng, err := memengine.New(def)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func leaseProps(t *testing.T, eng *memengine.Engine, name string, saved model.Value, rec *recorder) Props {
	t.Helper()
	v, ok := eng.Lookup(name)
	if !ok {
		t.Fatalf("variable %q not found", name)
	}
	props := Props{Variable: v, Saved: saved}
	if rec != nil {
		props.OnChange = rec.onChange
	}
	return props
}

func mustEditor(t *testing.T, env Env, props Props) Editor {
	t.Helper()
	kind := widgets.Dispatch(env.Engine, props.Variable, props.Exec)
	ed, err := New(kind, env, props)
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	return ed
}
