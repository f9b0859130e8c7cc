package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-varform/internal/memengine"
	"github.com/goliatone/go-varform/pkg/model"
)

// LeaseEngine returns the in-memory engine over the embedded lease sample.
// Testing helpers fail the test on error to keep contract tests concise.
func LeaseEngine(t *testing.T) *memengine.Engine {
	t.Helper()

	def, err := memengine.LoadSample("lease.yaml")
	if err != nil {
		t.Fatalf("load lease sample: %v", err)
	}
	eng, err := memengine.New(def)
	if err != nil {
		t.Fatalf("new lease engine: %v", err)
	}
	return eng
}

// LoadEngine reads a template definition from path and builds an engine.
func LoadEngine(t *testing.T, path string) *memengine.Engine {
	t.Helper()

	eng, err := LoadEngineFromPath(path)
	if err != nil {
		t.Fatalf("load engine: %v", err)
	}
	return eng
}

// LoadEngineFromPath returns an engine without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadEngineFromPath(path string) (*memengine.Engine, error) {
	if path == "" {
		return nil, errors.New("testsupport: definition path is required")
	}
	def, err := memengine.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: load definition: %w", err)
	}
	eng, err := memengine.New(def)
	if err != nil {
		return nil, fmt.Errorf("testsupport: new engine: %w", err)
	}
	return eng, nil
}

// MustLookup resolves a variable handle by name.
func MustLookup(t *testing.T, eng *memengine.Engine, name string) model.Variable {
	t.Helper()

	v, ok := eng.Lookup(name)
	if !ok {
		t.Fatalf("variable %q not found", name)
	}
	return v
}

// Change is one recorded emission.
type Change struct {
	Name    string
	Value   model.Value
	ErrData *model.FieldError
}

// Recorder collects ChangeFunc emissions.
type Recorder struct {
	mu      sync.Mutex
	changes []Change
}

// OnChange implements model.ChangeFunc.
func (r *Recorder) OnChange(name string, value model.Value, errData *model.FieldError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, Change{Name: name, Value: value, ErrData: errData})
}

// Changes returns a copy of every recorded emission.
func (r *Recorder) Changes() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

// Last returns the most recent emission.
func (r *Recorder) Last(t *testing.T) Change {
	t.Helper()

	changes := r.Changes()
	if len(changes) == 0 {
		t.Fatalf("no changes recorded")
	}
	return changes[len(changes)-1]
}

// Counter returns a deterministic key generator producing k0, k1, ...
func Counter() func() string {
	next := 0
	return func() string {
		key := fmt.Sprintf("k%d", next)
		next++
		return key
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
