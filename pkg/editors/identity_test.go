package editors

import (
	"context"
	"testing"

	"github.com/goliatone/go-varform/internal/memengine"
	"github.com/goliatone/go-varform/pkg/model"
)

func identityEngine(t *testing.T) *memengine.Engine {
	t.Helper()
	eng, err := memengine.New(memengine.Definition{
		Variables: []memengine.VariableDef{
			{Name: "Buyer", Type: "Identity"},
			{Name: "Seller Signature", Type: "ExternalSignature", ServiceName: "DocuSign"},
			{Name: "Broken Signature", Type: "ExternalSignature"},
		},
		Users: []model.UserDetails{
			{ID: "u-1", Email: "ada@example.com"},
			{ID: "u-2", Email: "grace@example.com"},
		},
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func TestIdentity_ProvisionalThenCanonical(t *testing.T) {
	eng := identityEngine(t)
	rec := &recorder{}
	env := Env{Engine: eng, Identity: eng.Directory()}
	ed := mustEditor(t, env, leaseProps(t, eng, "Buyer", model.Unset, rec))

	ed.Change(context.Background(), "ADA@example.com")
	if len(rec.changes) != 2 {
		t.Fatalf("expected provisional and canonical emissions, got %d", len(rec.changes))
	}
	provisional, _ := eng.CreateIdentityInternalValue("", "ADA@example.com")
	canonical, _ := eng.CreateIdentityInternalValue("u-1", "ada@example.com")
	if rec.changes[0].value != model.ValueOf(provisional) {
		t.Fatalf("unexpected provisional value %+v", rec.changes[0].value)
	}
	if rec.changes[1].value != model.ValueOf(canonical) {
		t.Fatalf("unexpected canonical value %+v", rec.changes[1].value)
	}
	if ed.Value() != "ada@example.com" {
		t.Fatalf("expected canonical email in buffer, got %q", ed.Value())
	}
}

func TestIdentity_StaleLookupDropped(t *testing.T) {
	eng := identityEngine(t)
	rec := &recorder{}
	sched := &deferred{}
	env := Env{Engine: eng, Identity: eng.Directory(), Scheduler: sched}
	ed := mustEditor(t, env, leaseProps(t, eng, "Buyer", model.Unset, rec))

	ed.Change(context.Background(), "ada@example.com")
	ed.Change(context.Background(), "grace@example.com")
	sched.release(1)
	sched.release(0)

	canonical, _ := eng.CreateIdentityInternalValue("u-2", "grace@example.com")
	if got := rec.last(t).value; got != model.ValueOf(canonical) {
		t.Fatalf("expected newest lookup to win, got %+v", got)
	}
	if len(rec.changes) != 3 {
		t.Fatalf("expected stale response to be dropped, got %d emissions", len(rec.changes))
	}
	if ed.Value() != "grace@example.com" {
		t.Fatalf("unexpected buffer %q", ed.Value())
	}
}

func TestIdentity_UnmountDropsContinuation(t *testing.T) {
	eng := identityEngine(t)
	rec := &recorder{}
	sched := &deferred{}
	ed := mustEditor(t, Env{Engine: eng, Identity: eng.Directory(), Scheduler: sched}, leaseProps(t, eng, "Buyer", model.Unset, rec))

	ed.Change(context.Background(), "ada@example.com")
	ed.Unmount()
	sched.release(0)
	if len(rec.changes) != 1 {
		t.Fatalf("expected only the provisional emission, got %d", len(rec.changes))
	}
}

func TestIdentity_MalformedSavedValue(t *testing.T) {
	eng := identityEngine(t)
	ed := mustEditor(t, Env{Engine: eng}, leaseProps(t, eng, "Buyer", model.ValueOf("{not json"), nil))
	if ed.Value() != "" {
		t.Fatalf("expected malformed value to read as empty, got %q", ed.Value())
	}
}

func TestIdentity_InvalidEmailShownOnBlur(t *testing.T) {
	eng := identityEngine(t)
	ed := mustEditor(t, Env{Engine: eng}, leaseProps(t, eng, "Buyer", model.Unset, nil))

	ed.Change(context.Background(), "not-an-email")
	ed.Blur()
	if !ed.ShowError() || ed.ErrorMessage() != "Identity: Please enter a valid email." {
		t.Fatalf("unexpected error %q (show=%v)", ed.ErrorMessage(), ed.ShowError())
	}
	ed.Change(context.Background(), "")
	ed.Blur()
	if ed.ShowError() {
		t.Fatalf("expected empty identity to be valid")
	}
}

func TestSignature(t *testing.T) {
	eng := identityEngine(t)
	rec := &recorder{}
	ed := mustEditor(t, Env{Engine: eng}, leaseProps(t, eng, "Seller Signature", model.Unset, rec))

	sig, ok := ed.(*Signature)
	if !ok {
		t.Fatalf("expected *Signature, got %T", ed)
	}
	if sig.ServiceName() != "DocuSign" {
		t.Fatalf("unexpected service %q", sig.ServiceName())
	}
	sig.Change(context.Background(), "ada@example.com")
	want, _ := eng.CreateExternalSignatureValue("", "ada@example.com", "DocuSign")
	if got := rec.last(t).value; got != model.ValueOf(want) {
		t.Fatalf("unexpected value %+v", got)
	}

	remounted := mustEditor(t, Env{Engine: eng}, leaseProps(t, eng, "Seller Signature", model.ValueOf(want), nil))
	if remounted.Value() != "ada@example.com" {
		t.Fatalf("expected email read from signature, got %q", remounted.Value())
	}
}

func TestSignature_UnsetWhenValueCannotBeComposed(t *testing.T) {
	eng := identityEngine(t)
	rec := &recorder{}
	ed := mustEditor(t, Env{Engine: eng}, leaseProps(t, eng, "Broken Signature", model.Unset, rec))

	ed.Change(context.Background(), "ada@example.com")
	if got := rec.last(t).value; got != model.Unset {
		t.Fatalf("expected unset, got %+v", got)
	}
}
