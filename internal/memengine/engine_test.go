package memengine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/model"
)

func loadLease(t *testing.T) *Engine {
	t.Helper()
	def, err := LoadSample("lease.yaml")
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	eng, err := New(def)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func mustLookup(t *testing.T, eng *Engine, name string) model.Variable {
	t.Helper()
	v, ok := eng.Lookup(name)
	if !ok {
		t.Fatalf("variable %q not found", name)
	}
	return v
}

func TestNew_ResolvesTypes(t *testing.T) {
	eng := loadLease(t)

	cases := map[string]model.VariableType{
		"Tenant":             model.TypeStructure,
		"Rent Amount":        model.TypeNumber,
		"Wallet":             model.TypeEthAddress,
		"Pets":               model.TypeCollection,
		"Color":              model.TypeText,
		"Landlord Signature": model.TypeExternalSignature,
	}
	for name, want := range cases {
		if got := eng.Type(mustLookup(t, eng, name)); got != want {
			t.Fatalf("%s: type = %q, want %q", name, got, want)
		}
	}
	if !eng.IsChoiceType(mustLookup(t, eng, "Color"), nil) {
		t.Fatalf("expected Color to be a choice")
	}
	if got := eng.CleanName(mustLookup(t, eng, "Rent Amount")); got != "Rent-Amount" {
		t.Fatalf("unexpected clean name %q", got)
	}
}

func TestNew_RejectsBrokenDefinitions(t *testing.T) {
	cases := []struct {
		name string
		def  Definition
	}{
		{name: "unknown type", def: Definition{Variables: []VariableDef{{Name: "A", Type: "Nope"}}}},
		{name: "duplicate", def: Definition{Variables: []VariableDef{{Name: "A"}, {Name: "A"}}}},
		{name: "bad condition", def: Definition{Variables: []VariableDef{{Name: "A", When: "B = 1"}}}},
		{name: "choice without values", def: Definition{Variables: []VariableDef{{Name: "A", Type: "Choice"}}}},
		{name: "self structure", def: Definition{
			Structures: map[string][]FieldDef{"Loop": {{Name: "Inner", Type: "Loop"}}},
			Variables:  []VariableDef{{Name: "A", Structure: "Loop"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.def); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRun_Conditions(t *testing.T) {
	eng := loadLease(t)

	exec, err := eng.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range exec.Executed() {
		if name == "Pets" {
			t.Fatalf("expected Pets to be skipped without Has Pets")
		}
	}

	exec, err = eng.Run(context.Background(), map[string]string{"Has Pets": "true"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	found := false
	for _, name := range exec.Executed() {
		found = found || name == "Pets"
	}
	if !found {
		t.Fatalf("expected Pets to execute, got %v", exec.Executed())
	}
}

func TestCheckValidity(t *testing.T) {
	eng := loadLease(t)

	cases := []struct {
		variable string
		value    string
		isError  bool
	}{
		{"Rent Amount", "1e19", false},
		{"Rent Amount", "-0.000000009", false},
		{"Rent Amount", "12abc", true},
		{"Rent Amount", "NaN", true},
		{"Wallet", "0x123", true},
		{"Wallet", "0x52908400098527886E0F7030069857D2E4169EE7", false},
		{"Lease Term", "2 weeks", false},
		{"Lease Term", "soon", true},
		{"Has Pets", "true", false},
		{"Has Pets", "yes", true},
		{"Color", "Red", false},
		{"Color", "Purple", true},
		{"Start Date", "1700000000000", false},
		{"Start Date", "tomorrow", true},
		{"Floor Plan", "data:image/png;base64,AAAA", false},
		{"Floor Plan", "plan.png", true},
		{"Tenant", `{"Age":"x"}`, true},
		{"Tenant", `{"Age":"42","Email":"{\"id\":\"\",\"email\":\"ada@example.com\"}"}`, false},
		{"Favorite Meats", `["", "bacon"]`, false},
		{"Landlord Signature", `{"identity":{"email":"ada@example.com"},"serviceName":"DocuSign"}`, false},
		{"Landlord Signature", `{"identity":{"email":"nope"},"serviceName":"DocuSign"}`, true},
		{"Notes", "", false},
	}
	for _, tc := range cases {
		got := eng.CheckValidity(mustLookup(t, eng, tc.variable), tc.value, nil)
		if got.IsError != tc.isError {
			t.Fatalf("%s=%q: isError = %v, want %v (%s)", tc.variable, tc.value, got.IsError, tc.isError, got.ErrorMessage)
		}
	}
}

func TestCollections(t *testing.T) {
	eng := loadLease(t)
	meats := mustLookup(t, eng, "Favorite Meats")

	composite := eng.CollectionValue(meats, nil, "")
	if got := eng.CollectionSize(meats, composite, nil); got != 1 {
		t.Fatalf("expected one implicit element, got %d", got)
	}

	composite, err := eng.AddElementToCollection(meats, nil, composite)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	composite, err = eng.SetElementToCollection(meats, nil, composite, 1, "ham")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := eng.CollectionElementValue(meats, nil, composite, 1); got != "ham" {
		t.Fatalf("unexpected element %q", got)
	}
	composite, err = eng.RemoveElementFromCollection(meats, nil, composite, 0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if composite != `["ham"]` {
		t.Fatalf("unexpected composite %s", composite)
	}
	if _, err := eng.RemoveElementFromCollection(meats, nil, composite, 3); err == nil {
		t.Fatalf("expected out of range error")
	}

	element := eng.CreateVariableFromCollection(meats, 2, nil)
	if got := eng.Name(element); got != "Favorite Meats_2" {
		t.Fatalf("unexpected element name %q", got)
	}
}

func TestStructures(t *testing.T) {
	eng := loadLease(t)
	tenant := mustLookup(t, eng, "Tenant")

	var names []string
	for _, field := range eng.StructureFieldDefinitions(tenant, nil) {
		names = append(names, eng.Name(field))
	}
	if diff := cmp.Diff([]string{"Full Name", "Email", "Age"}, names); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	composite, err := eng.SetStructureFieldValue(tenant, "Full Name", "Ada", "", nil)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	composite, err = eng.SetStructureFieldValue(tenant, "Age", "36", composite, nil)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	fields := eng.StructureFieldDefinitions(tenant, nil)
	if got := eng.StructureFieldValue(tenant, fields[0], composite, nil); got != "Ada" {
		t.Fatalf("unexpected field value %q", got)
	}
	if _, err := eng.SetStructureFieldValue(tenant, "Missing", "x", composite, nil); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := eng.SetStructureFieldValue(tenant, "Age", "1", "{broken", nil); err == nil {
		t.Fatalf("expected malformed composite error")
	}
}

func TestCodecs(t *testing.T) {
	eng := loadLease(t)

	value, err := eng.CreateExternalSignatureValue("u-1", "ada@example.com", "DocuSign")
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	email, err := eng.IdentityEmail(value)
	if err != nil || email != "ada@example.com" {
		t.Fatalf("expected nested email, got %q (%v)", email, err)
	}
	if _, err := eng.CreateExternalSignatureValue("", "", "DocuSign"); err == nil {
		t.Fatalf("expected error for missing email")
	}

	address := model.Address{PlaceID: "p1", StreetNumber: "1", StreetName: "Main St", City: "Springfield"}
	encoded, err := eng.CreateAddress(address)
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	decoded, err := eng.Address(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := eng.FormattedAddress(decoded); got != "1 Main St, Springfield" {
		t.Fatalf("unexpected formatted address %q", got)
	}
}

func TestDirectory(t *testing.T) {
	eng := loadLease(t)
	dir := eng.Directory()

	user, err := dir.UserDetails(context.Background(), "ADA@example.com")
	if err != nil || user.ID != "u-1" || user.Email != "ada@example.com" {
		t.Fatalf("unexpected user %+v (%v)", user, err)
	}
	if _, err := dir.UserDetails(context.Background(), "nobody@example.com"); !errors.Is(err, engine.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestSections(t *testing.T) {
	eng := loadLease(t)
	sections := eng.Sections(nil)
	if len(sections) != 3 || sections[0].Name != "Parties" {
		t.Fatalf("unexpected sections %+v", sections)
	}
}
