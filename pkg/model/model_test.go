package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCleanName(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "spaces", input: "Favorite Meats", expect: "Favorite-Meats"},
		{name: "specials collapse", input: "Party A's  (Wallet) #1", expect: "Party-A-s-Wallet-1"},
		{name: "accents folded", input: "Société Générale", expect: "Societe-Generale"},
		{name: "leading and trailing", input: "  -Rent- ", expect: "Rent"},
		{name: "empty", input: "", expect: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanName(tc.input); got != tc.expect {
				t.Fatalf("CleanName(%q) = %q, want %q", tc.input, got, tc.expect)
			}
		})
	}
}

func TestCleanName_Stable(t *testing.T) {
	first := CleanName("Effective Date / Time")
	for i := 0; i < 3; i++ {
		if got := CleanName("Effective Date / Time"); got != first {
			t.Fatalf("expected stable clean name %q, got %q", first, got)
		}
	}
}

func TestParseVariableType(t *testing.T) {
	got, ok := ParseVariableType(" ethaddress ")
	if !ok || got != TypeEthAddress {
		t.Fatalf("expected EthAddress, got %q (ok=%v)", got, ok)
	}
	if _, ok := ParseVariableType("Spreadsheet"); ok {
		t.Fatalf("expected unknown type to fail")
	}
	if VariableType("text").Known() {
		t.Fatalf("expected exact-case check for Known")
	}
	if TypeEthAddress.ReadableName() != "Ethereum Address" {
		t.Fatalf("unexpected readable name %q", TypeEthAddress.ReadableName())
	}
}

func TestInputConfig_WildcardUnderSpecific(t *testing.T) {
	cfg := InputConfig{
		Wildcard: {
			PropClassName:   "field",
			PropPlaceholder: "Type here",
			"data-track":    "yes",
		},
		string(TypeAddress): {
			PropPlaceholder: "Start typing an address",
		},
	}

	got := cfg.For(TypeAddress)
	want := InputProps{
		PropClassName:   "field",
		PropPlaceholder: "Start typing an address",
		"data-track":    "yes",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merged props mismatch (-want +got):\n%s", diff)
	}

	text := cfg.For(TypeText)
	if text.Placeholder() != "Type here" {
		t.Fatalf("expected wildcard placeholder, got %q", text.Placeholder())
	}
	if _, ok := cfg[Wildcard][PropPlaceholder]; !ok {
		t.Fatalf("merge must not mutate the wildcard entry")
	}
	if diff := cmp.Diff(map[string]any{"data-track": "yes"}, got.Passthrough()); diff != "" {
		t.Fatalf("passthrough mismatch (-want +got):\n%s", diff)
	}
}

func TestInputProps_Hook(t *testing.T) {
	var seen []string
	props := InputProps{
		PropOnBlur: func(name, value string) { seen = append(seen, name+"="+value) },
	}
	hook := props.Hook(PropOnBlur)
	if hook == nil {
		t.Fatalf("expected plain func hook to be accepted")
	}
	hook("Rent", "100")
	if diff := cmp.Diff([]string{"Rent=100"}, seen); diff != "" {
		t.Fatalf("hook calls mismatch (-want +got):\n%s", diff)
	}
	if props.Hook(PropOnChange) != nil {
		t.Fatalf("expected missing hook to be nil")
	}
}

func TestValue(t *testing.T) {
	if !Unset.Empty() || Unset.Set {
		t.Fatalf("expected zero value to be unset")
	}
	if v := Saved(""); v.Set {
		t.Fatalf("expected empty saved raw to be unset")
	}
	if v := ValueOf(""); !v.Set || !v.Empty() {
		t.Fatalf("expected set-but-empty value")
	}
	if got := Unset.Or("fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
