package html_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/orchestrator"
	"github.com/goliatone/go-varform/pkg/render"
	"github.com/goliatone/go-varform/pkg/renderers/html"
	"github.com/goliatone/go-varform/pkg/testsupport"
	"github.com/goliatone/go-varform/pkg/widgets"
)

func newRenderer(t *testing.T, options ...html.Option) *html.Renderer {
	t.Helper()
	renderer, err := html.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func renderView(t *testing.T, view render.View, options render.RenderOptions) string {
	t.Helper()
	out, err := newRenderer(t).Render(context.Background(), view, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, output)
		}
	}
}

func assertNotContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(output, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, output)
		}
	}
}

func TestRenderer_Metadata(t *testing.T) {
	t.Parallel()

	renderer := newRenderer(t)
	if renderer.Name() != "html" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderer_LeafControls(t *testing.T) {
	t.Parallel()

	view := render.View{
		Title: "Lease",
		Sections: []render.SectionView{{
			Name: "Terms",
			Fields: []render.FieldView{
				{Name: "Rent Amount", CleanName: "Rent-Amount", Label: "Rent", Kind: widgets.KindNumber, Value: "1200"},
				{Name: "Start Date", CleanName: "Start-Date", Label: "Start", Kind: widgets.KindDate, Value: "1700000000000", Display: "2023-11-14"},
				{Name: "Notes", CleanName: "Notes", Label: "Notes", Kind: widgets.KindLargeText, Value: "a & b", Multiline: true},
				{Name: "Has Pets", CleanName: "Has-Pets", Label: "Pets?", Kind: widgets.KindYesNo, Value: "true", Options: []string{"true", "false"}},
				{Name: "Color", CleanName: "Color", Label: "Color", Kind: widgets.KindChoice, Value: "Green", Options: []string{"Red", "Green"}},
				{Name: "Property", CleanName: "Property", Label: "Property", Kind: widgets.KindAddress, Value: "1 Main", Suggestions: []string{"1 Main St, Springfield"}},
				{Name: "Floor Plan", CleanName: "Floor-Plan", Label: "Plan", Kind: widgets.KindImage, Preview: "data:image/png;base64,AAAA", Editable: true, Width: 600, Height: 400},
				{Name: "Email", CleanName: "Email", Label: "Email", Kind: widgets.KindIdentity, Attributes: map[string]string{"data-test": "email", "onclick": "alert(1)"}},
			},
		}},
	}

	output := renderView(t, view, render.RenderOptions{})

	assertContains(t, output,
		`<form class="varform" method="post">`,
		`<h1 class="varform-title">Lease</h1>`,
		`<section class="varform-section" data-section="Terms">`,
		`<input type="text" id="vf-Rent-Amount" name="Rent Amount" value="1200" inputmode="decimal">`,
		`<input type="date" id="vf-Start-Date" name="Start Date" value="2023-11-14">`,
		`<textarea id="vf-Notes" name="Notes">a &amp; b</textarea>`,
		`<input type="radio" name="Has Pets" value="true" checked> Yes`,
		`<input type="radio" name="Has Pets" value="false"> No`,
		`<option value="Green" selected>Green</option>`,
		`list="vf-Property-suggestions"`,
		`<option value="1 Main St, Springfield">`,
		`<img class="varform-preview" src="data:image/png;base64,AAAA" alt="" width="600" height="400">`,
		`<input type="email" id="vf-Email" name="Email" value="" data-test="email">`,
	)
	assertNotContains(t, output, "onclick")
}

func TestRenderer_SanitizesLabels(t *testing.T) {
	t.Parallel()

	view := render.View{Sections: []render.SectionView{{Fields: []render.FieldView{{
		Name:      "Rent",
		CleanName: "Rent",
		Label:     `<b>Monthly</b> rent<script>alert("x")</script>`,
		Kind:      widgets.KindText,
	}}}}}

	output := renderView(t, view, render.RenderOptions{})
	assertContains(t, output, `<label for="vf-Rent"><b>Monthly</b> rent</label>`)
	assertNotContains(t, output, "<script", "alert")
}

func TestRenderer_ErrorsHiddenFieldsAndTheme(t *testing.T) {
	t.Parallel()

	view := render.View{Sections: []render.SectionView{{Fields: []render.FieldView{
		{Name: "Age", CleanName: "Age", Label: "Age", Kind: widgets.KindNumber, Value: "abc", Error: "Please enter a number", ShowError: true},
		{Name: "Email", CleanName: "Email", Label: "Email", Kind: widgets.KindIdentity},
	}}}}

	output := renderView(t, view, render.RenderOptions{
		Action:     "/leases",
		Method:     "PUT",
		Errors:     map[string][]string{"Email": {"already registered"}},
		FormErrors: []string{" Please review the form ", "Please review the form"},
		Hidden:     []render.HiddenField{render.CSRFToken("_csrf", "token-1"), render.Hidden("step", 2)},
		Theme: &theme.RendererConfig{
			Theme:    "acme",
			Variant:  "dark",
			CSSVars:  map[string]string{"--vf-gap": "4px", "--vf-accent": "#f00"},
			AssetURL: func(key string) string { return "/assets/" + key + ".css" },
		},
	})

	assertContains(t, output,
		`action="/leases"`,
		`method="put"`,
		`data-theme="acme" data-theme-variant="dark"`,
		`style="--vf-accent: #f00; --vf-gap: 4px"`,
		`<link rel="stylesheet" href="/assets/html.stylesheet.css">`,
		`<input type="hidden" name="_csrf" value="token-1">`,
		`<input type="hidden" name="step" value="2">`,
		`<p>Please review the form</p>`,
		`<p class="varform-error" role="alert">Please enter a number</p>`,
		`<p class="varform-error" role="alert">already registered</p>`,
	)
	if strings.Count(output, "Please review the form") != 1 {
		t.Fatalf("expected form errors to be deduplicated\n%s", output)
	}
}

func TestRenderer_CompositesFlatten(t *testing.T) {
	t.Parallel()

	view := render.View{Sections: []render.SectionView{{Fields: []render.FieldView{
		{
			Name: "Tenant", CleanName: "Tenant", Label: "Tenant", Kind: widgets.KindStructure,
			Children: []render.FieldView{
				{Name: "Full Name", CleanName: "Full-Name", Label: "Full Name", Kind: widgets.KindText, Value: "Ada"},
			},
		},
		{
			Name: "Favorite Meats", CleanName: "Favorite-Meats", Label: "Meats", Kind: widgets.KindCollection,
			Children: []render.FieldView{
				{Name: "Favorite Meats_0", CleanName: "Favorite-Meats-0", Label: "Meat", Kind: widgets.KindText, Value: "Bacon", Key: "k0"},
				{Name: "Favorite Meats_1", CleanName: "Favorite-Meats-1", Label: "Meat", Kind: widgets.KindText, Value: "Ham", Key: "k1"},
			},
		},
	}}}}

	output := renderView(t, view, render.RenderOptions{})
	assertContains(t, output,
		`<fieldset id="vf-Tenant" class="varform-group varform-structure">`,
		`<input type="text" id="vf-Tenant-Full-Name" name="Full Name" value="Ada">`,
		`<fieldset id="vf-Favorite-Meats" class="varform-group varform-collection" data-keys="k0 k1">`,
		`<div class="varform-row" data-key="k0">`,
		`id="vf-Favorite-Meats-k1-Favorite-Meats-1" name="Favorite Meats_1" value="Ham"`,
		`<button type="button" class="varform-remove" data-key="k1">Remove</button>`,
		`<button type="button" class="varform-add" data-collection="Favorite Meats">Add</button>`,
	)
	if strings.Count(output, "<fieldset") != strings.Count(output, "</fieldset>") {
		t.Fatalf("unbalanced fieldsets\n%s", output)
	}
}

func TestRenderer_AppliesSubset(t *testing.T) {
	t.Parallel()

	view := render.View{Sections: []render.SectionView{
		{Name: "Parties", Fields: []render.FieldView{{Name: "Tenant Name", CleanName: "Tenant-Name", Kind: widgets.KindText}}},
		{Name: "Terms", Fields: []render.FieldView{{Name: "Rent", CleanName: "Rent", Kind: widgets.KindNumber}}},
	}}

	output := renderView(t, view, render.RenderOptions{Subset: render.FieldSubset{Sections: []string{"terms"}}})
	assertContains(t, output, `name="Rent"`)
	assertNotContains(t, output, "Parties", "Tenant Name")
}

func TestRenderer_CustomTemplates(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"templates/form.tmpl": {Data: []byte(`{% for section in sections %}{% for item in section.items %}[{{ item.field.name }}]{% endfor %}{% endfor %}`)},
	}
	renderer := newRenderer(t, html.WithTemplatesFS(files))
	view := render.View{Sections: []render.SectionView{{Fields: []render.FieldView{{Name: "Rent", CleanName: "Rent", Kind: widgets.KindText}}}}}

	out, err := renderer.Render(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "[Rent]" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderer_SingleFieldUsesFieldPartial(t *testing.T) {
	t.Parallel()

	view := render.View{Sections: []render.SectionView{{Fields: []render.FieldView{{Name: "Rent", CleanName: "Rent", Label: "Rent", Kind: widgets.KindText, Valid: true}}}}}
	output := renderView(t, view, render.RenderOptions{})
	assertContains(t, output,
		`<div class="varform-field" data-kind="text">`,
		`<label for="vf-Rent">Rent</label>`,
	)
}

func TestRenderer_CustomTemplatesWithPartial(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"templates/form.tmpl":  {Data: []byte(`{% for section in sections %}{% for item in section.items %}{% include "field.tmpl" %}{% endfor %}{% endfor %}`)},
		"templates/field.tmpl": {Data: []byte(`<{{ item.field.name }}>`)},
	}
	renderer := newRenderer(t, html.WithTemplatesFS(files))
	view := render.View{Sections: []render.SectionView{{Fields: []render.FieldView{{Name: "Rent", CleanName: "Rent", Kind: widgets.KindText}}}}}

	out, err := renderer.Render(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "<Rent>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderer_LeaseForm(t *testing.T) {
	t.Parallel()

	ctx := testsupport.Context()
	eng := testsupport.LeaseEngine(t)
	params := map[string]string{"Tenant": `{"Full Name":"Ada"}`}
	exec, executed, err := eng.Execute(ctx, params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	orch := orchestrator.New(
		orchestrator.WithEngine(eng),
		orchestrator.WithKeyGenerator(testsupport.Counter()),
		orchestrator.WithInputProps(model.InputConfig{"Text": {model.PropPlaceholder: "Type here"}}),
	)
	f, err := orch.Build(ctx, orchestrator.Request{Exec: exec, ExecutedVariables: executed, Parameters: params})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer f.Close()

	output := renderView(t, render.Snapshot("Lease", f), render.RenderOptions{})
	assertContains(t, output,
		`<section class="varform-section" data-section="Parties">`,
		`<fieldset id="vf-Tenant" class="varform-group varform-structure">`,
		`name="Full Name" value="Ada"`,
		`<select id="vf-Color" name="Color"`,
		`class="varform-group varform-collection"`,
		`class="varform-row" data-key="`,
	)
	assertNotContains(t, output, "Internal Code")
}
