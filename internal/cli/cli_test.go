package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-varform/pkg/config"
	"github.com/goliatone/go-varform/pkg/render"
	"github.com/goliatone/go-varform/pkg/renderers/tui"
)

const intakeTemplate = `
name: Intake
variables:
  - name: Full Name
    type: Text
  - name: Has Pets
    type: YesNo
  - name: Start Date
    type: Date
  - name: Property
    type: Address
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type scriptedDriver struct {
	inputs  []string
	confirm []bool
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return next, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	if len(d.confirm) == 0 {
		return false, errors.New("no confirm scripted")
	}
	next := d.confirm[0]
	d.confirm = d.confirm[1:]
	return next, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return -1, errors.New("no select scripted")
}

func (d *scriptedDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	return "", errors.New("no textarea scripted")
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	if cmd.Use != "varform" {
		t.Fatalf("unexpected use %q", cmd.Use)
	}
	for _, name := range []string{"fill", "render", "serve"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub == nil || sub.Name() != name {
			t.Fatalf("command %s missing: %v", name, err)
		}
	}
	for _, flag := range []string{"template", "config", "param", "params-file", "log-level"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("missing persistent flag %q", flag)
		}
	}
}

func TestRender_HTMLFromSample(t *testing.T) {
	out, err := execute(t, &RootOptions{}, "render", "--param", "Rent Amount=1200", "--title", "Lease")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{
		`<form class="varform" method="post">`,
		`<h1 class="varform-title">Lease</h1>`,
		`name="Rent Amount" value="1200"`,
		`data-section="Premises"`,
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output\n%s", fragment, out)
		}
	}
}

func TestRender_JSONView(t *testing.T) {
	template := writeFile(t, "intake.yaml", intakeTemplate)
	out, err := execute(t, &RootOptions{}, "render", "-t", template, "-p", "Full Name=Ada", "--format", "json")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var view render.View
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.Sections) != 1 || len(view.Sections[0].Fields) != 4 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if got := view.Sections[0].Fields[0]; got.Name != "Full Name" || got.Value != "Ada" {
		t.Fatalf("unexpected first field: %+v", got)
	}
}

func TestRender_Errors(t *testing.T) {
	if _, err := execute(t, &RootOptions{}, "render", "--format", "pdf"); err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Fatalf("expected invalid format error, got %v", err)
	}
	if _, err := execute(t, &RootOptions{}, "render", "--param", "missing-separator"); err == nil {
		t.Fatal("expected invalid param error")
	}
	if _, err := execute(t, &RootOptions{}, "render", "--log-level", "loud"); err == nil {
		t.Fatal("expected invalid log level error")
	}
}

func TestParams_FileThenFlags(t *testing.T) {
	opts := &RootOptions{
		ParamsFile: writeFile(t, "params.yaml", "Full Name: Grace\nHas Pets: \"true\"\n"),
		Params:     []string{"Full Name=Ada", "Notes=a=b"},
	}
	got, err := opts.params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	want := map[string]string{"Full Name": "Ada", "Has Pets": "true", "Notes": "a=b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_UsesPromptDriver(t *testing.T) {
	template := writeFile(t, "intake.yaml", intakeTemplate)
	driver := &scriptedDriver{inputs: []string{"Ada", "", ""}, confirm: []bool{false}}

	out, err := execute(t, &RootOptions{driver: driver}, "fill", "-t", template)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{"Full Name": "Ada", "Has Pets": "false"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fill output mismatch (-want +got):\n%s", diff)
	}
}

func TestServe_AppliesSubmissions(t *testing.T) {
	opts := &RootOptions{
		Template: writeFile(t, "intake.yaml", intakeTemplate),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	srv, err := newServer(context.Background(), opts, "Intake")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	post := func(values url.Values) {
		t.Helper()
		res, err := client.PostForm(ts.URL+"/", values)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		_ = res.Body.Close()
		if res.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", res.StatusCode)
		}
	}
	get := func(path string) string {
		t.Helper()
		res, err := client.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		defer func() { _ = res.Body.Close() }()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("get %s: status %d", path, res.StatusCode)
		}
		body, _ := io.ReadAll(res.Body)
		return string(body)
	}

	if page := get("/"); !strings.Contains(page, `<h1 class="varform-title">Intake</h1>`) {
		t.Fatalf("unexpected page\n%s", page)
	}

	post(url.Values{"Full Name": {"Ada"}, "Start Date": {"2024-01-02"}})
	var params map[string]string
	if err := json.Unmarshal([]byte(get("/params")), &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	want := map[string]string{"Full Name": "Ada", "Start Date": "1704153600000"}
	if diff := cmp.Diff(want, params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}

	post(url.Values{"Property": {"downing"}})
	suggestion := "10 Downing Street, London, SW1A 2AA, GB"
	if page := get("/"); !strings.Contains(page, `<option value="`+suggestion+`">`) {
		t.Fatalf("expected address suggestion in page\n%s", page)
	}

	post(url.Values{"Property": {suggestion}})
	if err := json.Unmarshal([]byte(get("/params")), &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if !strings.Contains(params["Property"], "addr-004") {
		t.Fatalf("expected resolved address, got %q", params["Property"])
	}

	if body := get("/api/addresses?q=baker"); !strings.Contains(body, "addr-003") {
		t.Fatalf("expected address search results, got %s", body)
	}
}

func TestServe_UsesConfiguredAddressBook(t *testing.T) {
	book := writeFile(t, "book.yaml", `
- placeId: book-1
  streetNumber: "5"
  streetName: Harbour Road
  city: Portsmouth
  country: GB
`)
	opts := &RootOptions{
		Template: writeFile(t, "intake.yaml", intakeTemplate),
		cfg:      config.Config{AddressBook: book},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	srv, err := newServer(context.Background(), opts, "")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	res, err := ts.Client().Get(ts.URL + "/api/addresses?q=harbour")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	if !strings.Contains(string(body), "book-1") {
		t.Fatalf("expected configured entry, got %s", body)
	}

	res, err = ts.Client().Get(ts.URL + "/api/addresses?q=downing")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	body, _ = io.ReadAll(res.Body)
	_ = res.Body.Close()
	if strings.Contains(string(body), "addr-004") {
		t.Fatalf("expected the embedded book to be replaced, got %s", body)
	}

	srv.mu.Lock()
	srv.apply(context.Background(), "Property", "harbour")
	srv.mu.Unlock()
	srv.loop.Flush()

	srv.mu.Lock()
	view := render.Snapshot("", srv.session.Form())
	srv.mu.Unlock()
	var suggestions []string
	for _, section := range view.Sections {
		for _, field := range section.Fields {
			if field.Name == "Property" {
				suggestions = field.Suggestions
			}
		}
	}
	if diff := cmp.Diff([]string{"5 Harbour Road, Portsmouth, GB"}, suggestions); diff != "" {
		t.Fatalf("editor suggestions mismatch (-want +got):\n%s", diff)
	}
}
