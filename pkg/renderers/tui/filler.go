package tui

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-varform/pkg/editors"
	"github.com/goliatone/go-varform/pkg/form"
	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/orchestrator"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
	noneOption     = "(none)"
)

// errRetry asks the leaf loop to prompt again without reporting validity.
var errRetry = errors.New("tui: retry prompt")

// filler walks a session's form. Nodes are addressed by name paths and
// re-resolved after every answer because each change re-renders the form.
type filler struct {
	renderer *Renderer
	session  *orchestrator.Session
}

func (f *filler) run(ctx context.Context) error {
	asked := make(map[string]bool)
	for {
		next := ""
		for _, node := range f.session.Form().Fields() {
			if !asked[node.Name()] {
				next = node.Name()
				break
			}
		}
		if next == "" {
			return nil
		}
		asked[next] = true
		if err := f.prompt(ctx, []string{next}); err != nil {
			return err
		}
	}
}

func (f *filler) resolve(path []string) (form.Node, bool) {
	node, ok := f.session.Form().Field(path[0])
	for _, name := range path[1:] {
		if !ok {
			return nil, false
		}
		ok = false
		for _, child := range node.Children() {
			if child.Name() == name {
				node, ok = child, true
				break
			}
		}
	}
	return node, ok
}

func (f *filler) prompt(ctx context.Context, path []string) error {
	node, ok := f.resolve(path)
	if !ok {
		return nil
	}
	switch n := node.(type) {
	case *form.Structure:
		return f.promptStructure(ctx, path, n)
	case *form.Collection:
		return f.promptCollection(ctx, path)
	case *form.Leaf:
		return f.promptLeaf(ctx, path)
	default:
		f.renderer.logger.Warn("tui: skipping unknown node", "field", node.Name(), "type", fmt.Sprintf("%T", node))
		return nil
	}
}

func (f *filler) promptStructure(ctx context.Context, path []string, s *form.Structure) error {
	if err := f.info(ctx, f.renderer.theme.SectionPrefix+label(s)); err != nil {
		return err
	}
	for i := 0; ; i++ {
		node, ok := f.resolve(path)
		if !ok {
			return nil
		}
		children := node.Children()
		if i >= len(children) {
			return nil
		}
		if err := f.prompt(ctx, appendPath(path, children[i].Name())); err != nil {
			return err
		}
	}
}

func (f *filler) promptCollection(ctx context.Context, path []string) error {
	for i := 0; ; i++ {
		node, ok := f.resolve(path)
		if !ok {
			return nil
		}
		c := node.(*form.Collection)
		if i >= c.Size() {
			more, err := f.renderer.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("Add another %s?", label(c)),
			})
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			c.Add()
			if node, ok = f.resolve(path); !ok {
				return nil
			}
			c = node.(*form.Collection)
			if i >= c.Size() {
				return f.info(ctx, f.renderer.theme.ErrorPrefix+c.ErrorMessage())
			}
		}
		if err := f.prompt(ctx, appendPath(path, c.ElementKey(i))); err != nil {
			return err
		}
	}
}

func (f *filler) promptLeaf(ctx context.Context, path []string) error {
	for {
		node, ok := f.resolve(path)
		if !ok {
			return nil
		}
		leaf, ok := node.(*form.Leaf)
		if !ok {
			return f.prompt(ctx, path)
		}

		leaf.Focus()
		err := f.answer(ctx, leaf.Editor)
		if errors.Is(err, errRetry) {
			continue
		}
		if err != nil {
			return err
		}

		if node, ok = f.resolve(path); !ok {
			return nil
		}
		if leaf, ok := node.(*form.Leaf); ok {
			leaf.Blur()
		}
		if node.Valid() {
			return nil
		}
		message := node.ErrorMessage()
		if message == "" {
			message = "invalid value"
		}
		if err := f.info(ctx, fmt.Sprintf("%sInvalid %s: %s", f.renderer.theme.ErrorPrefix, label(node), message)); err != nil {
			return err
		}
	}
}

func (f *filler) answer(ctx context.Context, ed editors.Editor) error {
	driver := f.renderer.driver
	message := label(ed)
	help := ed.Input().Placeholder()

	switch e := ed.(type) {
	case *editors.YesNo:
		current, _ := e.Selection()
		yes, err := driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current, Help: help})
		if err != nil {
			return err
		}
		e.Select(ctx, yes)
		return nil

	case *editors.Choice:
		options := append([]string{noneOption}, e.Options()...)
		idx, err := driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: max(indexOf(options, e.Value()), 0),
			Help:         help,
		})
		if err != nil {
			return err
		}
		switch {
		case idx <= 0 || idx >= len(options):
			e.Select(ctx, "")
		default:
			e.Select(ctx, options[idx])
		}
		return nil

	case *editors.Date:
		layout, hint := dateLayout, "YYYY-MM-DD"
		if e.EnableTime() {
			layout, hint = dateTimeLayout, "YYYY-MM-DD HH:MM"
		}
		current := ""
		if at, ok := e.Time(); ok {
			current = at.UTC().Format(layout)
		}
		raw, err := driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("%s (%s)", message, hint),
			Default: current,
			Help:    help,
		})
		if err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			e.Clear(ctx)
			return nil
		}
		at, err := time.ParseInLocation(layout, raw, time.UTC)
		if err != nil {
			if infoErr := f.info(ctx, fmt.Sprintf("%sInvalid %s: expected %s", f.renderer.theme.ErrorPrefix, message, hint)); infoErr != nil {
				return infoErr
			}
			return errRetry
		}
		e.Pick(ctx, at)
		return nil

	case *editors.Address:
		raw, err := driver.Input(ctx, InputConfig{Message: message, Default: e.Value(), Help: help})
		if err != nil {
			return err
		}
		e.Change(ctx, raw)
		suggestions := e.Suggestions()
		if raw == "" || !e.Valid() {
			return nil
		}
		if len(suggestions) == 0 {
			if err := f.info(ctx, fmt.Sprintf("%sNo address matches %q", f.renderer.theme.InfoPrefix, raw)); err != nil {
				return err
			}
			return errRetry
		}
		options := make([]string, 0, len(suggestions))
		for _, suggestion := range suggestions {
			options = append(options, suggestion.Description)
		}
		idx, err := driver.Select(ctx, SelectConfig{Message: message, Options: options, Help: help})
		if err != nil {
			return err
		}
		e.Select(ctx, idx)
		return nil

	case *editors.Image:
		if !e.CanEdit() {
			return nil
		}
		raw, err := driver.Input(ctx, InputConfig{
			Message: message + " (image path, blank to keep)",
			Help:    help,
		})
		if err != nil {
			return err
		}
		path := strings.TrimSpace(raw)
		if path == "" {
			return nil
		}
		image, err := readImage(path)
		if err != nil {
			if infoErr := f.info(ctx, fmt.Sprintf("%s%v", f.renderer.theme.ErrorPrefix, err)); infoErr != nil {
				return infoErr
			}
			return errRetry
		}
		e.SelectFile(image)
		e.Save(ctx)
		return nil

	case *editors.Text:
		var raw string
		var err error
		if e.Multiline() {
			raw, err = driver.TextArea(ctx, TextAreaConfig{Message: message, Default: e.Value(), Help: help})
		} else {
			raw, err = driver.Input(ctx, InputConfig{Message: message, Default: e.Value(), Help: help})
		}
		if err != nil {
			return err
		}
		e.Change(ctx, raw)
		return nil

	default:
		raw, err := driver.Input(ctx, InputConfig{Message: message, Default: ed.Value(), Help: help})
		if err != nil {
			return err
		}
		ed.Change(ctx, raw)
		return nil
	}
}

func (f *filler) info(ctx context.Context, message string) error {
	return f.renderer.driver.Info(ctx, message)
}

type labelled interface {
	Name() string
	Description() string
}

func label(node labelled) string {
	if description := strings.TrimSpace(node.Description()); description != "" {
		return description
	}
	return node.Name()
}

func appendPath(path []string, name string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, name)
}

// readImage loads a file as a data URL image value.
func readImage(path string) (model.ImageValue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ImageValue{}, fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return model.ImageValue{}, fmt.Errorf("read image: %s is %s, not an image", path, mime)
	}
	return model.ImageValue{
		File:  path,
		Value: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
