package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/validation"
	"github.com/goliatone/go-varform/pkg/widgets"
)

const noFocus = -1

// Collection renders one row per element of an ordered composite value.
// Each row carries a synthetic identity key; keys are created lazily, shifted
// in lockstep with removals and are the only thing rows are matched by
// across renders.
type Collection struct {
	builder *Builder
	props   Props

	name        string
	clean       string
	description string
	typ         model.VariableType

	composite    string
	keys         []string
	rows         map[string]Node
	pendingFocus int
	state        validation.State
	failed       bool
	unmounted    bool
}

func newCollection(b *Builder, props Props) (*Collection, error) {
	c := &Collection{
		builder:      b,
		rows:         map[string]Node{},
		pendingFocus: noFocus,
	}
	c.describe(props)
	c.composite = c.normalize(props.Saved.Or(""))
	if err := c.layout(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection) Name() string             { return c.name }
func (c *Collection) CleanName() string        { return c.clean }
func (c *Collection) Description() string      { return c.description }
func (c *Collection) Type() model.VariableType { return c.typ }
func (c *Collection) Kind() widgets.Kind       { return widgets.KindCollection }
func (c *Collection) Value() string            { return c.composite }

// Keys returns the identity keys in row order.
func (c *Collection) Keys() []string { return append([]string(nil), c.keys...) }

// Size returns the number of rows.
func (c *Collection) Size() int { return len(c.keys) }

// Row returns the node rendered for key.
func (c *Collection) Row(key string) (Node, bool) {
	node, ok := c.rows[key]
	return node, ok
}

// Children returns the rows in order.
func (c *Collection) Children() []Node {
	out := make([]Node, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, c.rows[key])
	}
	return out
}

// PendingFocus returns the row index that will be focused after the next
// render, or -1.
func (c *Collection) PendingFocus() int { return c.pendingFocus }

// Valid reports the aggregate validity of the whole sequence.
func (c *Collection) Valid() bool { return !c.failed && !c.state.IsError }

func (c *Collection) ErrorMessage() string {
	if c.failed {
		return validation.FailureMessage(c.typ)
	}
	return c.state.ErrorMessage
}

func (c *Collection) ShowError() bool {
	return c.failed || (c.state.ShouldShowError && c.state.ErrorMessage != "")
}

// Focus moves focus to the first row.
func (c *Collection) Focus() {
	if len(c.keys) > 0 {
		c.rows[c.keys[0]].Focus()
	}
}

// Sync adopts the parent's composite.
func (c *Collection) Sync(props Props) {
	if c.unmounted {
		return
	}
	c.describe(props)
	c.composite = c.normalize(props.Saved.Or(""))
	if err := c.layout(); err != nil {
		c.builder.logger.Error("form: collection sync failed", "field", c.name, "error", err)
	}
}

// AfterRender fires the pending focus exactly once.
func (c *Collection) AfterRender() {
	for _, key := range c.keys {
		c.rows[key].AfterRender()
	}
	if c.pendingFocus == noFocus {
		return
	}
	index := c.pendingFocus
	c.pendingFocus = noFocus
	if index >= len(c.keys) {
		return
	}
	row := c.rows[c.keys[index]]
	row.Focus()
	if c.builder.focus != nil {
		c.builder.focus(row)
	}
}

func (c *Collection) Unmount() {
	c.unmounted = true
	for _, row := range c.rows {
		row.Unmount()
	}
}

// ElementKey returns the index-qualified key rows are addressed by.
func (c *Collection) ElementKey(index int) string {
	return fmt.Sprintf("%s_%d", c.name, index)
}

// Add appends a default element, keys it and schedules focus on it.
func (c *Collection) Add() {
	if c.unmounted {
		return
	}
	eng := c.builder.env.Engine
	next, err := eng.AddElementToCollection(c.props.Variable, c.props.Exec, c.composite)
	if err != nil {
		c.fail("add", err)
		return
	}
	c.failed = false
	c.composite = c.normalize(next)
	size := c.size()
	for len(c.keys) < size {
		c.keys = append(c.keys, c.builder.newKey())
	}
	c.pendingFocus = size - 1
	c.commit(nil)
}

// Remove deletes the element at index and the identity key at the same
// position.
func (c *Collection) Remove(index int) {
	if c.unmounted || index < 0 || index >= len(c.keys) {
		return
	}
	eng := c.builder.env.Engine
	next, err := eng.RemoveElementFromCollection(c.props.Variable, c.props.Exec, c.composite, index)
	if err != nil {
		c.fail("remove", err)
		return
	}
	c.failed = false

	removed := c.keys[index]
	c.keys = append(c.keys[:index:index], c.keys[index+1:]...)
	if row, ok := c.rows[removed]; ok {
		row.Unmount()
		delete(c.rows, removed)
	}
	switch {
	case c.pendingFocus == index:
		c.pendingFocus = noFocus
	case c.pendingFocus > index:
		c.pendingFocus--
	}

	c.composite = c.normalize(next)
	c.commit(nil)
}

// Set writes value at the index encoded in key ("<collection>_<index>").
func (c *Collection) Set(key string, value model.Value, errData *model.FieldError) {
	if c.unmounted {
		return
	}
	index, ok := c.parseKey(key)
	if !ok {
		c.builder.logger.Warn("form: ignoring collection key", "field", c.name, "key", key)
		return
	}
	eng := c.builder.env.Engine
	next, err := eng.SetElementToCollection(c.props.Variable, c.props.Exec, c.composite, index, value.Text)
	if err != nil {
		c.fail("set", err)
		return
	}
	c.failed = false
	c.composite = c.normalize(next)
	c.commit(errData)
}

// Enter handles the Enter key inside the row keyed by key: a non-empty, valid
// row adds a new element. The default action is always suppressed.
func (c *Collection) Enter(key string) (preventDefault bool) {
	row, ok := c.rows[key]
	if ok && row.Value() != "" && row.Valid() {
		c.Add()
	}
	return true
}

func (c *Collection) parseKey(key string) (int, bool) {
	cut := strings.LastIndex(key, "_")
	if cut < 0 || key[:cut] != c.name {
		return 0, false
	}
	index, err := strconv.Atoi(key[cut+1:])
	if err != nil || index < 0 || index >= len(c.keys) {
		return 0, false
	}
	return index, true
}

func (c *Collection) describe(props Props) {
	eng := c.builder.env.Engine
	c.props = props
	c.name = eng.Name(props.Variable)
	c.clean = eng.CleanName(props.Variable)
	c.description = eng.Description(props.Variable)
	c.typ = eng.Type(props.Variable)
}

func (c *Collection) normalize(composite string) string {
	return c.builder.env.Engine.CollectionValue(c.props.Variable, c.props.Exec, composite)
}

func (c *Collection) size() int {
	return c.builder.env.Engine.CollectionSize(c.props.Variable, c.composite, c.props.Exec)
}

// commit validates the whole sequence, re-lays out the rows and emits. Rows
// are resynced before the parent hears about the change.
func (c *Collection) commit(rowErr *model.FieldError) {
	res := validation.OnChange(validation.Candidate{Text: c.composite}, c.validationProps(), c.state)
	c.state = res.State()
	if err := c.layout(); err != nil {
		c.builder.logger.Error("form: collection layout failed", "field", c.name, "error", err)
	}
	if c.props.OnChange == nil {
		return
	}
	errData := &res.ErrorData
	if !res.ErrorData.IsError && rowErr != nil {
		errData = rowErr
	}
	c.props.OnChange(c.name, model.ValueOf(c.composite), errData)
}

func (c *Collection) validationProps() validation.Props {
	return validation.Props{
		CleanName: c.clean,
		Name:      c.name,
		Type:      c.typ,
		Validity: func(_ string, value string) model.Validity {
			return c.builder.env.Engine.CheckValidity(c.props.Variable, value, c.props.Exec)
		},
		OnValidate: c.props.OnValidate,
	}
}

func (c *Collection) fail(op string, err error) {
	c.failed = true
	c.builder.logger.Warn("form: collection mutation failed", "field", c.name, "op", op, "error", err)
}

// layout aligns keys with the current size and builds or resyncs one row per
// key.
func (c *Collection) layout() error {
	eng := c.builder.env.Engine
	size := c.size()
	for len(c.keys) < size {
		c.keys = append(c.keys, c.builder.newKey())
	}
	for _, key := range c.keys[size:] {
		if row, ok := c.rows[key]; ok {
			row.Unmount()
			delete(c.rows, key)
		}
	}
	c.keys = c.keys[:size]

	for index, key := range c.keys {
		element := eng.CreateVariableFromCollection(c.props.Variable, index, c.props.Exec)
		saved := model.Saved(eng.CollectionElementValue(c.props.Variable, c.props.Exec, c.composite, index))
		props := c.builder.childProps(c.props, element, saved, c.rowChange(key))

		if row, ok := c.rows[key]; ok {
			row.Sync(props)
			continue
		}
		row, err := c.builder.Build(props)
		if err != nil {
			return err
		}
		c.rows[key] = row
	}
	return nil
}

// rowChange routes a row's edits by its identity key, so a row that moved
// after a removal still writes to its current index.
func (c *Collection) rowChange(key string) model.ChangeFunc {
	return func(_ string, value model.Value, errData *model.FieldError) {
		for index, current := range c.keys {
			if current == key {
				c.Set(c.ElementKey(index), value, errData)
				return
			}
		}
	}
}
