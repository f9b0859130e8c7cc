package editors

import (
	"context"

	"github.com/goliatone/go-varform/pkg/widgets"
)

// Choice selects one value from an enumerated set. It shares Text's change
// rules, so an empty selection always emits unset.
type Choice struct {
	Text
}

func newChoice(env Env, props Props) *Choice {
	c := &Choice{}
	c.init(widgets.KindChoice, env, props)
	return c
}

// Options returns the enumerated values in engine order.
func (c *Choice) Options() []string {
	return c.env.Engine.ChoiceValues(c.props.Variable, c.props.Exec)
}

// Select picks one of the options; "" clears the selection.
func (c *Choice) Select(ctx context.Context, value string) {
	c.Change(ctx, value)
}
