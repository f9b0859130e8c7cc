package editors

import (
	"context"
	"strconv"
	"time"

	"github.com/goliatone/go-varform/pkg/widgets"
)

// Date wraps a date picker. The picker is the source of truth for the parsed
// date; the editor stores it as an epoch-millisecond string.
type Date struct {
	Text
}

func newDate(kind widgets.Kind, env Env, props Props) *Date {
	d := &Date{}
	d.init(kind, env, props)
	return d
}

// EnableTime reports whether the picker carries a time of day.
func (d *Date) EnableTime() bool {
	return d.kind == widgets.KindDateTime
}

// Pick commits a picker selection in UTC. Date editors drop the time of day.
func (d *Date) Pick(ctx context.Context, at time.Time) {
	at = at.UTC()
	if !d.EnableTime() {
		at = time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	}
	d.Change(ctx, strconv.FormatInt(at.UnixMilli(), 10))
}

// Clear removes the selection.
func (d *Date) Clear(ctx context.Context) {
	d.Change(ctx, "")
}

// Time converts the buffer back into the picker's value.
func (d *Date) Time() (time.Time, bool) {
	ms, err := strconv.ParseInt(d.buffer, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
