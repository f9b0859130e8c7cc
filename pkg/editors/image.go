package editors

import (
	"context"
	"strings"

	"github.com/goliatone/go-varform/pkg/model"
	"github.com/goliatone/go-varform/pkg/validation"
	"github.com/goliatone/go-varform/pkg/widgets"
)

// Image target size defaults, overridable through the "width" and "height"
// input props.
const (
	DefaultImageWidth  = 600
	DefaultImageHeight = 400
)

// Image commits in two stages: SelectFile shows a local preview, Save resizes
// it and emits the result.
type Image struct {
	base
	preview *model.ImageValue
}

func newImage(env Env, props Props) *Image {
	i := &Image{}
	i.init(widgets.KindImage, env, props)
	return i
}

// Preview returns the selected, not yet saved image.
func (i *Image) Preview() (model.ImageValue, bool) {
	if i.preview == nil {
		return model.ImageValue{}, false
	}
	return *i.preview, true
}

// CanEdit reports whether the committed image can be re-cropped locally.
// Remote images cannot.
func (i *Image) CanEdit() bool {
	if i.inactive() {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(i.buffer))
	return !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://")
}

// TargetSize returns the resize dimensions.
func (i *Image) TargetSize() (width, height int) {
	return i.props.Input.Int("width", DefaultImageWidth), i.props.Input.Int("height", DefaultImageHeight)
}

// SelectFile stages an image for preview without committing it.
func (i *Image) SelectFile(file model.ImageValue) {
	if i.inactive() {
		return
	}
	i.hook(model.PropOnChange, file.File)
	i.preview = &file
}

// Save resizes the staged image and commits it.
func (i *Image) Save(ctx context.Context) {
	if i.inactive() || i.preview == nil {
		return
	}
	staged := *i.preview
	width, height := i.TargetSize()
	seq := i.next()

	i.schedule(ctx, func(ctx context.Context) func() {
		resized, err := i.resize(ctx, staged, width, height)
		return func() {
			if !i.current(seq) {
				return
			}
			if err != nil {
				i.onFailure(model.EventChange, validation.Candidate{Image: &staged}, err)
				return
			}
			saved := model.ImageValue{File: staged.File, Value: resized}
			res := i.onChange(validation.Candidate{Image: &saved})
			if !res.ErrorData.IsError {
				i.preview = nil
				i.buffer = resized
			}
			i.commit(resized, res)
		}
	})
}

func (i *Image) resize(ctx context.Context, image model.ImageValue, width, height int) (string, error) {
	if i.env.Images == nil {
		return image.Value, nil
	}
	return i.env.Images.Resize(ctx, image, width, height)
}

// Delete clears the committed image.
func (i *Image) Delete() {
	if i.inactive() {
		return
	}
	i.next()
	i.hook(model.PropOnChange, "")
	res := i.onChange(validation.Candidate{})
	i.preview = nil
	i.buffer = ""
	errData := res.ErrorData
	i.emit(model.Unset, &errData)
}

// Change stages raw as the image value and saves it; "" deletes.
func (i *Image) Change(ctx context.Context, raw string) {
	if raw == "" {
		i.Delete()
		return
	}
	i.SelectFile(model.ImageValue{Value: raw})
	i.Save(ctx)
}

// Blur re-validates the committed image.
func (i *Image) Blur() {
	if i.unmounted {
		return
	}
	i.focused = false
	i.onBlur(validation.Candidate{Image: &model.ImageValue{Value: i.buffer}})
	i.hook(model.PropOnBlur, i.buffer)
}
