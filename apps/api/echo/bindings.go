package echoapi

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
)

var (
	errValueType  = "must be a string or a list of strings"
	errValueEmpty = "must hold at least one line"
)

// EditRequest replaces one leaf of an edit buffer.
// Value is a string for text fields and a list of strings for list fields.
type EditRequest struct {
	Path  []string        `json:"path" validate:"required,min=1,dive,required"`
	Value json.RawMessage `json:"value" validate:"required"`
}

// edit is a decoded EditRequest.
type edit struct {
	path  content.Path
	text  *string
	lines []string
}

func bindEdit(ctx echo.Context, validate *validator.Validate) (edit, error) {
	var data EditRequest
	if err := ctx.Bind(&data); err != nil {
		return edit{}, errors.Wrap(err, "binding to EditRequest")
	}
	if err := validate.Struct(data); err != nil {
		return edit{}, err
	}

	e := edit{path: content.Path(data.Path)}
	if raw := bytes.TrimSpace(data.Value); len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return edit{}, core.NewValidationError(nil, core.FieldError{Field: "value", Error: errValueType})
		}
		e.text = &text
		return e, nil
	}
	if err := json.Unmarshal(data.Value, &e.lines); err != nil || e.lines == nil {
		return edit{}, core.NewValidationError(nil, core.FieldError{Field: "value", Error: errValueType})
	}
	if len(e.lines) == 0 {
		return edit{}, core.NewValidationError(nil, core.FieldError{Field: "value", Error: errValueEmpty})
	}
	return e, nil
}

// apply writes the edit to the editor's buffer.
func (e edit) apply(ed *content.Editor) error {
	if e.text != nil {
		return ed.SetText(e.path, *e.text)
	}
	return ed.SetLines(e.path, e.lines)
}
