package reconcile

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrSchemaMismatch is returned when the note type lacks fields the sync
// writes or has no field that can identify a note.
var ErrSchemaMismatch = eris.New("note type does not match the expected fields")

// Plan states what a note type must provide.
type Plan struct {
	Required  []string
	Identity  []string
	Secondary []string
}

var PictureWordPlan = Plan{
	Required: []string{"Word", "Image", "Audio", "Notes", "IPA", "Gender", "POS", "Article"},
	Identity: []string{"Word"},
}

var ClozePlan = Plan{
	Identity:  []string{"Cloze", "Text"},
	Secondary: []string{"Text"},
}

// Schema is a resolved note type: its declared fields in order, the field
// that identifies a note, and an optional second field used when looking
// for duplicates.
type Schema struct {
	Model     string
	Fields    []string
	Identity  string
	Secondary string
}

func (s Schema) Has(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// First returns the first declared field, the one Anki checks for
// duplicates.
func (s Schema) First() string {
	if len(s.Fields) == 0 {
		return ""
	}
	return s.Fields[0]
}

type FieldLister interface {
	ModelFieldNames(ctx context.Context, model string) ([]string, error)
}

// ResolveSchema reads the field list of model and checks it against plan.
func ResolveSchema(ctx context.Context, store FieldLister, model string, plan Plan) (Schema, error) {
	fields, err := store.ModelFieldNames(ctx, model)
	if err != nil {
		return Schema{}, eris.Wrapf(err, "failed to read note type %q", model)
	}
	if len(fields) == 0 {
		return Schema{}, eris.Wrapf(ErrSchemaMismatch, "note type %q not found or has no fields", model)
	}

	s := Schema{Model: model, Fields: fields}

	var missing []string
	for _, f := range plan.Required {
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Schema{}, eris.Wrapf(ErrSchemaMismatch, "note type %q is missing fields: %s (has: %s)",
			model, strings.Join(missing, ", "), strings.Join(fields, ", "))
	}

	for _, f := range plan.Identity {
		if s.Has(f) {
			s.Identity = f
			break
		}
	}
	if s.Identity == "" {
		return Schema{}, eris.Wrapf(ErrSchemaMismatch, "note type %q has none of the fields %s",
			model, strings.Join(plan.Identity, ", "))
	}

	for _, f := range plan.Secondary {
		if s.Has(f) && f != s.Identity {
			s.Secondary = f
			break
		}
	}
	return s, nil
}
