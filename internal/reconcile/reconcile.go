// Package reconcile creates or updates Anki notes so that each record maps
// to exactly one note.
package reconcile

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/internal/anki"
	"github.com/markgrovs/anki-spanish/pkg/logger"
)

// NoteStore is the subset of AnkiConnect the reconciler talks to.
type NoteStore interface {
	FieldLister
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, ids []int64) ([]anki.NoteInfo, error)
	AddNote(ctx context.Context, note anki.Note) (int64, error)
	UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error
	AddTags(ctx context.Context, ids []int64, tags []string) error
	StoreMediaFile(ctx context.Context, filename, path string) error
}

type Outcome int

const (
	Failed Outcome = iota
	Added
	Updated
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	default:
		return "failed"
	}
}

// Media is a local file referenced by a note's fields.
type Media struct {
	Filename string
	Path     string
	Fresh    bool
}

// Target is the desired state of one note.
type Target struct {
	Deck   string
	Fields map[string]string
	Tags   []string
	Media  []Media
}

type Reconciler struct {
	store  NoteStore
	schema Schema
	logger *logger.Logger
	dryRun bool
}

type Option func(*Reconciler)

// WithDryRun stops Upsert after the lookup. The outcome reports what would
// have happened; no note or media file is written.
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) {
		r.dryRun = dryRun
	}
}

func New(store NoteStore, schema Schema, logger *logger.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:  store,
		schema: schema,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Schema() Schema {
	return r.schema
}

// Upsert finds the note whose identity field equals the target's and
// updates it, or adds a new note. When Anki rejects the new note as a
// duplicate, broader searches look for the note that caused it.
func (r *Reconciler) Upsert(ctx context.Context, t Target) (Outcome, error) {
	fields := r.schemaFields(t.Fields)
	identity := strings.TrimSpace(fields[r.schema.Identity])
	if identity == "" {
		return Failed, eris.Errorf("empty %s field", r.schema.Identity)
	}

	note, err := r.find(ctx, anki.Query(t.Deck, r.schema.Model, Fragment(identity)), r.schema.Identity, identity)
	if err != nil {
		return Failed, err
	}
	if note != nil {
		return r.update(ctx, *note, fields, t)
	}
	if r.dryRun {
		r.logger.Info("Would add: %s", identity)
		return Added, nil
	}

	if err := r.upload(ctx, t.Media, false); err != nil {
		return Failed, err
	}
	_, err = r.store.AddNote(ctx, anki.Note{
		DeckName:  t.Deck,
		ModelName: r.schema.Model,
		Fields:    fields,
		Tags:      t.Tags,
	})
	if err == nil {
		r.logger.Info("Added: %s", identity)
		return Added, nil
	}
	if !eris.Is(err, anki.ErrDuplicate) {
		return Failed, err
	}

	r.logger.Debug("Duplicate reported for %s, searching for the existing note", identity)
	note, err = r.rescue(ctx, t.Deck, fields)
	if err != nil {
		return Failed, err
	}
	if note == nil {
		return Failed, eris.Errorf("anki reports %q as a duplicate but no matching note was found", identity)
	}
	return r.update(ctx, *note, fields, t)
}

func (r *Reconciler) update(ctx context.Context, note anki.NoteInfo, fields map[string]string, t Target) (Outcome, error) {
	unchanged := sameFields(note, fields) && hasTags(note.Tags, t.Tags)
	if r.dryRun {
		if unchanged {
			return Unchanged, nil
		}
		r.logger.Info("Would update: %s", strings.TrimSpace(fields[r.schema.Identity]))
		return Updated, nil
	}
	if unchanged {
		if err := r.upload(ctx, t.Media, true); err != nil {
			return Failed, err
		}
		r.logger.Debug("Unchanged: %s", fields[r.schema.Identity])
		return Unchanged, nil
	}

	if err := r.upload(ctx, t.Media, false); err != nil {
		return Failed, err
	}
	if err := r.store.UpdateNoteFields(ctx, note.NoteID, fields); err != nil {
		return Failed, err
	}
	if err := r.store.AddTags(ctx, []int64{note.NoteID}, t.Tags); err != nil {
		return Failed, err
	}
	r.logger.Info("Updated: %s", strings.TrimSpace(fields[r.schema.Identity]))
	return Updated, nil
}

// rescue widens the search from deck to note type, trying the identity
// field, the secondary field and the field Anki checks for duplicates.
func (r *Reconciler) rescue(ctx context.Context, deck string, fields map[string]string) (*anki.NoteInfo, error) {
	var candidates []string
	for _, f := range []string{r.schema.Identity, r.schema.Secondary, r.schema.First()} {
		if f == "" || contains(candidates, f) || strings.TrimSpace(fields[f]) == "" {
			continue
		}
		candidates = append(candidates, f)
	}

	for _, scope := range []string{deck, ""} {
		for _, field := range candidates {
			value := strings.TrimSpace(fields[field])
			note, err := r.find(ctx, anki.Query(scope, r.schema.Model, Fragment(value)), field, value)
			if err != nil {
				return nil, err
			}
			if note != nil {
				r.logger.Debug("Found existing note %d by %s", note.NoteID, field)
				return note, nil
			}
		}
	}
	return nil, nil
}

// find runs query and returns the first note whose field equals value.
func (r *Reconciler) find(ctx context.Context, query, field, value string) (*anki.NoteInfo, error) {
	ids, err := r.store.FindNotes(ctx, query)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	infos, err := r.store.NotesInfo(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		if infos[i].Field(field) == value {
			return &infos[i], nil
		}
	}
	return nil, nil
}

// upload stores media before a write. With onlyFresh set, only files
// produced during this run are sent.
func (r *Reconciler) upload(ctx context.Context, media []Media, onlyFresh bool) error {
	for _, m := range media {
		if m.Path == "" || (onlyFresh && !m.Fresh) {
			continue
		}
		if err := r.store.StoreMediaFile(ctx, m.Filename, m.Path); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) schemaFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if r.schema.Has(k) {
			out[k] = v
		}
	}
	return out
}

func sameFields(note anki.NoteInfo, fields map[string]string) bool {
	for k, v := range fields {
		existing, ok := note.Fields[k]
		if !ok || strings.TrimSpace(existing.Value) != strings.TrimSpace(v) {
			return false
		}
	}
	return true
}

func hasTags(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[strings.ToLower(t)] = true
	}
	for _, t := range want {
		if !set[strings.ToLower(t)] {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
