// Package testsupport holds in-memory stand-ins shared by package tests.
package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/internal/anki"
)

// FakeNote is a note held by FakeAnki.
type FakeNote struct {
	ID     int64
	Deck   string
	Model  string
	Fields map[string]string
	Tags   []string
}

// FakeAnki is an in-memory AnkiConnect. It understands the deck:, note: and
// quoted-text terms of the search syntax and rejects notes whose first field
// duplicates another note of the same type, as Anki does.
type FakeAnki struct {
	mu     sync.Mutex
	models map[string][]string
	notes  []*FakeNote
	nextID int64

	Queries  []string
	Adds     int
	Updates  int
	TagCalls int
	Uploads  []string

	// FailAction makes the named action return an error.
	FailAction string
}

func NewFakeAnki() *FakeAnki {
	return &FakeAnki{
		models: map[string][]string{
			"Picture Word": {"Word", "Image", "Audio", "Notes", "IPA", "Gender", "POS", "Article"},
			"Cloze":        {"Text", "Back Extra"},
		},
		nextID: 1000,
	}
}

func (f *FakeAnki) SetModel(name string, fields ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models[name] = fields
}

// Seed stores a note directly and returns its id.
func (f *FakeAnki) Seed(deck, model string, fields map[string]string, tags ...string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(deck, model, fields, tags)
}

// Notes returns a snapshot of the stored notes ordered by id.
func (f *FakeAnki) Notes() []FakeNote {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeNote, 0, len(f.notes))
	for _, n := range f.notes {
		cp := FakeNote{ID: n.ID, Deck: n.Deck, Model: n.Model, Fields: map[string]string{}, Tags: append([]string(nil), n.Tags...)}
		for k, v := range n.Fields {
			cp.Fields[k] = v
		}
		out = append(out, cp)
	}
	return out
}

func (f *FakeAnki) ModelFieldNames(ctx context.Context, model string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("modelFieldNames"); err != nil {
		return nil, err
	}
	fields, ok := f.models[model]
	if !ok {
		return nil, eris.Errorf("anki error: model was not found: %s", model)
	}
	return append([]string(nil), fields...), nil
}

func (f *FakeAnki) FindNotes(ctx context.Context, query string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("findNotes"); err != nil {
		return nil, err
	}
	f.Queries = append(f.Queries, query)

	q := parseQuery(query)
	var ids []int64
	for _, n := range f.notes {
		if q.matches(n) {
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}

func (f *FakeAnki) NotesInfo(ctx context.Context, ids []int64) ([]anki.NoteInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("notesInfo"); err != nil {
		return nil, err
	}
	var out []anki.NoteInfo
	for _, id := range ids {
		n := f.byID(id)
		if n == nil {
			continue
		}
		info := anki.NoteInfo{NoteID: n.ID, ModelName: n.Model, Fields: map[string]anki.FieldValue{}, Tags: append([]string(nil), n.Tags...)}
		for i, name := range f.models[n.Model] {
			info.Fields[name] = anki.FieldValue{Value: n.Fields[name], Order: i}
		}
		out = append(out, info)
	}
	return out, nil
}

func (f *FakeAnki) AddNote(ctx context.Context, note anki.Note) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("addNote"); err != nil {
		return 0, err
	}
	order, ok := f.models[note.ModelName]
	if !ok {
		return 0, eris.Errorf("anki error: model was not found: %s", note.ModelName)
	}
	first := strings.TrimSpace(note.Fields[order[0]])
	if first == "" {
		return 0, eris.New("anki error: cannot create note because it is empty")
	}
	for _, n := range f.notes {
		if n.Model == note.ModelName && strings.TrimSpace(n.Fields[order[0]]) == first {
			return 0, eris.Wrap(anki.ErrDuplicate, "cannot create note because it is a duplicate")
		}
	}
	f.Adds++
	return f.insert(note.DeckName, note.ModelName, note.Fields, note.Tags), nil
}

func (f *FakeAnki) UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("updateNoteFields"); err != nil {
		return err
	}
	n := f.byID(id)
	if n == nil {
		return eris.Errorf("anki error: note was not found: %d", id)
	}
	for k, v := range fields {
		n.Fields[k] = v
	}
	f.Updates++
	return nil
}

func (f *FakeAnki) AddTags(ctx context.Context, ids []int64, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("addTags"); err != nil {
		return err
	}
	f.TagCalls++
	for _, id := range ids {
		n := f.byID(id)
		if n == nil {
			continue
		}
		for _, t := range tags {
			if !containsFold(n.Tags, t) {
				n.Tags = append(n.Tags, t)
			}
		}
	}
	return nil
}

func (f *FakeAnki) StoreMediaFile(ctx context.Context, filename, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("storeMediaFile"); err != nil {
		return err
	}
	f.Uploads = append(f.Uploads, filename)
	return nil
}

func (f *FakeAnki) insert(deck, model string, fields map[string]string, tags []string) int64 {
	f.nextID++
	n := &FakeNote{ID: f.nextID, Deck: deck, Model: model, Fields: map[string]string{}, Tags: append([]string(nil), tags...)}
	for k, v := range fields {
		n.Fields[k] = v
	}
	f.notes = append(f.notes, n)
	sort.Slice(f.notes, func(i, j int) bool { return f.notes[i].ID < f.notes[j].ID })
	return n.ID
}

func (f *FakeAnki) byID(id int64) *FakeNote {
	for _, n := range f.notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (f *FakeAnki) fail(action string) error {
	if f.FailAction == action {
		return eris.Errorf("anki error: %s failed", action)
	}
	return nil
}

type query struct {
	deck  string
	model string
	texts []string
}

func (q query) matches(n *FakeNote) bool {
	if q.deck != "" && n.Deck != q.deck && !strings.HasPrefix(n.Deck, q.deck+"::") {
		return false
	}
	if q.model != "" && n.Model != q.model {
		return false
	}
	for _, text := range q.texts {
		found := false
		for _, v := range n.Fields {
			if strings.Contains(strings.ToLower(v), strings.ToLower(text)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// parseQuery understands deck:"x", note:"x" and "text" terms with
// backslash escapes.
func parseQuery(s string) query {
	var q query
	for i := 0; i < len(s); {
		switch {
		case s[i] == ' ':
			i++
		case strings.HasPrefix(s[i:], `deck:"`):
			q.deck, i = readQuoted(s, i+len(`deck:`))
		case strings.HasPrefix(s[i:], `note:"`):
			q.model, i = readQuoted(s, i+len(`note:`))
		case s[i] == '"':
			var text string
			text, i = readQuoted(s, i)
			q.texts = append(q.texts, text)
		default:
			j := strings.IndexByte(s[i:], ' ')
			if j < 0 {
				j = len(s) - i
			}
			q.texts = append(q.texts, s[i:i+j])
			i += j
		}
	}
	return q
}

func readQuoted(s string, i int) (string, int) {
	var b strings.Builder
	i++ // opening quote
	for i < len(s) {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				b.WriteByte(s[i+1])
			}
			i += 2
		case '"':
			return b.String(), i + 1
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String(), i
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
