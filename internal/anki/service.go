package anki

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/pkg/logger"
)

const (
	DefaultAnkiConnectURL = "http://127.0.0.1:8765"
	MaxRetries            = 3
	RetryDelay            = 500 * time.Millisecond
)

// ErrDuplicate is returned by AddNote when AnkiConnect refuses a note because
// its first field already exists in the collection.
var ErrDuplicate = eris.New("anki: note is a duplicate")

type Service struct {
	ankiConnectURL string
	client         *http.Client
	logger         *logger.Logger
	maxRetries     int
	retryDelay     time.Duration
}

type Option func(*Service)

func WithURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.ankiConnectURL = url
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.client = &http.Client{Timeout: timeout}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

func WithRetries(maxRetries int, delay time.Duration) Option {
	return func(s *Service) {
		s.maxRetries = maxRetries
		s.retryDelay = delay
	}
}

type AnkiConnectRequest struct {
	Action  string      `json:"action"`
	Version int         `json:"version"`
	Params  interface{} `json:"params"`
}

type Note struct {
	DeckName  string                 `json:"deckName"`
	ModelName string                 `json:"modelName"`
	Fields    map[string]string      `json:"fields"`
	Options   map[string]interface{} `json:"options"`
	Tags      []string               `json:"tags"`
}

type FieldValue struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

type NoteInfo struct {
	NoteID    int64                 `json:"noteId"`
	ModelName string                `json:"modelName"`
	Fields    map[string]FieldValue `json:"fields"`
	Tags      []string              `json:"tags"`
}

// Field returns the trimmed value of a named field, or "" if absent.
func (n NoteInfo) Field(name string) string {
	return strings.TrimSpace(n.Fields[name].Value)
}

func NewService(logger *logger.Logger, opts ...Option) *Service {
	s := &Service{
		ankiConnectURL: DefaultAnkiConnectURL,
		client:         &http.Client{Timeout: 30 * time.Second},
		logger:         logger,
		maxRetries:     MaxRetries,
		retryDelay:     RetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CheckConnection(ctx context.Context) error {
	var version int
	if err := s.call(ctx, "version", map[string]interface{}{}, &version); err != nil {
		s.logger.Info("Error sending request to Anki: %v", err)
		return eris.New("could not connect to Anki. Please ensure:\n" +
			"1. Anki is running https://apps.ankiweb.net/#download\n" +
			"2. AnkiConnect add-on is installed (code: 2055492159) https://ankiweb.net/shared/info/2055492159\n" +
			"3. Anki has been restarted after installing AnkiConnect")
	}
	s.logger.Debug("AnkiConnect version %d", version)
	return nil
}

func (s *Service) CreateDeck(ctx context.Context, deckName string) error {
	s.logger.Debug("Creating deck: %s", deckName)
	return s.call(ctx, "createDeck", map[string]string{"deck": deckName}, nil)
}

func (s *Service) ModelFieldNames(ctx context.Context, modelName string) ([]string, error) {
	var fields []string
	if err := s.call(ctx, "modelFieldNames", map[string]string{"modelName": modelName}, &fields); err != nil {
		return nil, eris.Wrapf(err, "failed to get fields of model %q", modelName)
	}
	return fields, nil
}

func (s *Service) FindNotes(ctx context.Context, query string) ([]int64, error) {
	s.logger.Trace("findNotes %s", query)
	var ids []int64
	if err := s.call(ctx, "findNotes", map[string]string{"query": query}, &ids); err != nil {
		return nil, eris.Wrap(err, "failed to search notes")
	}
	return ids, nil
}

func (s *Service) NotesInfo(ctx context.Context, ids []int64) ([]NoteInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var infos []NoteInfo
	if err := s.call(ctx, "notesInfo", map[string]interface{}{"notes": ids}, &infos); err != nil {
		return nil, eris.Wrap(err, "failed to get note info")
	}
	return infos, nil
}

// AddNote creates a note with duplicate protection enabled and returns its id.
func (s *Service) AddNote(ctx context.Context, note Note) (int64, error) {
	if note.Options == nil {
		note.Options = map[string]interface{}{}
	}
	note.Options["allowDuplicate"] = false

	var id int64
	err := s.call(ctx, "addNote", map[string]interface{}{"note": note}, &id)
	if err != nil {
		if isDuplicateError(err) {
			return 0, eris.Wrapf(ErrDuplicate, "add note to %s", note.DeckName)
		}
		return 0, eris.Wrap(err, "failed to add note")
	}
	return id, nil
}

func (s *Service) UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error {
	params := map[string]interface{}{
		"note": map[string]interface{}{
			"id":     id,
			"fields": fields,
		},
	}
	if err := s.call(ctx, "updateNoteFields", params, nil); err != nil {
		return eris.Wrapf(err, "failed to update note %d", id)
	}
	return nil
}

func (s *Service) AddTags(ctx context.Context, ids []int64, tags []string) error {
	if len(ids) == 0 || len(tags) == 0 {
		return nil
	}
	params := map[string]interface{}{
		"notes": ids,
		"tags":  strings.Join(tags, " "),
	}
	if err := s.call(ctx, "addTags", params, nil); err != nil {
		return eris.Wrap(err, "failed to add tags")
	}
	return nil
}

// StoreMediaFile uploads a local file into Anki's media folder under filename.
func (s *Service) StoreMediaFile(ctx context.Context, filename, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "failed to read media file %s", path)
	}
	params := map[string]string{
		"filename": filename,
		"data":     base64.StdEncoding.EncodeToString(data),
	}
	if err := s.call(ctx, "storeMediaFile", params, nil); err != nil {
		return eris.Wrapf(err, "failed to store media file %s", filename)
	}
	return nil
}

// ankiError is an error reported by AnkiConnect itself. Those are final and
// never retried.
type ankiError struct {
	message string
}

func (e *ankiError) Error() string {
	return "anki error: " + e.message
}

func isDuplicateError(err error) bool {
	var ae *ankiError
	if !errors.As(err, &ae) {
		return false
	}
	return strings.Contains(strings.ToLower(ae.message), "duplicate")
}

func (s *Service) call(ctx context.Context, action string, params interface{}, out interface{}) error {
	result, err := s.sendRequest(ctx, AnkiConnectRequest{
		Action:  action,
		Version: ANKI_CONNECT_VERSION,
		Params:  params,
	})
	if err != nil {
		return err
	}
	if out == nil || len(result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return eris.Wrapf(err, "failed to parse %s result", action)
	}
	return nil
}

func (s *Service) sendRequest(ctx context.Context, req AnkiConnectRequest) (json.RawMessage, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "failed to marshal request")
	}

	attempts := s.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			s.logger.Info("Retrying %s (attempt %d/%d)...", req.Action, attempt+1, attempts)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}

		result, err := s.post(ctx, reqBody)
		if err == nil {
			return result, nil
		}
		var ae *ankiError
		if errors.As(err, &ae) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, eris.Wrapf(lastErr, "after %d attempts", attempts)
}

func (s *Service) post(ctx context.Context, body []byte) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ankiConnectURL, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read response")
	}

	var result struct {
		Error  *string         `json:"error"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "failed to parse response")
	}
	if result.Error != nil {
		return nil, &ankiError{message: *result.Error}
	}
	return result.Result, nil
}
