package store

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/models"
)

// ErrLocked is returned by Lock when another process holds the store.
var ErrLocked = eris.New("record store is locked by another process")

// Store reads and writes the vocabulary CSV. It is the only writer of the file
// while a run holds its lock.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *logger.Logger
}

func New(path string, log *logger.Logger) *Store {
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: log,
	}
}

func (s *Store) Path() string {
	return s.path
}

// Lock takes an exclusive, non-blocking lock next to the CSV for the duration
// of a run.
func (s *Store) Lock() error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return eris.Wrapf(err, "lock %s", s.path)
	}
	if !ok {
		return eris.Wrap(ErrLocked, s.path)
	}
	return nil
}

func (s *Store) Unlock() error {
	if err := s.lock.Unlock(); err != nil {
		return eris.Wrapf(err, "unlock %s", s.path)
	}
	_ = os.Remove(s.lock.Path())
	return nil
}

// Load reads every record. Unknown columns are ignored and missing ones
// stay empty.
func (s *Store) Load() ([]*models.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "open record store %s", s.path)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "read record store %s", s.path)
	}
	s.logger.Debug("Loaded %d records from %s", len(records), s.path)
	return records, nil
}

// Save writes all records in the fixed column order to a temporary file in
// the same directory and renames it over the original.
func (s *Store) Save(records []*models.Record) error {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return eris.Wrap(err, "encode records")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return eris.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return eris.Wrapf(err, "replace %s", s.path)
	}

	for _, r := range records {
		r.Dirty = false
	}
	s.logger.Debug("Saved %d records to %s", len(records), s.path)
	return nil
}

// Decode parses CSV with a header row into records.
func Decode(r io.Reader) ([]*models.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var records []*models.Record
	for {
		var rec models.Record
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, nil
}

// Encode writes the header and all records.
func Encode(w io.Writer, records []*models.Record) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(models.Record{}); err != nil {
		return err
	}
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
