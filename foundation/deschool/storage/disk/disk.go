// Package disk implements the ability to read and write journal records to
// disk, one file per record.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ardanlabs/deschool/foundation/deschool/storage"
)

// Disk represents the serialization implementation for reading and storing
// records in their own separate files on disk. This implements the
// storage.Storage interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new record and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified record and stores it on disk in a file labeled
// with the sequence number. An existing record is never overwritten.
func (d *Disk) Write(record storage.Record) error {
	if record.Seq == 0 {
		return errors.New("record sequence must start at 1")
	}

	// Indenting would rewrite the raw operation data, so the record is
	// stored compact.
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(d.getPath(record.Seq), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return f.Sync()
}

// GetRecord locates and returns the contents of the specified record.
func (d *Disk) GetRecord(seq uint64) (storage.Record, error) {
	f, err := os.OpenFile(d.getPath(seq), os.O_RDONLY, 0600)
	if err != nil {
		return storage.Record{}, err
	}
	defer f.Close()

	var record storage.Record
	if err := json.NewDecoder(f).Decode(&record); err != nil {
		return storage.Record{}, fmt.Errorf("decode record %d: %w", seq, err)
	}

	return record, nil
}

// ForEach returns an iterator to walk through all the records starting
// with sequence number 1.
func (d *Disk) ForEach() storage.Iterator {
	return &Iterator{disk: d}
}

// Reset removes every record from disk.
func (d *Disk) Reset() error {
	entries, err := os.ReadDir(d.dbPath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		if err := os.Remove(filepath.Join(d.dbPath, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// getPath forms the path to the specified record.
func (d *Disk) getPath(seq uint64) string {
	name := strconv.FormatUint(seq, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// Iterator represents the iteration implementation for walking through and
// reading records on disk. This implements the storage.Iterator interface.
type Iterator struct {
	disk    *Disk  // Access to the disk storage API.
	current uint64 // Current record being iterated over.
	eoj     bool   // Represents the iterator is at the end of the journal.
}

// Next retrieves the next record from disk.
func (it *Iterator) Next() (storage.Record, error) {
	if it.eoj {
		return storage.Record{}, storage.ErrEndOfJournal
	}

	it.current++
	record, err := it.disk.GetRecord(it.current)
	if errors.Is(err, fs.ErrNotExist) {
		it.eoj = true
		return storage.Record{}, storage.ErrEndOfJournal
	}

	return record, err
}

// Done returns the end of journal value.
func (it *Iterator) Done() bool {
	return it.eoj
}
