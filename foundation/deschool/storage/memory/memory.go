// Package memory implements the ability to read and write journal records
// to memory using a slice.
package memory

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/deschool/foundation/deschool/storage"
)

// Memory represents the serialization implementation for reading and
// storing records in memory using a slice. This implements the
// storage.Storage interface.
type Memory struct {
	mu      sync.RWMutex
	records []storage.Record
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified record and stores it in memory.
func (m *Memory) Write(record storage.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if exp := uint64(len(m.records)) + 1; record.Seq != exp {
		return fmt.Errorf("record is out of order, got[%d] exp[%d]", record.Seq, exp)
	}

	m.records = append(m.records, record)

	return nil
}

// GetRecord returns the contents of the specified record.
func (m *Memory) GetRecord(seq uint64) (storage.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if seq == 0 || seq > uint64(len(m.records)) {
		return storage.Record{}, fmt.Errorf("record %d does not exist", seq)
	}

	return m.records[seq-1], nil
}

// ForEach returns an iterator to walk through all the records starting
// with sequence number 1.
func (m *Memory) ForEach() storage.Iterator {
	return &iterator{storage: m}
}

// Reset will clear out the journal.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	return nil
}

// =============================================================================

type iterator struct {
	storage *Memory
	current uint64
	eoj     bool
}

func (it *iterator) Next() (storage.Record, error) {
	if it.eoj {
		return storage.Record{}, storage.ErrEndOfJournal
	}

	it.storage.mu.RLock()
	l := uint64(len(it.storage.records))
	it.storage.mu.RUnlock()

	if it.current >= l {
		it.eoj = true
		return storage.Record{}, storage.ErrEndOfJournal
	}

	it.current++
	return it.storage.GetRecord(it.current)
}

func (it *iterator) Done() bool {
	return it.eoj
}
