// Package storage defines the journal of applied operations. Every
// operation that changed the school is recorded so the state can be rebuilt
// by replaying the journal in order.
package storage

import (
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrEndOfJournal is returned by an iterator that walked past the last record.
var ErrEndOfJournal = errors.New("end of journal")

// Record is a single applied operation. Sequence numbers start at 1.
type Record struct {
	Seq    uint64          `json:"seq"`
	Block  uint64          `json:"block"`
	Caller common.Address  `json:"caller"`
	Nonce  uint64          `json:"nonce"`
	Op     string          `json:"op"`
	Data   json.RawMessage `json:"data"`
}

// Storage interface represents the behavior required to be implemented by
// any package providing support for reading and writing the journal.
type Storage interface {
	Write(record Record) error
	GetRecord(seq uint64) (Record, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the records.
type Iterator interface {
	Next() (Record, error)
	Done() bool
}
