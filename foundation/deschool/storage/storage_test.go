package storage_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ardanlabs/deschool/foundation/deschool/storage"
	"github.com/ardanlabs/deschool/foundation/deschool/storage/disk"
	"github.com/ardanlabs/deschool/foundation/deschool/storage/memory"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func records() []storage.Record {
	caller := common.HexToAddress("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")

	return []storage.Record{
		{Seq: 1, Block: 0, Caller: caller, Nonce: 1, Op: "createCourse", Data: json.RawMessage(`{"fee":"100"}`)},
		{Seq: 2, Block: 3, Caller: caller, Nonce: 2, Op: "register", Data: json.RawMessage(`{"course_id":0}`)},
		{Seq: 3, Block: 9, Caller: caller, Nonce: 0, Op: "mine", Data: json.RawMessage(`{"blocks":10}`)},
	}
}

func TestJournal(t *testing.T) {
	d, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatalf("disk: %v", err)
	}

	type table struct {
		name string
		strg storage.Storage
	}

	tt := []table{
		{"memory", memory.New()},
		{"disk", d},
	}

	t.Log("Given the need to journal applied operations.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling the %s journal.", testID, tst.name)
			{
				f := func(t *testing.T) {
					exp := records()

					for _, rec := range exp {
						if err := tst.strg.Write(rec); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to write record %d: %v", failed, testID, rec.Seq, err)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to write the records.", success, testID)

					var got []storage.Record
					iter := tst.strg.ForEach()
					for rec, err := iter.Next(); !iter.Done(); rec, err = iter.Next() {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to read the records: %v", failed, testID, err)
						}
						got = append(got, rec)
					}

					if diff := cmp.Diff(exp, got); diff != "" {
						t.Fatalf("\t%s\tTest %d:\tShould read back the records in order:\n%s", failed, testID, diff)
					}
					t.Logf("\t%s\tTest %d:\tShould read back the records in order.", success, testID)

					if _, err := iter.Next(); !errors.Is(err, storage.ErrEndOfJournal) {
						t.Fatalf("\t%s\tTest %d:\tShould report the end of the journal: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould report the end of the journal.", success, testID)

					rec, err := tst.strg.GetRecord(2)
					if err != nil || rec.Op != "register" {
						t.Fatalf("\t%s\tTest %d:\tShould get a record by sequence: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get a record by sequence.", success, testID)

					if err := tst.strg.Write(exp[1]); err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould not overwrite a record.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not overwrite a record.", success, testID)

					if err := tst.strg.Reset(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to reset: %v", failed, testID, err)
					}

					iter = tst.strg.ForEach()
					if _, err := iter.Next(); !errors.Is(err, storage.ErrEndOfJournal) || !iter.Done() {
						t.Fatalf("\t%s\tTest %d:\tShould be empty after a reset: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be empty after a reset.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
