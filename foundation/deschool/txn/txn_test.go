package txn_test

import (
	"encoding/json"
	"testing"

	"github.com/ardanlabs/deschool/foundation/deschool/txn"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

var signer = common.HexToAddress("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")

func TestSignedTx(t *testing.T) {
	t.Log("Given the need to sign and validate transactions.")
	{
		t.Logf("\tTest 0:\tWhen handling a signed register transaction.")
		{
			pk, err := crypto.HexToECDSA(pkHexKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a private key: %v", failed, err)
			}

			tx, err := txn.New(1, 1, "register", map[string]uint64{"course_id": 0})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the transaction: %v", failed, err)
			}

			signedTx, err := tx.Sign(pk)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to sign the transaction.", success)

			// Simulate the trip through the public API.
			data, err := json.Marshal(signedTx)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to marshal the transaction: %v", failed, err)
			}

			var got txn.SignedTx
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to unmarshal the transaction: %v", failed, err)
			}

			if err := got.Validate(1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to validate the transaction.", success)

			from, err := got.FromAddress()
			if err != nil || from != signer {
				t.Fatalf("\t%s\tTest 0:\tShould recover the signer: got %s exp %s", failed, from, signer)
			}
			t.Logf("\t%s\tTest 0:\tShould recover the signer.", success)

			if err := got.Validate(2); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a different chain id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a different chain id.", success)

			got.Nonce = 2
			from, err = got.FromAddress()
			if err == nil && from == signer {
				t.Fatalf("\t%s\tTest 0:\tShould not recover the signer for a tampered transaction.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not recover the signer for a tampered transaction.", success)
		}
	}
}
