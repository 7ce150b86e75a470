// Package txn provides the signed transaction envelope wallets use to call
// operations on the school.
package txn

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ethereum/go-ethereum/common"
)

// Tx is a request to execute a named operation with its JSON arguments.
type Tx struct {
	ChainID uint16          `json:"chain_id"` // Ethereum: The chain id that is listed in the genesis file.
	Nonce   uint64          `json:"nonce"`    // Ethereum: Unique id for the transaction supplied by the user.
	Op      string          `json:"op"`       // Operation to execute.
	Data    json.RawMessage `json:"data"`     // Operation arguments.
}

// New constructs a transaction for the operation, marshaling the arguments.
func New(chainID uint16, nonce uint64, op string, args any) (Tx, error) {
	if op == "" {
		return Tx{}, errors.New("op is required")
	}

	data, err := json.Marshal(args)
	if err != nil {
		return Tx{}, fmt.Errorf("marshal args: %w", err)
	}

	tx := Tx{
		ChainID: chainID,
		Nonce:   nonce,
		Op:      op,
		Data:    data,
	}

	return tx, nil
}

// Sign uses the specified private key to sign the transaction.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	v, r, s, err := signature.Sign(tx, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	// Construct the signed transaction by adding the signature
	// in the [R|S|V] format.
	signedTx := SignedTx{
		Tx: tx,
		V:  v,
		R:  r,
		S:  s,
	}

	return signedTx, nil
}

// =============================================================================

// SignedTx is a signed version of the transaction. This is how clients like
// a wallet submit operations to the school.
type SignedTx struct {
	Tx
	V *big.Int `json:"v"` // Ethereum: Recovery identifier, either 29 or 30 with schoolID.
	R *big.Int `json:"r"` // Ethereum: First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Ethereum: Second coordinate of the ECDSA signature.
}

// Validate verifies the transaction belongs to the chain and has a proper
// signature.
func (tx SignedTx) Validate(chainID uint16) error {
	if tx.ChainID != chainID {
		return fmt.Errorf("invalid chain id, got[%d] exp[%d]", tx.ChainID, chainID)
	}

	if tx.Op == "" {
		return errors.New("op is required")
	}

	if tx.V == nil || tx.R == nil || tx.S == nil {
		return errors.New("missing signature")
	}

	if err := signature.VerifySignature(tx.V, tx.R, tx.S); err != nil {
		return err
	}

	return nil
}

// FromAddress extracts the address that signed the transaction.
func (tx SignedTx) FromAddress() (common.Address, error) {
	return signature.FromAddress(tx.Tx, tx.V, tx.R, tx.S)
}

// SignatureString returns the signature as a string.
func (tx SignedTx) SignatureString() string {
	return signature.SignatureString(tx.V, tx.R, tx.S)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	from, err := tx.FromAddress()
	if err != nil {
		return fmt.Sprintf("unknown:%s:%d", tx.Op, tx.Nonce)
	}

	return fmt.Sprintf("%s:%s:%d", from.Hex(), tx.Op, tx.Nonce)
}
