package cmd

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// signer is the loaded private key of the wallet account.
type signer struct {
	key *ecdsa.PrivateKey
}

func loadSigner() (signer, error) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return signer{}, err
	}
	return signer{key: privateKey}, nil
}

func (s signer) address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}
