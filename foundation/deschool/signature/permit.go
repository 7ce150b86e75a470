package signature

import (
	"crypto/ecdsa"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Domain identifies the token contract a permit is valid for.
type Domain struct {
	Name              string         `json:"name"`
	Version           string         `json:"version"`
	ChainID           uint64         `json:"chain_id"`
	VerifyingContract common.Address `json:"verifying_contract"`
}

// Permit is an off chain approval allowing the spender to move the holder's
// reserve tokens. An expiry of zero never expires.
type Permit struct {
	Holder  common.Address `json:"holder"`
	Spender common.Address `json:"spender"`
	Nonce   uint64         `json:"nonce"`
	Expiry  uint64         `json:"expiry"`
	Allowed bool           `json:"allowed"`
}

// permitTypes describes the permit message in typed data form.
var permitTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Permit": {
		{Name: "holder", Type: "address"},
		{Name: "spender", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "expiry", Type: "uint256"},
		{Name: "allowed", Type: "bool"},
	},
}

// PermitHash returns the typed data digest that is signed for the permit.
func PermitHash(domain Domain, permit Permit) ([]byte, error) {
	td := apitypes.TypedData{
		Types:       permitTypes,
		PrimaryType: "Permit",
		Domain: apitypes.TypedDataDomain{
			Name:              domain.Name,
			Version:           domain.Version,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(domain.ChainID)),
			VerifyingContract: domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"holder":  permit.Holder.Hex(),
			"spender": permit.Spender.Hex(),
			"nonce":   strconv.FormatUint(permit.Nonce, 10),
			"expiry":  strconv.FormatUint(permit.Expiry, 10),
			"allowed": permit.Allowed,
		},
	}

	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, err
	}

	return hash, nil
}

// SignPermit signs the permit for the domain with the holder's key.
func SignPermit(domain Domain, permit Permit, privateKey *ecdsa.PrivateKey) (v, r, s *big.Int, err error) {
	hash, err := PermitHash(domain, permit)
	if err != nil {
		return nil, nil, nil, err
	}

	return signHash(hash, privateKey, ethereumID)
}

// PermitSigner returns the address that signed the permit.
func PermitSigner(domain Domain, permit Permit, v, r, s *big.Int) (common.Address, error) {
	hash, err := PermitHash(domain, permit)
	if err != nil {
		return common.Address{}, err
	}

	return recoverAddress(hash, v, r, s, ethereumID)
}

// PermitSignatureString returns the permit signature as a hex string in the
// [R|S|V] format with the ethereum recovery id kept.
func PermitSignatureString(v, r, s *big.Int) string {
	return hexutil.Encode(toSignatureBytes(v, r, s, 0))
}
