package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/ardanlabs/deschool/foundation/deschool/txn"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var client = http.Client{Timeout: 10 * time.Second}

// account is the school view of an address.
type account struct {
	Address      common.Address `json:"address"`
	Name         string         `json:"name"`
	Nonce        uint64         `json:"nonce"`
	PermitNonce  uint64         `json:"permit_nonce"`
	Reserve      *uint256.Int   `json:"reserve"`
	Learn        *uint256.Int   `json:"learn"`
	SchoolAllow  *uint256.Int   `json:"school_allowance"`
	CurveAllow   *uint256.Int   `json:"curve_allowance"`
	YieldRewards *uint256.Int   `json:"yield_rewards"`
}

// genesisInfo is the subset of the genesis response the wallet needs.
type genesisInfo struct {
	Genesis struct {
		ChainID uint16 `json:"chain_id"`
	} `json:"genesis"`
	Addresses state.Addresses  `json:"addresses"`
	Domain    signature.Domain `json:"permit_domain"`
	Block     uint64           `json:"block"`
}

// errorResponse is the error document the school returns.
type errorResponse struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind"`
	Fields map[string]string `json:"fields"`
}

func getJSON(path string, v any) error {
	resp, err := client.Get(url + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, v)
}

func postJSON(path string, body any, v any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := client.Post(url+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, v)
}

func decodeResponse(resp *http.Response, v any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, body)
		}
		if er.Kind != "" {
			return fmt.Errorf("%s (%s)", er.Error, er.Kind)
		}
		return fmt.Errorf("%s %v", er.Error, er.Fields)
	}

	return json.Unmarshal(body, v)
}

// submit signs the operation with the next nonce for the account and
// submits it to the school.
func submit(pk signer, op string, args any) (state.Receipt, error) {
	var gen genesisInfo
	if err := getJSON("/v1/genesis/list", &gen); err != nil {
		return state.Receipt{}, fmt.Errorf("genesis: %w", err)
	}

	var act account
	if err := getJSON("/v1/accounts/list/"+pk.address().Hex(), &act); err != nil {
		return state.Receipt{}, fmt.Errorf("account: %w", err)
	}

	tx, err := txn.New(gen.Genesis.ChainID, act.Nonce+1, op, args)
	if err != nil {
		return state.Receipt{}, err
	}

	signedTx, err := tx.Sign(pk.key)
	if err != nil {
		return state.Receipt{}, err
	}

	var rcpt state.Receipt
	if err := postJSON("/v1/tx/submit", signedTx, &rcpt); err != nil {
		return state.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}

	return rcpt, nil
}
