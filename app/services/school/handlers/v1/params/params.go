// Package params parses the path parameters shared by the v1 handlers.
// Every failure is a trusted 400 error.
package params

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ardanlabs/deschool/business/web/errs"
	"github.com/ardanlabs/deschool/foundation/web"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Address parses a hex address parameter.
func Address(r *http.Request, key string) (common.Address, error) {
	s := web.Param(r, key)
	if !common.IsHexAddress(s) {
		return common.Address{}, errs.NewTrusted(fmt.Errorf("invalid %s %q", key, s), http.StatusBadRequest)
	}
	return common.HexToAddress(s), nil
}

// ID parses a course or batch id parameter.
func ID(r *http.Request, key string) (uint64, error) {
	s := web.Param(r, key)
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("invalid %s %q", key, s), http.StatusBadRequest)
	}
	return id, nil
}

// Amount parses a decimal token amount parameter.
func Amount(r *http.Request, key string) (*uint256.Int, error) {
	s := web.Param(r, key)
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errs.NewTrusted(fmt.Errorf("invalid %s %q", key, s), http.StatusBadRequest)
	}
	return amount, nil
}
