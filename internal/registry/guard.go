package registry

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Guard decides whether update may be merged. reference is a known-good
// registry the update is compared against.
type Guard interface {
	Check(reference, update ContractRegistry) error
}

type GuardFunc func(reference, update ContractRegistry) error

func (f GuardFunc) Check(reference, update ContractRegistry) error {
	return f(reference, update)
}

// Guards runs each guard in order and stops at the first failure.
type Guards []Guard

func (g Guards) Check(reference, update ContractRegistry) error {
	for _, guard := range g {
		if guard == nil {
			continue
		}
		if err := guard.Check(reference, update); err != nil {
			return err
		}
	}
	return nil
}

// ShapeGuard only compares structure: both registries must have decimal chain
// keys, named contracts, an abi array and an inherited functions map. Values
// are not compared.
type ShapeGuard struct{}

func (ShapeGuard) Check(reference, update ContractRegistry) error {
	if err := checkShape(reference); err != nil {
		return errors.Wrap(err, "reference registry")
	}
	if err := checkShape(update); err != nil {
		return errors.Wrap(err, "update")
	}
	return nil
}

func checkShape(reg ContractRegistry) error {
	if len(reg) == 0 {
		return errors.New("registry is empty")
	}
	for chainID, contracts := range reg {
		if _, err := strconv.ParseUint(chainID, 10, 64); err != nil {
			return errors.Newf("chain key %q is not a decimal chain id", chainID)
		}
		if len(contracts) == 0 {
			return errors.Newf("chain %s has no contracts", chainID)
		}
		for name, info := range contracts {
			if name == "" {
				return errors.Newf("chain %s has a contract with no name", chainID)
			}
			if info.ABI == nil {
				return errors.Newf("%s/%s: abi is missing", chainID, name)
			}
			if info.InheritedFunctions == nil {
				return errors.Newf("%s/%s: inheritedFunctions is missing", chainID, name)
			}
			for i, entry := range info.ABI {
				if !json.Valid(entry) {
					return errors.Newf("%s/%s: abi entry %d is not valid json", chainID, name, i)
				}
			}
		}
	}
	return nil
}

// AddressGuard requires every contract in the update to carry a hex address.
type AddressGuard struct{}

func (AddressGuard) Check(_, update ContractRegistry) error {
	for chainID, contracts := range update {
		for name, info := range contracts {
			if !common.IsHexAddress(info.Address) {
				return errors.Newf("%s/%s: invalid address %q", chainID, name, info.Address)
			}
		}
	}
	return nil
}

// ABIGuard requires every ABI in the update to decode as a solidity ABI.
type ABIGuard struct{}

func (ABIGuard) Check(_, update ContractRegistry) error {
	for chainID, contracts := range update {
		for name, info := range contracts {
			raw, err := json.Marshal(info.ABI)
			if err != nil {
				return errors.Wrapf(err, "%s/%s: marshal abi", chainID, name)
			}
			if _, err := abi.JSON(bytes.NewReader(raw)); err != nil {
				return errors.Wrapf(err, "%s/%s: abi", chainID, name)
			}
		}
	}
	return nil
}

// DefaultGuard is the shape check alone; strict adds address and ABI decoding.
func DefaultGuard(strict bool) Guard {
	if !strict {
		return ShapeGuard{}
	}
	return Guards{ShapeGuard{}, AddressGuard{}, ABIGuard{}}
}
