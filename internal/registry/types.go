package registry

import (
	"encoding/json"

	"github.com/quantumauth-io/contract-loader/internal/constants"
)

// ContractInfo is one deployed contract as the interaction layer sees it.
type ContractInfo struct {
	Address            string                     `json:"address"`
	ABI                []json.RawMessage          `json:"abi"`
	InheritedFunctions map[string]json.RawMessage `json:"inheritedFunctions"`
}

// ContractRegistry maps decimal chain id -> contract name -> contract.
type ContractRegistry map[string]map[string]ContractInfo

func NewContractInfo(address string, abi []json.RawMessage) ContractInfo {
	if abi == nil {
		abi = []json.RawMessage{}
	}
	return ContractInfo{
		Address:            address,
		ABI:                abi,
		InheritedFunctions: map[string]json.RawMessage{},
	}.Clone()
}

// Seed returns the placeholder registry a session starts from.
func Seed() ContractRegistry {
	return ContractRegistry{
		constants.SeedChainID: {
			constants.DefaultContractName: NewContractInfo(constants.ZeroAddress, nil),
		},
	}
}

func (c ContractInfo) Clone() ContractInfo {
	out := ContractInfo{Address: c.Address}
	if c.ABI != nil {
		out.ABI = make([]json.RawMessage, len(c.ABI))
		for i, entry := range c.ABI {
			out.ABI[i] = cloneRaw(entry)
		}
	}
	if c.InheritedFunctions != nil {
		out.InheritedFunctions = make(map[string]json.RawMessage, len(c.InheritedFunctions))
		for sig, meta := range c.InheritedFunctions {
			out.InheritedFunctions[sig] = cloneRaw(meta)
		}
	}
	return out
}

func (r ContractRegistry) Clone() ContractRegistry {
	if r == nil {
		return nil
	}
	out := make(ContractRegistry, len(r))
	for chainID, contracts := range r {
		if contracts == nil {
			out[chainID] = nil
			continue
		}
		copied := make(map[string]ContractInfo, len(contracts))
		for name, info := range contracts {
			copied[name] = info.Clone()
		}
		out[chainID] = copied
	}
	return out
}

// Lookup returns the contract stored under chainID/name.
func (r ContractRegistry) Lookup(chainID, name string) (ContractInfo, bool) {
	contracts, ok := r[chainID]
	if !ok {
		return ContractInfo{}, false
	}
	info, ok := contracts[name]
	return info, ok
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(json.RawMessage, len(in))
	copy(out, in)
	return out
}
