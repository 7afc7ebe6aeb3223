package registry

// Merge returns a copy of reg with reg[chainID][name] set to info. Every other
// chain and contract is carried over as a deep copy; neither reg nor info are
// referenced by the result.
func Merge(reg ContractRegistry, chainID, name string, info ContractInfo) ContractRegistry {
	out := reg.Clone()
	if out == nil {
		out = make(ContractRegistry, 1)
	}

	contracts := out[chainID]
	if contracts == nil {
		contracts = make(map[string]ContractInfo, 1)
		out[chainID] = contracts
	}
	contracts[name] = info.Clone()

	return out
}
