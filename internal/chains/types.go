package chains

import "strconv"

type AllChainsConfig struct {
	Networks map[string]NetworkConfig `json:"networks" yaml:"networks" mapstructure:"networks"`
	// Builtins adds the built-in chain table underneath the configured networks.
	Builtins bool `json:"builtins" yaml:"builtins" mapstructure:"builtins"`
}

// NetworkConfig describes a selectable network. Either ChainID or ChainIDHex is
// enough; the other is derived.
type NetworkConfig struct {
	Name       string `json:"name" yaml:"name" mapstructure:"name"`
	ChainID    uint64 `json:"chainId" yaml:"chainId" mapstructure:"chainId"`
	ChainIDHex string `json:"chainIdHex" yaml:"chainIdHex" mapstructure:"chainIdHex"`
	Explorer   string `json:"explorer" yaml:"explorer" mapstructure:"explorer"`
}

// NetworkOption is a catalog entry as handed out to the rest of the app.
type NetworkOption struct {
	Name       string `json:"name"`
	ChainID    uint64 `json:"chainId"`
	ChainIDHex string `json:"chainIdHex"`
	Explorer   string `json:"explorer,omitempty"`
}

// ChainKey is the decimal chain id used as the top-level registry key.
func (o NetworkOption) ChainKey() string {
	return strconv.FormatUint(o.ChainID, 10)
}

func (mc *AllChainsConfig) Normalize() {
	if mc == nil {
		return
	}
	for name, n := range mc.Networks {
		if n.Name == "" {
			n.Name = name
		}
		mc.Networks[name] = n
	}
}
