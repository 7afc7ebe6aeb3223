package chains

import (
	"math/big"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/params"
)

// Catalog is the read-only network name -> chain lookup.
type Catalog interface {
	Lookup(name string) (NetworkOption, bool)
	LookupByChainIDHex(chainIDHex string) (NetworkOption, bool)
	Options() []NetworkOption
}

type builtinChain struct {
	Name     string
	ChainID  *big.Int
	Explorer string
}

// L1 ids come from go-ethereum's chain configs, the rest are fixed.
var builtinChains = []builtinChain{
	{"mainnet", params.MainnetChainConfig.ChainID, "https://etherscan.io"},
	{"sepolia", params.SepoliaChainConfig.ChainID, "https://sepolia.etherscan.io"},
	{"holesky", params.HoleskyChainConfig.ChainID, "https://holesky.etherscan.io"},

	{"arbitrum", big.NewInt(0xa4b1), "https://arbiscan.io"},
	{"arbitrum-sepolia", big.NewInt(0x66eee), "https://sepolia.arbiscan.io"},

	{"optimism", big.NewInt(0xa), "https://optimistic.etherscan.io"},
	{"optimism-sepolia", big.NewInt(0xaa37dc), "https://sepolia-optimistic.etherscan.io"},

	{"base", big.NewInt(0x2105), "https://basescan.org"},
	{"base-sepolia", big.NewInt(0x14a34), "https://sepolia.basescan.org"},

	{"polygon", big.NewInt(0x89), "https://polygonscan.com"},
	{"polygon-amoy", big.NewInt(0x13882), "https://amoy.polygonscan.com"},

	{"zkevm", big.NewInt(0x44d), "https://zkevm.polygonscan.com"},

	{"scroll", big.NewInt(0x82750), "https://scrollscan.com"},
	{"scroll-sepolia", big.NewInt(0x8274f), "https://sepolia.scrollscan.com"},
}

type StaticCatalog struct {
	byName map[string]NetworkOption
}

// NewStaticCatalog builds a catalog from config. Configured networks win over
// built-in ones with the same name.
func NewStaticCatalog(cfg *AllChainsConfig) (*StaticCatalog, error) {
	if cfg == nil {
		return nil, errors.New("chains config is nil")
	}
	cfg.Normalize()

	c := &StaticCatalog{byName: make(map[string]NetworkOption)}

	if cfg.Builtins {
		for _, b := range builtinChains {
			c.byName[normalizeNetworkKey(b.Name)] = NetworkOption{
				Name:       b.Name,
				ChainID:    b.ChainID.Uint64(),
				ChainIDHex: hexutil.EncodeBig(b.ChainID),
				Explorer:   b.Explorer,
			}
		}
	}

	for key, n := range cfg.Networks {
		opt, err := resolveNetworkConfig(n)
		if err != nil {
			return nil, errors.Wrapf(err, "network %q", key)
		}
		c.byName[normalizeNetworkKey(opt.Name)] = opt
	}

	return c, nil
}

func (c *StaticCatalog) Lookup(name string) (NetworkOption, bool) {
	key := normalizeNetworkKey(name)
	if key == "" {
		return NetworkOption{}, false
	}
	opt, ok := c.byName[key]
	return opt, ok
}

func (c *StaticCatalog) Options() []NetworkOption {
	out := make([]NetworkOption, 0, len(c.byName))
	for _, n := range c.byName {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// LookupByChainIDHex finds a catalog entry by its hex chain id. Leading zeros
// and case are ignored. When several names share an id the first by name wins.
func (c *StaticCatalog) LookupByChainIDHex(chainIDHex string) (NetworkOption, bool) {
	want, err := parseChainIDHex(normalizeChainIDHex(chainIDHex))
	if err != nil {
		return NetworkOption{}, false
	}
	for _, n := range c.Options() {
		if n.ChainID == want {
			return n, true
		}
	}
	return NetworkOption{}, false
}

func resolveNetworkConfig(n NetworkConfig) (NetworkOption, error) {
	name := strings.TrimSpace(n.Name)
	if name == "" {
		return NetworkOption{}, errors.New("network name is empty")
	}

	chainID := n.ChainID
	if raw := normalizeChainIDHex(n.ChainIDHex); raw != "" {
		parsed, err := parseChainIDHex(raw)
		if err != nil {
			return NetworkOption{}, err
		}
		if chainID != 0 && chainID != parsed {
			return NetworkOption{}, errors.Newf("chainId %d does not match chainIdHex %s", chainID, raw)
		}
		chainID = parsed
	}
	if chainID == 0 {
		return NetworkOption{}, errors.New("chainId is 0")
	}

	return NetworkOption{
		Name:       name,
		ChainID:    chainID,
		ChainIDHex: hexutil.EncodeUint64(chainID),
		Explorer:   strings.TrimSpace(n.Explorer),
	}, nil
}

func parseChainIDHex(s string) (uint64, error) {
	digits := strings.TrimLeft(strings.TrimPrefix(s, "0x"), "0")
	if digits == "" {
		return 0, errors.Newf("invalid chainIdHex %q", s)
	}

	n, err := hexutil.DecodeBig("0x" + digits)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid chainIdHex %q", s)
	}
	if n.BitLen() > 64 {
		return 0, errors.Newf("chainIdHex %q too large", s)
	}
	return n.Uint64(), nil
}

func normalizeNetworkKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeChainIDHex(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return s
}
