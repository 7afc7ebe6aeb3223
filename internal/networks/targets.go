package networks

import (
	"strings"
	"sync"

	"github.com/quantumauth-io/contract-loader/internal/chains"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// Targets is the process-wide list of networks the interaction layer may use.
type Targets struct {
	catalog chains.Catalog

	mu       sync.RWMutex
	networks []chains.NetworkOption
	version  uint64
}

func NewTargets(catalog chains.Catalog, initial ...string) *Targets {
	t := &Targets{catalog: catalog}
	t.networks = t.resolve(initial)
	return t
}

// SetTargetNetworks replaces the list. Names the catalog does not know are
// dropped, duplicates are collapsed.
func (t *Targets) SetTargetNetworks(names []string) {
	resolved := t.resolve(names)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.networks = resolved
	t.version++
}

func (t *Targets) Snapshot() []chains.NetworkOption {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]chains.NetworkOption, len(t.networks))
	copy(out, t.networks)
	return out
}

func (t *Targets) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.networks))
	for _, n := range t.networks {
		out = append(out, n.Name)
	}
	return out
}

// Version counts SetTargetNetworks calls.
func (t *Targets) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

func (t *Targets) resolve(names []string) []chains.NetworkOption {
	out := make([]chains.NetworkOption, 0, len(names))
	seen := map[string]bool{}
	for _, raw := range names {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" || seen[key] {
			continue
		}
		n, ok := t.catalog.Lookup(key)
		if !ok {
			log.Warn("dropping unknown target network", "network", raw)
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
