package networks

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/contract-loader/internal/chains"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

var ErrUnknownNetwork = errors.New("unknown network")

// TargetSink receives the networks the app should operate against.
type TargetSink interface {
	SetTargetNetworks(names []string)
}

type activeNetwork struct {
	name string
}

// Tracker owns the active network selection. It is the only writer of the
// target network list.
type Tracker struct {
	catalog chains.Catalog
	sink    TargetSink

	mu     sync.Mutex
	active atomic.Pointer[activeNetwork]
}

func NewTracker(catalog chains.Catalog, sink TargetSink, defaultNetwork string) (*Tracker, error) {
	if catalog == nil {
		return nil, errors.New("catalog is nil")
	}
	if sink == nil {
		return nil, errors.New("target sink is nil")
	}
	if strings.TrimSpace(defaultNetwork) == "" {
		return nil, errors.New("default network is empty")
	}

	t := &Tracker{catalog: catalog, sink: sink}
	t.active.Store(&activeNetwork{name: strings.TrimSpace(defaultNetwork)})
	return t, nil
}

// Active returns the selected network name, or "" after a selection the
// catalog did not know.
func (t *Tracker) Active() string {
	current := t.active.Load()
	if current == nil {
		return ""
	}
	return current.name
}

// SelectNetwork applies a dropdown change. A nil option is ignored.
func (t *Tracker) SelectNetwork(opt *chains.NetworkOption) error {
	if opt == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	name := strings.TrimSpace(opt.Name)
	resolved, ok := t.catalog.Lookup(name)
	if !ok {
		t.active.Store(&activeNetwork{})
		log.Warn("network not in catalog", "network", opt.Name)
		return errors.Wrapf(ErrUnknownNetwork, "%q", opt.Name)
	}

	t.active.Store(&activeNetwork{name: name})
	t.sink.SetTargetNetworks([]string{resolved.Name})

	log.Info("network selected", "network", resolved.Name, "chain_id", resolved.ChainID)
	return nil
}
