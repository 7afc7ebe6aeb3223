// Package loader drives a contract load from form input to a committed
// registry.
package loader

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/contract-loader/internal/chains"
	"github.com/quantumauth-io/contract-loader/internal/constants"
	"github.com/quantumauth-io/contract-loader/internal/registry"
	"github.com/quantumauth-io/contract-loader/internal/validate"
)

// NetworkSelector is the network activation side of the form.
type NetworkSelector interface {
	SelectNetwork(opt *chains.NetworkOption) error
	Active() string
}

// RegistryState is the registry the form reads from and commits into.
type RegistryState interface {
	registry.Sink
	Snapshot() registry.ContractRegistry
}

type Config struct {
	// ContractName is the registry key loaded contracts are stored under.
	ContractName string
	// Reference is the sample registry the guard compares updates against.
	Reference registry.ContractRegistry
	Guard     registry.Guard
}

type Flags struct {
	AddressEmpty     bool `json:"addressEmpty"`
	AddressTooShort  bool `json:"addressTooShort"`
	AbiInvalid       bool `json:"abiInvalid"`
	IsContractLoaded bool `json:"isContractLoaded"`
}

type Status struct {
	State         State  `json:"state"`
	Reason        Reason `json:"reason,omitempty"`
	Flags         Flags  `json:"flags"`
	ActiveNetwork string `json:"activeNetwork"`
	Address       string `json:"address"`
	LoadedChainID string `json:"loadedChainId,omitempty"`
}

// Form is the only writer of the registry. All entry points are serialized.
type Form struct {
	catalog   chains.Catalog
	networks  NetworkSelector
	contracts RegistryState

	contractName string
	reference    registry.ContractRegistry
	guard        registry.Guard

	mu            sync.Mutex
	address       string
	abiText       string
	addrState     validate.AddressState
	abiInvalid    bool
	state         State
	reason        Reason
	loaded        bool
	loadedChainID string
}

func NewForm(catalog chains.Catalog, selector NetworkSelector, contracts RegistryState, cfg Config) (*Form, error) {
	if catalog == nil {
		return nil, errors.New("catalog is nil")
	}
	if selector == nil {
		return nil, errors.New("network selector is nil")
	}
	if contracts == nil {
		return nil, errors.New("registry is nil")
	}

	name := strings.TrimSpace(cfg.ContractName)
	if name == "" {
		name = constants.DefaultContractName
	}
	reference := cfg.Reference
	if reference == nil {
		reference = registry.Seed()
	}
	guard := cfg.Guard
	if guard == nil {
		guard = registry.ShapeGuard{}
	}

	return &Form{
		catalog:      catalog,
		networks:     selector,
		contracts:    contracts,
		contractName: name,
		reference:    reference.Clone(),
		guard:        guard,
		addrState:    validate.Address(""),
		state:        StateIdle,
	}, nil
}

func (f *Form) OnAddressChange(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.address = text
	f.addrState = validate.Address(text)
	f.recoverLocked()
}

func (f *Form) OnAbiChange(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.abiText = text
	_, err := validate.ABI(text)
	f.abiInvalid = err != nil
	f.recoverLocked()
}

// SelectNetwork forwards a dropdown change. Unknown networks are reported but
// leave the form usable.
func (f *Form) SelectNetwork(opt *chains.NetworkOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.networks.SelectNetwork(opt)
}

// TriggerLoad validates the current input and commits it into the registry.
// Once committed, further calls do nothing until Reset.
func (f *Form) TriggerLoad() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded {
		return f.state, nil
	}

	cycle := uuid.NewString()
	f.state = StateValidating

	chainID, err := f.loadLocked()
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			f.reason = loadErr.Reason
		}
		f.state = StateRejected
		log.Warn("contract load rejected", "cycle", cycle, "reason", string(f.reason), "error", err)
		return f.state, err
	}

	f.state = StateCommitted
	f.reason = ReasonNone
	f.loaded = true
	f.loadedChainID = chainID
	log.Info("contract loaded",
		"cycle", cycle,
		"chain_id", chainID,
		"contract", f.contractName,
		"address", f.address,
	)
	return f.state, nil
}

func (f *Form) loadLocked() (string, error) {
	if len(f.address) == 0 {
		return "", reject(ReasonEmptyAddress, ErrEmptyAddress, nil)
	}
	if validate.Address(f.address).TooShort {
		return "", reject(ReasonAddressTooShort, ErrAddressTooShort, nil)
	}

	network := f.networks.Active()
	opt, ok := f.catalog.Lookup(network)
	if !ok {
		return "", reject(ReasonUnknownNetwork, ErrUnknownNetwork, errors.Newf("network %q", network))
	}

	abi, err := validate.ABI(f.abiText)
	if err != nil {
		f.abiInvalid = true
		return "", reject(ReasonInvalidAbi, ErrInvalidAbi, err)
	}

	chainID := opt.ChainKey()
	info := registry.NewContractInfo(f.address, abi)
	update := registry.ContractRegistry{chainID: {f.contractName: info}}

	if err := f.guard.Check(f.reference, update); err != nil {
		return "", reject(ReasonRegistryRejected, ErrRegistryRejected, err)
	}

	merged := registry.Merge(f.contracts.Snapshot(), chainID, f.contractName, info)
	f.contracts.SetContracts(merged)
	return chainID, nil
}

// Reset ends the current load cycle so another contract can be loaded. The
// registry keeps what was committed.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = StateIdle
	f.reason = ReasonNone
	f.loaded = false
	f.loadedChainID = ""
}

func (f *Form) Flags() Flags {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flagsLocked()
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	return Status{
		State:         f.state,
		Reason:        f.reason,
		Flags:         f.flagsLocked(),
		ActiveNetwork: f.networks.Active(),
		Address:       f.address,
		LoadedChainID: f.loadedChainID,
	}
}

func (f *Form) flagsLocked() Flags {
	return Flags{
		AddressEmpty:     f.addrState.Empty,
		AddressTooShort:  f.addrState.TooShort,
		AbiInvalid:       f.abiInvalid,
		IsContractLoaded: f.loaded,
	}
}

// an edit clears a rejection
func (f *Form) recoverLocked() {
	if f.state == StateRejected {
		f.state = StateIdle
		f.reason = ReasonNone
	}
}
