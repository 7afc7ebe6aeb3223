package loader

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/contract-loader/internal/chains"
	"github.com/quantumauth-io/contract-loader/internal/constants"
	"github.com/quantumauth-io/contract-loader/internal/networks"
	"github.com/quantumauth-io/contract-loader/internal/registry"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

type fixture struct {
	form    *Form
	store   *registry.Store
	targets *networks.Targets
	tracker *networks.Tracker
}

func newFixture(t *testing.T, cfg Config) fixture {
	t.Helper()

	catalog, err := chains.NewStaticCatalog(&chains.AllChainsConfig{
		Networks: map[string]chains.NetworkConfig{
			"mainnet": {ChainID: 1},
			"sepolia": {ChainID: 11155111},
			"base":    {ChainID: 8453},
		},
	})
	require.NoError(t, err)

	targets := networks.NewTargets(catalog, constants.DefaultActiveNetwork)
	tracker, err := networks.NewTracker(catalog, targets, constants.DefaultActiveNetwork)
	require.NoError(t, err)

	store := registry.NewStore(registry.Seed())
	form, err := NewForm(catalog, tracker, store, cfg)
	require.NoError(t, err)

	return fixture{form: form, store: store, targets: targets, tracker: tracker}
}

func TestNewFormValidation(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := NewForm(nil, f.tracker, f.store, Config{})
	assert.Error(t, err)
	_, err = NewForm(emptyCatalog{}, nil, f.store, Config{})
	assert.Error(t, err)
	_, err = NewForm(emptyCatalog{}, f.tracker, nil, Config{})
	assert.Error(t, err)
}

func TestInitialStatus(t *testing.T) {
	f := newFixture(t, Config{})

	st := f.form.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, "mainnet", st.ActiveNetwork)
	assert.True(t, st.Flags.AddressEmpty)
	assert.False(t, st.Flags.AbiInvalid)
	assert.False(t, st.Flags.IsContractLoaded)
}

func TestLoadSucceedsOnMainnet(t *testing.T) {
	f := newFixture(t, Config{})

	f.form.OnAddressChange(zeroAddress)
	f.form.OnAbiChange("[]")

	flags := f.form.Flags()
	assert.False(t, flags.AddressEmpty)
	assert.False(t, flags.AddressTooShort)
	assert.False(t, flags.AbiInvalid)

	state, err := f.form.TriggerLoad()
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)
	assert.True(t, f.form.Flags().IsContractLoaded)
	assert.Equal(t, uint64(1), f.store.Version())

	info, ok := f.store.Snapshot().Lookup("1", constants.DefaultContractName)
	require.True(t, ok)
	assert.Equal(t, zeroAddress, info.Address)
	assert.NotNil(t, info.ABI)
	assert.Empty(t, info.ABI)
	assert.NotNil(t, info.InheritedFunctions)
	assert.Equal(t, "1", f.form.Status().LoadedChainID)
}

func TestSecondLoadIsNoop(t *testing.T) {
	f := newFixture(t, Config{})
	f.form.OnAddressChange(zeroAddress)
	f.form.OnAbiChange("[]")

	_, err := f.form.TriggerLoad()
	require.NoError(t, err)
	before := f.store.Snapshot()

	state, err := f.form.TriggerLoad()
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)
	assert.True(t, f.form.Flags().IsContractLoaded)
	assert.Equal(t, uint64(1), f.store.Version())
	assert.Empty(t, cmp.Diff(before, f.store.Snapshot()))
}

func TestLoadWithShortAddressIsRejected(t *testing.T) {
	f := newFixture(t, Config{})
	f.form.OnAddressChange("0x123")
	f.form.OnAbiChange("[]")

	assert.True(t, f.form.Flags().AddressTooShort)

	state, err := f.form.TriggerLoad()
	require.Error(t, err)
	assert.Equal(t, StateRejected, state)
	assert.True(t, errors.Is(err, ErrAddressTooShort))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ReasonAddressTooShort, loadErr.Reason)

	assert.Equal(t, uint64(0), f.store.Version())
	assert.Empty(t, cmp.Diff(registry.Seed(), f.store.Snapshot()))
}

func TestLoadWithInvalidAbiIsRejected(t *testing.T) {
	f := newFixture(t, Config{})
	f.form.OnAddressChange(zeroAddress)
	f.form.OnAbiChange("{not json")

	assert.True(t, f.form.Flags().AbiInvalid)

	_, err := f.form.TriggerLoad()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAbi))
	assert.Equal(t, ReasonInvalidAbi, f.form.Status().Reason)
	assert.Empty(t, cmp.Diff(registry.Seed(), f.store.Snapshot()))
}

func TestRejectionOrder(t *testing.T) {
	tests := []struct {
		name    string
		address string
		abi     string
		network *chains.NetworkOption
		want    Reason
		wantErr error
	}{
		{name: "empty_address_first", address: "", abi: "{", want: ReasonEmptyAddress, wantErr: ErrEmptyAddress},
		{name: "short_before_network", address: "0x1", network: &chains.NetworkOption{Name: "atlantis"}, want: ReasonAddressTooShort, wantErr: ErrAddressTooShort},
		{name: "network_before_abi", address: zeroAddress, abi: "{", network: &chains.NetworkOption{Name: "atlantis"}, want: ReasonUnknownNetwork, wantErr: ErrUnknownNetwork},
		{name: "abi_last", address: zeroAddress, abi: "", want: ReasonInvalidAbi, wantErr: ErrInvalidAbi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			f.form.OnAddressChange(tt.address)
			f.form.OnAbiChange(tt.abi)
			if tt.network != nil {
				_ = f.form.SelectNetwork(tt.network)
			}

			state, err := f.form.TriggerLoad()
			require.Error(t, err)
			assert.Equal(t, StateRejected, state)
			assert.True(t, errors.Is(err, tt.wantErr), err.Error())

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.want, loadErr.Reason)
			assert.Equal(t, uint64(0), f.store.Version())
		})
	}
}

func TestRejectedRecoversOnEdit(t *testing.T) {
	f := newFixture(t, Config{})
	f.form.OnAbiChange("[]")

	_, err := f.form.TriggerLoad()
	require.Error(t, err)
	assert.Equal(t, StateRejected, f.form.State())

	f.form.OnAddressChange("0x")
	assert.Equal(t, StateIdle, f.form.State())
	assert.Equal(t, ReasonNone, f.form.Status().Reason)

	f.form.OnAddressChange(zeroAddress)
	state, err := f.form.TriggerLoad()
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)
}

func TestSelectNetworkChangesTargetChain(t *testing.T) {
	f := newFixture(t, Config{})

	require.NoError(t, f.form.SelectNetwork(&chains.NetworkOption{Name: "base"}))
	assert.Equal(t, []string{"base"}, f.targets.Names())

	f.form.OnAddressChange(zeroAddress)
	f.form.OnAbiChange(`[{"type":"function","name":"get","inputs":[],"outputs":[]}]`)

	_, err := f.form.TriggerLoad()
	require.NoError(t, err)

	snap := f.store.Snapshot()
	require.Contains(t, snap, "8453")
	assert.Len(t, snap["8453"][constants.DefaultContractName].ABI, 1)

	seed, ok := snap.Lookup("1", constants.DefaultContractName)
	require.True(t, ok)
	assert.Equal(t, zeroAddress, seed.Address)
}

func TestSelectNilNetworkKeepsState(t *testing.T) {
	f := newFixture(t, Config{})

	require.NoError(t, f.form.SelectNetwork(nil))
	assert.Equal(t, "mainnet", f.form.Status().ActiveNetwork)
	assert.Equal(t, uint64(0), f.targets.Version())
}

func TestUnknownNetworkUntilReselected(t *testing.T) {
	f := newFixture(t, Config{})
	f.form.OnAddressChange(zeroAddress)
	f.form.OnAbiChange("[]")

	err := f.form.SelectNetwork(&chains.NetworkOption{Name: "atlantis"})
	require.Error(t, err)
	assert.Equal(t, "", f.form.Status().ActiveNetwork)

	_, err = f.form.TriggerLoad()
	assert.True(t, errors.Is(err, ErrUnknownNetwork))

	require.NoError(t, f.form.SelectNetwork(&chains.NetworkOption{Name: "sepolia"}))
	f.form.OnAbiChange("[]")
	_, err = f.form.TriggerLoad()
	require.NoError(t, err)

	_, ok := f.store.Snapshot().Lookup("11155111", constants.DefaultContractName)
	assert.True(t, ok)
}

func TestGuardRejection(t *testing.T) {
	blocked := registry.GuardFunc(func(_, _ registry.ContractRegistry) error {
		return errors.New("blocked")
	})
	f := newFixture(t, Config{Guard: blocked})
	f.form.OnAddressChange(zeroAddress)
	f.form.OnAbiChange("[]")

	state, err := f.form.TriggerLoad()
	require.Error(t, err)
	assert.Equal(t, StateRejected, state)
	assert.True(t, errors.Is(err, ErrRegistryRejected))
	assert.False(t, f.form.Flags().IsContractLoaded)
	assert.Equal(t, uint64(0), f.store.Version())
}

func TestStrictGuardRejectsNonHexAddress(t *testing.T) {
	f := newFixture(t, Config{Guard: registry.DefaultGuard(true)})
	f.form.OnAddressChange("0x" + strings.Repeat("Z", 40))
	f.form.OnAbiChange("[]")

	_, err := f.form.TriggerLoad()
	require.Error(t, err)
	assert.Equal(t, ReasonRegistryRejected, f.form.Status().Reason)
}

func TestGuardSeesReferenceAndUpdate(t *testing.T) {
	var gotRef, gotUpdate registry.ContractRegistry
	spy := registry.GuardFunc(func(ref, update registry.ContractRegistry) error {
		gotRef, gotUpdate = ref, update
		return nil
	})
	f := newFixture(t, Config{Guard: spy, ContractName: "Vault"})
	f.form.OnAddressChange(zeroAddress)
	f.form.OnAbiChange(`[{"type":"event","name":"Deposit"}]`)

	_, err := f.form.TriggerLoad()
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(registry.Seed(), gotRef))
	require.Len(t, gotUpdate, 1)
	info, ok := gotUpdate.Lookup("1", "Vault")
	require.True(t, ok)
	assert.Equal(t, []json.RawMessage{json.RawMessage(`{"type":"event","name":"Deposit"}`)}, info.ABI)
}

func TestResetAllowsAnotherLoad(t *testing.T) {
	f := newFixture(t, Config{})
	f.form.OnAddressChange(zeroAddress)
	f.form.OnAbiChange("[]")
	_, err := f.form.TriggerLoad()
	require.NoError(t, err)

	f.form.Reset()
	assert.Equal(t, StateIdle, f.form.State())
	assert.False(t, f.form.Flags().IsContractLoaded)

	require.NoError(t, f.form.SelectNetwork(&chains.NetworkOption{Name: "base"}))
	f.form.OnAddressChange("0x1111111111111111111111111111111111111111")
	_, err = f.form.TriggerLoad()
	require.NoError(t, err)

	snap := f.store.Snapshot()
	assert.Equal(t, zeroAddress, snap["1"][constants.DefaultContractName].Address)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", snap["8453"][constants.DefaultContractName].Address)
	assert.Equal(t, uint64(2), f.store.Version())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "committed", StateCommitted.String())
	assert.Equal(t, "state(9)", State(9).String())

	b, err := json.Marshal(Status{State: StateRejected})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"state":"rejected"`)
}

func TestConcurrentEntryPointsCommitOnce(t *testing.T) {
	f := newFixture(t, Config{})
	f.form.OnAbiChange("[]")

	base, ok := f.form.catalog.Lookup("base")
	require.True(t, ok)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			f.form.OnAddressChange(zeroAddress)
		}()
		go func() {
			defer wg.Done()
			_ = f.form.SelectNetwork(&base)
		}()
		go func() {
			defer wg.Done()
			_, _ = f.form.TriggerLoad()
		}()
		go func() {
			defer wg.Done()
			_ = f.form.Status()
			_ = f.store.Snapshot()
			_ = f.targets.Snapshot()
		}()
	}
	wg.Wait()

	// every goroutine set the same valid input, so a final load must commit
	state, err := f.form.TriggerLoad()
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)
	assert.Equal(t, uint64(1), f.store.Version())

	snap := f.store.Snapshot()
	_, ok = snap.Lookup("1", constants.DefaultContractName)
	assert.True(t, ok, "seed chain must survive")

	loaded := f.form.Status().LoadedChainID
	_, ok = snap.Lookup(loaded, constants.DefaultContractName)
	assert.True(t, ok)
	assert.Contains(t, []string{"1", "8453"}, loaded)
}

type emptyCatalog struct{}

func (emptyCatalog) Lookup(string) (chains.NetworkOption, bool) { return chains.NetworkOption{}, false }
func (emptyCatalog) LookupByChainIDHex(string) (chains.NetworkOption, bool) {
	return chains.NetworkOption{}, false
}
func (emptyCatalog) Options() []chains.NetworkOption { return nil }
