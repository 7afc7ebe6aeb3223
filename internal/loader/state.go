package loader

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/contract-loader/internal/networks"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateRejected
	StateCommitted
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateValidating: "validating",
	StateRejected:   "rejected",
	StateCommitted:  "committed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonEmptyAddress     Reason = "EmptyAddress"
	ReasonAddressTooShort  Reason = "AddressTooShort"
	ReasonInvalidAbi       Reason = "InvalidAbi"
	ReasonUnknownNetwork   Reason = "UnknownNetwork"
	ReasonRegistryRejected Reason = "RegistryRejected"
)

var (
	ErrEmptyAddress     = errors.New("address is required")
	ErrAddressTooShort  = errors.New("address is too short")
	ErrInvalidAbi       = errors.New("valid abi is required")
	ErrUnknownNetwork   = networks.ErrUnknownNetwork
	ErrRegistryRejected = errors.New("registry rejected the update")
)

// LoadError is returned by TriggerLoad when a load is rejected. errors.Is
// matches it against the sentinel for its Reason.
type LoadError struct {
	Reason Reason
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load rejected (%s): %v", e.Reason, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func reject(reason Reason, sentinel error, cause error) *LoadError {
	err := sentinel
	if cause != nil {
		err = errors.Mark(cause, sentinel)
	}
	return &LoadError{Reason: reason, Err: err}
}
