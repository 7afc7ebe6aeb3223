// Package validate holds the per-keystroke checks on contract form input.
package validate

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/contract-loader/internal/constants"
)

var ErrInvalidABI = errors.New("invalid abi")

type AddressState struct {
	Empty    bool `json:"empty"`
	TooShort bool `json:"tooShort"`
}

// Address only looks at length. Hex digits and checksums are left to whoever
// talks to the chain.
func Address(input string) AddressState {
	return AddressState{
		Empty:    len(input) == 0,
		TooShort: len(input) < constants.AddressLength,
	}
}

// ABI parses text as a JSON array. Entries are kept as raw JSON, their shape is
// not checked here.
func ABI(text string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 {
		return nil, errors.Wrap(ErrInvalidABI, "empty input")
	}
	// Stricter than plain JSON: objects, scalars and null are valid JSON but not
	// an entry list, so they are rejected.
	if trimmed[0] != '[' {
		return nil, errors.Wrap(ErrInvalidABI, "top level is not an array")
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, errors.Wrapf(ErrInvalidABI, "decode: %v", err)
	}
	return entries, nil
}
