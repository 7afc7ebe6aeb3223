package registry

import "sync"

// Sink receives the full registry after every successful load.
type Sink interface {
	SetContracts(update ContractRegistry)
}

// Store holds the active registry. Writers replace it wholesale, readers get
// copies.
type Store struct {
	mu      sync.RWMutex
	current ContractRegistry
	version uint64
}

func NewStore(initial ContractRegistry) *Store {
	if initial == nil {
		initial = ContractRegistry{}
	}
	return &Store{current: initial.Clone()}
}

func (s *Store) SetContracts(update ContractRegistry) {
	copied := update.Clone()
	if copied == nil {
		copied = ContractRegistry{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = copied
	s.version++
}

func (s *Store) Snapshot() ContractRegistry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Version counts SetContracts calls.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
