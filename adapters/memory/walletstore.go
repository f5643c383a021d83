// Package memory provides in-memory store implementations for development
// and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/slavayosome/seriously-ai-sub000/domain/credit"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// WalletStore is an in-memory implementation of ports.WalletStore.
// Safe for concurrent use.
type WalletStore struct {
	mu      sync.RWMutex
	wallets map[string]credit.Wallet

	// Invalidators are notified after every mutation, honoring the
	// cache-invalidation contract the real write path follows.
	invalidators []func(userID string)
}

// NewWalletStore creates an empty wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{wallets: make(map[string]credit.Wallet)}
}

// OnMutation registers a callback invoked with the user id after every
// balance or plan change.
func (s *WalletStore) OnMutation(fn func(userID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidators = append(s.invalidators, fn)
}

// Get retrieves a wallet by user id.
func (s *WalletStore) Get(_ context.Context, userID string) (credit.Wallet, error) {
	s.mu.RLock()
	w, ok := s.wallets[userID]
	s.mu.RUnlock()
	if !ok {
		return credit.Wallet{}, fmt.Errorf("wallet not found: %s", userID)
	}
	return w, nil
}

// Put stores a wallet (seeding and tests).
func (s *WalletStore) Put(w credit.Wallet) {
	s.mu.Lock()
	s.wallets[w.UserID] = w
	fns := append([]func(string){}, s.invalidators...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(w.UserID)
	}
}

// Debit reduces a wallet balance, simulating the external deduction path.
func (s *WalletStore) Debit(userID string, amount int) error {
	s.mu.Lock()
	w, ok := s.wallets[userID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("wallet not found: %s", userID)
	}
	if w.Balance < amount {
		s.mu.Unlock()
		return fmt.Errorf("insufficient credits: balance %d, need %d", w.Balance, amount)
	}
	w.Balance -= amount
	s.wallets[userID] = w
	fns := append([]func(string){}, s.invalidators...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(userID)
	}
	return nil
}

// Ensure interface compliance.
var _ ports.WalletStore = (*WalletStore)(nil)
