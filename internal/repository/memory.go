// Package repository provides rate.Repository implementations: an in-memory
// store for tests and mock mode, and a Postgres store for production.
package repository

import (
	"context"
	"sync"

	"github.com/shipdesk/logistics/pkg/rate"
)

// Memory is an in-memory rate.Repository. Safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	bands     map[string]string // sellerID -> rate band
	cards     []rate.RateCard
	overrides map[string]rate.SellerRateOverride // overrideID -> row
	pincodes  map[string]rate.PincodeRecord
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		bands:     make(map[string]string),
		overrides: make(map[string]rate.SellerRateOverride),
		pincodes:  make(map[string]rate.PincodeRecord),
	}
}

// SetSellerRateBand assigns a seller to a rate band.
func (m *Memory) SetSellerRateBand(sellerID, band string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bands[sellerID] = band
}

// AddRateCard seeds a base rate card.
func (m *Memory) AddRateCard(card rate.RateCard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards = append(m.cards, card)
}

// AddPincode seeds a serviceability record.
func (m *Memory) AddPincode(record rate.PincodeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pincodes[record.Pincode] = record
}

// SellerRateBand returns the seller's assigned band, or "".
func (m *Memory) SellerRateBand(ctx context.Context, sellerID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bands[sellerID], nil
}

// ActiveRateCards returns all active cards in a band.
func (m *Memory) ActiveRateCards(ctx context.Context, rateBand string) ([]rate.RateCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rate.RateCard, 0, len(m.cards))
	for _, card := range m.cards {
		if card.IsActive && card.RateBand == rateBand {
			out = append(out, card)
		}
	}
	return out, nil
}

// FindActiveRateCard returns the active card for a tuple within a band.
func (m *Memory) FindActiveRateCard(ctx context.Context, rateBand string, key rate.CardKey) (*rate.RateCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, card := range m.cards {
		if card.IsActive && card.RateBand == rateBand && card.Key() == key {
			c := card
			return &c, nil
		}
	}
	return nil, nil
}

// OverridesBySeller returns all overrides for a seller.
func (m *Memory) OverridesBySeller(ctx context.Context, sellerID string) ([]rate.SellerRateOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rate.SellerRateOverride, 0)
	for _, o := range m.overrides {
		if o.SellerID == sellerID {
			out = append(out, o)
		}
	}
	return out, nil
}

// FindOverride returns an override by ID.
func (m *Memory) FindOverride(ctx context.Context, overrideID string) (*rate.SellerRateOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.overrides[overrideID]; ok {
		return &o, nil
	}
	return nil, nil
}

// UpsertOverride inserts or replaces an override row.
func (m *Memory) UpsertOverride(ctx context.Context, override rate.SellerRateOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[override.ID] = override
	return nil
}

// DeleteOverride removes an override row.
func (m *Memory) DeleteOverride(ctx context.Context, overrideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, overrideID)
	return nil
}

// LookupPincode returns the record for a pincode, or nil when unknown.
func (m *Memory) LookupPincode(ctx context.Context, pincode string) (*rate.PincodeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.pincodes[pincode]; ok {
		return &r, nil
	}
	return nil, nil
}

var _ rate.Repository = (*Memory)(nil)
