package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Repository is the persistence port the rate layer depends on. Backing
// technology is a collaborator concern; only tuple lookups, per-seller
// queries, upsert and delete are required.
type Repository interface {
	// SellerRateBand returns the seller's assigned rate band, or "" when the
	// seller has none (callers apply DefaultRateBand).
	SellerRateBand(ctx context.Context, sellerID string) (string, error)

	// ActiveRateCards returns all active base cards for a rate band.
	ActiveRateCards(ctx context.Context, rateBand string) ([]RateCard, error)

	// FindActiveRateCard returns the active base card for a tuple within a
	// band, or nil when none exists.
	FindActiveRateCard(ctx context.Context, rateBand string, key CardKey) (*RateCard, error)

	// OverridesBySeller returns all active overrides for a seller.
	OverridesBySeller(ctx context.Context, sellerID string) ([]SellerRateOverride, error)

	// FindOverride returns an override by ID, or nil when none exists.
	FindOverride(ctx context.Context, overrideID string) (*SellerRateOverride, error)

	// UpsertOverride inserts or replaces the override row keyed by
	// (seller, courier, product, mode, zone).
	UpsertOverride(ctx context.Context, override SellerRateOverride) error

	// DeleteOverride removes an override row.
	DeleteOverride(ctx context.Context, overrideID string) error

	// LookupPincode returns the serviceability record for a pincode, or nil
	// when the pincode is unknown.
	LookupPincode(ctx context.Context, pincode string) (*PincodeRecord, error)
}

// Store resolves effective rates per seller and owns the only write path for
// seller overrides.
type Store struct {
	repo   Repository
	logger *otelzap.Logger
}

// NewStore creates a rate card store over the given repository.
func NewStore(repo Repository, logger *otelzap.Logger) *Store {
	return &Store{repo: repo, logger: logger}
}

// ResolveEffectiveRates materializes the seller's effective rate cards:
// every active base card in the seller's band, merged with the seller's
// matching override where one exists.
func (s *Store) ResolveEffectiveRates(ctx context.Context, sellerID string) ([]EffectiveRate, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("%w: seller id is required", ErrValidation)
	}

	band, err := s.repo.SellerRateBand(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("resolving rate band: %w", err)
	}
	if band == "" {
		band = DefaultRateBand
	}

	cards, err := s.repo.ActiveRateCards(ctx, band)
	if err != nil {
		return nil, fmt.Errorf("loading rate cards: %w", err)
	}

	overrides, err := s.repo.OverridesBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("loading overrides: %w", err)
	}

	byKey := make(map[CardKey]*SellerRateOverride, len(overrides))
	for i := range overrides {
		if overrides[i].IsActive {
			byKey[overrides[i].Key()] = &overrides[i]
		}
	}

	rates := make([]EffectiveRate, 0, len(cards))
	for _, card := range cards {
		rates = append(rates, Merge(card, byKey[card.Key()]))
	}
	return rates, nil
}

// OverridePatch is the admin-supplied override payload. Nil fields inherit
// the base card.
type OverridePatch struct {
	Courier     string
	ProductName string
	Mode        Mode
	Zone        Zone

	BaseRate              *float64
	AdditionalRate        *float64
	CODFlatAmount         *float64
	CODPercent            *float64
	RTOCharge             *float64
	MinimumBillableWeight *float64

	Notes string
}

// CreateOrUpdateOverride upserts a seller override. The referenced base card
// must exist (active, same tuple, seller's band) or the write is rejected
// with ErrNotFound: overrides are never created without a valid base
// reference.
func (s *Store) CreateOrUpdateOverride(ctx context.Context, sellerID string, patch OverridePatch, actorID string) (*SellerRateOverride, error) {
	if sellerID == "" || patch.Courier == "" || patch.ProductName == "" {
		return nil, fmt.Errorf("%w: seller, courier and product are required", ErrValidation)
	}

	band, err := s.repo.SellerRateBand(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("resolving rate band: %w", err)
	}
	if band == "" {
		band = DefaultRateBand
	}

	key := CardKey{Courier: patch.Courier, ProductName: patch.ProductName, Mode: patch.Mode, Zone: patch.Zone}
	base, err := s.repo.FindActiveRateCard(ctx, band, key)
	if err != nil {
		return nil, fmt.Errorf("looking up base card: %w", err)
	}
	if base == nil {
		return nil, fmt.Errorf("%w: no active base card for %s/%s %s %s in band %s",
			ErrNotFound, patch.Courier, patch.ProductName, patch.Mode, patch.Zone, band)
	}

	now := time.Now().UTC()
	override := SellerRateOverride{
		ID:             uuid.New().String(),
		SellerID:       sellerID,
		BaseRateCardID: base.ID,
		Courier:        patch.Courier,
		ProductName:    patch.ProductName,
		Mode:           patch.Mode,
		Zone:           patch.Zone,

		BaseRate:              patch.BaseRate,
		AdditionalRate:        patch.AdditionalRate,
		CODFlatAmount:         patch.CODFlatAmount,
		CODPercent:            patch.CODPercent,
		RTOCharge:             patch.RTOCharge,
		MinimumBillableWeight: patch.MinimumBillableWeight,

		IsActive:  true,
		CreatedBy: actorID,
		UpdatedBy: actorID,
		Notes:     patch.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Upsert semantics: a second write for the same tuple updates the
	// existing row in place instead of creating a duplicate.
	existing, err := s.findSellerOverride(ctx, sellerID, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		override.ID = existing.ID
		override.CreatedBy = existing.CreatedBy
		override.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.UpsertOverride(ctx, override); err != nil {
		return nil, fmt.Errorf("upserting override: %w", err)
	}

	s.logger.Info("Seller override saved",
		zap.String("seller_id", sellerID),
		zap.String("override_id", override.ID),
		zap.String("courier", override.Courier),
		zap.String("zone", string(override.Zone)),
		zap.Bool("updated", existing != nil),
	)
	return &override, nil
}

// RemoveOverride deletes a seller override, reverting the seller to the base
// card. It never touches the base card itself.
func (s *Store) RemoveOverride(ctx context.Context, sellerID, overrideID string) error {
	override, err := s.repo.FindOverride(ctx, overrideID)
	if err != nil {
		return fmt.Errorf("looking up override: %w", err)
	}
	if override == nil || override.SellerID != sellerID {
		return fmt.Errorf("%w: override %s for seller %s", ErrNotFound, overrideID, sellerID)
	}
	if err := s.repo.DeleteOverride(ctx, overrideID); err != nil {
		return fmt.Errorf("deleting override: %w", err)
	}

	s.logger.Info("Seller override removed",
		zap.String("seller_id", sellerID),
		zap.String("override_id", overrideID),
	)
	return nil
}

func (s *Store) findSellerOverride(ctx context.Context, sellerID string, key CardKey) (*SellerRateOverride, error) {
	overrides, err := s.repo.OverridesBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("loading overrides: %w", err)
	}
	for i := range overrides {
		if overrides[i].Key() == key {
			return &overrides[i], nil
		}
	}
	return nil, nil
}
