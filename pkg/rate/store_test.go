package rate_test

import (
	"context"
	"testing"

	"github.com/shipdesk/logistics/internal/repository"
	"github.com/shipdesk/logistics/pkg/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*rate.Store, *repository.Memory) {
	t.Helper()
	repo := repository.NewMemory()
	repo.AddRateCard(baseCard())
	airCard := baseCard()
	airCard.ID = "card-2"
	airCard.ProductName = "Delhivery Air"
	airCard.Mode = rate.ModeAir
	airCard.BaseRate = 55
	repo.AddRateCard(airCard)
	return rate.NewStore(repo, otelzap.New(zap.NewNop())), repo
}

func TestStore_ResolveEffectiveRates_NoOverrides(t *testing.T) {
	store, _ := newTestStore(t)

	rates, err := store.ResolveEffectiveRates(context.Background(), "seller-1")

	require.NoError(t, err)
	require.Len(t, rates, 2)
	for _, r := range rates {
		assert.False(t, r.IsOverride)
	}
}

func TestStore_ResolveEffectiveRates_RequiresSeller(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ResolveEffectiveRates(context.Background(), "")

	assert.ErrorIs(t, err, rate.ErrValidation)
}

func TestStore_CreateOverride_AppliesToResolution(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	override, err := store.CreateOrUpdateOverride(ctx, "seller-1", rate.OverridePatch{
		Courier:     "delhivery",
		ProductName: "Delhivery Surface",
		Mode:        rate.ModeSurface,
		Zone:        rate.ZoneMetroToMetro,
		BaseRate:    f64(25),
	}, "admin-1")
	require.NoError(t, err)
	assert.NotEmpty(t, override.ID)
	assert.Equal(t, "card-1", override.BaseRateCardID)

	rates, err := store.ResolveEffectiveRates(ctx, "seller-1")
	require.NoError(t, err)

	var surface *rate.EffectiveRate
	for i := range rates {
		if rates[i].Mode == rate.ModeSurface {
			surface = &rates[i]
		}
	}
	require.NotNil(t, surface)
	assert.True(t, surface.IsOverride)
	assert.Equal(t, 25.0, surface.BaseRate)
	assert.Equal(t, 15.0, surface.AdditionalRate, "fields not patched inherit the base card")
}

func TestStore_CreateOverride_OtherSellersUnaffected(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateOrUpdateOverride(ctx, "seller-1", rate.OverridePatch{
		Courier:     "delhivery",
		ProductName: "Delhivery Surface",
		Mode:        rate.ModeSurface,
		Zone:        rate.ZoneMetroToMetro,
		BaseRate:    f64(25),
	}, "admin-1")
	require.NoError(t, err)

	rates, err := store.ResolveEffectiveRates(ctx, "seller-2")
	require.NoError(t, err)
	for _, r := range rates {
		assert.False(t, r.IsOverride)
		if r.Mode == rate.ModeSurface {
			assert.Equal(t, 30.0, r.BaseRate)
		}
	}
}

func TestStore_CreateOverride_RejectsUnknownBaseCard(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.CreateOrUpdateOverride(context.Background(), "seller-1", rate.OverridePatch{
		Courier:     "delhivery",
		ProductName: "Delhivery Surface",
		Mode:        rate.ModeSurface,
		Zone:        rate.ZoneNorthEastSpecial, // no base card for this zone
		BaseRate:    f64(25),
	}, "admin-1")

	assert.ErrorIs(t, err, rate.ErrNotFound)
}

func TestStore_CreateOverride_SecondWriteUpdatesInPlace(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	patch := rate.OverridePatch{
		Courier:     "delhivery",
		ProductName: "Delhivery Surface",
		Mode:        rate.ModeSurface,
		Zone:        rate.ZoneMetroToMetro,
		BaseRate:    f64(25),
	}

	first, err := store.CreateOrUpdateOverride(ctx, "seller-1", patch, "admin-1")
	require.NoError(t, err)

	patch.BaseRate = f64(22)
	second, err := store.CreateOrUpdateOverride(ctx, "seller-1", patch, "admin-2")
	require.NoError(t, err)

	// Same tuple: one row, updated in place, creation audit preserved.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "admin-1", second.CreatedBy)
	assert.Equal(t, "admin-2", second.UpdatedBy)

	overrides, err := store.ResolveEffectiveRates(ctx, "seller-1")
	require.NoError(t, err)
	for _, r := range overrides {
		if r.Mode == rate.ModeSurface {
			assert.Equal(t, 22.0, r.BaseRate)
		}
	}
}

func TestStore_RemoveOverride_RevertsToBase(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	override, err := store.CreateOrUpdateOverride(ctx, "seller-1", rate.OverridePatch{
		Courier:     "delhivery",
		ProductName: "Delhivery Surface",
		Mode:        rate.ModeSurface,
		Zone:        rate.ZoneMetroToMetro,
		BaseRate:    f64(25),
	}, "admin-1")
	require.NoError(t, err)

	require.NoError(t, store.RemoveOverride(ctx, "seller-1", override.ID))

	rates, err := store.ResolveEffectiveRates(ctx, "seller-1")
	require.NoError(t, err)
	for _, r := range rates {
		assert.False(t, r.IsOverride)
		if r.Mode == rate.ModeSurface {
			assert.Equal(t, 30.0, r.BaseRate, "removal reverts the seller to the base card")
		}
	}
}

func TestStore_RemoveOverride_WrongSeller(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	override, err := store.CreateOrUpdateOverride(ctx, "seller-1", rate.OverridePatch{
		Courier:     "delhivery",
		ProductName: "Delhivery Surface",
		Mode:        rate.ModeSurface,
		Zone:        rate.ZoneMetroToMetro,
		BaseRate:    f64(25),
	}, "admin-1")
	require.NoError(t, err)

	err = store.RemoveOverride(ctx, "seller-2", override.ID)
	assert.ErrorIs(t, err, rate.ErrNotFound)
}

func TestStore_DefaultRateBandApplied(t *testing.T) {
	repo := repository.NewMemory()
	card := baseCard()
	card.RateBand = "RBX2"
	repo.AddRateCard(card)
	repo.SetSellerRateBand("seller-premium", "RBX2")
	store := rate.NewStore(repo, otelzap.New(zap.NewNop()))
	ctx := context.Background()

	// The banded seller sees RBX2 cards; an unbanded seller falls back to the
	// default band and sees nothing here.
	premium, err := store.ResolveEffectiveRates(ctx, "seller-premium")
	require.NoError(t, err)
	assert.Len(t, premium, 1)

	unbanded, err := store.ResolveEffectiveRates(ctx, "seller-default")
	require.NoError(t, err)
	assert.Empty(t, unbanded)
}
