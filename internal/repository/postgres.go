package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shipdesk/logistics/pkg/rate"
)

// Postgres is the production rate.Repository backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a repository to the given database URL.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, for tests that manage their own
// connections.
func NewPostgresWithPool(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// SellerRateBand returns the seller's assigned rate band, or "".
func (p *Postgres) SellerRateBand(ctx context.Context, sellerID string) (string, error) {
	var band string
	err := p.pool.QueryRow(ctx,
		`SELECT rate_band FROM seller_rate_bands WHERE seller_id = $1`,
		sellerID,
	).Scan(&band)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying seller rate band: %w", err)
	}
	return band, nil
}

// ActiveRateCards returns all active base cards for a rate band.
func (p *Postgres) ActiveRateCards(ctx context.Context, rateBand string) ([]rate.RateCard, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, courier, product_name, mode, zone, rate_band,
		       base_rate, additional_rate, cod_flat_amount, cod_percent,
		       rto_charge, minimum_billable_weight, is_active
		FROM rate_cards
		WHERE rate_band = $1 AND is_active`,
		rateBand,
	)
	if err != nil {
		return nil, fmt.Errorf("querying rate cards: %w", err)
	}
	defer rows.Close()

	var cards []rate.RateCard
	for rows.Next() {
		var c rate.RateCard
		if err := rows.Scan(
			&c.ID, &c.Courier, &c.ProductName, &c.Mode, &c.Zone, &c.RateBand,
			&c.BaseRate, &c.AdditionalRate, &c.CODFlatAmount, &c.CODPercent,
			&c.RTOCharge, &c.MinimumBillableWeight, &c.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scanning rate card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// FindActiveRateCard returns the active base card for a tuple, or nil.
func (p *Postgres) FindActiveRateCard(ctx context.Context, rateBand string, key rate.CardKey) (*rate.RateCard, error) {
	var c rate.RateCard
	err := p.pool.QueryRow(ctx, `
		SELECT id, courier, product_name, mode, zone, rate_band,
		       base_rate, additional_rate, cod_flat_amount, cod_percent,
		       rto_charge, minimum_billable_weight, is_active
		FROM rate_cards
		WHERE rate_band = $1 AND courier = $2 AND product_name = $3
		  AND mode = $4 AND zone = $5 AND is_active`,
		rateBand, key.Courier, key.ProductName, key.Mode, key.Zone,
	).Scan(
		&c.ID, &c.Courier, &c.ProductName, &c.Mode, &c.Zone, &c.RateBand,
		&c.BaseRate, &c.AdditionalRate, &c.CODFlatAmount, &c.CODPercent,
		&c.RTOCharge, &c.MinimumBillableWeight, &c.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying rate card: %w", err)
	}
	return &c, nil
}

// OverridesBySeller returns all overrides for a seller.
func (p *Postgres) OverridesBySeller(ctx context.Context, sellerID string) ([]rate.SellerRateOverride, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, seller_id, base_rate_card_id, courier, product_name, mode, zone,
		       base_rate, additional_rate, cod_flat_amount, cod_percent,
		       rto_charge, minimum_billable_weight,
		       is_active, created_by, updated_by, notes, created_at, updated_at
		FROM seller_rate_overrides
		WHERE seller_id = $1`,
		sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying overrides: %w", err)
	}
	defer rows.Close()

	var overrides []rate.SellerRateOverride
	for rows.Next() {
		var o rate.SellerRateOverride
		if err := rows.Scan(
			&o.ID, &o.SellerID, &o.BaseRateCardID, &o.Courier, &o.ProductName, &o.Mode, &o.Zone,
			&o.BaseRate, &o.AdditionalRate, &o.CODFlatAmount, &o.CODPercent,
			&o.RTOCharge, &o.MinimumBillableWeight,
			&o.IsActive, &o.CreatedBy, &o.UpdatedBy, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning override: %w", err)
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// FindOverride returns an override by ID, or nil.
func (p *Postgres) FindOverride(ctx context.Context, overrideID string) (*rate.SellerRateOverride, error) {
	var o rate.SellerRateOverride
	err := p.pool.QueryRow(ctx, `
		SELECT id, seller_id, base_rate_card_id, courier, product_name, mode, zone,
		       base_rate, additional_rate, cod_flat_amount, cod_percent,
		       rto_charge, minimum_billable_weight,
		       is_active, created_by, updated_by, notes, created_at, updated_at
		FROM seller_rate_overrides
		WHERE id = $1`,
		overrideID,
	).Scan(
		&o.ID, &o.SellerID, &o.BaseRateCardID, &o.Courier, &o.ProductName, &o.Mode, &o.Zone,
		&o.BaseRate, &o.AdditionalRate, &o.CODFlatAmount, &o.CODPercent,
		&o.RTOCharge, &o.MinimumBillableWeight,
		&o.IsActive, &o.CreatedBy, &o.UpdatedBy, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying override: %w", err)
	}
	return &o, nil
}

// UpsertOverride inserts or replaces the override row keyed by
// (seller, courier, product, mode, zone).
func (p *Postgres) UpsertOverride(ctx context.Context, o rate.SellerRateOverride) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO seller_rate_overrides (
			id, seller_id, base_rate_card_id, courier, product_name, mode, zone,
			base_rate, additional_rate, cod_flat_amount, cod_percent,
			rto_charge, minimum_billable_weight,
			is_active, created_by, updated_by, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (seller_id, courier, product_name, mode, zone) DO UPDATE SET
			base_rate_card_id = EXCLUDED.base_rate_card_id,
			base_rate = EXCLUDED.base_rate,
			additional_rate = EXCLUDED.additional_rate,
			cod_flat_amount = EXCLUDED.cod_flat_amount,
			cod_percent = EXCLUDED.cod_percent,
			rto_charge = EXCLUDED.rto_charge,
			minimum_billable_weight = EXCLUDED.minimum_billable_weight,
			is_active = EXCLUDED.is_active,
			updated_by = EXCLUDED.updated_by,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at`,
		o.ID, o.SellerID, o.BaseRateCardID, o.Courier, o.ProductName, o.Mode, o.Zone,
		o.BaseRate, o.AdditionalRate, o.CODFlatAmount, o.CODPercent,
		o.RTOCharge, o.MinimumBillableWeight,
		o.IsActive, o.CreatedBy, o.UpdatedBy, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting override: %w", err)
	}
	return nil
}

// DeleteOverride removes an override row.
func (p *Postgres) DeleteOverride(ctx context.Context, overrideID string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM seller_rate_overrides WHERE id = $1`,
		overrideID,
	)
	if err != nil {
		return fmt.Errorf("deleting override: %w", err)
	}
	return nil
}

// LookupPincode returns the serviceability record for a pincode, or nil.
func (p *Postgres) LookupPincode(ctx context.Context, pincode string) (*rate.PincodeRecord, error) {
	var r rate.PincodeRecord
	err := p.pool.QueryRow(ctx, `
		SELECT pincode, district, state, is_metro, is_serviceable, couriers
		FROM pincodes
		WHERE pincode = $1`,
		pincode,
	).Scan(&r.Pincode, &r.District, &r.State, &r.IsMetro, &r.IsServiceable, &r.Couriers)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying pincode: %w", err)
	}
	return &r, nil
}

var _ rate.Repository = (*Postgres)(nil)
