package rate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// legacyExpressMultiplier prices an express shipment off the surface card
// when a seller has no express-mode card for the zone. Kept only as a
// fallback; card-driven pricing is authoritative.
const legacyExpressMultiplier = 1.5

// QuoteRequest describes one shipment to price.
type QuoteRequest struct {
	SellerID           string
	OriginPincode      string
	DestinationPincode string
	WeightKg           float64
	Dims               Dimensions
	Mode               Mode // empty = all modes
	CODAmount          float64
}

// Breakdown itemizes one courier quote. All components are pre-rounding;
// only Total is rounded, to the nearest whole currency unit.
type Breakdown struct {
	BaseRate      float64 `json:"baseRate"`
	WeightCharge  float64 `json:"weightCharge"`
	CODCharge     float64 `json:"codCharge"`
	FuelSurcharge float64 `json:"fuelSurcharge"`
	Tax           float64 `json:"tax"`
}

// CourierQuote is one priced option for a shipment.
type CourierQuote struct {
	Courier          string    `json:"courier"`
	ProductName      string    `json:"productName"`
	Mode             Mode      `json:"mode"`
	Zone             Zone      `json:"zone"`
	BillableWeightKg float64   `json:"billableWeightKg"`
	Breakdown        Breakdown `json:"breakdown"`
	Total            float64   `json:"total"`
	IsOverride       bool      `json:"isOverride"`
	LegacyExpress    bool      `json:"legacyExpress,omitempty"`
}

// QuoteResponse is the result of pricing a shipment. "No service for this
// route" is an expected business outcome, carried as Available=false rather
// than an error, so callers can distinguish it from transient failure.
type QuoteResponse struct {
	Available          bool           `json:"available"`
	Reason             string         `json:"reason,omitempty"`
	Zone               Zone           `json:"zone"`
	ChargeableWeightKg float64        `json:"chargeableWeightKg"`
	Quotes             []CourierQuote `json:"quotes"`
}

// EngineConfig holds pricing knobs applied on top of the card subtotal.
type EngineConfig struct {
	FuelSurchargePct   float64
	TaxPct             float64
	VolumetricDivisor  float64
	QuoteTTL           time.Duration
	CacheCleanupPeriod time.Duration

	// OnCacheEvent, when set, is invoked with true on a quote-cache hit and
	// false on a miss.
	OnCacheEvent func(hit bool)
}

// Engine prices shipments from a seller's effective rate cards. Quote results
// are cached for a short TTL with single-flight computation, so concurrent
// requests for the same route share one resolution.
type Engine struct {
	store  *Store
	repo   Repository
	cfg    EngineConfig
	cache  *gocache.Cache
	group  singleflight.Group
	logger *otelzap.Logger
}

// NewEngine creates a rate engine.
func NewEngine(store *Store, repo Repository, cfg EngineConfig, logger *otelzap.Logger) *Engine {
	if cfg.VolumetricDivisor <= 0 {
		cfg.VolumetricDivisor = DefaultVolumetricDivisor
	}
	if cfg.QuoteTTL <= 0 {
		cfg.QuoteTTL = 5 * time.Minute
	}
	if cfg.CacheCleanupPeriod <= 0 {
		cfg.CacheCleanupPeriod = 10 * time.Minute
	}
	return &Engine{
		store:  store,
		repo:   repo,
		cfg:    cfg,
		cache:  gocache.New(cfg.QuoteTTL, cfg.CacheCleanupPeriod),
		logger: logger,
	}
}

// Quote prices a shipment across all of the seller's matching effective
// rates, cheapest first.
func (e *Engine) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	if req.SellerID == "" {
		return nil, fmt.Errorf("%w: seller id is required", ErrValidation)
	}
	if req.WeightKg <= 0 {
		return nil, fmt.Errorf("%w: weight must be positive", ErrValidation)
	}
	if req.OriginPincode == "" || req.DestinationPincode == "" {
		return nil, fmt.Errorf("%w: origin and destination pincodes are required", ErrValidation)
	}

	chargeable := ChargeableWeight(req.WeightKg, req.Dims, e.cfg.VolumetricDivisor)
	key := quoteCacheKey(req, chargeable)

	if cached, ok := e.cache.Get(key); ok {
		if e.cfg.OnCacheEvent != nil {
			e.cfg.OnCacheEvent(true)
		}
		resp := cached.(QuoteResponse)
		return &resp, nil
	}
	if e.cfg.OnCacheEvent != nil {
		e.cfg.OnCacheEvent(false)
	}

	// Single-flight: concurrent misses for the same key share one compute.
	result, err, _ := e.group.Do(key, func() (interface{}, error) {
		resp, err := e.compute(ctx, req, chargeable)
		if err != nil {
			return nil, err
		}
		e.cache.Set(key, *resp, gocache.DefaultExpiration)
		return *resp, nil
	})
	if err != nil {
		return nil, err
	}
	resp := result.(QuoteResponse)
	return &resp, nil
}

func (e *Engine) compute(ctx context.Context, req QuoteRequest, chargeable float64) (*QuoteResponse, error) {
	record, err := e.repo.LookupPincode(ctx, req.DestinationPincode)
	if err != nil {
		return nil, fmt.Errorf("looking up destination pincode: %w", err)
	}

	// Unknown pincodes default to serviceable rest-of-India; only an explicit
	// record can mark a destination unserviceable.
	destState := ""
	if record != nil {
		destState = record.State
		if !record.IsServiceable {
			return &QuoteResponse{
				Available: false,
				Reason:    fmt.Sprintf("pincode %s is not serviceable", req.DestinationPincode),
			}, nil
		}
	}

	zone := ClassifyZone(req.OriginPincode, req.DestinationPincode, destState)

	rates, err := e.store.ResolveEffectiveRates(ctx, req.SellerID)
	if err != nil {
		return nil, err
	}

	matched := filterRates(rates, zone, req.Mode)
	legacyExpress := false
	if len(matched) == 0 && req.Mode == ModeExpress {
		matched = filterRates(rates, zone, ModeSurface)
		legacyExpress = len(matched) > 0
	}

	if len(matched) == 0 {
		e.logger.Info("No rate card matches route",
			zap.String("seller_id", req.SellerID),
			zap.String("zone", string(zone)),
			zap.String("mode", string(req.Mode)),
		)
		return &QuoteResponse{
			Available:          false,
			Reason:             fmt.Sprintf("no service for zone %s", zone),
			Zone:               zone,
			ChargeableWeightKg: chargeable,
		}, nil
	}

	quotes := make([]CourierQuote, 0, len(matched))
	for _, er := range matched {
		quotes = append(quotes, priceRate(er, zone, chargeable, req.CODAmount, legacyExpress, e.cfg))
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Total < quotes[j].Total })

	return &QuoteResponse{
		Available:          true,
		Zone:               zone,
		ChargeableWeightKg: chargeable,
		Quotes:             quotes,
	}, nil
}

// priceRate applies the rate formula to one effective card. Money stays
// unrounded through the pipeline; only the final total is rounded.
func priceRate(er EffectiveRate, zone Zone, chargeable, codAmount float64, legacyExpress bool, cfg EngineConfig) CourierQuote {
	billable := chargeable
	if er.MinimumBillableWeight > billable {
		billable = er.MinimumBillableWeight
	}

	extraKg := math.Ceil(billable) - 1
	if extraKg < 0 {
		extraKg = 0
	}
	weightCharge := extraKg * er.AdditionalRate

	codCharge := 0.0
	if codAmount > 0 {
		codCharge = math.Max(er.CODFlatAmount, codAmount*er.CODPercent/100)
	}

	subtotal := er.BaseRate + weightCharge + codCharge
	mode := er.Mode
	if legacyExpress {
		subtotal *= legacyExpressMultiplier
		mode = ModeExpress
	}

	surcharge := subtotal * cfg.FuelSurchargePct / 100
	tax := (subtotal + surcharge) * cfg.TaxPct / 100

	return CourierQuote{
		Courier:          er.Courier,
		ProductName:      er.ProductName,
		Mode:             mode,
		Zone:             zone,
		BillableWeightKg: billable,
		Breakdown: Breakdown{
			BaseRate:      er.BaseRate,
			WeightCharge:  weightCharge,
			CODCharge:     codCharge,
			FuelSurcharge: surcharge,
			Tax:           tax,
		},
		Total:         math.Round(subtotal + surcharge + tax),
		IsOverride:    er.IsOverride,
		LegacyExpress: legacyExpress,
	}
}

func filterRates(rates []EffectiveRate, zone Zone, mode Mode) []EffectiveRate {
	out := make([]EffectiveRate, 0, len(rates))
	for _, r := range rates {
		if r.Zone != zone {
			continue
		}
		if mode != "" && r.Mode != mode {
			continue
		}
		out = append(out, r)
	}
	return out
}

func quoteCacheKey(req QuoteRequest, chargeable float64) string {
	return fmt.Sprintf("%s|%s|%s|%.3f|%s|%.2f",
		req.SellerID, req.OriginPincode, req.DestinationPincode, chargeable, req.Mode, req.CODAmount)
}
