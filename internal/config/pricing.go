package config

import "strings"

// ModelPricing holds per-million-token prices for a model.
type ModelPricing struct {
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheWritePerMTok float64
	CacheReadPerMTok  float64
}

// Usage is the four billable token categories of one API call.
type Usage struct {
	InputTokens         int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	OutputTokens        int64
}

// Pricing table keys: <family>-<version>, or the bare family for
// families priced the same across versions.
const (
	KeyOpus46   = "opus-4.6"
	KeyOpus45   = "opus-4.5"
	KeyOpus41   = "opus-4.1"
	KeyOpus40   = "opus-4.0"
	KeySonnet   = "sonnet"
	KeyHaiku45  = "haiku-4.5"
	KeyHaiku35  = "haiku-3.5"
	fallbackKey = KeySonnet
)

// DefaultPricing maps table keys to API-equivalent list prices. These are
// estimates, not subscription cost.
var DefaultPricing = map[string]ModelPricing{
	KeyOpus46:  {InputPerMTok: 5.00, OutputPerMTok: 25.00, CacheWritePerMTok: 6.25, CacheReadPerMTok: 0.50},
	KeyOpus45:  {InputPerMTok: 5.00, OutputPerMTok: 25.00, CacheWritePerMTok: 6.25, CacheReadPerMTok: 0.50},
	KeyOpus41:  {InputPerMTok: 15.00, OutputPerMTok: 75.00, CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.50},
	KeyOpus40:  {InputPerMTok: 15.00, OutputPerMTok: 75.00, CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.50},
	KeySonnet:  {InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30},
	KeyHaiku45: {InputPerMTok: 1.00, OutputPerMTok: 5.00, CacheWritePerMTok: 1.25, CacheReadPerMTok: 0.10},
	KeyHaiku35: {InputPerMTok: 0.80, OutputPerMTok: 4.00, CacheWritePerMTok: 1.00, CacheReadPerMTok: 0.08},
}

// familyVersions lists, per family, the version markers to probe in order
// and the key to use when none matches.
var familyVersions = []struct {
	family   string
	versions []struct{ marker, key string }
	fallback string
}{
	{
		family: "opus",
		versions: []struct{ marker, key string }{
			{"4-6", KeyOpus46}, {"4.6", KeyOpus46},
			{"4-5", KeyOpus45}, {"4.5", KeyOpus45},
			{"4-1", KeyOpus41}, {"4.1", KeyOpus41},
		},
		fallback: KeyOpus40,
	},
	{
		family:   "sonnet",
		fallback: KeySonnet,
	},
	{
		family: "haiku",
		versions: []struct{ marker, key string }{
			{"4-5", KeyHaiku45}, {"4.5", KeyHaiku45},
		},
		fallback: KeyHaiku35,
	},
}

// PriceTable resolves model identifiers to pricing. The zero value is not
// usable; build one with NewPriceTable.
type PriceTable struct {
	prices map[string]ModelPricing
}

// DefaultPriceTable is the built-in table without overrides.
var DefaultPriceTable = NewPriceTable(nil)

// NewPriceTable copies DefaultPricing and applies any per-key overrides.
// Overrides for keys not in the table are ignored.
func NewPriceTable(overrides map[string]ModelPricingOverride) *PriceTable {
	prices := make(map[string]ModelPricing, len(DefaultPricing))
	for k, v := range DefaultPricing {
		prices[k] = v
	}
	for key, o := range overrides {
		p, ok := prices[key]
		if !ok {
			continue
		}
		if o.InputPerMTok != nil {
			p.InputPerMTok = *o.InputPerMTok
		}
		if o.OutputPerMTok != nil {
			p.OutputPerMTok = *o.OutputPerMTok
		}
		if o.CacheWritePerMTok != nil {
			p.CacheWritePerMTok = *o.CacheWritePerMTok
		}
		if o.CacheReadPerMTok != nil {
			p.CacheReadPerMTok = *o.CacheReadPerMTok
		}
		prices[key] = p
	}
	return &PriceTable{prices: prices}
}

// PricingKey returns the table key for a model identifier. Matching is a
// case-insensitive substring test on the family name followed by a version
// probe; empty or unrecognized models resolve to sonnet.
//
//	"claude-opus-4-6-20260101"  -> "opus-4.6"
//	"claude-3-5-haiku-20241022" -> "haiku-3.5"
//	"gpt-4o"                    -> "sonnet"
func PricingKey(model string) string {
	if model == "" {
		return fallbackKey
	}
	m := strings.ToLower(model)
	for _, fv := range familyVersions {
		if !strings.Contains(m, fv.family) {
			continue
		}
		for _, v := range fv.versions {
			if strings.Contains(m, v.marker) {
				return v.key
			}
		}
		return fv.fallback
	}
	return fallbackKey
}

// Lookup returns the pricing for a model identifier.
func (t *PriceTable) Lookup(model string) ModelPricing {
	return t.prices[PricingKey(model)]
}

// Cost computes the estimated USD cost of one API call.
func (t *PriceTable) Cost(model string, u Usage) float64 {
	p := t.Lookup(model)
	cost := float64(u.InputTokens) * p.InputPerMTok / 1_000_000
	cost += float64(u.CacheCreationTokens) * p.CacheWritePerMTok / 1_000_000
	cost += float64(u.CacheReadTokens) * p.CacheReadPerMTok / 1_000_000
	cost += float64(u.OutputTokens) * p.OutputPerMTok / 1_000_000
	return cost
}

// CalculateCost computes the estimated cost with the built-in table.
func CalculateCost(model string, u Usage) float64 {
	return DefaultPriceTable.Cost(model, u)
}

// CalculateCacheSavings computes how much cache reads saved versus paying
// the full input rate for the same tokens.
func (t *PriceTable) CalculateCacheSavings(model string, cacheReadTokens int64) float64 {
	p := t.Lookup(model)
	return float64(cacheReadTokens) * (p.InputPerMTok - p.CacheReadPerMTok) / 1_000_000
}
