package pipeline

import (
	"sort"

	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/model"
)

// TokenTypeCosts holds aggregate costs split by token type.
type TokenTypeCosts struct {
	InputCost      float64
	OutputCost     float64
	CacheWriteCost float64
	CacheReadCost  float64
	CacheSavings   float64 // what the cache reads would have cost as fresh input
	TotalCost      float64
}

// ModelCostBreakdown holds cost components for one model.
type ModelCostBreakdown struct {
	Model          string
	InputCost      float64
	OutputCost     float64
	CacheWriteCost float64
	CacheReadCost  float64
	CacheSavings   float64
	TotalCost      float64
}

// AggregateCostBreakdown splits the model rollups' spend by token type,
// sorted by total cost descending.
func AggregateCostBreakdown(models []model.ModelRollup, prices *config.PriceTable) (TokenTypeCosts, []ModelCostBreakdown) {
	if prices == nil {
		prices = config.DefaultPriceTable
	}

	var totals TokenTypeCosts
	rows := make([]ModelCostBreakdown, 0, len(models))

	for _, m := range models {
		p := prices.Lookup(m.Model)
		row := ModelCostBreakdown{
			Model:          m.Model,
			InputCost:      float64(m.InputTokens) * p.InputPerMTok / 1_000_000,
			OutputCost:     float64(m.OutputTokens) * p.OutputPerMTok / 1_000_000,
			CacheWriteCost: float64(m.CacheCreationTokens) * p.CacheWritePerMTok / 1_000_000,
			CacheReadCost:  float64(m.CacheReadTokens) * p.CacheReadPerMTok / 1_000_000,
			CacheSavings:   prices.CalculateCacheSavings(m.Model, m.CacheReadTokens),
		}
		row.TotalCost = row.InputCost + row.OutputCost + row.CacheWriteCost + row.CacheReadCost

		totals.InputCost += row.InputCost
		totals.OutputCost += row.OutputCost
		totals.CacheWriteCost += row.CacheWriteCost
		totals.CacheReadCost += row.CacheReadCost
		totals.CacheSavings += row.CacheSavings
		rows = append(rows, row)
	}
	totals.TotalCost = totals.InputCost + totals.OutputCost + totals.CacheWriteCost + totals.CacheReadCost

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalCost != rows[j].TotalCost {
			return rows[i].TotalCost > rows[j].TotalCost
		}
		return rows[i].Model < rows[j].Model
	})

	return totals, rows
}
