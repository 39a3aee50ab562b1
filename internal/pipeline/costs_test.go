package pipeline

import (
	"math"
	"testing"

	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/model"
)

func TestAggregateCostBreakdown(t *testing.T) {
	models := []model.ModelRollup{
		{Model: "claude-sonnet-4-6", InputTokens: 1_000_000, CacheReadTokens: 1_000_000},
		{Model: "claude-opus-4-6", OutputTokens: 1_000_000},
	}

	totals, rows := AggregateCostBreakdown(models, config.DefaultPriceTable)

	if len(rows) != 2 || rows[0].Model != "claude-opus-4-6" {
		t.Fatalf("rows = %+v", rows)
	}
	// sonnet: 3.00 input + 0.30 cache read
	if math.Abs(rows[1].TotalCost-3.30) > 1e-9 {
		t.Errorf("sonnet total = %v, want 3.30", rows[1].TotalCost)
	}
	if math.Abs(rows[1].CacheSavings-2.70) > 1e-9 {
		t.Errorf("sonnet savings = %v, want 2.70", rows[1].CacheSavings)
	}
	if math.Abs(totals.TotalCost-(rows[0].TotalCost+rows[1].TotalCost)) > 1e-9 {
		t.Errorf("totals = %v, want sum of rows", totals.TotalCost)
	}
}

func TestFilterByProject(t *testing.T) {
	sessions := []model.SessionSummary{
		{SessionID: "a", Project: "/home/me/src/Pulse", ProjectName: "Pulse", Model: "claude-opus-4-6"},
		{SessionID: "b", Project: "/home/me/src/other", ProjectName: "other", Model: "claude-sonnet-4-6"},
	}

	if got := FilterByProject(sessions, "pulse"); len(got) != 1 || got[0].SessionID != "a" {
		t.Errorf("FilterByProject = %+v", got)
	}
	if got := FilterByProject(sessions, ""); len(got) != 2 {
		t.Errorf("empty filter = %d, want 2", len(got))
	}
	if got := FilterByModel(sessions, "sonnet"); len(got) != 1 || got[0].SessionID != "b" {
		t.Errorf("FilterByModel = %+v", got)
	}
}
