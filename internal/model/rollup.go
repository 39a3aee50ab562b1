package model

// DailyRollup holds usage for a single calendar day.
type DailyRollup struct {
	Date                string  `json:"date"`
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens"`
	CacheReadTokens     int64   `json:"cacheReadTokens"`
	TotalTokens         int64   `json:"totalTokens"`
	Cost                float64 `json:"cost"`
	Sessions            int     `json:"sessions"`
	Queries             int     `json:"queries"`
}

// ModelRollup holds usage for a single model string, folded per query.
type ModelRollup struct {
	Model               string  `json:"model"`
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens"`
	CacheReadTokens     int64   `json:"cacheReadTokens"`
	TotalTokens         int64   `json:"totalTokens"`
	Cost                float64 `json:"cost"`
	QueryCount          int     `json:"queryCount"`
}

// ProjectRollup holds usage for a single project directory.
type ProjectRollup struct {
	Project             string  `json:"project"` // decoded path, e.g. "/Users/me/src/app"
	Name                string  `json:"name"`    // short display name, e.g. "app"
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens"`
	CacheReadTokens     int64   `json:"cacheReadTokens"`
	TotalTokens         int64   `json:"totalTokens"`
	Cost                float64 `json:"cost"`
	SessionCount        int     `json:"sessionCount"`
	QueryCount          int     `json:"queryCount"`
}

// ToolStat is the invocation count of one tool across all sessions.
type ToolStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Totals holds global sums and derived ratios.
type Totals struct {
	TotalTokens        int64   `json:"totalTokens"`
	TotalInput         int64   `json:"totalInput"`
	TotalOutput        int64   `json:"totalOutput"`
	TotalCacheCreation int64   `json:"totalCacheCreation"`
	TotalCacheRead     int64   `json:"totalCacheRead"`
	TotalCost          float64 `json:"totalCost"`
	TotalSessions      int     `json:"totalSessions"`
	TotalQueries       int     `json:"totalQueries"`
	TotalThinkingTurns int     `json:"totalThinkingTurns"`
	CacheHitRate       float64 `json:"cacheHitRate"`

	AvgTokensPerSession int64 `json:"avgTokensPerSession"`
	AvgTokensPerQuery   int64 `json:"avgTokensPerQuery"`
}

// Aggregate is the complete result of one scan, handed to reporting layers.
type Aggregate struct {
	Sessions       []SessionSummary   `json:"sessions"`
	DailyUsage     []DailyRollup      `json:"dailyUsage"`
	ModelBreakdown []ModelRollup      `json:"modelBreakdown"`
	TopPrompts     []PromptCostRecord `json:"topPrompts"`
	Projects       []ProjectRollup    `json:"projects"`
	ToolStats      []ToolStat         `json:"toolStats"`
	Totals         Totals             `json:"totals"`
}

// EmptyAggregate returns an aggregate whose lists are empty rather than nil,
// so it serializes as [] instead of null.
func EmptyAggregate() Aggregate {
	return Aggregate{
		Sessions:       []SessionSummary{},
		DailyUsage:     []DailyRollup{},
		ModelBreakdown: []ModelRollup{},
		TopPrompts:     []PromptCostRecord{},
		Projects:       []ProjectRollup{},
		ToolStats:      []ToolStat{},
	}
}
